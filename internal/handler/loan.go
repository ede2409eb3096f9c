package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/camilozg/lending-engine/internal/domain"
	"github.com/camilozg/lending-engine/internal/service"
	"github.com/camilozg/lending-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: newValidator(),
	}
}

func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	loan, err := h.service.Create(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, loan)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	externalID := mux.Vars(r)["externalId"]

	loan, err := h.service.Get(r.Context(), externalID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerExternalID := mux.Vars(r)["externalId"]

	loans, err := h.service.ListByCustomer(r.Context(), customerExternalID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if loans == nil {
		loans = []*domain.Loan{}
	}

	response.Success(w, loans)
}

func (h *LoanHandler) Activate(w http.ResponseWriter, r *http.Request) {
	externalID := mux.Vars(r)["externalId"]

	loan, err := h.service.Activate(r.Context(), externalID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	externalID := mux.Vars(r)["externalId"]

	loan, err := h.service.Reject(r.Context(), externalID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}
