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

type CustomerHandler struct {
	service   *service.CustomerService
	validator *validator.Validate
}

func NewCustomerHandler(service *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		service:   service,
		validator: newValidator(),
	}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	customer, err := h.service.Create(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	externalID := mux.Vars(r)["externalId"]

	customer, err := h.service.Get(r.Context(), externalID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, customer)
}

func (h *CustomerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	externalID := mux.Vars(r)["externalId"]

	balance, err := h.service.GetBalance(r.Context(), externalID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, balance)
}
