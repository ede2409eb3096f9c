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

type PaymentHandler struct {
	service   *service.PaymentService
	validator *validator.Validate
}

func NewPaymentHandler(service *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: newValidator(),
	}
}

// Create applies a payment. A rejected payment is still a created payment;
// only the preconditions (unknown customer, non-positive amount, no active
// loans) are request failures.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	payment, err := h.service.Create(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, payment)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	externalID := mux.Vars(r)["externalId"]

	payment, err := h.service.Get(r.Context(), externalID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payment)
}

func (h *PaymentHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerExternalID := mux.Vars(r)["externalId"]

	records, err := h.service.ListByCustomer(r.Context(), customerExternalID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if records == nil {
		records = []*domain.CustomerPaymentRecord{}
	}

	response.Success(w, records)
}
