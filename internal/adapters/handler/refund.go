package handler

import (
	"encoding/json"
	"net/http"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/service"
)

// RefundRequest reverses a purchase. Reference alone is enough when the
// purchase went through this gateway; the other fields override the journal.
type RefundRequest struct {
	Reference         string `json:"reference,omitempty" example:"ORDER_20261016_150405123"`
	Amount            int64  `json:"amount,omitempty" validate:"gte=0" example:"100"`
	Authorization     string `json:"authorization,omitempty" example:"999999"`
	InternalReference int64  `json:"internal_reference,omitempty" example:"1000001"`
	Currency          string `json:"currency,omitempty" example:"COP"`
}

// HandleRefund reverses a purchase
// @Summary      Refund a purchase
// @Description  Reverse an approved purchase. Processor refusals, such as an already reversed transaction, are 200 with data.status FAILED.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      RefundRequest  true  "Refund details"
// @Success      200      {object}  APIResponse    "Processor decision"
// @Failure      400      {object}  APIResponse    "Invalid request"
// @Failure      404      {object}  APIResponse    "Purchase not found"
// @Failure      502      {object}  APIResponse    "Processor unavailable"
// @Router       /refunds [post]
func (h *PaymentHandler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, domain.NewValidationError("body", "must be a JSON object"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, h.logger, &domain.DomainError{
			Code:    domain.ErrCodeValidation,
			Message: err.Error(),
		})
		return
	}

	resp, err := h.service.Refund(r.Context(), service.RefundCommand{
		Reference:         req.Reference,
		Amount:            req.Amount,
		Authorization:     req.Authorization,
		InternalReference: req.InternalReference,
		Currency:          req.Currency,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
