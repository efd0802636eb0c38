package handler

import (
	"encoding/json"
	"net/http"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/service"
)

type PayerRequest struct {
	Name         string `json:"name" validate:"required" example:"Erika"`
	Surname      string `json:"surname" validate:"required" example:"Howe"`
	Email        string `json:"email" validate:"required,email" example:"cwilliamson@hotmail.com"`
	DocumentType string `json:"document_type" validate:"required" example:"CC"`
	Document     string `json:"document" validate:"required" example:"3572264088"`
	Mobile       string `json:"mobile,omitempty" example:"3006108300"`
}

type CardRequest struct {
	Number       string `json:"number" validate:"required" example:"36545400000008"`
	ExpiryMonth  int    `json:"expiry_month" validate:"required" example:"12"`
	ExpiryYear   int    `json:"expiry_year" validate:"required" example:"2030"`
	CVV          string `json:"cvv" validate:"required" example:"123"`
	Installments int    `json:"installments,omitempty" example:"1"`
}

type ThreeDSRequest struct {
	Enabled   bool   `json:"enabled"`
	ReturnURL string `json:"return_url,omitempty" example:"https://shop.example.com/return"`
}

type PurchaseRequest struct {
	Reference   string         `json:"reference" validate:"required" example:"ORDER_20261016_150405123"`
	Description string         `json:"description" validate:"required" example:"Two tickets"`
	Amount      int64          `json:"amount" validate:"required,gt=0" example:"100"`
	Currency    string         `json:"currency,omitempty" example:"COP"`
	Payer       PayerRequest   `json:"payer"`
	Card        CardRequest    `json:"card"`
	ThreeDS     ThreeDSRequest `json:"three_ds"`
}

func (r PurchaseRequest) command() service.PurchaseCommand {
	return service.PurchaseCommand{
		Amount: r.Amount,
		Card: domain.Card{
			Number:            r.Card.Number,
			ExpiryMonth:       r.Card.ExpiryMonth,
			ExpiryYear:        r.Card.ExpiryYear,
			VerificationValue: r.Card.CVV,
			FirstName:         r.Payer.Name,
			LastName:          r.Payer.Surname,
			Installments:      r.Card.Installments,
		},
		Options: domain.PurchaseOptions{
			Payer: domain.Payer{
				Name:         r.Payer.Name,
				Surname:      r.Payer.Surname,
				Email:        r.Payer.Email,
				DocumentType: r.Payer.DocumentType,
				Document:     r.Payer.Document,
				Mobile:       r.Payer.Mobile,
			},
			Payment: domain.Payment{
				Reference:   r.Reference,
				Description: r.Description,
				Currency:    r.Currency,
			},
			ThreeDS: domain.ThreeDS{
				Enabled:   r.ThreeDS.Enabled,
				ReturnURL: r.ThreeDS.ReturnURL,
			},
		},
	}
}

// HandlePurchase charges a card
// @Summary      Purchase
// @Description  Charge a card through PlacetoPay. Approved and declined purchases are both 201; read data.status for the decision.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      PurchaseRequest  true  "Purchase details"
// @Success      201      {object}  APIResponse      "Processor decision"
// @Failure      400      {object}  APIResponse      "Invalid request"
// @Failure      409      {object}  APIResponse      "Reference already used"
// @Failure      502      {object}  APIResponse      "Processor unavailable"
// @Router       /purchases [post]
func (h *PaymentHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
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

	resp, err := h.service.Purchase(r.Context(), req.command())
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}
