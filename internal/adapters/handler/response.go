package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// TransactionResponse is a journal entry as returned by the API.
type TransactionResponse struct {
	ID                string    `json:"id"`
	Kind              string    `json:"kind"`
	Reference         string    `json:"reference"`
	Authorization     string    `json:"authorization"`
	InternalReference int64     `json:"internal_reference"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	Reason            string    `json:"reason,omitempty"`
	Message           string    `json:"message"`
	Franchise         string    `json:"franchise,omitempty"`
	LastDigits        string    `json:"last_digits,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                tx.ID.String(),
		Kind:              string(tx.Kind),
		Reference:         tx.Reference,
		Authorization:     tx.Authorization,
		InternalReference: tx.InternalReference,
		Amount:            tx.AmountTotal,
		Currency:          tx.Currency,
		Status:            string(tx.Status),
		Reason:            tx.Reason,
		Message:           tx.Message,
		Franchise:         tx.Franchise,
		LastDigits:        tx.LastDigits,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
	}

	if response.Success {
		response.Data = data
	} else {
		if apiErr, ok := data.(*APIError); ok {
			response.Error = apiErr
		}
	}

	_ = json.NewEncoder(w).Encode(response)
}

// respondWithError maps err onto a status code and the error envelope.
// Processor declines never get here: they are 2xx responses.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, apiErr := toAPIError(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "code", apiErr.Code, "error", err)
	}
	respondWithJSON(w, status, apiErr)
}

func toAPIError(err error) (int, *APIError) {
	if vErr, ok := domain.AsValidationError(err); ok {
		details := make(map[string]string, len(vErr.Violations))
		for _, v := range vErr.Violations {
			details[v.Field] = v.Reason
		}
		return http.StatusBadRequest, &APIError{
			Code:    domain.ErrCodeValidation,
			Message: "request validation failed",
			Details: details,
		}
	}

	if tErr, ok := domain.AsTransportError(err); ok {
		return http.StatusBadGateway, &APIError{
			Code:    domain.ErrCodeTransport,
			Message: "payment processor unavailable: " + tErr.Op,
		}
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		apiErr := &APIError{Code: domainErr.Code, Message: domainErr.Message}
		switch domainErr.Code {
		case domain.ErrCodeValidation:
			return http.StatusBadRequest, apiErr
		case domain.ErrCodeDuplicateReference:
			return http.StatusConflict, apiErr
		case domain.ErrCodeTransactionNotFound:
			return http.StatusNotFound, apiErr
		default:
			return http.StatusInternalServerError, apiErr
		}
	}

	return http.StatusInternalServerError, &APIError{
		Code:    domain.ErrCodeInternal,
		Message: "an internal error occurred",
	}
}
