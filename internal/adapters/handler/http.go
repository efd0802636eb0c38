package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/service"
	"github.com/go-playground/validator"
)

type PaymentService interface {
	Purchase(ctx context.Context, cmd service.PurchaseCommand) (*domain.Response, error)
	Refund(ctx context.Context, cmd service.RefundCommand) (*domain.Response, error)
	GetTransaction(ctx context.Context, reference string) ([]*domain.Transaction, error)
	Query(ctx context.Context, internalReference int64) (*domain.Response, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PaymentHandler struct {
	service  PaymentService
	checks   map[string]Pinger
	validate *validator.Validate
	logger   *slog.Logger
}

// NewPaymentHandler builds the REST handlers. checks are reported by
// GET /health under their map key.
func NewPaymentHandler(svc PaymentService, checks map[string]Pinger, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  svc,
		checks:   checks,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /purchases", h.HandlePurchase)
	mux.HandleFunc("POST /refunds", h.HandleRefund)
	mux.HandleFunc("GET /transactions/{reference}", h.HandleGetTransaction)
	mux.HandleFunc("GET /processor/transactions/{internalReference}", h.HandleQueryProcessor)
	mux.HandleFunc("GET /health", h.HandleHealth)
}

// HandleHealth reports the state of every registered dependency.
// @Summary      Health check
// @Tags         ops
// @Produce      json
// @Success      200  {object}  APIResponse
// @Failure      503  {object}  APIResponse
// @Router       /health [get]
func (h *PaymentHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{}
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", "dependency", name, "error", err)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		respondWithJSON(w, http.StatusServiceUnavailable, &APIError{
			Code:    "UNHEALTHY",
			Message: "one or more dependencies are unavailable",
			Details: status,
		})
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}
