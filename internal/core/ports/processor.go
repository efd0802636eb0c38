package ports

import (
	"context"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
)

// Processor is the card processor. Business declines come back as a Response;
// only malformed requests and transport failures are errors.
type Processor interface {
	Purchase(ctx context.Context, amount int64, card domain.Card, opts domain.PurchaseOptions) (*domain.Response, error)
	Refund(ctx context.Context, amount int64, authorization string, opts domain.RefundOptions) (*domain.Response, error)
	Query(ctx context.Context, internalReference int64) (*domain.Response, error)
}
