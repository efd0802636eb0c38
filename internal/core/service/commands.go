package service

import (
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
)

type PurchaseCommand struct {
	Amount  int64
	Card    domain.Card
	Options domain.PurchaseOptions
}

// RefundCommand reverses a purchase. When Reference is set the purchase is
// looked up in the journal; Authorization, InternalReference, Amount and
// Currency given here override what was recorded.
type RefundCommand struct {
	Reference         string
	Amount            int64
	Authorization     string
	InternalReference int64
	Currency          string
}

type Options struct {
	DefaultCurrency string
	ReferenceTTL    time.Duration
}
