package ports

import (
	"context"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/google/uuid"
)

// TransactionRepository is the journal of processor calls. A purchase is
// claimed as PENDING before the call and updated with the answer.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	FindPurchaseByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	ListByReference(ctx context.Context, reference string) ([]*domain.Transaction, error)
	// FindPending returns PENDING entries older than olderThan that carry an
	// internal reference, oldest first.
	FindPending(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.Transaction, error)
	// UpdateDecision stores a new decision on an entry that is still PENDING.
	UpdateDecision(ctx context.Context, tx *domain.Transaction) error
	// DeletePending drops a PENDING entry the processor never answered.
	DeletePending(ctx context.Context, id uuid.UUID) error
}

// ReferenceGuard reserves payment references so a reference is sent to the
// processor at most once.
type ReferenceGuard interface {
	Reserve(ctx context.Context, reference string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, reference string) error
}
