package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/config"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/ports"
)

// Reconciler settles journal entries the processor answered with PENDING by
// querying their current state.
type Reconciler struct {
	repo       ports.TransactionRepository
	processor  ports.Processor
	interval   time.Duration
	pendingAge time.Duration
	batchSize  int
	logger     *slog.Logger
}

const defaultInterval = time.Minute

func NewReconciler(
	repo ports.TransactionRepository,
	processor ports.Processor,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *Reconciler {
	if cfg.Interval <= 0 {
		logger.Warn("invalid reconciler interval, using default", "interval", cfg.Interval, "default", defaultInterval)
		cfg.Interval = defaultInterval
	}
	return &Reconciler{
		repo:       repo,
		processor:  processor,
		interval:   cfg.Interval,
		pendingAge: cfg.PendingAge,
		batchSize:  cfg.BatchSize,
		logger:     logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting background reconciler",
		"interval", r.interval,
		"pending_age", r.pendingAge,
		"batch_size", r.batchSize,
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping background reconciler")
			return
		case <-ticker.C:
			r.run(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle and reports how many
// entries were settled.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	return r.run(ctx)
}

func (r *Reconciler) run(ctx context.Context) int {
	pending, err := r.repo.FindPending(ctx, r.pendingAge, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch pending transactions", "error", err)
		return 0
	}

	if len(pending) == 0 {
		return 0
	}

	r.logger.Info("reconciling pending transactions", "count", len(pending))

	settled := 0
	for _, tx := range pending {
		if ctx.Err() != nil {
			return settled
		}
		if r.settle(ctx, tx) {
			settled++
		}
	}
	return settled
}

func (r *Reconciler) settle(ctx context.Context, tx *domain.Transaction) bool {
	log := r.logger.With(
		"id", tx.ID,
		"kind", tx.Kind,
		"reference", tx.Reference,
		"internal_reference", tx.InternalReference,
	)

	resp, err := r.processor.Query(ctx, tx.InternalReference)
	if err != nil {
		log.Warn("failed to query processor", "error", err)
		return false
	}

	if !tx.Settle(resp) {
		log.Debug("transaction still pending")
		return false
	}

	if err := r.repo.UpdateDecision(ctx, tx); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeTransactionNotFound) {
			log.Info("transaction already settled")
			return false
		}
		log.Error("failed to store settled decision", "error", err)
		return false
	}

	log.Info("settled pending transaction", "status", tx.Status, "message", tx.Message)
	return true
}
