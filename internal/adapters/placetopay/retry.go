package placetopay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/config"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/ports"
)

// RetryClient retries read-only calls. Purchase and Refund go through exactly
// once: the payment reference is the processor's dedup key, and a blind resend
// could charge or reverse twice.
type RetryClient struct {
	inner      ports.Processor
	baseDelay  time.Duration
	maxRetries int
	logger     *slog.Logger
}

func NewRetryClient(inner ports.Processor, cfg config.RetryConfig, logger *slog.Logger) *RetryClient {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryClient{
		inner:      inner,
		baseDelay:  cfg.BaseDelay,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (r *RetryClient) Purchase(ctx context.Context, amount int64, card domain.Card, opts domain.PurchaseOptions) (*domain.Response, error) {
	return r.inner.Purchase(ctx, amount, card, opts)
}

func (r *RetryClient) Refund(ctx context.Context, amount int64, authorization string, opts domain.RefundOptions) (*domain.Response, error) {
	return r.inner.Refund(ctx, amount, authorization, opts)
}

// Query with retry logic
func (r *RetryClient) Query(ctx context.Context, internalReference int64) (*domain.Response, error) {
	return retry(r, ctx, "query", func(ctx context.Context) (*domain.Response, error) {
		return r.inner.Query(ctx, internalReference)
	})
}

func retry[T any](r *RetryClient, ctx context.Context, op string, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			delay := r.backoff(attempt)
			r.logger.Warn("retrying processor call",
				"op", op,
				"attempt", attempt+1,
				"delay", delay,
				"error", err,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	if _, ok := domain.AsValidationError(err); ok {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if tErr, ok := domain.AsTransportError(err); ok {
		return tErr.IsRetryable()
	}
	return false
}

// backoff doubles the base delay per attempt and adds up to 100ms of jitter.
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)
	jitter := time.Duration(rand.Intn(100)) * time.Millisecond
	return base + jitter
}
