package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/ports"
)

// PaymentService runs purchases and refunds against the processor and keeps a
// journal of every answer.
type PaymentService struct {
	processor ports.Processor
	repo      ports.TransactionRepository
	guard     ports.ReferenceGuard
	opts      Options
	logger    *slog.Logger
}

// NewPaymentService wires the service. guard may be nil, in which case the
// journal's unique index is the only duplicate check.
func NewPaymentService(
	processor ports.Processor,
	repo ports.TransactionRepository,
	guard ports.ReferenceGuard,
	opts Options,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		processor: processor,
		repo:      repo,
		guard:     guard,
		opts:      opts,
		logger:    logger,
	}
}

// Purchase claims the reference with a PENDING journal entry, sends the
// purchase and stores the answer on that entry. Only one caller can hold the
// claim, so a reference reaches the processor at most once.
func (s *PaymentService) Purchase(ctx context.Context, cmd PurchaseCommand) (*domain.Response, error) {
	if err := domain.ValidatePurchase(cmd.Amount, cmd.Card, cmd.Options); err != nil {
		return nil, err
	}

	reference := cmd.Options.Payment.Reference
	logger := s.logger.With("reference", reference)

	if s.guard != nil {
		reserved, err := s.guard.Reserve(ctx, reference, s.opts.ReferenceTTL)
		if err != nil {
			return nil, domain.NewInternalError(fmt.Errorf("reserve reference: %w", err))
		}
		if !reserved {
			return nil, domain.NewDuplicateReferenceError(reference)
		}
	}

	amount := domain.Amount{Currency: s.currency(cmd.Options.Payment.Currency), Total: cmd.Amount}
	tx := domain.NewPendingPurchase(reference, amount, cmd.Card)
	if err := s.repo.Create(ctx, tx); err != nil {
		s.release(ctx, logger, reference)
		if domain.IsErrorCode(err, domain.ErrCodeDuplicateReference) {
			return nil, err
		}
		return nil, domain.NewInternalError(fmt.Errorf("claim reference: %w", err))
	}

	resp, err := s.processor.Purchase(ctx, cmd.Amount, cmd.Card, cmd.Options)
	if err != nil {
		// the processor never answered, so the caller may resend once it has
		// been checked
		s.unclaim(ctx, logger, tx)
		return nil, err
	}

	tx.Record(resp)
	if err := s.repo.UpdateDecision(context.WithoutCancel(ctx), tx); err != nil {
		// the processor already answered; the caller gets its decision even
		// though the journal still shows the claim
		logger.Error("failed to journal purchase",
			"transaction_id", tx.ID,
			"internal_reference", resp.NetworkTransactionID,
			"status", resp.Status,
			"error", err,
		)
		return resp, nil
	}

	logger.Info("purchase journaled",
		"transaction_id", tx.ID,
		"status", tx.Status,
		"internal_reference", tx.InternalReference,
	)
	return resp, nil
}

func (s *PaymentService) Refund(ctx context.Context, cmd RefundCommand) (*domain.Response, error) {
	amount := cmd.Amount
	authorization := cmd.Authorization
	internalReference := cmd.InternalReference
	currency := cmd.Currency

	if cmd.Reference != "" {
		purchase, err := s.repo.FindPurchaseByReference(ctx, cmd.Reference)
		if err != nil {
			return nil, err
		}
		if !purchase.Refundable() {
			return nil, domain.NewValidationError("reference", fmt.Sprintf("purchase is %s and cannot be refunded", purchase.Status))
		}
		if amount == 0 {
			amount = purchase.AmountTotal
		}
		if authorization == "" {
			authorization = purchase.Authorization
		}
		if internalReference == 0 {
			internalReference = purchase.InternalReference
		}
		if currency == "" {
			currency = purchase.Currency
		}
	} else if internalReference == 0 {
		return nil, domain.NewValidationError("reference", "reference or internal reference is required")
	}

	opts := domain.RefundOptions{InternalReference: internalReference, Currency: currency}
	resp, err := s.processor.Refund(ctx, amount, authorization, opts)
	if err != nil {
		return nil, err
	}

	if cmd.Reference != "" {
		tx := domain.NewTransaction(domain.KindRefund, cmd.Reference, domain.Amount{Currency: s.currency(currency), Total: amount}, resp)
		if err := s.repo.Create(ctx, tx); err != nil {
			s.logger.Error("failed to journal refund",
				"reference", cmd.Reference,
				"internal_reference", resp.NetworkTransactionID,
				"error", err,
			)
		}
	}

	s.logger.Info("refund answered",
		"reference", cmd.Reference,
		"internal_reference", internalReference,
		"status", resp.Status,
		"message", resp.Message,
	)
	return resp, nil
}

// GetTransaction returns the purchase and any refunds recorded for reference.
func (s *PaymentService) GetTransaction(ctx context.Context, reference string) ([]*domain.Transaction, error) {
	txs, err := s.repo.ListByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, domain.NewTransactionNotFoundError(reference)
	}
	return txs, nil
}

func (s *PaymentService) Query(ctx context.Context, internalReference int64) (*domain.Response, error) {
	if internalReference <= 0 {
		return nil, domain.NewValidationError("internal_reference", "must be greater than zero")
	}
	return s.processor.Query(ctx, internalReference)
}

func (s *PaymentService) unclaim(ctx context.Context, logger *slog.Logger, tx *domain.Transaction) {
	if err := s.repo.DeletePending(context.WithoutCancel(ctx), tx.ID); err != nil {
		logger.Warn("failed to drop unanswered purchase", "transaction_id", tx.ID, "error", err)
	}
	s.release(ctx, logger, tx.Reference)
}

func (s *PaymentService) release(ctx context.Context, logger *slog.Logger, reference string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Release(context.WithoutCancel(ctx), reference); err != nil {
		logger.Warn("failed to release reference", "error", err)
	}
}

func (s *PaymentService) currency(currency string) string {
	if currency != "" {
		return strings.ToUpper(currency)
	}
	return s.opts.DefaultCurrency
}
