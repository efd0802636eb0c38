package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, kind, reference, authorization_code, internal_reference,
	amount_total, currency, status, reason, message, franchise, last_digits, created_at, updated_at`

type TransactionRepository struct {
	q Executor
}

func NewTransactionRepository(db *DB) ports.TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// Create appends tx to the journal. A second purchase for the same reference
// fails with DUPLICATE_REFERENCE.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.q.Exec(ctx, query,
		tx.ID,
		tx.Kind,
		tx.Reference,
		tx.Authorization,
		tx.InternalReference,
		tx.AmountTotal,
		tx.Currency,
		tx.Status,
		tx.Reason,
		tx.Message,
		tx.Franchise,
		tx.LastDigits,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.NewDuplicateReferenceError(tx.Reference)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) FindPurchaseByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE reference = $1 AND kind = $2`

	tx, err := scanTransaction(r.q.QueryRow(ctx, query, reference, domain.KindPurchase))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewTransactionNotFoundError(reference)
		}
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}
	return tx, nil
}

// ListByReference returns every journal entry for reference, oldest first.
func (r *TransactionRepository) ListByReference(ctx context.Context, reference string) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE reference = $1
		ORDER BY created_at, kind`

	rows, err := r.q.Query(ctx, query, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (r *TransactionRepository) FindPending(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1
		  AND internal_reference > 0
		  AND created_at < $2
		ORDER BY created_at
		LIMIT $3`

	cutoff := time.Now().UTC().Add(-olderThan)
	rows, err := r.q.Query(ctx, query, domain.StatusPending, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find pending transactions: %w", err)
	}
	return txs, nil
}

// UpdateDecision stores a processor decision. It only touches entries that are
// still PENDING so a concurrent settle cannot overwrite a final status.
func (r *TransactionRepository) UpdateDecision(ctx context.Context, tx *domain.Transaction) error {
	query := `UPDATE transactions
		SET status = $2, reason = $3, message = $4, authorization_code = $5,
			internal_reference = $6, franchise = $7, last_digits = $8, updated_at = $9
		WHERE id = $1 AND status = $10`

	tag, err := r.q.Exec(ctx, query,
		tx.ID,
		tx.Status,
		tx.Reason,
		tx.Message,
		tx.Authorization,
		tx.InternalReference,
		tx.Franchise,
		tx.LastDigits,
		tx.UpdatedAt,
		domain.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewTransactionNotFoundError(tx.Reference)
	}
	return nil
}

// DeletePending removes an unanswered purchase claim so its reference can be
// sent again.
func (r *TransactionRepository) DeletePending(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1 AND status = $2`

	tag, err := r.q.Exec(ctx, query, id, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to delete pending transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewTransactionNotFoundError(id.String())
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx     domain.Transaction
		kind   string
		status string
	)
	err := row.Scan(
		&tx.ID,
		&kind,
		&tx.Reference,
		&tx.Authorization,
		&tx.InternalReference,
		&tx.AmountTotal,
		&tx.Currency,
		&status,
		&tx.Reason,
		&tx.Message,
		&tx.Franchise,
		&tx.LastDigits,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Kind = domain.TransactionKind(kind)
	tx.Status = domain.DecisionStatus(status)
	return &tx, nil
}
