package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	KindPurchase TransactionKind = "PURCHASE"
	KindRefund   TransactionKind = "REFUND"
)

// Transaction is the journal entry written for every answered processor call.
// It never holds card data beyond the last four digits.
type Transaction struct {
	ID                uuid.UUID
	Kind              TransactionKind
	Reference         string
	Authorization     string
	InternalReference int64
	AmountTotal       int64
	Currency          string
	Status            DecisionStatus
	Reason            string
	Message           string
	Franchise         string
	LastDigits        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTransaction records resp for the given reference and amount.
func NewTransaction(kind TransactionKind, reference string, amount Amount, resp *Response) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:                uuid.New(),
		Kind:              kind,
		Reference:         reference,
		Authorization:     resp.Authorization,
		InternalReference: resp.NetworkTransactionID,
		AmountTotal:       amount.Total,
		Currency:          amount.Currency,
		Status:            resp.Status,
		Reason:            resp.Reason,
		Message:           resp.Message,
		Franchise:         resp.Franchise,
		LastDigits:        resp.LastDigits,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NewPendingPurchase claims reference in the journal before the processor is
// called. It carries no internal reference until Record stores the answer.
func NewPendingPurchase(reference string, amount Amount, card Card) *Transaction {
	now := time.Now().UTC()
	tx := &Transaction{
		ID:          uuid.New(),
		Kind:        KindPurchase,
		Reference:   reference,
		AmountTotal: amount.Total,
		Currency:    amount.Currency,
		Status:      StatusPending,
		LastDigits:  card.LastDigits(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if franchise := card.Franchise(); franchise != FranchiseUnknown {
		tx.Franchise = string(franchise)
	}
	return tx
}

// Refundable reports whether this is an approved purchase that can be reversed.
func (t *Transaction) Refundable() bool {
	return t.Kind == KindPurchase && t.Status == StatusApproved && t.Authorization != ""
}

// Settle applies a later processor answer to a pending entry. It returns
// false and leaves t untouched while the processor still reports PENDING.
func (t *Transaction) Settle(resp *Response) bool {
	if t.Status != StatusPending || resp.Status == StatusPending || resp.Status == "" {
		return false
	}
	t.apply(resp)
	return true
}

// Record stores the processor's first answer on a pending purchase. An answer
// without a status is kept as FAILED.
func (t *Transaction) Record(resp *Response) {
	t.apply(resp)
	if t.Status == "" {
		t.Status = StatusFailed
	}
}

func (t *Transaction) apply(resp *Response) {
	t.Status = resp.Status
	t.Reason = resp.Reason
	t.Message = resp.Message
	if resp.Authorization != "" {
		t.Authorization = resp.Authorization
	}
	if resp.NetworkTransactionID != 0 {
		t.InternalReference = resp.NetworkTransactionID
	}
	if resp.Franchise != "" {
		t.Franchise = resp.Franchise
	}
	if resp.LastDigits != "" {
		t.LastDigits = resp.LastDigits
	}
	t.UpdatedAt = time.Now().UTC()
}
