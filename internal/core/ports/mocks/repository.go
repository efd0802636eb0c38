package mocks

import (
	"context"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// TransactionRepository is a testify mock of ports.TransactionRepository.
type TransactionRepository struct {
	mock.Mock
}

func NewTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *TransactionRepository {
	m := &TransactionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) FindPurchaseByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	args := m.Called(ctx, reference)
	var tx *domain.Transaction
	if v := args.Get(0); v != nil {
		tx = v.(*domain.Transaction)
	}
	return tx, args.Error(1)
}

func (m *TransactionRepository) ListByReference(ctx context.Context, reference string) ([]*domain.Transaction, error) {
	args := m.Called(ctx, reference)
	var txs []*domain.Transaction
	if v := args.Get(0); v != nil {
		txs = v.([]*domain.Transaction)
	}
	return txs, args.Error(1)
}

func (m *TransactionRepository) FindPending(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.Transaction, error) {
	args := m.Called(ctx, olderThan, limit)
	var txs []*domain.Transaction
	if v := args.Get(0); v != nil {
		txs = v.([]*domain.Transaction)
	}
	return txs, args.Error(1)
}

func (m *TransactionRepository) UpdateDecision(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) DeletePending(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ReferenceGuard is a testify mock of ports.ReferenceGuard.
type ReferenceGuard struct {
	mock.Mock
}

func NewReferenceGuard(t interface {
	mock.TestingT
	Cleanup(func())
}) *ReferenceGuard {
	m := &ReferenceGuard{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ReferenceGuard) Reserve(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, reference, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *ReferenceGuard) Release(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}
