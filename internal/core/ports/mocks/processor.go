package mocks

import (
	"context"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// Processor is a testify mock of ports.Processor.
type Processor struct {
	mock.Mock
}

// NewProcessor creates a mock that asserts its expectations on cleanup.
func NewProcessor(t interface {
	mock.TestingT
	Cleanup(func())
}) *Processor {
	m := &Processor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Processor) Purchase(ctx context.Context, amount int64, card domain.Card, opts domain.PurchaseOptions) (*domain.Response, error) {
	args := m.Called(ctx, amount, card, opts)
	return response(args)
}

func (m *Processor) Refund(ctx context.Context, amount int64, authorization string, opts domain.RefundOptions) (*domain.Response, error) {
	args := m.Called(ctx, amount, authorization, opts)
	return response(args)
}

func (m *Processor) Query(ctx context.Context, internalReference int64) (*domain.Response, error) {
	args := m.Called(ctx, internalReference)
	return response(args)
}

func response(args mock.Arguments) (*domain.Response, error) {
	var resp *domain.Response
	if v := args.Get(0); v != nil {
		resp = v.(*domain.Response)
	}
	return resp, args.Error(1)
}
