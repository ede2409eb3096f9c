// Package mocks provides testify mocks over the repository interfaces for
// service and handler tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/camilozg/lending-engine/internal/domain"
	"github.com/camilozg/lending-engine/internal/repository"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Customer, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Loan, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByCustomer(ctx context.Context, customerExternalID string) ([]*domain.Loan, error) {
	args := m.Called(ctx, customerExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) SumOutstanding(ctx context.Context, customerID uuid.UUID, statuses ...string) (decimal.Decimal, error) {
	args := m.Called(ctx, customerID, statuses)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLoanRepository) Activate(ctx context.Context, externalID string, takenAt time.Time) (*domain.Loan, error) {
	args := m.Called(ctx, externalID, takenAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Reject(ctx context.Context, externalID string) (*domain.Loan, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Payment, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListDetailsByCustomer(ctx context.Context, customerExternalID string) ([]*domain.CustomerPaymentRecord, error) {
	args := m.Called(ctx, customerExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CustomerPaymentRecord), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Begin(ctx context.Context) (repository.LedgerTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.LedgerTx), args.Error(1)
}

type MockLedgerTx struct {
	mock.Mock
}

func (m *MockLedgerTx) LockCustomer(ctx context.Context, externalID string) (*domain.Customer, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockLedgerTx) LoansForUpdate(ctx context.Context, customerID uuid.UUID, statuses ...string) ([]*domain.Loan, error) {
	args := m.Called(ctx, customerID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLedgerTx) SumOutstanding(ctx context.Context, customerID uuid.UUID, statuses ...string) (decimal.Decimal, error) {
	args := m.Called(ctx, customerID, statuses)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerTx) InsertLoan(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLedgerTx) InsertPayment(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockLedgerTx) InsertPaymentDetail(ctx context.Context, detail *domain.PaymentDetail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

func (m *MockLedgerTx) UpdateLoanBalance(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLedgerTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockLedgerTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockBalanceCache mocks the service balance cache.
type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) Get(ctx context.Context, externalID string) (*domain.CustomerBalance, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerBalance), args.Error(1)
}

func (m *MockBalanceCache) Set(ctx context.Context, externalID string, balance *domain.CustomerBalance) error {
	args := m.Called(ctx, externalID, balance)
	return args.Error(0)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, externalID string) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}
