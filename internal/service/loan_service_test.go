package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/camilozg/lending-engine/internal/domain"
	"github.com/camilozg/lending-engine/internal/repository/mocks"
	"github.com/camilozg/lending-engine/internal/service"
	customError "github.com/camilozg/lending-engine/pkg/errors"
)

func TestCreateLoan(t *testing.T) {
	customer := &domain.Customer{
		ID:         uuid.New(),
		ExternalID: "external_c01",
		Status:     domain.CustomerStatusActive,
		Score:      decimal.NewFromInt(1000),
	}

	tests := []struct {
		name         string
		amount       decimal.Decimal
		setupMocks   func(*mocks.MockStore, *mocks.MockLedgerTx, *mocks.MockBalanceCache)
		expectedCode string
	}{
		{
			name:   "Success - loan within available credit",
			amount: decimal.NewFromInt(100),
			setupMocks: func(store *mocks.MockStore, tx *mocks.MockLedgerTx, cache *mocks.MockBalanceCache) {
				store.On("Begin", mock.Anything).Return(tx, nil)
				tx.On("LockCustomer", mock.Anything, customer.ExternalID).Return(customer, nil)
				tx.On("SumOutstanding", mock.Anything, customer.ID, []string{domain.LoanStatusPending, domain.LoanStatusActive}).
					Return(decimal.NewFromInt(900), nil)
				tx.On("InsertLoan", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
					return loan.Status == domain.LoanStatusPending &&
						loan.Outstanding.Equal(loan.Amount) &&
						loan.TakenAt == nil
				})).Return(nil)
				tx.On("Commit").Return(nil)
				tx.On("Rollback").Return(nil).Maybe()
				cache.On("Invalidate", mock.Anything, customer.ExternalID).Return(nil)
			},
		},
		{
			name:   "Failure - projected outstanding exceeds score",
			amount: decimal.NewFromInt(200),
			setupMocks: func(store *mocks.MockStore, tx *mocks.MockLedgerTx, cache *mocks.MockBalanceCache) {
				store.On("Begin", mock.Anything).Return(tx, nil)
				tx.On("LockCustomer", mock.Anything, customer.ExternalID).Return(customer, nil)
				tx.On("SumOutstanding", mock.Anything, customer.ID, []string{domain.LoanStatusPending, domain.LoanStatusActive}).
					Return(decimal.NewFromInt(900), nil)
				tx.On("Rollback").Return(nil)
			},
			expectedCode: customError.ErrCodeCreditLimitExceeded,
		},
		{
			name:   "Failure - non-positive amount",
			amount: decimal.NewFromInt(-100),
			setupMocks: func(store *mocks.MockStore, tx *mocks.MockLedgerTx, cache *mocks.MockBalanceCache) {
			},
			expectedCode: customError.ErrCodeInvalidAmount,
		},
		{
			name:   "Failure - unknown customer",
			amount: decimal.NewFromInt(100),
			setupMocks: func(store *mocks.MockStore, tx *mocks.MockLedgerTx, cache *mocks.MockBalanceCache) {
				store.On("Begin", mock.Anything).Return(tx, nil)
				tx.On("LockCustomer", mock.Anything, customer.ExternalID).Return(nil, sql.ErrNoRows)
				tx.On("Rollback").Return(nil)
			},
			expectedCode: customError.ErrCodeCustomerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := &mocks.MockStore{}
			mockTx := &mocks.MockLedgerTx{}
			mockLoanRepo := &mocks.MockLoanRepository{}
			mockCache := &mocks.MockBalanceCache{}

			tt.setupMocks(mockStore, mockTx, mockCache)

			svc := service.NewLoanService(mockStore, mockLoanRepo, mockCache)

			request := &domain.CreateLoanRequest{
				ExternalID:         "external_l01",
				CustomerExternalID: customer.ExternalID,
				Amount:             tt.amount,
			}

			loan, err := svc.Create(context.Background(), request)

			if tt.expectedCode != "" {
				assert.Error(t, err)
				var bizErr *customError.BusinessError
				assert.ErrorAs(t, err, &bizErr)
				assert.Equal(t, tt.expectedCode, bizErr.Code)
				assert.Nil(t, loan)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.LoanStatusPending, loan.Status)
				assert.True(t, loan.Outstanding.Equal(loan.Amount))
				assert.Nil(t, loan.TakenAt)
			}

			mockStore.AssertExpectations(t)
			mockTx.AssertExpectations(t)
			mockCache.AssertExpectations(t)
		})
	}
}

func TestCreateLoan_ExactlyAtCreditLimit(t *testing.T) {
	customer := &domain.Customer{
		ID:         uuid.New(),
		ExternalID: "external_c01",
		Score:      decimal.NewFromInt(1000),
	}

	mockStore := &mocks.MockStore{}
	mockTx := &mocks.MockLedgerTx{}
	mockCache := &mocks.MockBalanceCache{}

	mockStore.On("Begin", mock.Anything).Return(mockTx, nil)
	mockTx.On("LockCustomer", mock.Anything, customer.ExternalID).Return(customer, nil)
	mockTx.On("SumOutstanding", mock.Anything, customer.ID, []string{domain.LoanStatusPending, domain.LoanStatusActive}).
		Return(decimal.NewFromInt(900), nil)
	mockTx.On("InsertLoan", mock.Anything, mock.Anything).Return(nil)
	mockTx.On("Commit").Return(nil)
	mockTx.On("Rollback").Return(nil).Maybe()
	mockCache.On("Invalidate", mock.Anything, customer.ExternalID).Return(nil)

	svc := service.NewLoanService(mockStore, &mocks.MockLoanRepository{}, mockCache)

	// 900 outstanding + 100 == score: the boundary is inclusive.
	loan, err := svc.Create(context.Background(), &domain.CreateLoanRequest{
		ExternalID:         "external_l01",
		CustomerExternalID: customer.ExternalID,
		Amount:             decimal.NewFromInt(100),
	})

	assert.NoError(t, err)
	assert.NotNil(t, loan)
}

func TestActivateLoan(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		setupMocks   func(*mocks.MockLoanRepository)
		expectedCode string
	}{
		{
			name: "Success - pending loan activates and stamps taken_at",
			setupMocks: func(repo *mocks.MockLoanRepository) {
				activated := &domain.Loan{
					ExternalID:         "external_l02",
					CustomerExternalID: "external_c01",
					Status:             domain.LoanStatusActive,
					TakenAt:            &now,
				}
				repo.On("Activate", mock.Anything, "external_l02", mock.AnythingOfType("time.Time")).
					Return(activated, nil)
			},
		},
		{
			name: "Failure - loan does not exist",
			setupMocks: func(repo *mocks.MockLoanRepository) {
				repo.On("Activate", mock.Anything, "external_l02", mock.AnythingOfType("time.Time")).
					Return(nil, sql.ErrNoRows)
				repo.On("GetByExternalID", mock.Anything, "external_l02").Return(nil, sql.ErrNoRows)
			},
			expectedCode: customError.ErrCodeLoanNotFound,
		},
		{
			name: "Failure - already active loan loses the guard",
			setupMocks: func(repo *mocks.MockLoanRepository) {
				repo.On("Activate", mock.Anything, "external_l02", mock.AnythingOfType("time.Time")).
					Return(nil, sql.ErrNoRows)
				repo.On("GetByExternalID", mock.Anything, "external_l02").Return(&domain.Loan{
					ExternalID: "external_l02",
					Status:     domain.LoanStatusActive,
				}, nil)
			},
			expectedCode: customError.ErrCodeIllegalTransition,
		},
		{
			name: "Failure - paid loan cannot be activated",
			setupMocks: func(repo *mocks.MockLoanRepository) {
				repo.On("Activate", mock.Anything, "external_l02", mock.AnythingOfType("time.Time")).
					Return(nil, sql.ErrNoRows)
				repo.On("GetByExternalID", mock.Anything, "external_l02").Return(&domain.Loan{
					ExternalID: "external_l02",
					Status:     domain.LoanStatusPaid,
				}, nil)
			},
			expectedCode: customError.ErrCodeIllegalTransition,
		},
		{
			name: "Failure - guard missed while the loan still reads pending is a retryable conflict",
			setupMocks: func(repo *mocks.MockLoanRepository) {
				repo.On("Activate", mock.Anything, "external_l02", mock.AnythingOfType("time.Time")).
					Return(nil, sql.ErrNoRows)
				repo.On("GetByExternalID", mock.Anything, "external_l02").Return(&domain.Loan{
					ExternalID: "external_l02",
					Status:     domain.LoanStatusPending,
				}, nil)
			},
			expectedCode: customError.ErrCodeTransitionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLoanRepo := &mocks.MockLoanRepository{}
			tt.setupMocks(mockLoanRepo)

			svc := service.NewLoanService(&mocks.MockStore{}, mockLoanRepo, &mocks.MockBalanceCache{})

			loan, err := svc.Activate(context.Background(), "external_l02")

			if tt.expectedCode != "" {
				assert.Error(t, err)
				var bizErr *customError.BusinessError
				assert.ErrorAs(t, err, &bizErr)
				assert.Equal(t, tt.expectedCode, bizErr.Code)
				assert.Nil(t, loan)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.LoanStatusActive, loan.Status)
				assert.NotNil(t, loan.TakenAt)
			}

			mockLoanRepo.AssertExpectations(t)
		})
	}
}

func TestRejectLoan(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockCache := &mocks.MockBalanceCache{}

	rejected := &domain.Loan{
		ExternalID:         "external_l02",
		CustomerExternalID: "external_c01",
		Status:             domain.LoanStatusRejected,
	}
	mockLoanRepo.On("Reject", mock.Anything, "external_l02").Return(rejected, nil)
	// A rejected pending loan no longer counts toward total debt.
	mockCache.On("Invalidate", mock.Anything, "external_c01").Return(nil)

	svc := service.NewLoanService(&mocks.MockStore{}, mockLoanRepo, mockCache)

	loan, err := svc.Reject(context.Background(), "external_l02")

	assert.NoError(t, err)
	assert.Equal(t, domain.LoanStatusRejected, loan.Status)

	mockLoanRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRejectLoan_NotPending(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}

	mockLoanRepo.On("Reject", mock.Anything, "external_l01").Return(nil, sql.ErrNoRows)
	mockLoanRepo.On("GetByExternalID", mock.Anything, "external_l01").Return(&domain.Loan{
		ExternalID: "external_l01",
		Status:     domain.LoanStatusActive,
	}, nil)

	svc := service.NewLoanService(&mocks.MockStore{}, mockLoanRepo, &mocks.MockBalanceCache{})

	loan, err := svc.Reject(context.Background(), "external_l01")

	assert.Error(t, err)
	assert.Nil(t, loan)

	var bizErr *customError.BusinessError
	assert.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodeIllegalTransition, bizErr.Code)
}

func TestListLoansByCustomer(t *testing.T) {
	loans := []*domain.Loan{
		{ExternalID: "external_l01", Status: domain.LoanStatusActive},
		{ExternalID: "external_l02", Status: domain.LoanStatusPending},
		{ExternalID: "external_l03", Status: domain.LoanStatusPaid},
	}

	mockLoanRepo := &mocks.MockLoanRepository{}
	mockLoanRepo.On("ListByCustomer", mock.Anything, "external_c01").Return(loans, nil)

	svc := service.NewLoanService(&mocks.MockStore{}, mockLoanRepo, &mocks.MockBalanceCache{})

	result, err := svc.ListByCustomer(context.Background(), "external_c01")

	assert.NoError(t, err)
	assert.Len(t, result, 3)
}
