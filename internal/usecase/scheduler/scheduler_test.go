package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/simaogato/savespendshare-backend/internal/usecase/ledger"
	"github.com/simaogato/savespendshare-backend/internal/usecase/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLedger is a mock implementation of Ledger for testing
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ReconcileAges(ctx context.Context) (*ledger.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Result), args.Error(1)
}

func (m *MockLedger) MissedPeriods() *reconcile.MissedPeriodsReport {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*reconcile.MissedPeriodsReport)
}

func (m *MockLedger) AllowanceDue() bool {
	return m.Called().Bool(0)
}

func (m *MockLedger) ApplyAllowance(ctx context.Context, childIDs ...uuid.UUID) (*ledger.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Result), args.Error(1)
}

func TestCheck_AppliesDueAllowance(t *testing.T) {
	ctx := context.Background()
	l := new(MockLedger)
	l.On("ReconcileAges", ctx).Return(nil, nil)
	l.On("MissedPeriods").Return(nil)
	l.On("AllowanceDue").Return(true)
	applied := &ledger.Result{Event: ledger.EventAllowanceApplied, Transactions: make([]domain.Transaction, 2)}
	l.On("ApplyAllowance", ctx).Return(applied, nil)

	result, err := NewScheduler(l, true, zerolog.Nop()).Check(ctx)

	require.NoError(t, err)
	assert.Same(t, applied, result.Allowance)
	assert.Nil(t, result.Missed)
	l.AssertExpectations(t)
}

func TestCheck_AutoAllowanceDisabled(t *testing.T) {
	ctx := context.Background()
	l := new(MockLedger)
	l.On("ReconcileAges", ctx).Return(nil, nil)
	l.On("MissedPeriods").Return(nil)

	result, err := NewScheduler(l, false, zerolog.Nop()).Check(ctx)

	require.NoError(t, err)
	assert.Nil(t, result.Allowance)
	l.AssertNotCalled(t, "ApplyAllowance", mock.Anything)
}

func TestCheck_MissedWeeksBlockAutoAllowance(t *testing.T) {
	ctx := context.Background()
	l := new(MockLedger)
	birthdays := &ledger.Result{Event: ledger.EventAgesReconciled, Transactions: make([]domain.Transaction, 1)}
	l.On("ReconcileAges", ctx).Return(birthdays, nil)
	report := &reconcile.MissedPeriodsReport{Count: 2, Since: time.Now().AddDate(0, 0, -20)}
	l.On("MissedPeriods").Return(report)

	result, err := NewScheduler(l, true, zerolog.Nop()).Check(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Birthdays)
	assert.Same(t, report, result.Missed)
	l.AssertNotCalled(t, "AllowanceDue")
	l.AssertNotCalled(t, "ApplyAllowance", mock.Anything)
}

func TestCheck_Errors(t *testing.T) {
	ctx := context.Background()
	l := new(MockLedger)
	l.On("ReconcileAges", ctx).Return(nil, errors.New("boom"))

	_, err := NewScheduler(l, true, zerolog.Nop()).Check(ctx)

	assert.ErrorContains(t, err, "failed to reconcile ages")
}

func TestRun_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := new(MockLedger)
	l.On("ReconcileAges", mock.Anything).Return(nil, nil)
	l.On("MissedPeriods").Return(nil)
	l.On("AllowanceDue").Return(false).Run(func(mock.Arguments) { cancel() })

	done := make(chan error, 1)
	go func() { done <- NewScheduler(l, true, zerolog.Nop()).Run(ctx, time.Hour) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
