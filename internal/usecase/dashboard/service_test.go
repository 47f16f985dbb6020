package dashboard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStateReader is a mock implementation of StateReader for testing
type MockStateReader struct {
	mock.Mock
}

func (m *MockStateReader) Snapshot() *domain.AppState {
	args := m.Called()
	return args.Get(0).(*domain.AppState)
}

func (m *MockStateReader) NextAllowanceDate() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func (m *MockStateReader) CanUndoLastAllowance() bool {
	args := m.Called()
	return args.Bool(0)
}

func TestGetSummary(t *testing.T) {
	now := time.Date(2024, time.January, 22, 10, 0, 0, 0, time.UTC)
	last := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	next := time.Date(2024, time.January, 28, 0, 0, 0, 0, time.UTC)

	state := domain.NewAppState()
	state.Settings.LastAllowanceAt = &last
	state.Kids = []domain.Child{
		{
			ID:       uuid.New(),
			Name:     "Alice",
			Birthday: domain.NewDate(2014, time.January, 1),
			Balances: domain.Balances{Save: decimal.NewFromInt(15), Spend: decimal.NewFromInt(4), Share: decimal.NewFromInt(1)},
			Goal:     &domain.Goal{Name: "Bike", Target: decimal.NewFromInt(60)},
		},
		{
			ID:       uuid.New(),
			Name:     "Bob",
			Birthday: domain.NewDate(2016, time.June, 1),
			Balances: domain.Balances{Save: decimal.NewFromInt(9), Spend: decimal.Zero, Share: decimal.Zero},
			Goal:     &domain.Goal{Name: "Kite", Target: decimal.NewFromInt(8)},
		},
	}

	reader := new(MockStateReader)
	reader.On("Snapshot").Return(state)
	reader.On("NextAllowanceDate").Return(next)
	reader.On("CanUndoLastAllowance").Return(false)

	service := NewDashboardService(reader)
	service.Now = func() time.Time { return now }

	summary := service.GetSummary()

	require.Len(t, summary.Kids, 2)
	alice, bob := summary.Kids[0], summary.Kids[1]
	assert.Equal(t, 10, alice.Age)
	assert.Equal(t, 10, alice.WeeklyAllowance)
	assert.True(t, alice.Total.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, alice.Goal)
	assert.Equal(t, 25, alice.Goal.Percent)
	assert.True(t, alice.Goal.Remaining.Equal(decimal.NewFromInt(45)))

	require.NotNil(t, bob.Goal)
	assert.Equal(t, 100, bob.Goal.Percent)
	assert.True(t, bob.Goal.Remaining.IsZero())

	assert.True(t, summary.Total.Equal(decimal.NewFromInt(29)))
	assert.Equal(t, 2, summary.MissedWeeks)
	assert.Equal(t, next, summary.NextAllowance)
	assert.False(t, summary.UndoAvailable)
	assert.Empty(t, summary.Recent)
	reader.AssertExpectations(t)
}
