package seeder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/simaogato/savespendshare-backend/internal/usecase/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHousehold is a mock implementation of Household for testing
type MockHousehold struct {
	mock.Mock
}

func (m *MockHousehold) Snapshot() *domain.AppState {
	args := m.Called()
	return args.Get(0).(*domain.AppState)
}

func (m *MockHousehold) Setup(ctx context.Context, kids []ledger.NewChild) (*ledger.Result, error) {
	args := m.Called(ctx, kids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Result), args.Error(1)
}

func TestSeed_EmptyHousehold(t *testing.T) {
	ctx := context.Background()
	kids := []ledger.NewChild{{Name: "Alice", Birthday: domain.NewDate(2014, time.January, 1)}}
	household := new(MockHousehold)
	household.On("Snapshot").Return(domain.NewAppState())
	household.On("Setup", ctx, kids).Return(&ledger.Result{Event: ledger.EventSetupCompleted}, nil)

	seeded, err := NewHouseholdSeeder(household, kids).Seed(ctx)

	require.NoError(t, err)
	assert.True(t, seeded)
	household.AssertExpectations(t)
}

func TestSeed_ExistingHouseholdIsLeftAlone(t *testing.T) {
	ctx := context.Background()
	state := domain.NewAppState()
	state.Kids = []domain.Child{{ID: uuid.New(), Name: "Bob"}}
	household := new(MockHousehold)
	household.On("Snapshot").Return(state)

	seeded, err := NewHouseholdSeeder(household, []ledger.NewChild{{Name: "Alice"}}).Seed(ctx)

	require.NoError(t, err)
	assert.False(t, seeded)
	household.AssertNotCalled(t, "Setup", mock.Anything, mock.Anything)
}

func TestSeed_NothingConfigured(t *testing.T) {
	household := new(MockHousehold)

	seeded, err := NewHouseholdSeeder(household, nil).Seed(context.Background())

	require.NoError(t, err)
	assert.False(t, seeded)
	household.AssertNotCalled(t, "Snapshot")
}

func TestSeed_SetupFails(t *testing.T) {
	ctx := context.Background()
	kids := []ledger.NewChild{{Name: "Alice"}}
	household := new(MockHousehold)
	household.On("Snapshot").Return(domain.NewAppState())
	household.On("Setup", ctx, kids).Return(nil, domain.NewValidationError("birthday", "birthday is required"))

	_, err := NewHouseholdSeeder(household, kids).Seed(ctx)

	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestParseKids(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		want    []string
		wantErr bool
	}{
		{name: "empty", list: "", want: nil},
		{name: "two kids", list: "Alice:2014-01-01, Bob : 2016-06-01", want: []string{"Alice", "Bob"}},
		{name: "trailing comma", list: "Alice:2014-01-01,", want: []string{"Alice"}},
		{name: "missing birthday", list: "Alice", wantErr: true},
		{name: "bad date", list: "Alice:01/01/2014", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kids, err := ParseKids(tt.list)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, k := range kids {
				names = append(names, k.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
