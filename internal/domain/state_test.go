package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChild(name string) Child {
	return Child{
		ID:       uuid.New(),
		Name:     name,
		Birthday: NewDate(2015, time.March, 10),
		Balances: Balances{Save: decimal.NewFromInt(5), Spend: decimal.Zero, Share: decimal.Zero},
	}
}

func TestAppState_Prepend(t *testing.T) {
	s := NewAppState()
	first := Transaction{ID: uuid.New(), Description: "first"}
	second := Transaction{ID: uuid.New(), Description: "second"}
	third := Transaction{ID: uuid.New(), Description: "third"}

	s.Prepend(first)
	s.Prepend(third, second)

	require.Len(t, s.Transactions, 3)
	assert.Equal(t, "third", s.Transactions[0].Description)
	assert.Equal(t, "second", s.Transactions[1].Description)
	assert.Equal(t, "first", s.Transactions[2].Description)
}

func TestAppState_CloneIsDeep(t *testing.T) {
	s := NewAppState()
	child := newTestChild("Ada")
	child.Goal = &Goal{Name: "Bike", Target: decimal.NewFromInt(50)}
	s.Kids = append(s.Kids, child)
	last := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.Settings.LastAllowanceAt = &last

	clone := s.Clone()
	clone.Kids[0].Balances.Save = decimal.NewFromInt(99)
	clone.Kids[0].Goal.Name = "Car"
	*clone.Settings.LastAllowanceAt = last.Add(time.Hour)

	assert.True(t, s.Kids[0].Balances.Save.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "Bike", s.Kids[0].Goal.Name)
	assert.True(t, s.Settings.LastAllowanceAt.Equal(last))
}

func TestAppState_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *AppState)
		wantErr string
	}{
		{name: "valid state should pass", mutate: func(s *AppState) {}},
		{
			name:    "negative balance should fail",
			mutate:  func(s *AppState) { s.Kids[0].Balances.Share = decimal.NewFromInt(-1) },
			wantErr: "share balance cannot be negative",
		},
		{
			name:    "missing name should fail",
			mutate:  func(s *AppState) { s.Kids[0].Name = " " },
			wantErr: "child name cannot be empty",
		},
		{
			name:    "duplicate child should fail",
			mutate:  func(s *AppState) { s.Kids = append(s.Kids, s.Kids[0]) },
			wantErr: "duplicate child ID",
		},
		{
			name:    "bad rotation should fail",
			mutate:  func(s *AppState) { s.Settings.RotationWeek = 7 },
			wantErr: "rotation week must be 1, 2 or 3",
		},
		{
			name: "unknown transaction kind should fail",
			mutate: func(s *AppState) {
				s.Transactions = []Transaction{{ID: uuid.New(), Timestamp: time.Now(), Bucket: BucketSave, Kind: "bonus"}}
			},
			wantErr: "unknown transaction kind",
		},
		{
			name: "invalid goal should fail",
			mutate: func(s *AppState) {
				s.Kids[0].Goal = &Goal{Name: "Bike", Target: decimal.Zero}
			},
			wantErr: "goal target must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAppState()
			s.Kids = append(s.Kids, newTestChild("Ada"))
			tt.mutate(s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTransaction_IsCatchUp(t *testing.T) {
	weekly := Transaction{Kind: KindAllowance, Description: "Weekly allowance"}
	catchUp := Transaction{Kind: KindAllowance, Description: "Weekly allowance for Jan 8 - Jan 14, 2024 (catch-up)"}
	other := Transaction{Kind: KindManualAddition, Description: "gift (catch-up)"}

	assert.False(t, weekly.IsCatchUp())
	assert.True(t, catchUp.IsCatchUp())
	assert.False(t, other.IsCatchUp())
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2016, time.February, 29)
	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2016-02-29"`, string(data))

	var parsed Date
	require.NoError(t, parsed.UnmarshalJSON(data))
	assert.Equal(t, d, parsed)

	require.NoError(t, parsed.UnmarshalJSON([]byte(`"2016-02-29T15:04:05Z"`)))
	assert.Equal(t, d, parsed)

	assert.Error(t, parsed.UnmarshalJSON([]byte(`"29/02/2016"`)))
}
