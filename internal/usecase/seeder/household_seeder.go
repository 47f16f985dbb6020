package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/simaogato/savespendshare-backend/internal/usecase/ledger"
)

// Household is the part of the ledger the seeder drives
type Household interface {
	Snapshot() *domain.AppState
	Setup(ctx context.Context, kids []ledger.NewChild) (*ledger.Result, error)
}

// HouseholdSeeder sets up a household from configuration on first start,
// so unattended deployments do not need an interactive setup step
type HouseholdSeeder struct {
	ledger Household
	kids   []ledger.NewChild
}

// NewHouseholdSeeder creates a new HouseholdSeeder instance
func NewHouseholdSeeder(l Household, kids []ledger.NewChild) *HouseholdSeeder {
	return &HouseholdSeeder{
		ledger: l,
		kids:   kids,
	}
}

// Seed runs household setup when no child exists yet.
// Returns false when nothing was seeded.
func (s *HouseholdSeeder) Seed(ctx context.Context) (bool, error) {
	if len(s.kids) == 0 || len(s.ledger.Snapshot().Kids) > 0 {
		return false, nil
	}
	if _, err := s.ledger.Setup(ctx, s.kids); err != nil {
		return false, fmt.Errorf("failed to seed household: %w", err)
	}
	return true, nil
}

// ParseKids parses "Name:YYYY-MM-DD" entries separated by commas.
func ParseKids(list string) ([]ledger.NewChild, error) {
	var kids []ledger.NewChild
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, birthday, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid seed entry %q: want Name:YYYY-MM-DD", entry)
		}
		date, err := domain.ParseDate(strings.TrimSpace(birthday))
		if err != nil {
			return nil, fmt.Errorf("invalid birthday in seed entry %q: %w", entry, err)
		}
		kids = append(kids, ledger.NewChild{Name: strings.TrimSpace(name), Birthday: date})
	}
	return kids, nil
}
