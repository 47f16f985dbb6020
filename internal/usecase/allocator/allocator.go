package allocator

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
)

// Split is the number of whole allowance units each bucket receives.
type Split struct {
	Save  int
	Spend int
	Share int
}

// Amount returns the units assigned to bucket b.
func (s Split) Amount(b domain.Bucket) int {
	switch b {
	case domain.BucketSave:
		return s.Save
	case domain.BucketSpend:
		return s.Spend
	case domain.BucketShare:
		return s.Share
	default:
		return 0
	}
}

// Total returns the sum of all buckets.
func (s Split) Total() int {
	return s.Save + s.Spend + s.Share
}

// ApplyTo adds the split to balances. With sign -1 it removes it again.
func (s Split) ApplyTo(balances *domain.Balances, sign int) {
	for _, b := range domain.Buckets {
		balances.Add(b, decimal.NewFromInt(int64(sign*s.Amount(b))))
	}
}

// Distribute splits a whole allowance amount across Save, Spend and Share.
// Logic:
//  1. Every bucket gets floor(amount / 3)
//  2. The remainder (0, 1 or 2 units) goes one unit at a time to the buckets
//     starting at index rotation-1 of [save, spend, share], wrapping around
//
// Distribute is pure: undo and previews recompute it from (amount, rotation).
// Safety: the split always sums to amount exactly (no penny lost).
func Distribute(amount int, rotation domain.RotationWeek) Split {
	if amount < 0 {
		panic(fmt.Sprintf("allocator: negative allowance amount %d", amount))
	}

	base := amount / 3
	units := [3]int{base, base, base}

	start := rotation.Index()
	for i := 0; i < amount%3; i++ {
		units[(start+i)%3]++
	}

	split := Split{Save: units[0], Spend: units[1], Share: units[2]}
	if split.Total() != amount {
		panic("allocator: split does not equal allowance amount")
	}
	return split
}
