package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bucket is one of the three categories a child's money is partitioned into.
// BucketAll is only valid on transactions that touch every bucket at once.
type Bucket string

const (
	BucketSave  Bucket = "save"
	BucketSpend Bucket = "spend"
	BucketShare Bucket = "share"
	BucketAll   Bucket = "all"
)

// Buckets is the fixed distribution order used by the rotation schedule.
var Buckets = [3]Bucket{BucketSave, BucketSpend, BucketShare}

// ParseBucket validates a bucket name coming from a caller.
// BucketAll is rejected: it never addresses a single balance.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case BucketSave, BucketSpend, BucketShare:
		return Bucket(s), nil
	default:
		return "", NewValidationError("bucket", fmt.Sprintf("unknown bucket %q", s))
	}
}

// Valid reports whether the bucket addresses a single balance.
func (b Bucket) Valid() bool {
	return b == BucketSave || b == BucketSpend || b == BucketShare
}

// Balances is the fixed-shape record of a child's three bucket balances.
// Each balance must stay >= 0.
type Balances struct {
	Save  decimal.Decimal
	Spend decimal.Decimal
	Share decimal.Decimal
}

// Get returns the balance held in bucket b.
func (b Balances) Get(bucket Bucket) decimal.Decimal {
	switch bucket {
	case BucketSave:
		return b.Save
	case BucketSpend:
		return b.Spend
	case BucketShare:
		return b.Share
	default:
		return decimal.Zero
	}
}

// Add adds delta (which may be negative) to bucket b.
func (b *Balances) Add(bucket Bucket, delta decimal.Decimal) {
	switch bucket {
	case BucketSave:
		b.Save = b.Save.Add(delta)
	case BucketSpend:
		b.Spend = b.Spend.Add(delta)
	case BucketShare:
		b.Share = b.Share.Add(delta)
	}
}

// Total returns the sum across all buckets.
func (b Balances) Total() decimal.Decimal {
	return b.Save.Add(b.Spend).Add(b.Share)
}

// Validate ensures no bucket is negative
func (b Balances) Validate() error {
	for _, bucket := range Buckets {
		if b.Get(bucket).IsNegative() {
			return NewValidationError("balances", fmt.Sprintf("%s balance cannot be negative", bucket))
		}
	}
	return nil
}

// RoundAmount rounds user supplied money to cents, half away from zero.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
