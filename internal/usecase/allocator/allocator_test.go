package allocator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simaogato/savespendshare-backend/internal/domain"
)

func TestDistribute_RotationScenario(t *testing.T) {
	// Ten dollars: base 3 each, one remainder unit that follows the rotation
	assert.Equal(t, Split{Save: 4, Spend: 3, Share: 3}, Distribute(10, 1))
	assert.Equal(t, Split{Save: 3, Spend: 4, Share: 3}, Distribute(10, 2))
	assert.Equal(t, Split{Save: 3, Spend: 3, Share: 4}, Distribute(10, 3))
}

func TestDistribute_TwoRemainderUnitsWrap(t *testing.T) {
	// 8 = 2*3 + 2
	assert.Equal(t, Split{Save: 3, Spend: 3, Share: 2}, Distribute(8, 1))
	assert.Equal(t, Split{Save: 2, Spend: 3, Share: 3}, Distribute(8, 2))
	assert.Equal(t, Split{Save: 3, Spend: 2, Share: 3}, Distribute(8, 3))
}

func TestDistribute_EvenAmountIgnoresRotation(t *testing.T) {
	for r := domain.RotationFirst; r <= domain.RotationLast; r++ {
		assert.Equal(t, Split{Save: 4, Spend: 4, Share: 4}, Distribute(12, r))
	}
}

func TestDistribute_Zero(t *testing.T) {
	assert.Equal(t, Split{}, Distribute(0, 2))
}

func TestDistribute_Conservation(t *testing.T) {
	for amount := 0; amount <= 300; amount++ {
		for r := domain.RotationFirst; r <= domain.RotationLast; r++ {
			split := Distribute(amount, r)
			assert.Equal(t, amount, split.Save+split.Spend+split.Share, "amount=%d rotation=%d", amount, r)

			// No bucket is ever more than one unit ahead of another
			low, high := split.Save, split.Save
			for _, v := range []int{split.Spend, split.Share} {
				low, high = min(low, v), max(high, v)
			}
			assert.LessOrEqual(t, high-low, 1)
		}
	}
}

func TestDistribute_FairOverThreeWeeks(t *testing.T) {
	// Over a full rotation every bucket receives the same total
	var total Split
	rotation := domain.RotationFirst
	for week := 0; week < 3; week++ {
		s := Distribute(7, rotation)
		total.Save += s.Save
		total.Spend += s.Spend
		total.Share += s.Share
		rotation = rotation.Next()
	}
	assert.Equal(t, Split{Save: 7, Spend: 7, Share: 7}, total)
}

func TestDistribute_NegativePanics(t *testing.T) {
	assert.Panics(t, func() { Distribute(-1, 1) })
}

func TestSplit_ApplyToAndReverse(t *testing.T) {
	balances := domain.Balances{
		Save:  decimal.RequireFromString("1.50"),
		Spend: decimal.Zero,
		Share: decimal.NewFromInt(2),
	}
	before := balances

	split := Distribute(10, 2)
	split.ApplyTo(&balances, 1)
	assert.True(t, balances.Save.Equal(decimal.RequireFromString("4.50")))
	assert.True(t, balances.Spend.Equal(decimal.NewFromInt(4)))
	assert.True(t, balances.Share.Equal(decimal.NewFromInt(5)))

	split.ApplyTo(&balances, -1)
	assert.True(t, balances.Save.Equal(before.Save))
	assert.True(t, balances.Spend.Equal(before.Spend))
	assert.True(t, balances.Share.Equal(before.Share))
}
