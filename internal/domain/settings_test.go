package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotationWeek_Cycle(t *testing.T) {
	assert.Equal(t, RotationWeek(2), RotationWeek(1).Next())
	assert.Equal(t, RotationWeek(3), RotationWeek(2).Next())
	assert.Equal(t, RotationWeek(1), RotationWeek(3).Next())

	assert.Equal(t, RotationWeek(3), RotationWeek(1).Prev())
	assert.Equal(t, RotationWeek(1), RotationWeek(2).Prev())
	assert.Equal(t, RotationWeek(2), RotationWeek(3).Prev())
}

func TestRotationWeek_Advance(t *testing.T) {
	tests := []struct {
		start RotationWeek
		n     int
		want  RotationWeek
	}{
		{1, 0, 1},
		{1, 4, 2},
		{3, 2, 2},
		{2, -1, 1},
		{1, -4, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.start.Advance(tt.n), "start=%d n=%d", tt.start, tt.n)
	}
}

func TestRotationWeek_NextThenPrevIsIdentity(t *testing.T) {
	for r := RotationFirst; r <= RotationLast; r++ {
		assert.Equal(t, r, r.Next().Prev())
	}
}

func TestSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())

	s.RotationWeek = 4
	assert.Error(t, s.Validate())

	s.RotationWeek = 0
	assert.Error(t, s.Validate())
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)

	d, err = ParseWeekday(" Friday ")
	require.NoError(t, err)
	assert.Equal(t, time.Friday, d)

	_, err = ParseWeekday("funday")
	assert.Error(t, err)
}
