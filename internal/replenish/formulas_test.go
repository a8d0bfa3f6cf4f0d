package replenish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZScoreMedianIsZero(t *testing.T) {
	z, err := ZScore(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, z, 1e-9)
}

func TestZScoreKnownQuantiles(t *testing.T) {
	cases := []struct {
		p    float64
		want float64
	}{
		{0.90, 1.2816},
		{0.95, 1.6449},
		{0.975, 1.9600},
		{0.99, 2.3263},
		{0.05, -1.6449},
		{0.01, -2.3263},
	}
	for _, tc := range cases {
		z, err := ZScore(tc.p)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, z, 1e-3, "p=%v", tc.p)
	}
}

func TestZScoreMonotonic(t *testing.T) {
	prev, err := ZScore(0.001)
	require.NoError(t, err)
	for p := 0.002; p < 1.0; p += 0.001 {
		z, err := ZScore(p)
		require.NoError(t, err)
		require.Greater(t, z, prev, "inverse CDF must be strictly increasing at p=%v", p)
		prev = z
	}
}

func TestZScoreRejectsOutOfRange(t *testing.T) {
	for _, p := range []float64{0, 1, -0.1, 1.5} {
		_, err := ZScore(p)
		assert.Error(t, err, "p=%v", p)
	}
}

func TestLeadTimeDemandIsProduct(t *testing.T) {
	assert.Equal(t, 24.0, LeadTimeDemand(4, 6))
	assert.Equal(t, 0.0, LeadTimeDemand(0, 6))
	assert.Equal(t, 0.0, LeadTimeDemand(4, 0))
}

func TestLeadTimeSigma(t *testing.T) {
	// sqrt(6*0.5 + 16*1) = sqrt(19)
	assert.InDelta(t, 4.3589, LeadTimeSigma(4, 0.70710678, 6, 1), 1e-4)

	// Degenerate inputs collapse to zero, never negative.
	assert.Equal(t, 0.0, LeadTimeSigma(0, 0, 6, 0))
	assert.GreaterOrEqual(t, LeadTimeSigma(1e-200, 1e-200, 1e-200, 1e-200), 0.0)
}

func TestSafetyStockAndReorderPoint(t *testing.T) {
	ss := SafetyStock(1.6449, 4.3589)
	assert.InDelta(t, 7.1699, ss, 1e-3)
	assert.InDelta(t, 31.1699, ReorderPoint(24, ss), 1e-3)
}
