package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevenueMultipleEV(t *testing.T) {
	assert.Equal(t, 500e6, RevenueMultipleEV(50e6, 10.0))
	assert.Equal(t, 0.0, RevenueMultipleEV(0, 10.0))
	assert.Equal(t, 0.0, RevenueMultipleEV(-5e6, 10.0))
	assert.Equal(t, 0.0, RevenueMultipleEV(50e6, 0))
}

func TestEBITDAMultipleEV(t *testing.T) {
	assert.Equal(t, 180e6, EBITDAMultipleEV(12e6, 15.0))
	assert.Equal(t, 0.0, EBITDAMultipleEV(0, 15.0))
	assert.Equal(t, 0.0, EBITDAMultipleEV(-3e6, 15.0))
	assert.Equal(t, 0.0, EBITDAMultipleEV(12e6, -1.0))
}

func TestGrowthAdjustedEV(t *testing.T) {
	tests := []struct {
		name            string
		revenueTTM      float64
		medianMultiple  float64
		companyGrowth   float64
		compGrowth      float64
		factor          float64
		want            float64
	}{
		{
			name:           "faster growth earns premium",
			revenueTTM:     50e6,
			medianMultiple: 10.0,
			companyGrowth:  0.30,
			compGrowth:     0.20,
			factor:         0.5,
			want:           525e6, // 50M * 10 * (1 + 0.05)
		},
		{
			name:           "slower growth takes discount",
			revenueTTM:     50e6,
			medianMultiple: 10.0,
			companyGrowth:  0.10,
			compGrowth:     0.20,
			factor:         0.5,
			want:           475e6, // 50M * 10 * (1 - 0.05)
		},
		{
			name:           "matching growth is the plain revenue multiple",
			revenueTTM:     50e6,
			medianMultiple: 10.0,
			companyGrowth:  0.20,
			compGrowth:     0.20,
			factor:         0.5,
			want:           500e6,
		},
		{
			name:           "adjusted multiple floors at zero",
			revenueTTM:     50e6,
			medianMultiple: 10.0,
			companyGrowth:  -3.0,
			compGrowth:     0.0,
			factor:         1.0,
			want:           0,
		},
		{
			name:           "non-positive revenue returns zero",
			revenueTTM:     0,
			medianMultiple: 10.0,
			companyGrowth:  0.30,
			compGrowth:     0.20,
			factor:         0.5,
			want:           0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthAdjustedEV(tt.revenueTTM, tt.medianMultiple, tt.companyGrowth, tt.compGrowth, tt.factor)
			assert.InDelta(t, tt.want, got, 1e-3)
		})
	}
}
