package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

func TestBlendedEnterpriseValue_AllMethodsUsable(t *testing.T) {
	// 0.4*500M + 0.4*160M + 0.2*525M = 369M
	got := BlendedEnterpriseValue(500e6, 160e6, 525e6, domain.DefaultWeights())
	assert.InDelta(t, 369e6, got, 1e-3)
}

func TestBlendedEnterpriseValue_RedistributesEBITDAWeight(t *testing.T) {
	// EBITDA method produced nothing, so its 0.4 flows to the other two
	// in proportion 0.4:0.2. Effective weights: rev 2/3, growth 1/3.
	got := BlendedEnterpriseValue(500e6, 0, 525e6, domain.DefaultWeights())
	want := 500e6*(2.0/3.0) + 525e6*(1.0/3.0)
	assert.InDelta(t, want, got, 1e-3)

	// Redistribution conserves total weight mass: the blend stays inside
	// the range of the surviving estimates.
	assert.GreaterOrEqual(t, got, 500e6)
	assert.LessOrEqual(t, got, 525e6)
}

func TestBlendedEnterpriseValue_AllWeightOnEBITDA(t *testing.T) {
	w := domain.Weights{EVRevenue: 0, EVEBITDA: 1, GrowthAdjusted: 0}

	// Usable EBITDA value passes straight through
	assert.InDelta(t, 180e6, BlendedEnterpriseValue(500e6, 180e6, 525e6, w), 1e-3)

	// Unusable EBITDA with nothing remaining falls back to revenue
	assert.InDelta(t, 500e6, BlendedEnterpriseValue(500e6, 0, 525e6, w), 1e-3)
}

func TestBlendedEnterpriseValue_ZeroEBITDAWeightNeedsNoRedistribution(t *testing.T) {
	w := domain.Weights{EVRevenue: 0.5, EVEBITDA: 0, GrowthAdjusted: 0.5}
	got := BlendedEnterpriseValue(500e6, 0, 525e6, w)
	assert.InDelta(t, 512.5e6, got, 1e-3)
}
