package valuation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

func TestService_Sensitivity(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedCompany(t, "Acme Analytics")

	result, err := env.service.Sensitivity(id, nil, nil)
	require.NoError(t, err)

	// Comp multiples {8,10,12} and {12,15,18} have sample std devs 2 and 3,
	// so one std dev shifts the medians to 12/18 up and 8/12 down
	assert.InDelta(t, 12.0, result.Upside.AdjEVRevenueMultiple, 1e-9)
	assert.InDelta(t, 18.0, result.Upside.AdjEVEBITDAMultiple, 1e-9)
	assert.InDelta(t, 8.0, result.Downside.AdjEVRevenueMultiple, 1e-9)
	assert.InDelta(t, 12.0, result.Downside.AdjEVEBITDAMultiple, 1e-9)

	assert.InDelta(t, 377e6, result.Base.EnterpriseValue, 1e-3)
	assert.InDelta(t, 452.4e6, result.Upside.EnterpriseValue, 1e3)
	assert.InDelta(t, 301.6e6, result.Downside.EnterpriseValue, 1e3)

	assert.GreaterOrEqual(t, result.Upside.EnterpriseValue, result.Base.EnterpriseValue)
	assert.GreaterOrEqual(t, result.Base.EnterpriseValue, result.Downside.EnterpriseValue)

	assert.InDelta(t, result.Upside.EnterpriseValue-result.Downside.EnterpriseValue, result.EVRange, 1e-3)
	assert.InDelta(t, result.EVRange/result.Base.EnterpriseValue, result.PctRange, 1e-9)
}

func TestService_Sensitivity_WiderBand(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedCompany(t, "Acme Analytics")

	one, err := env.service.Sensitivity(id, fptr(1.0), nil)
	require.NoError(t, err)
	two, err := env.service.Sensitivity(id, fptr(2.0), nil)
	require.NoError(t, err)

	assert.Greater(t, two.EVRange, one.EVRange)
	assert.InDelta(t, one.Base.EnterpriseValue, two.Base.EnterpriseValue, 1e-3)
}

func TestService_Sensitivity_SingleComp(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.companies.Insert(domain.Company{
		Name:       "Single Comp Co",
		RevenueTTM: 20e6,
		EBITDA:     5e6,
	})
	require.NoError(t, err)

	compID, err := env.comps.AddComp(id, "ONLY", "", "manual")
	require.NoError(t, err)
	_, err = env.comps.InsertObservation(domain.CompObservation{
		CompID:     compID,
		Ticker:     "ONLY",
		DatePulled: "2026-08-01",
		EVRevenue:  fptr(9.0),
		EVEBITDA:   fptr(14.0),
		Source:     "manual",
	})
	require.NoError(t, err)

	// One observation means zero spread, so all scenarios coincide
	result, err := env.service.Sensitivity(id, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.EVRange)
	assert.Equal(t, 0.0, result.PctRange)
	assert.InDelta(t, result.Base.EnterpriseValue, result.Upside.EnterpriseValue, 1e-3)
}

func TestService_Sensitivity_DownsideFloorRedistributesWeight(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.companies.Insert(domain.Company{
		Name:       "Wide Spread Co",
		RevenueTTM: 50e6,
		EBITDA:     12e6,
		GrowthRate: 0.30,
	})
	require.NoError(t, err)

	// EV/EBITDA spread {2,5,80} is far wider than its median, so the
	// downside leg floors the adjusted multiple at zero. EV/Revenue and
	// growth are held flat to isolate the redistribution.
	seedObs := func(ticker string, evEbit float64) {
		compID, err := env.comps.AddComp(id, ticker, "", "manual")
		require.NoError(t, err)
		_, err = env.comps.InsertObservation(domain.CompObservation{
			CompID:     compID,
			Ticker:     ticker,
			DatePulled: "2026-08-01",
			EVRevenue:  fptr(10.0),
			EVEBITDA:   fptr(evEbit),
			GrowthRate: fptr(0.30),
			Source:     "manual",
		})
		require.NoError(t, err)
	}
	seedObs("WIDE-A", 2.0)
	seedObs("WIDE-B", 5.0)
	seedObs("WIDE-C", 80.0)

	result, err := env.service.Sensitivity(id, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Downside.AdjEVEBITDAMultiple)

	// Base: 0.4*500M + 0.4*60M + 0.2*500M = 324M. On the downside the
	// EBITDA method drops out and its weight flows to the two 500M
	// estimates, so the downside leg lands above the base.
	assert.InDelta(t, 324e6, result.Base.EnterpriseValue, 1e-3)
	assert.InDelta(t, 500e6, result.Downside.EnterpriseValue, 1e-3)
	assert.Greater(t, result.Downside.EnterpriseValue, result.Base.EnterpriseValue)
	assert.GreaterOrEqual(t, result.Upside.EnterpriseValue, result.Base.EnterpriseValue)
}

func TestService_Sensitivity_UnknownCompany(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Sensitivity(42, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func fptr(v float64) *float64 { return &v }
