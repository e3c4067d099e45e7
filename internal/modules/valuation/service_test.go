package valuation

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmarklabs/holdco-mtm/internal/database"
	"github.com/evmarklabs/holdco-mtm/internal/domain"
	"github.com/evmarklabs/holdco-mtm/internal/modules/companies"
	"github.com/evmarklabs/holdco-mtm/internal/modules/comps"
	"github.com/evmarklabs/holdco-mtm/internal/modules/settings"
)

type testEnv struct {
	db        *database.DB
	companies *companies.Repository
	comps     *comps.Repository
	snapshots *SnapshotRepository
	settings  *settings.Repository
	service   *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema())

	log := zerolog.Nop()
	companyRepo := companies.NewRepository(db.Conn(), log)
	compRepo := comps.NewRepository(db.Conn(), log)
	compService := comps.NewService(compRepo, companyRepo, nil, log)
	snapshotRepo := NewSnapshotRepository(db.Conn(), log)
	settingsRepo := settings.NewRepository(db.Conn(), log)

	return &testEnv{
		db:        db,
		companies: companyRepo,
		comps:     compRepo,
		snapshots: snapshotRepo,
		settings:  settingsRepo,
		service:   NewService(db.Conn(), companyRepo, compService, snapshotRepo, settingsRepo, log),
	}
}

// seedCompany inserts a company with a three-ticker comp set whose medians
// are EV/Revenue 10x, EV/EBITDA 15x and growth 20%
func (e *testEnv) seedCompany(t *testing.T, name string) int64 {
	t.Helper()

	id, err := e.companies.Insert(domain.Company{
		Name:            name,
		Sector:          "Software",
		RevenueTTM:      50e6,
		RevenueRunRate:  55e6,
		EBITDA:          12e6,
		GrowthRate:      0.30,
		NetDebt:         3e6,
		OwnershipPct:    0.20,
		PreferredAmount: 10e6,
		DilutionPct:     0.05,
	})
	require.NoError(t, err)

	seedObs := func(ticker string, evRev, evEbit, growth float64) {
		compID, err := e.comps.AddComp(id, ticker, "", "manual")
		require.NoError(t, err)
		_, err = e.comps.InsertObservation(domain.CompObservation{
			CompID:     compID,
			Ticker:     ticker,
			DatePulled: "2026-08-01",
			EVRevenue:  &evRev,
			EVEBITDA:   &evEbit,
			GrowthRate: &growth,
			Source:     "manual",
		})
		require.NoError(t, err)
	}
	seedObs(name+"-A", 8.0, 12.0, 0.15)
	seedObs(name+"-B", 10.0, 15.0, 0.25)
	seedObs(name+"-C", 12.0, 18.0, 0.20)

	return id
}

func TestService_Run_ComputesBlendedValuation(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedCompany(t, "Acme Analytics")

	result, err := env.service.Run(id, nil, false, "")
	require.NoError(t, err)

	// Methods: 50M*10 = 500M, 12M*15 = 180M,
	// growth-adjusted 50M * 10 * (1 + (0.30-0.20)*0.5) = 525M
	assert.InDelta(t, 500e6, result.EVRevenueMethod, 1e-3)
	assert.InDelta(t, 180e6, result.EVEBITDAMethod, 1e-3)
	assert.InDelta(t, 525e6, result.EVGrowthAdjustedMethod, 1e-3)

	// Blend at 40/40/20, then the bridge
	assert.InDelta(t, 377e6, result.EnterpriseValue, 1e-3)
	assert.InDelta(t, 374e6, result.EquityValue, 1e-3)
	assert.InDelta(t, 364e6, result.EquityAfterPrefs, 1e-3)
	assert.InDelta(t, 69.16e6, result.HoldCoEquityValue, 1e3)

	assert.Equal(t, 3, result.CompCount)
	assert.InDelta(t, 10.0, result.MedianEVRevenue, 1e-9)
	assert.InDelta(t, 15.0, result.MedianEVEBITDA, 1e-9)

	// No last mark yet, so the deltas are undefined
	assert.Nil(t, result.ChangeEVPct)
	assert.Nil(t, result.ChangeEquityPct)
}

func TestService_Run_CustomWeights(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedCompany(t, "Acme Analytics")

	w := domain.Weights{EVRevenue: 1, EVEBITDA: 0, GrowthAdjusted: 0}
	result, err := env.service.Run(id, &w, false, "")
	require.NoError(t, err)

	assert.InDelta(t, 500e6, result.EnterpriseValue, 1e-3)
	assert.Equal(t, w, result.Weights)
}

func TestService_Run_PersistsSnapshotAndLastMark(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedCompany(t, "Acme Analytics")

	result, err := env.service.Run(id, nil, true, "quarterly mark")
	require.NoError(t, err)

	snapshot, err := env.snapshots.GetLatest(id)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, MethodBlended, snapshot.Method)
	assert.InDelta(t, result.EnterpriseValue, snapshot.EnterpriseValue, 1e-3)
	assert.InDelta(t, result.HoldCoEquityValue, snapshot.HoldCoEquityValue, 1e-3)
	assert.Equal(t, "quarterly mark", snapshot.Notes)
	assert.Contains(t, snapshot.WeightsJSON, "0.4")

	// The last-mark cache is updated in the same transaction
	company, err := env.companies.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, company.LastMarkEV)
	assert.InDelta(t, result.EnterpriseValue, *company.LastMarkEV, 1e-3)
	require.NotNil(t, company.LastMarkEquity)
	assert.InDelta(t, result.HoldCoEquityValue, *company.LastMarkEquity, 1e-3)
	require.NotNil(t, company.LastMarkDate)

	// A second run now has a baseline: identical inputs give a zero delta
	second, err := env.service.Run(id, nil, false, "")
	require.NoError(t, err)
	require.NotNil(t, second.ChangeEVPct)
	assert.InDelta(t, 0.0, *second.ChangeEVPct, 1e-9)
	require.NotNil(t, second.ChangeEquityPct)
	assert.InDelta(t, 0.0, *second.ChangeEquityPct, 1e-9)
}

func TestService_Run_UnknownCompany(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Run(999, nil, false, "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestService_Run_NoComps(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.companies.Insert(domain.Company{Name: "No Comps Yet", RevenueTTM: 10e6})
	require.NoError(t, err)

	// Zero medians zero out every method; the pipeline still completes
	result, err := env.service.Run(id, nil, false, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.EnterpriseValue)
	assert.Equal(t, 0, result.CompCount)
}

func TestService_RunAll_IsolatesCompanies(t *testing.T) {
	env := newTestEnv(t)
	env.seedCompany(t, "Acme Analytics")
	_, err := env.companies.Insert(domain.Company{Name: "Bare Holdings"})
	require.NoError(t, err)

	items, err := env.service.RunAll(nil, false)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// GetAll orders by name, so Acme comes first
	require.NotNil(t, items[0].Result)
	assert.Equal(t, "Acme Analytics", items[0].CompanyName)
	assert.InDelta(t, 377e6, items[0].Result.EnterpriseValue, 1e-3)

	require.NotNil(t, items[1].Result)
	assert.Equal(t, "Bare Holdings", items[1].CompanyName)
	assert.Equal(t, 0.0, items[1].Result.EnterpriseValue)
}

func TestService_History(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedCompany(t, "Acme Analytics")

	_, err := env.service.Run(id, nil, true, "first")
	require.NoError(t, err)
	_, err = env.service.Run(id, nil, true, "second")
	require.NoError(t, err)

	history, err := env.service.History(id, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Notes)
	assert.Equal(t, "first", history[1].Notes)
}
