package holdco

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmarklabs/holdco-mtm/internal/database"
	"github.com/evmarklabs/holdco-mtm/internal/domain"
	"github.com/evmarklabs/holdco-mtm/internal/modules/companies"
	"github.com/evmarklabs/holdco-mtm/internal/modules/settings"
	"github.com/evmarklabs/holdco-mtm/internal/modules/valuation"
)

type testEnv struct {
	db         *database.DB
	companies  *companies.Repository
	valuations *valuation.SnapshotRepository
	snapshots  *SnapshotRepository
	settings   *settings.Repository
	service    *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema())

	log := zerolog.Nop()
	companyRepo := companies.NewRepository(db.Conn(), log)
	valuationRepo := valuation.NewSnapshotRepository(db.Conn(), log)
	snapshotRepo := NewSnapshotRepository(db.Conn(), log)
	settingsRepo := settings.NewRepository(db.Conn(), log)

	return &testEnv{
		db:         db,
		companies:  companyRepo,
		valuations: valuationRepo,
		snapshots:  snapshotRepo,
		settings:   settingsRepo,
		service:    NewService(companyRepo, valuationRepo, snapshotRepo, settingsRepo, log),
	}
}

// seedValuedCompany inserts a company with one persisted blended valuation
func (e *testEnv) seedValuedCompany(t *testing.T, name, sector string, ev, holdcoEquity float64) int64 {
	t.Helper()

	id, err := e.companies.Insert(domain.Company{Name: name, Sector: sector})
	require.NoError(t, err)

	tx, err := e.db.Begin()
	require.NoError(t, err)
	_, err = e.valuations.InsertTx(tx, valuation.Snapshot{
		CompanyID:         id,
		SnapshotDate:      "2026-08-15",
		Method:            valuation.MethodBlended,
		EnterpriseValue:   ev,
		HoldCoEquityValue: holdcoEquity,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return id
}

func TestService_CalculateNAV(t *testing.T) {
	env := newTestEnv(t)
	env.seedValuedCompany(t, "Acme Analytics", "Software", 377e6, 60e6)
	env.seedValuedCompany(t, "Beta Logistics", "Industrials", 120e6, 40e6)

	cash, debt, shares := 5e6, 2e6, 10e6
	result, err := env.service.CalculateNAV(&cash, &debt, &shares, false)
	require.NoError(t, err)

	assert.InDelta(t, 100e6, result.TotalEquityValue, 1e-3)
	assert.InDelta(t, 103e6, result.NAV, 1e-3)
	assert.InDelta(t, 10.3, result.NAVPerShare, 1e-9)
	assert.Nil(t, result.ChangeVsPriorPct)
	require.Len(t, result.Contributions, 2)
	assert.InDelta(t, 60e6, result.Contributions[0].HoldCoEquityValue, 1e-3)
}

func TestService_CalculateNAV_ChangeVsPrior(t *testing.T) {
	env := newTestEnv(t)
	env.seedValuedCompany(t, "Acme Analytics", "Software", 377e6, 100e6)

	cash, debt, shares := 3e6, 0.0, 1e6
	first, err := env.service.CalculateNAV(&cash, &debt, &shares, true)
	require.NoError(t, err)
	assert.Nil(t, first.ChangeVsPriorPct)
	assert.InDelta(t, 103e6, first.NAV, 1e-3)

	// More cash on the second calculation moves NAV up against the
	// persisted baseline
	cash = 13.3e6
	second, err := env.service.CalculateNAV(&cash, &debt, &shares, false)
	require.NoError(t, err)
	require.NotNil(t, second.ChangeVsPriorPct)
	assert.InDelta(t, 0.10, *second.ChangeVsPriorPct, 1e-9)
}

func TestService_CalculateNAV_UnvaluedCompanyContributesZero(t *testing.T) {
	env := newTestEnv(t)
	env.seedValuedCompany(t, "Acme Analytics", "Software", 377e6, 60e6)
	_, err := env.companies.Insert(domain.Company{Name: "Fresh Deal"})
	require.NoError(t, err)

	zero := 0.0
	one := 1.0
	result, err := env.service.CalculateNAV(&zero, &zero, &one, false)
	require.NoError(t, err)
	assert.InDelta(t, 60e6, result.TotalEquityValue, 1e-3)
	require.Len(t, result.Contributions, 2)
}

func TestService_CalculateNAV_SettingsFallback(t *testing.T) {
	env := newTestEnv(t)
	env.seedValuedCompany(t, "Acme Analytics", "Software", 377e6, 80e6)

	require.NoError(t, env.settings.SetFloat(settings.KeyHoldCoCash, 20e6))
	require.NoError(t, env.settings.SetFloat(settings.KeyHoldCoDebt, 10e6))
	require.NoError(t, env.settings.SetFloat(settings.KeySharesOutstanding, 9e6))

	result, err := env.service.CalculateNAV(nil, nil, nil, false)
	require.NoError(t, err)
	assert.InDelta(t, 90e6, result.NAV, 1e-3)
	assert.InDelta(t, 10.0, result.NAVPerShare, 1e-9)
	assert.InDelta(t, 9e6, result.SharesOutstanding, 1e-3)
}

func TestService_Summary(t *testing.T) {
	env := newTestEnv(t)
	env.seedValuedCompany(t, "Acme Analytics", "Software", 377e6, 75e6)
	env.seedValuedCompany(t, "Beta Logistics", "", 120e6, 25e6)

	summary, err := env.service.Summary()
	require.NoError(t, err)

	assert.Equal(t, 2, summary.CompanyCount)
	assert.InDelta(t, 100e6, summary.TotalEquity, 1e-3)

	// Empty sector is reported under Other
	assert.InDelta(t, 75e6, summary.SectorBreakdown["Software"], 1e-3)
	assert.InDelta(t, 25e6, summary.SectorBreakdown["Other"], 1e-3)

	require.Len(t, summary.Companies, 2)
	assert.InDelta(t, 0.75, summary.Companies[0].WeightPct, 1e-9)
	assert.InDelta(t, 0.25, summary.Companies[1].WeightPct, 1e-9)
	require.NotNil(t, summary.Companies[0].EnterpriseValue)
	assert.InDelta(t, 377e6, *summary.Companies[0].EnterpriseValue, 1e-3)

	// No NAV snapshot persisted yet
	assert.Nil(t, summary.NAV)
}

func TestService_Concentration(t *testing.T) {
	env := newTestEnv(t)
	env.seedValuedCompany(t, "Alpha", "Software", 100e6, 20e6)
	env.seedValuedCompany(t, "Bravo", "Software", 300e6, 50e6)
	env.seedValuedCompany(t, "Charlie", "Services", 200e6, 30e6)

	entries, err := env.service.Concentration()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Descending by weight
	assert.Equal(t, "Bravo", entries[0].CompanyName)
	assert.Equal(t, "Charlie", entries[1].CompanyName)
	assert.Equal(t, "Alpha", entries[2].CompanyName)

	total := 0.0
	for _, entry := range entries {
		total += entry.WeightPct
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 0.5, entries[0].WeightPct, 1e-9)
}

func TestService_TimeSeries(t *testing.T) {
	env := newTestEnv(t)
	for i, date := range []string{"2026-06-30", "2026-07-31", "2026-08-31"} {
		_, err := env.snapshots.Insert(Snapshot{
			SnapshotDate: date,
			NAV:          float64(i+1) * 100e6,
		})
		require.NoError(t, err)
	}

	series, err := env.service.TimeSeries(2)
	require.NoError(t, err)
	require.Len(t, series, 2)

	// Latest two snapshots, oldest first
	assert.Equal(t, "2026-07-31", series[0].SnapshotDate)
	assert.Equal(t, "2026-08-31", series[1].SnapshotDate)
	assert.Less(t, series[0].NAV, series[1].NAV)
}
