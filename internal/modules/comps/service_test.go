package comps

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmarklabs/holdco-mtm/internal/clients/marketdata"
	"github.com/evmarklabs/holdco-mtm/internal/database"
	"github.com/evmarklabs/holdco-mtm/internal/domain"
	"github.com/evmarklabs/holdco-mtm/internal/modules/companies"
)

type fakeSource struct {
	fundamentals map[string]*marketdata.Fundamentals
	calls        int
}

func (f *fakeSource) GetFundamentals(ticker string) (*marketdata.Fundamentals, error) {
	f.calls++
	fund, ok := f.fundamentals[ticker]
	if !ok {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}
	return fund, nil
}

func newTestService(t *testing.T, source FundamentalsSource) (*Service, *Repository, *companies.Repository) {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema())

	log := zerolog.Nop()
	companyRepo := companies.NewRepository(db.Conn(), log)
	repo := NewRepository(db.Conn(), log)
	service := NewService(repo, companyRepo, source, log)
	service.pause = 0
	return service, repo, companyRepo
}

func TestService_RefreshCompany(t *testing.T) {
	source := &fakeSource{fundamentals: map[string]*marketdata.Fundamentals{
		"SNOW": {Ticker: "SNOW", EnterpriseValue: 500e8, Revenue: 50e8, EBITDA: 10e8, RevenueGrowth: 0.25},
		"DDOG": {Ticker: "DDOG", EnterpriseValue: 300e8, Revenue: 25e8, EBITDA: -2e8, RevenueGrowth: 0.30},
	}}
	service, repo, companyRepo := newTestService(t, source)

	id, err := companyRepo.Insert(domain.Company{Name: "Acme Analytics"})
	require.NoError(t, err)
	_, err = repo.AddComp(id, "SNOW", "Snowflake", "manual")
	require.NoError(t, err)
	_, err = repo.AddComp(id, "DDOG", "Datadog", "manual")
	require.NoError(t, err)
	_, err = repo.AddComp(id, "GONE", "", "manual")
	require.NoError(t, err)

	result, err := service.RefreshCompany(id)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Refreshed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "GONE")
	assert.Equal(t, 3, source.calls)

	observations, err := repo.GetLatestObservations(id)
	require.NoError(t, err)
	require.Len(t, observations, 2)

	// Ordered by ticker: DDOG first. Negative EBITDA leaves the multiple nil.
	ddog := observations[0]
	assert.Equal(t, "DDOG", ddog.Ticker)
	assert.Nil(t, ddog.EVEBITDA)
	require.NotNil(t, ddog.EVRevenue)
	assert.InDelta(t, 12.0, *ddog.EVRevenue, 1e-9)
	assert.Equal(t, "marketdata", ddog.Source)

	snow := observations[1]
	require.NotNil(t, snow.EVRevenue)
	assert.InDelta(t, 10.0, *snow.EVRevenue, 1e-9)
	require.NotNil(t, snow.EVEBITDA)
	assert.InDelta(t, 50.0, *snow.EVEBITDA, 1e-9)
	require.NotNil(t, snow.GrowthRate)
	assert.InDelta(t, 0.25, *snow.GrowthRate, 1e-9)
}

func TestService_RefreshCompany_NoSource(t *testing.T) {
	service, _, companyRepo := newTestService(t, nil)
	id, err := companyRepo.Insert(domain.Company{Name: "Acme Analytics"})
	require.NoError(t, err)

	_, err = service.RefreshCompany(id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no market data source configured")
}

func TestService_RefreshAll_NoSourceSurfacesConfigError(t *testing.T) {
	service, repo, companyRepo := newTestService(t, nil)
	id, err := companyRepo.Insert(domain.Company{Name: "Acme Analytics"})
	require.NoError(t, err)
	_, err = repo.AddComp(id, "SNOW", "Snowflake", "manual")
	require.NoError(t, err)

	// Without a configured source the sweep must report the missing
	// configuration, not silently log zero refreshes or per-ticker
	// connection failures.
	results, err := service.RefreshAll()
	require.NoError(t, err)

	result := results[id]
	assert.Equal(t, 0, result.Refreshed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no market data source configured")
}

func TestService_AddManualObservation(t *testing.T) {
	service, repo, companyRepo := newTestService(t, nil)
	id, err := companyRepo.Insert(domain.Company{Name: "Acme Analytics"})
	require.NoError(t, err)
	compID, err := repo.AddComp(id, "SNOW", "", "manual")
	require.NoError(t, err)

	_, err = service.AddManualObservation(domain.CompObservation{
		CompID:          compID,
		Ticker:          "SNOW",
		EnterpriseValue: 400e6,
		Revenue:         40e6,
		EBITDA:          8e6,
		Source:          "marketdata", // overridden
	})
	require.NoError(t, err)

	observations, err := repo.GetLatestObservations(id)
	require.NoError(t, err)
	require.Len(t, observations, 1)

	o := observations[0]
	assert.Equal(t, "manual", o.Source)
	assert.NotEmpty(t, o.DatePulled)
	require.NotNil(t, o.EVRevenue)
	assert.InDelta(t, 10.0, *o.EVRevenue, 1e-9)
	require.NotNil(t, o.EVEBITDA)
	assert.InDelta(t, 50.0, *o.EVEBITDA, 1e-9)
}

func TestService_Summary_UsesLatestObservationPerTicker(t *testing.T) {
	service, repo, companyRepo := newTestService(t, nil)
	id, err := companyRepo.Insert(domain.Company{Name: "Acme Analytics"})
	require.NoError(t, err)
	compID, err := repo.AddComp(id, "SNOW", "", "manual")
	require.NoError(t, err)

	stale, fresh := 8.0, 11.0
	_, err = repo.InsertObservation(domain.CompObservation{
		CompID: compID, Ticker: "SNOW", DatePulled: "2026-07-01", EVRevenue: &stale, Source: "manual",
	})
	require.NoError(t, err)
	_, err = repo.InsertObservation(domain.CompObservation{
		CompID: compID, Ticker: "SNOW", DatePulled: "2026-08-01", EVRevenue: &fresh, Source: "manual",
	})
	require.NoError(t, err)

	summary, err := service.Summary(id)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CompCount)
	assert.InDelta(t, 11.0, summary.MedianEVRevenue, 1e-9)
}
