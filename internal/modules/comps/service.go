package comps

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/clients/marketdata"
	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

// FundamentalsSource supplies fresh fundamentals per ticker.
// Implemented by the market data client.
type FundamentalsSource interface {
	GetFundamentals(ticker string) (*marketdata.Fundamentals, error)
}

// CompanyLister supplies the tracked companies for full-portfolio refreshes
type CompanyLister interface {
	GetAll() ([]domain.Company, error)
}

// RefreshResult summarizes one company's comp data refresh
type RefreshResult struct {
	Refreshed int      `json:"refreshed"`
	Errors    []string `json:"errors"`
}

// Service maintains comp observations: market data refreshes, manual
// entries, and summaries
type Service struct {
	repo      *Repository
	companies CompanyLister
	source    FundamentalsSource
	pause     time.Duration // delay between provider calls
	log       zerolog.Logger
}

// NewService creates a new comps service. source may be nil, in which case
// refreshes are unavailable and comps are maintained manually.
func NewService(repo *Repository, companies CompanyLister, source FundamentalsSource, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		companies: companies,
		source:    source,
		pause:     500 * time.Millisecond,
		log:       log.With().Str("service", "comps").Logger(),
	}
}

// RefreshCompany pulls fresh fundamentals for every ticker in a company's
// comp set. Per-ticker failures are collected, not fatal.
func (s *Service) RefreshCompany(companyID int64) (RefreshResult, error) {
	var result RefreshResult
	if s.source == nil {
		return result, fmt.Errorf("no market data source configured")
	}

	comps, err := s.repo.GetForCompany(companyID)
	if err != nil {
		return result, err
	}

	date := time.Now().Format("2006-01-02")
	for i, comp := range comps {
		if i > 0 {
			time.Sleep(s.pause)
		}

		fundamentals, err := s.source.GetFundamentals(comp.Ticker)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", comp.Ticker).Msg("Fundamentals fetch failed")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", comp.Ticker, err))
			continue
		}

		observation := BuildObservation(comp.ID, fundamentals, date, "marketdata")
		if _, err := s.repo.InsertObservation(observation); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", comp.Ticker, err))
			continue
		}
		result.Refreshed++
	}

	return result, nil
}

// RefreshAll refreshes comp data for every tracked company
func (s *Service) RefreshAll() (map[int64]RefreshResult, error) {
	companies, err := s.companies.GetAll()
	if err != nil {
		return nil, err
	}

	results := make(map[int64]RefreshResult, len(companies))
	for _, company := range companies {
		result, err := s.RefreshCompany(company.ID)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		results[company.ID] = result
	}
	return results, nil
}

// AddManualObservation records a hand-entered observation. Multiples are
// derived from the raw financials, and the provenance tag is forced to
// "manual" so the entry is distinguishable from provider pulls.
func (s *Service) AddManualObservation(o domain.CompObservation) (int64, error) {
	if o.DatePulled == "" {
		o.DatePulled = time.Now().Format("2006-01-02")
	}
	o.Source = "manual"
	if o.EVRevenue == nil && o.Revenue > 0 {
		multiple := o.EnterpriseValue / o.Revenue
		o.EVRevenue = &multiple
	}
	if o.EVEBITDA == nil && o.EBITDA > 0 {
		multiple := o.EnterpriseValue / o.EBITDA
		o.EVEBITDA = &multiple
	}
	return s.repo.InsertObservation(o)
}

// Summary computes the current comp summary for a company from the latest
// observation per ticker
func (s *Service) Summary(companyID int64) (domain.CompSummary, error) {
	observations, err := s.repo.GetLatestObservations(companyID)
	if err != nil {
		return domain.CompSummary{}, err
	}
	return Summarize(observations), nil
}

// BuildObservation converts provider fundamentals into an observation row.
// Multiples are left nil when their denominator is non-positive.
func BuildObservation(compID int64, f *marketdata.Fundamentals, date, source string) domain.CompObservation {
	o := domain.CompObservation{
		CompID:          compID,
		Ticker:          f.Ticker,
		DatePulled:      date,
		EnterpriseValue: f.EnterpriseValue,
		Revenue:         f.Revenue,
		EBITDA:          f.EBITDA,
		MarketCap:       f.MarketCap,
		Source:          source,
	}
	growth := f.RevenueGrowth
	o.GrowthRate = &growth
	if f.Revenue > 0 {
		multiple := f.EnterpriseValue / f.Revenue
		o.EVRevenue = &multiple
	}
	if f.EBITDA > 0 {
		multiple := f.EnterpriseValue / f.EBITDA
		o.EVEBITDA = &multiple
	}
	return o
}
