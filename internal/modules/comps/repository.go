package comps

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

// Repository handles comp set and comp observation database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new comps repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "comps").Logger(),
	}
}

// AddComp registers a ticker in a company's comp set. Returns the new row id.
func (r *Repository) AddComp(companyID int64, ticker, companyName, source string) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO comp_sets (portfolio_company_id, ticker, company_name, source)
		 VALUES (?, ?, ?, ?)`,
		companyID, strings.ToUpper(ticker), companyName, source,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add comp %s: %w", ticker, err)
	}
	return result.LastInsertId()
}

// GetForCompany returns all comp set entries for a company, ordered by ticker
func (r *Repository) GetForCompany(companyID int64) ([]domain.Comp, error) {
	rows, err := r.db.Query(
		`SELECT id, portfolio_company_id, ticker, company_name, source
		 FROM comp_sets WHERE portfolio_company_id = ? ORDER BY ticker`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query comps: %w", err)
	}
	defer rows.Close()

	var comps []domain.Comp
	for rows.Next() {
		var c domain.Comp
		var name sql.NullString
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Ticker, &name, &c.Source); err != nil {
			return nil, fmt.Errorf("failed to scan comp: %w", err)
		}
		c.CompanyName = name.String
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// DeleteComp removes a ticker from a comp set; its observations cascade
func (r *Repository) DeleteComp(id int64) error {
	_, err := r.db.Exec("DELETE FROM comp_sets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete comp %d: %w", id, err)
	}
	return nil
}

// InsertObservation records one dated pull of a comparable's financials.
// Observations are append-only; corrections are new rows.
func (r *Repository) InsertObservation(o domain.CompObservation) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO comp_data
		 (comp_set_id, ticker, date_pulled, enterprise_value, revenue, ebitda,
		  market_cap, ev_revenue, ev_ebitda, growth_rate, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.CompID, o.Ticker, o.DatePulled, o.EnterpriseValue, o.Revenue,
		o.EBITDA, o.MarketCap, nullFloat(o.EVRevenue), nullFloat(o.EVEBITDA),
		nullFloat(o.GrowthRate), o.Source,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert observation for %s: %w", o.Ticker, err)
	}
	return result.LastInsertId()
}

// GetLatestObservations returns the most recent observation for each ticker
// in a company's comp set
func (r *Repository) GetLatestObservations(companyID int64) ([]domain.CompObservation, error) {
	rows, err := r.db.Query(
		`SELECT cd.id, cd.comp_set_id, cd.ticker, cd.date_pulled,
		        cd.enterprise_value, cd.revenue, cd.ebitda, cd.market_cap,
		        cd.ev_revenue, cd.ev_ebitda, cd.growth_rate, cd.source
		 FROM comp_data cd
		 INNER JOIN comp_sets cs ON cd.comp_set_id = cs.id
		 WHERE cs.portfolio_company_id = ?
		 AND cd.id = (
		     SELECT cd2.id FROM comp_data cd2
		     WHERE cd2.comp_set_id = cd.comp_set_id
		     ORDER BY cd2.date_pulled DESC, cd2.id DESC
		     LIMIT 1
		 )
		 ORDER BY cd.ticker`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest observations: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

// GetObservationHistory returns historical observations for one comp,
// newest first, optionally bounded by date
func (r *Repository) GetObservationHistory(compID int64, startDate, endDate string) ([]domain.CompObservation, error) {
	query := `SELECT id, comp_set_id, ticker, date_pulled, enterprise_value,
	                 revenue, ebitda, market_cap, ev_revenue, ev_ebitda,
	                 growth_rate, source
	          FROM comp_data WHERE comp_set_id = ?`
	args := []interface{}{compID}
	if startDate != "" {
		query += " AND date_pulled >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND date_pulled <= ?"
		args = append(args, endDate)
	}
	query += " ORDER BY date_pulled DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observation history: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

func scanObservations(rows *sql.Rows) ([]domain.CompObservation, error) {
	var observations []domain.CompObservation
	for rows.Next() {
		var o domain.CompObservation
		var evRev, evEbit, growth sql.NullFloat64
		var ev, revenue, ebitda, marketCap sql.NullFloat64
		if err := rows.Scan(
			&o.ID, &o.CompID, &o.Ticker, &o.DatePulled,
			&ev, &revenue, &ebitda, &marketCap,
			&evRev, &evEbit, &growth, &o.Source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		o.EnterpriseValue = ev.Float64
		o.Revenue = revenue.Float64
		o.EBITDA = ebitda.Float64
		o.MarketCap = marketCap.Float64
		if evRev.Valid {
			o.EVRevenue = &evRev.Float64
		}
		if evEbit.Valid {
			o.EVEBITDA = &evEbit.Float64
		}
		if growth.Valid {
			o.GrowthRate = &growth.Float64
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
