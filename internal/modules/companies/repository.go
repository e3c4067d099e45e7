package companies

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

// Repository handles portfolio company database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new company repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "companies").Logger(),
	}
}

const companyColumns = `id, name, sector, subsector, revenue_ttm, revenue_run_rate,
	ebitda, gross_margin, growth_rate, net_debt, ownership_pct,
	preferred_amount, dilution_pct, last_mark_date, last_mark_ev,
	last_mark_equity, notes`

// Insert creates a new portfolio company. Returns the new row id.
func (r *Repository) Insert(c domain.Company) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO portfolio_companies
		 (name, sector, subsector, revenue_ttm, revenue_run_rate, ebitda,
		  gross_margin, growth_rate, net_debt, ownership_pct,
		  preferred_amount, dilution_pct, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, nullString(c.Sector), nullString(c.Subsector),
		c.RevenueTTM, c.RevenueRunRate, c.EBITDA,
		c.GrossMargin, c.GrowthRate, c.NetDebt, c.OwnershipPct,
		c.PreferredAmount, c.DilutionPct, nullString(c.Notes),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert company: %w", err)
	}
	return result.LastInsertId()
}

// UpdateFundamentals overwrites the user-editable fields of a company.
// The last-mark fields are deliberately excluded: only the valuation
// orchestrator writes those.
func (r *Repository) UpdateFundamentals(id int64, c domain.Company) error {
	_, err := r.db.Exec(
		`UPDATE portfolio_companies SET
		 name = ?, sector = ?, subsector = ?, revenue_ttm = ?,
		 revenue_run_rate = ?, ebitda = ?, gross_margin = ?, growth_rate = ?,
		 net_debt = ?, ownership_pct = ?, preferred_amount = ?,
		 dilution_pct = ?, notes = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		c.Name, nullString(c.Sector), nullString(c.Subsector), c.RevenueTTM,
		c.RevenueRunRate, c.EBITDA, c.GrossMargin, c.GrowthRate,
		c.NetDebt, c.OwnershipPct, c.PreferredAmount,
		c.DilutionPct, nullString(c.Notes), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update company %d: %w", id, err)
	}
	return nil
}

// UpdateLastMarkTx overwrites the company's last-mark cache inside an open
// transaction, so the caller can make it atomic with the snapshot insert
func (r *Repository) UpdateLastMarkTx(tx *sql.Tx, id int64, date string, ev, equity float64) error {
	_, err := tx.Exec(
		`UPDATE portfolio_companies SET
		 last_mark_date = ?, last_mark_ev = ?, last_mark_equity = ?,
		 updated_at = datetime('now')
		 WHERE id = ?`,
		date, ev, equity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update last mark for company %d: %w", id, err)
	}
	return nil
}

// GetByID returns a single company, or nil if it does not exist
func (r *Repository) GetByID(id int64) (*domain.Company, error) {
	row := r.db.QueryRow(
		"SELECT "+companyColumns+" FROM portfolio_companies WHERE id = ?", id)
	company, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %d: %w", id, err)
	}
	return company, nil
}

// GetByName returns a company by its unique name, or nil if absent
func (r *Repository) GetByName(name string) (*domain.Company, error) {
	row := r.db.QueryRow(
		"SELECT "+companyColumns+" FROM portfolio_companies WHERE name = ?", name)
	company, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %q: %w", name, err)
	}
	return company, nil
}

// GetAll returns all portfolio companies ordered by name
func (r *Repository) GetAll() ([]domain.Company, error) {
	rows, err := r.db.Query(
		"SELECT " + companyColumns + " FROM portfolio_companies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}
	return companies, nil
}

// Delete removes a company; related comp sets, snapshots and alerts cascade
func (r *Repository) Delete(id int64) error {
	_, err := r.db.Exec("DELETE FROM portfolio_companies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete company %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row rowScanner) (*domain.Company, error) {
	var c domain.Company
	var sector, subsector, lastMarkDate, notes sql.NullString
	var lastMarkEV, lastMarkEquity sql.NullFloat64

	err := row.Scan(
		&c.ID, &c.Name, &sector, &subsector, &c.RevenueTTM, &c.RevenueRunRate,
		&c.EBITDA, &c.GrossMargin, &c.GrowthRate, &c.NetDebt, &c.OwnershipPct,
		&c.PreferredAmount, &c.DilutionPct, &lastMarkDate, &lastMarkEV,
		&lastMarkEquity, &notes,
	)
	if err != nil {
		return nil, err
	}

	c.Sector = sector.String
	c.Subsector = subsector.String
	c.Notes = notes.String
	if lastMarkDate.Valid {
		c.LastMarkDate = &lastMarkDate.String
	}
	if lastMarkEV.Valid {
		c.LastMarkEV = &lastMarkEV.Float64
	}
	if lastMarkEquity.Valid {
		c.LastMarkEquity = &lastMarkEquity.Float64
	}
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
