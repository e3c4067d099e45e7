package valuation

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// SnapshotRepository handles valuation snapshot database operations
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotRepository creates a new valuation snapshot repository
func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "valuation_snapshots").Logger(),
	}
}

// InsertTx records a snapshot inside an open transaction, so the caller can
// make it atomic with the company's last-mark update
func (r *SnapshotRepository) InsertTx(tx *sql.Tx, s Snapshot) (int64, error) {
	result, err := tx.Exec(
		`INSERT INTO valuation_snapshots
		 (portfolio_company_id, snapshot_date, method, enterprise_value,
		  equity_value, holdco_equity_value, median_ev_revenue,
		  median_ev_ebitda, weights_json, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CompanyID, s.SnapshotDate, s.Method, s.EnterpriseValue,
		s.EquityValue, s.HoldCoEquityValue, s.MedianEVRevenue,
		s.MedianEVEBITDA, s.WeightsJSON, s.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert valuation snapshot: %w", err)
	}
	return result.LastInsertId()
}

// GetLatest returns the most recent blended snapshot for a company, or nil
func (r *SnapshotRepository) GetLatest(companyID int64) (*Snapshot, error) {
	row := r.db.QueryRow(
		`SELECT id, portfolio_company_id, snapshot_date, method,
		        enterprise_value, equity_value, holdco_equity_value,
		        median_ev_revenue, median_ev_ebitda, weights_json, notes
		 FROM valuation_snapshots
		 WHERE portfolio_company_id = ? AND method = ?
		 ORDER BY snapshot_date DESC, id DESC
		 LIMIT 1`,
		companyID, MethodBlended,
	)
	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest valuation: %w", err)
	}
	return snapshot, nil
}

// GetHistory returns snapshots for a company, newest first
func (r *SnapshotRepository) GetHistory(companyID int64, limit int) ([]Snapshot, error) {
	rows, err := r.db.Query(
		`SELECT id, portfolio_company_id, snapshot_date, method,
		        enterprise_value, equity_value, holdco_equity_value,
		        median_ev_revenue, median_ev_ebitda, weights_json, notes
		 FROM valuation_snapshots
		 WHERE portfolio_company_id = ?
		 ORDER BY snapshot_date DESC, id DESC
		 LIMIT ?`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation history: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valuation snapshot: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var s Snapshot
	var ev, equity, holdco, medRev, medEbit sql.NullFloat64
	var weights, notes sql.NullString

	err := row.Scan(
		&s.ID, &s.CompanyID, &s.SnapshotDate, &s.Method,
		&ev, &equity, &holdco, &medRev, &medEbit, &weights, &notes,
	)
	if err != nil {
		return nil, err
	}

	s.EnterpriseValue = ev.Float64
	s.EquityValue = equity.Float64
	s.HoldCoEquityValue = holdco.Float64
	s.MedianEVRevenue = medRev.Float64
	s.MedianEVEBITDA = medEbit.Float64
	s.WeightsJSON = weights.String
	s.Notes = notes.String
	return &s, nil
}
