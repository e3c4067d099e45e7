package holdco

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// SnapshotRepository handles HoldCo NAV snapshot database operations
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotRepository creates a new HoldCo snapshot repository
func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "holdco_snapshots").Logger(),
	}
}

// Insert records a NAV snapshot
func (r *SnapshotRepository) Insert(s Snapshot) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO holdco_snapshots
		 (snapshot_date, total_equity_value, holdco_cash, holdco_debt,
		  nav, nav_per_share, shares_outstanding, change_vs_prior_pct)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SnapshotDate, s.TotalEquityValue, s.HoldCoCash, s.HoldCoDebt,
		s.NAV, s.NAVPerShare, s.SharesOutstanding, nullFloat(s.ChangeVsPriorPct),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert holdco snapshot: %w", err)
	}
	return result.LastInsertId()
}

// GetLatest returns the most recent NAV snapshot, or nil if none exists
func (r *SnapshotRepository) GetLatest() (*Snapshot, error) {
	row := r.db.QueryRow(
		`SELECT id, snapshot_date, total_equity_value, holdco_cash,
		        holdco_debt, nav, nav_per_share, shares_outstanding,
		        change_vs_prior_pct
		 FROM holdco_snapshots
		 ORDER BY snapshot_date DESC, id DESC
		 LIMIT 1`,
	)
	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest holdco snapshot: %w", err)
	}
	return snapshot, nil
}

// GetHistory returns NAV snapshots, newest first
func (r *SnapshotRepository) GetHistory(limit int) ([]Snapshot, error) {
	rows, err := r.db.Query(
		`SELECT id, snapshot_date, total_equity_value, holdco_cash,
		        holdco_debt, nav, nav_per_share, shares_outstanding,
		        change_vs_prior_pct
		 FROM holdco_snapshots
		 ORDER BY snapshot_date DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdco history: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holdco snapshot: %w", err)
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
	var totalEquity, cash, debt, nav, navPerShare, shares, change sql.NullFloat64

	err := row.Scan(
		&s.ID, &s.SnapshotDate, &totalEquity, &cash, &debt,
		&nav, &navPerShare, &shares, &change,
	)
	if err != nil {
		return nil, err
	}

	s.TotalEquityValue = totalEquity.Float64
	s.HoldCoCash = cash.Float64
	s.HoldCoDebt = debt.Float64
	s.NAV = nav.Float64
	s.NAVPerShare = navPerShare.Float64
	s.SharesOutstanding = shares.Float64
	if change.Valid {
		s.ChangeVsPriorPct = &change.Float64
	}
	return &s, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
