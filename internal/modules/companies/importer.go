package companies

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
)

// CompAdder registers a comp ticker under a company's comp set.
// Implemented by the comps repository.
type CompAdder interface {
	AddComp(companyID int64, ticker, companyName, source string) (int64, error)
}

// ImportResult summarizes one CSV import run
type ImportResult struct {
	BatchID  string   `json:"batch_id"`
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
	RowCount int      `json:"row_count"`
}

// Importer performs bulk CSV imports of companies and comp tickers
type Importer struct {
	repo  *Repository
	comps CompAdder
	log   zerolog.Logger
}

// NewImporter creates a new importer
func NewImporter(repo *Repository, comps CompAdder, log zerolog.Logger) *Importer {
	return &Importer{
		repo:  repo,
		comps: comps,
		log:   log.With().Str("service", "importer").Logger(),
	}
}

var numericCompanyColumns = map[string]bool{
	"revenue_ttm":      true,
	"revenue_run_rate": true,
	"ebitda":           true,
	"gross_margin":     true,
	"growth_rate":      true,
	"net_debt":         true,
	"ownership_pct":    true,
	"preferred_amount": true,
	"dilution_pct":     true,
}

// ImportCompanies reads a company CSV and inserts or updates by name.
// The only required column is "name"; unknown columns are ignored and
// non-numeric values in numeric columns are coerced to 0.
func (im *Importer) ImportCompanies(r io.Reader) (*ImportResult, error) {
	result := &ImportResult{BatchID: uuid.New().String()}
	log := im.log.With().Str("batch_id", result.BatchID).Logger()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := colIndex["name"]; !ok {
		return nil, fmt.Errorf("missing required column: name")
	}

	seen := make(map[string]bool)
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.RowCount++

		company, rowErrs := parseCompanyRow(record, colIndex)
		if company.Name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: empty name", rowNum))
			continue
		}
		if seen[company.Name] {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: duplicate name %q", rowNum, company.Name))
			continue
		}
		seen[company.Name] = true
		for _, e := range rowErrs {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rowNum, e))
		}
		if len(rowErrs) > 0 {
			continue
		}

		existing, err := im.repo.GetByName(company.Name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if existing != nil {
			if err := im.repo.UpdateFundamentals(existing.ID, company); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
				continue
			}
			result.Updated++
		} else {
			if _, err := im.repo.Insert(company); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
				continue
			}
			result.Created++
		}
	}

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errors", len(result.Errors)).
		Msg("Company import completed")

	return result, nil
}

// ImportComps reads a two-column CSV (company_name, ticker) and registers
// each ticker under the named company's comp set
func (im *Importer) ImportComps(r io.Reader) (*ImportResult, error) {
	result := &ImportResult{BatchID: uuid.New().String()}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	nameIdx, hasName := colIndex["company_name"]
	tickerIdx, hasTicker := colIndex["ticker"]
	if !hasName || !hasTicker {
		return nil, fmt.Errorf("missing required columns: company_name, ticker")
	}

	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.RowCount++

		name := strings.TrimSpace(record[nameIdx])
		ticker := strings.ToUpper(strings.TrimSpace(record[tickerIdx]))
		if name == "" || ticker == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: empty company_name or ticker", rowNum))
			continue
		}

		company, err := im.repo.GetByName(name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if company == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: company %q not found", rowNum, name))
			continue
		}

		if _, err := im.comps.AddComp(company.ID, ticker, "", "manual"); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.Created++
	}

	im.log.Info().
		Str("batch_id", result.BatchID).
		Int("created", result.Created).
		Int("errors", len(result.Errors)).
		Msg("Comp import completed")

	return result, nil
}

// ExportCompanies writes all companies as CSV
func (im *Importer) ExportCompanies(w io.Writer) error {
	all, err := im.repo.GetAll()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"name", "sector", "subsector", "revenue_ttm", "revenue_run_rate",
		"ebitda", "gross_margin", "growth_rate", "net_debt", "ownership_pct",
		"preferred_amount", "dilution_pct", "notes",
	}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range all {
		record := []string{
			c.Name, c.Sector, c.Subsector,
			formatFloat(c.RevenueTTM), formatFloat(c.RevenueRunRate),
			formatFloat(c.EBITDA), formatFloat(c.GrossMargin),
			formatFloat(c.GrowthRate), formatFloat(c.NetDebt),
			formatFloat(c.OwnershipPct), formatFloat(c.PreferredAmount),
			formatFloat(c.DilutionPct), c.Notes,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseCompanyRow(record []string, colIndex map[string]int) (domain.Company, []string) {
	var errs []string

	get := func(col string) string {
		idx, ok := colIndex[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	getFloat := func(col string) float64 {
		raw := get(col)
		if raw == "" {
			return 0
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0 // non-numeric values coerce to 0
		}
		return value
	}

	c := domain.Company{
		Name:            get("name"),
		Sector:          get("sector"),
		Subsector:       get("subsector"),
		RevenueTTM:      getFloat("revenue_ttm"),
		RevenueRunRate:  getFloat("revenue_run_rate"),
		EBITDA:          getFloat("ebitda"),
		GrossMargin:     getFloat("gross_margin"),
		GrowthRate:      getFloat("growth_rate"),
		NetDebt:         getFloat("net_debt"),
		OwnershipPct:    getFloat("ownership_pct"),
		PreferredAmount: getFloat("preferred_amount"),
		DilutionPct:     getFloat("dilution_pct"),
		Notes:           get("notes"),
	}

	if c.OwnershipPct < 0 || c.OwnershipPct > 1 {
		errs = append(errs, "ownership_pct must be between 0 and 1")
	}
	if c.DilutionPct < 0 || c.DilutionPct > 1 {
		errs = append(errs, "dilution_pct must be between 0 and 1")
	}
	return c, errs
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
