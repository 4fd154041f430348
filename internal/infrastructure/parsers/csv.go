package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// CSVParser parses startups from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed startups.
// Expected columns: id, name, website, description, founded, headquarters,
// founders (semicolon separated), total_funding, valuation, estimated_users,
// employee_count, acquirer, acquisition_date.
func (p *CSVParser) Parse(r io.Reader) ([]RawStartup, error) {
	reader := csv.NewReader(r)

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	requiredCols := []string{"id", "name"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawStartups.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawStartup, error) {
	var startups []RawStartup
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		s, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		startups = append(startups, s)
	}

	return startups, nil
}

// parseRecord converts a CSV record to a RawStartup.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawStartup, error) {
	raw := RawStartup{LineNum: lineNum}
	raw.ID = getColumn(record, colIndex, "id")
	raw.Name = getColumn(record, colIndex, "name")
	raw.Website = getColumn(record, colIndex, "website")
	raw.Description = getColumn(record, colIndex, "description")
	raw.Headquarters = getColumn(record, colIndex, "headquarters")

	if founders := getColumn(record, colIndex, "founders"); founders != "" {
		for _, f := range strings.Split(founders, ";") {
			if f = strings.TrimSpace(f); f != "" {
				raw.Founders = append(raw.Founders, f)
			}
		}
	}

	if founded := getColumn(record, colIndex, "founded"); founded != "" {
		year, err := strconv.Atoi(founded)
		if err != nil {
			return RawStartup{}, fmt.Errorf("line %d: invalid founded value %q: %w", lineNum, founded, err)
		}
		raw.Founded = year
	}

	metrics := []struct {
		col    string
		target **float64
	}{
		{"total_funding", &raw.Metrics.TotalFunding},
		{"valuation", &raw.Metrics.Valuation},
		{"estimated_users", &raw.Metrics.EstimatedUsers},
		{"employee_count", &raw.Metrics.EmployeeCount},
	}
	for _, m := range metrics {
		s := getColumn(record, colIndex, m.col)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return RawStartup{}, fmt.Errorf("line %d: invalid %s value %q: %w", lineNum, m.col, s, err)
		}
		*m.target = &v
	}

	if acquirer := getColumn(record, colIndex, "acquirer"); acquirer != "" {
		raw.Metrics.Acquisition = &entities.Acquisition{
			Acquirer: acquirer,
			Date:     getColumn(record, colIndex, "acquisition_date"),
		}
	}

	return raw, nil
}

// getColumn safely retrieves a trimmed column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
