package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/constants"
	"github.com/ludo-technologies/pqhint/internal/logging"
)

// ResultRow is one project of a results table.
type ResultRow struct {
	Name     string
	Outcomes []string // per-test cells, aligned with ResultsTable.Tests
	Passed   int
	Failed   int
	Error    int
	Skip     int
	Coverage float64
}

// Total returns the number of executed tests.
func (r ResultRow) Total() int {
	return r.Passed + r.Failed + r.Error + r.Skip
}

// PassRatio returns passed/total; rows without tests report false.
func (r ResultRow) PassRatio() (float64, bool) {
	total := r.Total()
	if total == 0 {
		return 0, false
	}
	return float64(r.Passed) / float64(total), true
}

// PassedTests returns the indices of tests the row passed.
func (r ResultRow) PassedTests() map[int]bool {
	passed := make(map[int]bool)
	for i, cell := range r.Outcomes {
		if isPassOutcome(cell) {
			passed[i] = true
		}
	}
	return passed
}

// ResultsTable is a parsed test results table: a header row starting with
// projectname, optional per-test columns, then passed, failed, error,
// optionally skip, and coverage.
type ResultsTable struct {
	Tests   []string
	HasSkip bool
	Rows    []ResultRow
}

// Find returns the row of the named project.
func (t *ResultsTable) Find(name string) (ResultRow, bool) {
	for _, row := range t.Rows {
		if row.Name == name {
			return row, true
		}
	}
	return ResultRow{}, false
}

// ByPercentage returns rows other than source whose pass ratio reaches
// minPercentage, in table order.
func (t *ResultsTable) ByPercentage(minPercentage float64, source string) []string {
	threshold := minPercentage / 100
	var names []string
	for _, row := range t.Rows {
		if row.Name == source {
			continue
		}
		if ratio, ok := row.PassRatio(); ok && ratio >= threshold {
			names = append(names, row.Name)
		}
	}
	return names
}

// IndividuallyBetter returns rows whose passed tests strictly contain the
// passed tests of source. ok is false when source is not in the table.
func (t *ResultsTable) IndividuallyBetter(source string) (names []string, ok bool) {
	sourceRow, found := t.Find(source)
	if !found {
		return nil, false
	}
	base := sourceRow.PassedTests()

	for _, row := range t.Rows {
		if row.Name == source {
			continue
		}
		passed := row.PassedTests()
		if len(passed) <= len(base) {
			continue
		}
		superset := true
		for test := range base {
			if !passed[test] {
				superset = false
				break
			}
		}
		if superset {
			names = append(names, row.Name)
		}
	}
	return names, true
}

func isHeaderCell(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "projectname", "projektname":
		return true
	}
	return false
}

func isPassOutcome(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "pass", "passed", "ok", "true", "1":
		return true
	}
	return false
}

// ReadResultsTable parses the results table at path.
func ReadResultsTable(path string) (*ResultsTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, domain.NewResultsTableError(path, err)
	}
	defer file.Close()

	table, err := parseResultsTable(file)
	if err != nil {
		return nil, domain.NewResultsTableError(path, err)
	}
	return table, nil
}

func parseResultsTable(r io.Reader) (*ResultsTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table := &ResultsTable{}
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if isHeaderCell(record[0]) {
			counts := 4
			if len(record) >= 2 && strings.TrimSpace(record[len(record)-2]) == "skip" {
				table.HasSkip = true
				counts = 5
			}
			if len(record) > counts+1 {
				table.Tests = append([]string(nil), record[1:len(record)-counts]...)
			} else {
				table.Tests = nil
			}
			continue
		}

		row, err := parseResultRow(record, table.HasSkip)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// parseResultRow reads the trailing count columns of a record.
func parseResultRow(record []string, hasSkip bool) (ResultRow, error) {
	counts := 4
	if hasSkip {
		counts = 5
	}
	if len(record) < counts+1 {
		return ResultRow{}, fmt.Errorf("expected at least %d columns, got %d", counts+1, len(record))
	}

	n := len(record)
	row := ResultRow{Name: strings.TrimSpace(record[0])}
	cell := func(fromEnd int) string { return strings.TrimSpace(record[n-fromEnd]) }

	var err error
	if row.Coverage, err = parseCoverage(cell(1)); err != nil {
		return ResultRow{}, fmt.Errorf("coverage: %w", err)
	}
	offset := 2
	if hasSkip {
		if row.Skip, err = strconv.Atoi(cell(offset)); err != nil {
			return ResultRow{}, fmt.Errorf("skip: %w", err)
		}
		offset++
	}
	if row.Error, err = strconv.Atoi(cell(offset)); err != nil {
		return ResultRow{}, fmt.Errorf("error: %w", err)
	}
	if row.Failed, err = strconv.Atoi(cell(offset + 1)); err != nil {
		return ResultRow{}, fmt.Errorf("failed: %w", err)
	}
	if row.Passed, err = strconv.Atoi(cell(offset + 2)); err != nil {
		return ResultRow{}, fmt.Errorf("passed: %w", err)
	}

	row.Outcomes = append([]string(nil), record[1:n-counts]...)
	return row, nil
}

func parseCoverage(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
}

// TargetSelectorImpl implements domain.TargetSelector
type TargetSelectorImpl struct {
	minPercentage float64
	individual    bool
	logger        *slog.Logger
}

// NewTargetSelector creates a selector. A negative minPercentage selects
// the default threshold.
func NewTargetSelector(minPercentage float64, individual bool, logger *slog.Logger) *TargetSelectorImpl {
	if minPercentage < 0 {
		minPercentage = constants.DefaultMinPercentage
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &TargetSelectorImpl{minPercentage: minPercentage, individual: individual, logger: logger}
}

// SelectTargets implements domain.TargetSelector. Individually-better
// selection falls back to the percentage rule when the source has no row
// or no row beats it.
func (s *TargetSelectorImpl) SelectTargets(resultsPath, sourceName string) ([]string, error) {
	table, err := ReadResultsTable(resultsPath)
	if err != nil {
		return nil, err
	}

	if s.individual {
		names, found := table.IndividuallyBetter(sourceName)
		if found && len(names) > 0 {
			return names, nil
		}
		s.logger.Warn("no individually better projects, using pass percentage",
			"project", sourceName, "source_listed", found, "min_percentage", s.minPercentage)
	}

	return table.ByPercentage(s.minPercentage, sourceName), nil
}
