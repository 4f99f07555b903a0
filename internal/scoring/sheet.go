// Package scoring reads and writes the project-scoring workbook. Each
// operation opens the workbook, mutates and saves it; no handle is held
// across operations. The find-row-then-write sequence is not transactional
// with concurrent external edits (accepted race, last writer wins).
package scoring

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ErrRowNotFound is returned when no row matches the lookup value. The
// status-mirroring path never creates rows; only AppendCompany does.
var ErrRowNotFound = errors.New("scoring: row not found")

// Column layout of the scoring sheet.
const (
	companyColumn = 1 // column A holds company names
	statusColumn  = 2 // column B holds the mirrored project status
)

// Header labels located at append time.
const (
	headerProject       = "Project"
	headerBusinessValue = "TOTAL BUSINESS VALUE SCORE"
	headerComplexity    = "TOTAL COMPLEXITY SCORE"
)

// Config holds scoring workbook configuration.
type Config struct {
	WorkbookPath string
	SheetName    string
}

// Sheet is the scoring-workbook facade consumed by the rule handlers.
type Sheet struct {
	path   string
	name   string
	mu     sync.Mutex // serializes file writes, not the external race
	logger *zap.Logger
}

// NewSheet creates a new scoring sheet facade.
func NewSheet(cfg Config, logger *zap.Logger) *Sheet {
	return &Sheet{
		path:   cfg.WorkbookPath,
		name:   cfg.SheetName,
		logger: logger,
	}
}

// UpdateCompanyStatus writes the status into the row whose company column
// matches company (exact match after trimming both sides). Returns
// ErrRowNotFound when the company has no row.
func (s *Sheet) UpdateCompanyStatus(company, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	row, err := s.findRowByColumnValue(f, companyColumn, company)
	if err != nil {
		return err
	}

	cell, err := excelize.CoordinatesToCellName(statusColumn, row)
	if err != nil {
		return fmt.Errorf("failed to resolve status cell: %w", err)
	}
	if err := f.SetCellValue(s.name, cell, status); err != nil {
		return fmt.Errorf("failed to write status cell %s: %w", cell, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	s.logger.Info("Updated company status in scoring sheet",
		zap.String("company", company),
		zap.String("status", status),
		zap.String("cell", cell))
	return nil
}

// AppendCompany adds a new company row below the last filled one, carrying
// the business-value and complexity score formulas down from the previous
// row with their row references shifted.
func (s *Sheet) AppendCompany(company string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	projectCol, err := s.findHeaderColumn(f, headerProject)
	if err != nil {
		return err
	}
	businessCol, err := s.findHeaderColumn(f, headerBusinessValue)
	if err != nil {
		return err
	}
	complexityCol, err := s.findHeaderColumn(f, headerComplexity)
	if err != nil {
		return err
	}

	lastRow, err := s.lastFilledRow(f, projectCol)
	if err != nil {
		return err
	}
	newRow := lastRow + 1

	businessFormula, err := s.shiftedFormula(f, lastRow, businessCol)
	if err != nil {
		return err
	}
	complexityFormula, err := s.shiftedFormula(f, lastRow, complexityCol)
	if err != nil {
		return err
	}

	nameCell, err := excelize.CoordinatesToCellName(projectCol, newRow)
	if err != nil {
		return fmt.Errorf("failed to resolve company cell: %w", err)
	}
	if err := f.SetCellValue(s.name, nameCell, company); err != nil {
		return fmt.Errorf("failed to write company cell %s: %w", nameCell, err)
	}

	if err := s.setFormula(f, businessCol, newRow, businessFormula); err != nil {
		return err
	}
	if err := s.setFormula(f, complexityCol, newRow, complexityFormula); err != nil {
		return err
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	s.logger.Info("Appended company to scoring sheet",
		zap.String("company", company),
		zap.Int("row", newRow))
	return nil
}

// findRowByColumnValue returns the 1-based row of the first cell in the
// column equal to value after trimming whitespace on both sides.
func (s *Sheet) findRowByColumnValue(f *excelize.File, column int, value string) (int, error) {
	cols, err := f.GetCols(s.name)
	if err != nil {
		return 0, fmt.Errorf("failed to read columns: %w", err)
	}
	if column > len(cols) {
		return 0, ErrRowNotFound
	}

	target := strings.TrimSpace(value)
	for i, cell := range cols[column-1] {
		if strings.TrimSpace(cell) == target {
			return i + 1, nil
		}
	}
	return 0, ErrRowNotFound
}

// findHeaderColumn locates a header label anywhere on the sheet and returns
// its column.
func (s *Sheet) findHeaderColumn(f *excelize.File, label string) (int, error) {
	cells, err := f.SearchSheet(s.name, label)
	if err != nil {
		return 0, fmt.Errorf("failed to search for header %q: %w", label, err)
	}
	if len(cells) == 0 {
		return 0, fmt.Errorf("header %q not found in sheet %s", label, s.name)
	}

	col, _, err := excelize.CellNameToCoordinates(cells[0])
	if err != nil {
		return 0, fmt.Errorf("failed to parse header cell %s: %w", cells[0], err)
	}
	return col, nil
}

// lastFilledRow returns the last non-empty row of a column.
func (s *Sheet) lastFilledRow(f *excelize.File, column int) (int, error) {
	cols, err := f.GetCols(s.name)
	if err != nil {
		return 0, fmt.Errorf("failed to read columns: %w", err)
	}
	if column > len(cols) {
		return 0, fmt.Errorf("column %d is empty", column)
	}

	last := 0
	for i, cell := range cols[column-1] {
		if strings.TrimSpace(cell) != "" {
			last = i + 1
		}
	}
	if last == 0 {
		return 0, fmt.Errorf("column %d is empty", column)
	}
	return last, nil
}

// shiftedFormula reads the formula at (row, col) and shifts its row
// references one row down.
func (s *Sheet) shiftedFormula(f *excelize.File, row, col int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("failed to resolve formula cell: %w", err)
	}
	formula, err := f.GetCellFormula(s.name, cell)
	if err != nil {
		return "", fmt.Errorf("failed to read formula at %s: %w", cell, err)
	}
	return ShiftFormulaRows(formula, 1), nil
}

func (s *Sheet) setFormula(f *excelize.File, col, row int, formula string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to resolve formula cell: %w", err)
	}
	if err := f.SetCellFormula(s.name, cell, formula); err != nil {
		return fmt.Errorf("failed to write formula at %s: %w", cell, err)
	}
	return nil
}
