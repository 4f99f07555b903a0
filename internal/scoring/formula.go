package scoring

import (
	"regexp"
	"strconv"
)

var cellRefPattern = regexp.MustCompile(`([A-Z]+)(\d+)`)

// ShiftFormulaRows shifts every row number in the Excel-style cell references
// of a formula, e.g. "=SUM(A1,B2)" becomes "=SUM(A2,B3)" for shift 1. Used
// when copying a score formula down to a freshly appended company row.
func ShiftFormulaRows(formula string, shift int) string {
	return cellRefPattern.ReplaceAllStringFunc(formula, func(ref string) string {
		parts := cellRefPattern.FindStringSubmatch(ref)
		row, err := strconv.Atoi(parts[2])
		if err != nil {
			return ref
		}
		return parts[1] + strconv.Itoa(row+shift)
	})
}
