package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Date patterns found at the start of Indian card statement rows.
var (
	// DD/MM/YYYY or DD/MM/YY
	datePatternSlash = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4})\b`)
	// DD Mon YYYY (e.g., 08 Oct 2025)
	datePatternText = regexp.MustCompile(`(?i)^(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4})\b`)
	// DD-Mon-YYYY or DD-Mon-YY
	datePatternDash = regexp.MustCompile(`(?i)^(\d{1,2}-(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*-\d{2,4})\b`)

	// Optional time printed after the date, e.g. "08/10/2025 | 11:58".
	timeSuffix = regexp.MustCompile(`^\s*\|?\s*\d{1,2}:\d{2}(?::\d{2})?\b`)
)

// splitLeadingDate returns the date at the start of cell and the text that
// follows it, with any printed time of day dropped.
func splitLeadingDate(cell string) (date, rest string, ok bool) {
	cell = strings.TrimSpace(cell)
	for _, re := range []*regexp.Regexp{datePatternSlash, datePatternText, datePatternDash} {
		m := re.FindStringSubmatchIndex(cell)
		if m == nil {
			continue
		}
		date = cell[m[2]:m[3]]
		rest = cell[m[1]:]
		if loc := timeSuffix.FindStringIndex(rest); loc != nil {
			rest = rest[loc[1]:]
		}
		rest = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(rest), "|"))
		return date, rest, true
	}
	return "", "", false
}

// startsWithDate checks if a cell begins with a date pattern.
func startsWithDate(cell string) bool {
	_, _, ok := splitLeadingDate(cell)
	return ok
}

// amountPattern matches a printed amount with optional currency marker,
// sign and Cr/Dr suffix: "C1,45,000.00", "₹ 1,500.75", "5,000.00 Cr", "+86,962.00".
var amountPattern = regexp.MustCompile(`(?i)^[+-]?\s*(?:₹|C|Rs\.?|INR|\$|£|€)?\s*[+-]?\d[\d,]*(?:\.\d+)?(?:\s*(?:Cr|Dr))?$`)

func isAmount(s string) bool {
	return amountPattern.MatchString(strings.TrimSpace(s))
}

var crDrPattern = regexp.MustCompile(`(?i)^(?:cr|dr)$`)

// mergeCreditMarker joins a trailing "Cr"/"Dr" cell onto the amount before it.
func mergeCreditMarker(cells []string) []string {
	n := len(cells)
	if n >= 2 && crDrPattern.MatchString(strings.TrimSpace(cells[n-1])) {
		merged := make([]string, n-1)
		copy(merged, cells[:n-1])
		merged[n-2] = strings.TrimSpace(cells[n-2]) + " " + strings.TrimSpace(cells[n-1])
		return merged
	}
	return cells
}

// Columns that sit between description and amount but are not part of the
// merchant: EMI markers, reward points and foreign-currency amounts.
var junkCellPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^EMI?$`),
	regexp.MustCompile(`^[+-]\s*[\d,]+$`),
	regexp.MustCompile(`(?i)^[+-]?[\d,]+\s*pts$`),
	regexp.MustCompile(`(?i)^(?:USD|EUR|GBP|AED|SGD)\s*[\d,]+(?:\.\d+)?$`),
}

func isJunkCell(s string) bool {
	s = strings.TrimSpace(s)
	for _, re := range junkCellPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// containsTransactionHeader reports whether a line is the header row of a
// transaction table.
func containsTransactionHeader(line models.Line) bool {
	lower := strings.ToLower(line.Text())
	return strings.Contains(lower, "date") &&
		strings.Contains(lower, "transaction") &&
		strings.Contains(lower, "amount")
}

// findLabel returns the position of the first cell whose text contains label,
// ignoring case, searching pages in order.
func findLabel(pages []models.Page, label string) (page, line, cell int, ok bool) {
	lower := strings.ToLower(label)
	for pi, p := range pages {
		for li, l := range p.Lines {
			for ci, c := range l.Cells {
				if strings.Contains(strings.ToLower(c.Text), lower) {
					return pi, li, ci, true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// textAfter returns the text following label in s, ignoring case.
func textAfter(s, label string) string {
	i := strings.Index(strings.ToLower(s), strings.ToLower(label))
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(s[i+len(label):], " :-"))
}

// textBefore returns the text preceding label in s, ignoring case.
func textBefore(s, label string) string {
	i := strings.Index(strings.ToLower(s), strings.ToLower(label))
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(s[:i])
}
