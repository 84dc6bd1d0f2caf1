package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/models"
)

func init() {
	Register(models.IssuerHDFC, []string{"HDFC Bank", "HDFC", "hdfcbank.com"}, func() Parser {
		return &HDFCParser{}
	})
}

// HDFCParser handles HDFC Bank credit card e-statements.
//
// The first page carries the summary block:
//
//	Millennia HDFC Bank Credit Card Statement
//	RAHUL KUMAR SHARMA            Credit Card No. 5522 60XX XXXX 1234
//	TOTAL CREDIT LIMIT    AVAILABLE CREDIT LIMIT    AVAILABLE CASH LIMIT
//	(Including Cash)
//	C3,00,000.00          C1,45,000.00              C60,000.00
//
// Transactions follow in one or more tables, possibly spanning pages:
//
//	Date                 Transaction Description        Amount (in Rs.)
//	08/10/2025 | 11:58   AMAZON PAY INDIA      +15      C1,500.75
//	10/10/2025           PAYMENT RECEIVED               C5,000.00 Cr
//
// The rupee sign is drawn with a custom glyph that extracts as "C".
type HDFCParser struct{}

func (p *HDFCParser) BankName() string {
	return "HDFC Bank"
}

const (
	cardNumberLabel     = "Credit Card No."
	availableLimitLabel = "AVAILABLE CREDIT LIMIT"

	// How many lines below its label a stacked limit amount may appear.
	limitSearchLines = 4

	// Horizontal slack, in points, for a line to count as starting in the
	// date column.
	columnTolerance = 4
)

var (
	cardTitlePattern = regexp.MustCompile(`(?i)^\s*(.*?)\s*\bCredit\s+Card\s+Statement\b`)
	brandingWords    = regexp.MustCompile(`(?i)\b(?:HDFC|Bank|Credit|Card|Statement)\b`)
	holderPattern    = regexp.MustCompile(`^[A-Z][A-Z.' -]*[A-Z.]$`)
)

func (p *HDFCParser) Parse(pages []models.Page) (*models.RawStatement, error) {
	if len(pages) == 0 {
		return nil, failure.Extraction("the PDF has no pages")
	}

	raw := &models.RawStatement{Issuer: models.IssuerHDFC}

	name, ok := findCardName(pages)
	if !ok {
		return nil, failure.Extraction("card name not found: no %q title line", "<name> Credit Card Statement")
	}
	raw.CardName = name

	holder, masked, ok := findCardHolder(pages)
	if !ok {
		return nil, failure.Extraction("label %q not found", cardNumberLabel)
	}
	if masked == "" {
		return nil, failure.Extraction("card number not found after label %q", cardNumberLabel)
	}
	if holder == "" {
		return nil, failure.Extraction("name on card not found before label %q", cardNumberLabel)
	}
	raw.NameOnCard = holder
	raw.MaskedNumber = masked

	limit, err := findAvailableLimit(pages)
	if err != nil {
		return nil, err
	}
	raw.AvailableLimit = limit

	tables := 0
	for _, page := range pages {
		txns, found, err := p.parseTables(page)
		if err != nil {
			return nil, err
		}
		tables += found
		raw.Transactions = append(raw.Transactions, txns...)
	}

	if tables == 0 {
		return nil, failure.Extraction("no transaction table found in the statement")
	}
	if len(raw.Transactions) == 0 {
		return nil, failure.Extraction("the transaction table contains no transactions")
	}
	return raw, nil
}

// findCardName returns the title line's card name with the issuer's branding
// words removed: "Millennia HDFC Bank Credit Card Statement" -> "Millennia".
func findCardName(pages []models.Page) (string, bool) {
	for _, page := range pages {
		for _, line := range page.Lines {
			for _, cell := range line.Cells {
				m := cardTitlePattern.FindStringSubmatch(cell.Text)
				if m == nil {
					continue
				}
				name := strings.Join(strings.Fields(brandingWords.ReplaceAllString(m[1], " ")), " ")
				if name != "" {
					return name, true
				}
			}
		}
	}
	return "", false
}

// findCardHolder returns the upper-case holder name printed before the card
// number label and the masked number printed after it.
func findCardHolder(pages []models.Page) (holder, masked string, ok bool) {
	pi, li, ci, found := findLabel(pages, cardNumberLabel)
	if !found {
		return "", "", false
	}
	line := pages[pi].Lines[li]
	cell := line.Cells[ci].Text

	masked = textAfter(cell, cardNumberLabel)
	if masked == "" && ci+1 < len(line.Cells) {
		masked = strings.TrimSpace(line.Cells[ci+1].Text)
	}

	holder = textBefore(cell, cardNumberLabel)
	if holder == "" && ci > 0 {
		parts := make([]string, 0, ci)
		for _, c := range line.Cells[:ci] {
			parts = append(parts, strings.TrimSpace(c.Text))
		}
		holder = strings.Join(parts, " ")
	}
	holder = strings.Join(strings.Fields(holder), " ")
	if !holderPattern.MatchString(holder) {
		holder = ""
	}
	return holder, masked, true
}

// findAvailableLimit returns the amount printed beside or beneath the
// available credit limit label. Beneath means the nearest amount cell that
// horizontally overlaps the label within the next few lines.
func findAvailableLimit(pages []models.Page) (string, error) {
	pi, li, ci, ok := findLabel(pages, availableLimitLabel)
	if !ok {
		return "", failure.Extraction("label %q not found", availableLimitLabel)
	}
	lines := pages[pi].Lines
	label := lines[li].Cells[ci]

	if rest := textAfter(label.Text, availableLimitLabel); rest != "" && isAmount(rest) {
		return rest, nil
	}
	if ci+1 < len(lines[li].Cells) {
		if next := lines[li].Cells[ci+1]; isAmount(next.Text) {
			return strings.TrimSpace(next.Text), nil
		}
	}

	for i := li + 1; i < len(lines) && i <= li+limitSearchLines; i++ {
		best := -1
		bestDist := math.MaxFloat64
		for j, c := range lines[i].Cells {
			if !c.Overlaps(label) || !isAmount(c.Text) {
				continue
			}
			if d := math.Abs(c.Center() - label.Center()); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best >= 0 {
			return strings.TrimSpace(lines[i].Cells[best].Text), nil
		}
	}
	return "", failure.Extraction("no amount found near label %q", availableLimitLabel)
}

// parseTables returns the transactions of every table on the page and how
// many table headers were seen. A table ends at a "Total" footer, at an
// unindented line that is not a dated row (section heading, page footer) or
// at a dated label line such as "15/11/2025  Payment Due Date". Indented
// undated lines are wrapped descriptions and keep the table open.
func (p *HDFCParser) parseTables(page models.Page) ([]models.RawTransaction, int, error) {
	var txns []models.RawTransaction
	tables := 0
	inTable := false
	left := 0.0

	for _, line := range page.Lines {
		if containsTransactionHeader(line) {
			inTable = true
			tables++
			left = line.Cells[0].X
			continue
		}
		if !inTable || len(line.Cells) == 0 {
			continue
		}

		first := line.Cells[0]
		if !startsWithDate(first.Text) {
			if isFooter(first.Text) || first.X <= left+columnTolerance {
				inTable = false
			}
			continue
		}

		cells := line.CellTexts()
		if isDatedLabel(cells) {
			inTable = false
			continue
		}

		txn, ok, err := parseRow(cells)
		if err != nil {
			return nil, 0, failure.Extraction("page %d: %s", page.Number, failure.Message(err, err.Error()))
		}
		if !ok {
			continue
		}
		txn.Page = page.Number
		txns = append(txns, txn)
	}
	return txns, tables, nil
}

func isFooter(text string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "total")
}

// isDatedLabel reports whether a dated line carries a single text field
// and no amount, which marks a summary label rather than a transaction.
func isDatedLabel(cells []string) bool {
	_, rest, _ := splitLeadingDate(cells[0])
	fields := make([]string, 0, len(cells))
	if rest != "" {
		fields = append(fields, rest)
	}
	for _, c := range cells[1:] {
		if c = strings.TrimSpace(c); c != "" {
			fields = append(fields, c)
		}
	}
	return len(fields) == 1 && !isAmount(fields[0])
}

// parseRow splits a table row into date, merchant and amount. The date is
// the start of the first cell and the amount is the last cell; cells in
// between form the merchant once junk columns are dropped. Footer rows
// ("Total ...") and rows left without a merchant are skipped.
func parseRow(cells []string) (models.RawTransaction, bool, error) {
	date, rest, _ := splitLeadingDate(cells[0])
	fields := make([]string, 0, len(cells)+1)
	if rest != "" {
		fields = append(fields, rest)
	}
	fields = append(fields, cells[1:]...)
	fields = mergeCreditMarker(fields)

	if len(fields) < 2 {
		return models.RawTransaction{}, false, failure.Extraction("transaction row dated %s has no merchant or amount", date)
	}

	amount := strings.TrimSpace(fields[len(fields)-1])
	var merchantParts []string
	for _, f := range fields[:len(fields)-1] {
		f = strings.TrimSpace(f)
		if f == "" || isJunkCell(f) {
			continue
		}
		merchantParts = append(merchantParts, f)
	}
	merchant := strings.Join(merchantParts, " ")

	if merchant == "" || strings.HasPrefix(strings.ToLower(merchant), "total") {
		return models.RawTransaction{}, false, nil
	}

	return models.RawTransaction{Date: date, Merchant: merchant, Amount: amount}, true, nil
}
