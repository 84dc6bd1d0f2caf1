// Package normalizer turns the strings printed on a statement into typed
// dates, signed amounts and cleaned text.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// DefaultCurrency is used when no statement currency is configured.
const DefaultCurrency = "INR"

// Normalizer converts raw statements for one statement currency.
type Normalizer struct {
	currency *money.Currency
}

// New returns a Normalizer rounding amounts to the minor unit of the given
// ISO-4217 currency.
func New(currencyCode string) (*Normalizer, error) {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	currency := money.GetCurrency(strings.ToUpper(currencyCode))
	if currency == nil {
		return nil, fmt.Errorf("unknown currency code %q", currencyCode)
	}
	return &Normalizer{currency: currency}, nil
}

// Currency returns the ISO-4217 code amounts are rounded for.
func (n *Normalizer) Currency() string {
	return n.currency.Code
}

// Normalize converts every field of raw. The first field that cannot be
// coerced fails the whole statement; nothing is dropped silently.
func (n *Normalizer) Normalize(raw *models.RawStatement) (*models.ParseResult, error) {
	if raw == nil {
		return nil, failure.Extraction("no statement data was extracted")
	}

	cardName := cleanText(raw.CardName)
	if cardName == "" {
		return nil, failure.Extraction("card name is empty")
	}
	nameOnCard := cleanText(raw.NameOnCard)
	if nameOnCard == "" {
		return nil, failure.Extraction("name on card is empty")
	}

	last4, err := LastFour(raw.MaskedNumber)
	if err != nil {
		return nil, err
	}

	limit, err := n.ParseAmount(raw.AvailableLimit)
	if err != nil {
		return nil, failure.Extraction("invalid available limit %q", raw.AvailableLimit).Wrap(err)
	}

	if len(raw.Transactions) == 0 {
		return nil, failure.Extraction("no transactions found in the statement")
	}

	result := &models.ParseResult{
		StatementSummary: models.StatementSummary{
			CardName:        cardName,
			CardLast4Digits: last4,
			NameOnCard:      nameOnCard,
			AvailableLimit:  models.NewAmount(limit.Abs()),
		},
		Transactions: make([]models.Transaction, 0, len(raw.Transactions)),
	}

	for i, rt := range raw.Transactions {
		txn, err := n.transaction(rt)
		if err != nil {
			return nil, failure.Extraction("transaction %d (page %d): %s", i+1, rt.Page, failure.Message(err, err.Error()))
		}
		result.Transactions = append(result.Transactions, txn)
	}
	return result, nil
}

func (n *Normalizer) transaction(rt models.RawTransaction) (models.Transaction, error) {
	date, err := ParseDate(rt.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	merchant := cleanText(rt.Merchant)
	if merchant == "" {
		return models.Transaction{}, failure.Extraction("merchant is empty")
	}
	amount, err := n.ParseAmount(rt.Amount)
	if err != nil {
		return models.Transaction{}, failure.Extraction("invalid amount %q", rt.Amount).Wrap(err)
	}
	return models.Transaction{Date: date, Merchant: merchant, Amount: models.NewAmount(amount)}, nil
}

// Date layouts printed by Indian card issuers. Single-digit layout fields
// also accept zero-padded values.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"2 Jan 06",
	"2 January 2006",
	"2-January-2006",
	"Jan 2, 2006",
}

// ParseDate parses a printed date in any of the supported layouts.
func ParseDate(s string) (models.Date, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return models.Date{}, failure.Extraction("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Date{Time: t}, nil
		}
	}
	return models.Date{}, failure.Extraction("unrecognised date %q", s)
}

var (
	currencyPrefix = regexp.MustCompile(`^(?:₹|Rs\.?|INR|C|\$|£|€)\s*`)
	creditSuffix   = regexp.MustCompile(`(?i)\s*cr\.?$`)
	debitSuffix    = regexp.MustCompile(`(?i)\s*dr\.?$`)
	plainNumber    = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// ParseAmount converts a printed amount into a signed decimal rounded to
// the currency's minor unit. A "Cr" suffix or leading "+" marks a payment or
// credit and yields a negative value; "Dr" or no marker is a charge.
func (n *Normalizer) ParseAmount(s string) (decimal.Decimal, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}

	credit := false
	negative := false
	switch {
	case creditSuffix.MatchString(t):
		credit = true
		t = creditSuffix.ReplaceAllString(t, "")
	case debitSuffix.MatchString(t):
		t = debitSuffix.ReplaceAllString(t, "")
	}

	// The sign may sit on either side of the currency marker: "+C5,000.00", "₹-20".
	for i := 0; i < 2; i++ {
		t = strings.TrimSpace(t)
		switch {
		case strings.HasPrefix(t, "+"):
			credit = true
			t = t[1:]
		case strings.HasPrefix(t, "-"):
			negative = true
			t = t[1:]
		}
		t = currencyPrefix.ReplaceAllString(strings.TrimSpace(t), "")
	}

	t = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, t)

	if !plainNumber.MatchString(t) {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	d = d.Abs()
	if credit || negative {
		d = d.Neg()
	}
	return n.round(d), nil
}

// round rounds half away from zero to the currency's minor unit.
func (n *Normalizer) round(d decimal.Decimal) decimal.Decimal {
	return d.Round(int32(n.currency.Fraction))
}

// Display formats an amount with the currency's symbol and separators,
// e.g. "₹145,000.00".
func (n *Normalizer) Display(a models.Amount) string {
	minor := a.Decimal().Shift(int32(n.currency.Fraction)).Round(0).IntPart()
	return money.New(minor, n.currency.Code).Display()
}

var lastFourPattern = regexp.MustCompile(`[Xx*•]{2,}[\s-]*(\d{4})\s*$`)

// LastFour returns the four digits that end a masked card number such as
// "5522 60XX XXXX 1234" or "4893********9876".
func LastFour(masked string) (string, error) {
	m := lastFourPattern.FindStringSubmatch(masked)
	if m == nil {
		return "", failure.Extraction("card number %q is not a masked card number ending in 4 digits", strings.TrimSpace(masked))
	}
	return m[1], nil
}

// cleanText removes control characters and collapses runs of whitespace.
func cleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
