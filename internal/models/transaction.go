package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual form of every date in a parse result (e.g. 08-Oct-2025).
const DateLayout = "02-Jan-2006"

// Date is a calendar date serialised as DD-Mon-YYYY.
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Amount is a signed currency amount serialised as a bare JSON number.
type Amount struct {
	d decimal.Decimal
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// MustAmount parses s and panics on failure. Intended for fixtures.
func MustAmount(s string) Amount {
	return Amount{d: decimal.RequireFromString(s)}
}

func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

func (a Amount) String() string {
	return a.d.String()
}

// Float64 returns the nearest float64 value.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	d, err := decimal.NewFromString(strings.Trim(string(b), `"`))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", b, err)
	}
	a.d = d
	return nil
}

// Transaction is a single statement line. Positive amounts are charges,
// negative amounts are payments or credits.
type Transaction struct {
	Date     Date   `json:"date"`
	Merchant string `json:"merchant"`
	Amount   Amount `json:"amount"`
}

// StatementSummary holds the header fields printed on the first page.
type StatementSummary struct {
	CardName        string `json:"card_name"`
	CardLast4Digits string `json:"card_last_4_digits"`
	NameOnCard      string `json:"name_on_card"`
	AvailableLimit  Amount `json:"available_limit"`
}

// ParseResult is the response body of a successful parse.
type ParseResult struct {
	StatementSummary
	Transactions []Transaction `json:"transactions"`
}

// Issuer identifies a card issuer's statement template.
type Issuer string

const (
	IssuerHDFC Issuer = "hdfc"
)
