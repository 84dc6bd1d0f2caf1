package models

import "strings"

// Cell is a run of text on a line with its horizontal extent in points.
type Cell struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	EndX float64 `json:"endX"`
}

// Center returns the horizontal midpoint of the cell.
func (c Cell) Center() float64 {
	return (c.X + c.EndX) / 2
}

// Overlaps reports whether the horizontal extents of c and o intersect.
func (c Cell) Overlaps(o Cell) bool {
	return c.X <= o.EndX && o.X <= c.EndX
}

// Line is one visual row of a page, cells ordered left to right.
type Line struct {
	Y     float64 `json:"y"`
	Cells []Cell  `json:"cells"`
}

// Text joins the cells with a double space, the way layout-preserving
// text extraction renders column gaps.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Cells))
	for _, c := range l.Cells {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "  ")
}

// CellTexts returns the text of every cell.
func (l Line) CellTexts() []string {
	out := make([]string, len(l.Cells))
	for i, c := range l.Cells {
		out[i] = c.Text
	}
	return out
}

// Page is the reconstructed text layout of one PDF page (1-indexed).
type Page struct {
	Number int    `json:"number"`
	Lines  []Line `json:"lines"`
}

// Text returns the page as newline separated lines.
func (p Page) Text() string {
	lines := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, l.Text())
	}
	return strings.Join(lines, "\n")
}

// RawTransaction holds a transaction row exactly as printed.
type RawTransaction struct {
	Page     int
	Date     string
	Merchant string
	Amount   string
}

// RawStatement is what a statement layout extracts before normalization.
// CardName has the issuer's branding words already removed.
type RawStatement struct {
	Issuer         Issuer
	CardName       string
	NameOnCard     string
	MaskedNumber   string
	AvailableLimit string
	Transactions   []RawTransaction
}
