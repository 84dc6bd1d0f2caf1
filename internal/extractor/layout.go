package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

const (
	// Glyphs whose baselines differ by less than this share a row.
	baselineTolerance = 2.0

	// A horizontal gap wider than this fraction of the font size starts a new cell.
	columnGapRatio = 1.2

	// A gap wider than this fraction of the font size is a word break.
	wordGapRatio = 0.15

	defaultFontSize = 10.0

	// Approximate glyph advance used to turn pdftotext columns into points.
	layoutCharWidth = 6.0
)

type glyph struct {
	x, y, w, size float64
	s             string
}

// buildLines groups positioned glyphs into rows by baseline, orders each row
// left to right and splits it into cells on column gaps.
func buildLines(texts []pdf.Text) []models.Line {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" || t.S == "\n" || t.S == "\r" {
			continue
		}
		glyphs = append(glyphs, glyph{x: t.X, y: t.Y, w: t.W, size: t.FontSize, s: t.S})
	}
	if len(glyphs) == 0 {
		return nil
	}

	// PDF Y grows bottom to top
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].y != glyphs[j].y {
			return glyphs[i].y > glyphs[j].y
		}
		return glyphs[i].x < glyphs[j].x
	})

	var rows [][]glyph
	var rowY float64
	for _, g := range glyphs {
		if len(rows) == 0 || rowY-g.y > baselineTolerance {
			rows = append(rows, []glyph{g})
			rowY = g.y
			continue
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], g)
	}

	lines := make([]models.Line, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })
		cells := splitCells(row)
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, models.Line{Y: row[0].y, Cells: cells})
	}
	return lines
}

// splitCells joins the glyphs of one row into words and the words into
// cells. Two or more consecutive spaces, or a gap wider than the column
// ratio, separate cells.
func splitCells(row []glyph) []models.Cell {
	var cells []models.Cell
	var b strings.Builder
	var cur models.Cell
	open := false
	spaces := 0
	var prevEnd float64

	flush := func() {
		if !open {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		if cur.Text != "" {
			cells = append(cells, cur)
		}
		b.Reset()
		open = false
	}

	for _, g := range row {
		if strings.TrimSpace(g.s) == "" {
			spaces++
			continue
		}

		size := g.size
		if size <= 0 {
			size = defaultFontSize
		}

		if open {
			gap := g.x - prevEnd
			switch {
			case spaces >= 2 || gap > size*columnGapRatio:
				flush()
			case spaces == 1 || gap > size*wordGapRatio:
				b.WriteByte(' ')
			}
		}
		if !open {
			cur = models.Cell{X: g.x}
			open = true
		}

		b.WriteString(g.s)
		end := g.x + g.w
		if g.w <= 0 {
			end = g.x + size*0.5*float64(len([]rune(g.s)))
		}
		cur.EndX = end
		prevEnd = end
		spaces = 0
	}
	flush()
	return cells
}

var layoutCell = regexp.MustCompile(`\S+(?: \S+)*`)

// pagesFromLayoutText converts `pdftotext -layout` output into pages of
// cells. Form feeds separate pages; runs of two or more spaces separate cells.
func pagesFromLayoutText(text string) []models.Page {
	rawPages := strings.Split(text, "\f")
	pages := make([]models.Page, 0, len(rawPages))
	for i, raw := range rawPages {
		page := models.Page{Number: i + 1}
		for n, line := range strings.Split(raw, "\n") {
			s := strings.TrimRight(line, "\r")
			locs := layoutCell.FindAllStringIndex(s, -1)
			if len(locs) == 0 {
				continue
			}
			l := models.Line{Y: -float64(n)}
			for _, loc := range locs {
				col := len([]rune(s[:loc[0]]))
				cellText := s[loc[0]:loc[1]]
				width := len([]rune(cellText))
				l.Cells = append(l.Cells, models.Cell{
					Text: cellText,
					X:    float64(col) * layoutCharWidth,
					EndX: float64(col+width) * layoutCharWidth,
				})
			}
			page.Lines = append(page.Lines, l)
		}
		if len(page.Lines) > 0 || i < len(rawPages)-1 {
			pages = append(pages, page)
		}
	}
	return pages
}
