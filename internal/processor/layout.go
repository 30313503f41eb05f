package processor

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Glyphs whose baselines differ by less than this many points share a line
const lineTolerance = 2.0

// layoutLines rebuilds the visual lines of a page from positioned glyphs,
// top of the page first, each line read left to right.
func layoutLines(glyphs []pdf.Text) []string {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	// PDF user space grows upwards, so the top line has the largest Y
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]pdf.Text
	var current []pdf.Text
	baseline := sorted[0].Y
	for _, g := range sorted {
		if len(current) > 0 && baseline-g.Y > lineTolerance {
			rows = append(rows, current)
			current = nil
		}
		if len(current) == 0 {
			baseline = g.Y
		}
		current = append(current, g)
	}
	rows = append(rows, current)

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})
		lines = append(lines, joinGlyphs(row))
	}

	return lines
}

// joinGlyphs concatenates a row of glyphs, inserting a space wherever the
// horizontal gap to the previous glyph looks like a word break.
func joinGlyphs(row []pdf.Text) string {
	var sb strings.Builder
	for i, g := range row {
		if i > 0 {
			prev := row[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > wordGap(prev) && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(g.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
	}
	return strings.TrimRight(sb.String(), " ")
}

func wordGap(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize * 0.2
	}
	return 1
}
