package chart

import (
	"fmt"
	"io"
	"slices"

	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/shopspring/decimal"
)

// MinBarWidthPercent keeps tiny amounts visible.
const MinBarWidthPercent = 2.0

type BarEntry struct {
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	WidthPercent float64         `json:"width_percent"`
	Color        string          `json:"color"`
}

type BarChart struct {
	Bars        []BarEntry `json:"bars"`
	Empty       bool       `json:"empty"`
	Placeholder string     `json:"placeholder,omitempty"`
}

// Bar sorts entries by amount, largest first, keeping insertion order for
// ties, and scales each against the largest amount.
func Bar(totals *aggregate.Totals) BarChart {
	if totals == nil || totals.Len() == 0 {
		return BarChart{Empty: true, Placeholder: BarPlaceholder}
	}

	entries := totals.Entries()
	slices.SortStableFunc(entries, func(a, b aggregate.Entry) int {
		return b.Amount.Cmp(a.Amount)
	})

	largest := entries[0].Amount
	bars := make([]BarEntry, len(entries))
	for i, e := range entries {
		width := MinBarWidthPercent
		if largest.IsPositive() {
			width = e.Amount.Div(largest).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		if width < MinBarWidthPercent {
			width = MinBarWidthPercent
		}
		bars[i] = BarEntry{
			Name:         e.Name,
			Amount:       e.Amount,
			WidthPercent: width,
			Color:        colorAt(BarPalette, i),
		}
	}
	return BarChart{Bars: bars}
}

const (
	barCanvasWidth = 480
	barLabelWidth  = 120
	barTrackWidth  = 260
	barRowHeight   = 32
	barHeight      = 24
)

func (c BarChart) WriteSVG(w io.Writer) error {
	if c.Empty {
		return writePlaceholder(w, barCanvasWidth, 80, c.Placeholder)
	}

	height := len(c.Bars) * barRowHeight
	if _, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="13">`+"\n",
		barCanvasWidth, height, barCanvasWidth, height); err != nil {
		return err
	}

	for i, b := range c.Bars {
		y := i * barRowHeight
		fill := b.WidthPercent / 100 * barTrackWidth
		if _, err := fmt.Fprintf(w,
			`<text x="0" y="%d" fill="#374151">%s</text>`+
				`<rect x="%d" y="%d" width="%d" height="%d" rx="12" fill="#E5E7EB"/>`+
				`<rect x="%d" y="%d" width="%.2f" height="%d" rx="12" fill="%s"/>`+
				`<text x="%d" y="%d" text-anchor="end" font-weight="bold" fill="#111827">$%s</text>`+"\n",
			y+17, escape(b.Name),
			barLabelWidth, y, barTrackWidth, barHeight,
			barLabelWidth, y, fill, barHeight, b.Color,
			barCanvasWidth, y+17, aggregate.FormatAmount(b.Amount)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</svg>\n")
	return err
}

func writePlaceholder(w io.Writer, width, height int, text string) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="14">`+
			`<text x="%d" y="%d" text-anchor="middle" fill="#6B7280">%s</text></svg>`+"\n",
		width, height, width, height, width/2, height/2, escape(text))
	return err
}
