package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/shopspring/decimal"
)

// Pie geometry is drawn on a 200x200 canvas.
const (
	PieCenter = 100.0
	PieRadius = 80.0
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Slice struct {
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
	StartAngle float64         `json:"start_angle"`
	EndAngle   float64         `json:"end_angle"`
	LargeArc   bool            `json:"large_arc"`
	Start      Point           `json:"start"`
	End        Point           `json:"end"`
	Color      string          `json:"color"`
}

func (s Slice) Sweep() float64 {
	return s.EndAngle - s.StartAngle
}

// Path is the SVG path of the slice. A slice covering the whole circle is
// drawn as two half arcs since a single arc cannot end where it starts.
func (s Slice) Path() string {
	if s.Percentage >= 100 {
		top := pointAt(0)
		bottom := pointAt(180)
		return fmt.Sprintf("M %s A %g %g 0 1 1 %s A %g %g 0 1 1 %s Z",
			top, PieRadius, PieRadius, bottom, PieRadius, PieRadius, top)
	}
	largeArc := 0
	if s.LargeArc {
		largeArc = 1
	}
	return fmt.Sprintf("M %g %g L %s A %g %g 0 %d 1 %s Z",
		PieCenter, PieCenter, s.Start, PieRadius, PieRadius, largeArc, s.End)
}

func (p Point) String() string {
	return fmt.Sprintf("%.4f %.4f", p.X, p.Y)
}

type PieChart struct {
	Slices      []Slice         `json:"slices"`
	Total       decimal.Decimal `json:"total"`
	Empty       bool            `json:"empty"`
	Placeholder string          `json:"placeholder,omitempty"`
}

// Pie gives each entry a slice proportional to its share of the total,
// in iteration order, clockwise from 12 o'clock.
func Pie(totals *aggregate.Totals) PieChart {
	if totals == nil {
		return PieChart{Empty: true, Placeholder: PiePlaceholder}
	}
	total := totals.Sum()
	if !total.IsPositive() {
		return PieChart{Total: total, Empty: true, Placeholder: PiePlaceholder}
	}

	hundred := decimal.NewFromInt(100)
	out := make([]Slice, 0, totals.Len())
	cumulative := decimal.Zero
	i := 0
	for name, amount := range totals.All() {
		share := amount.Div(total).Mul(hundred)
		start := cumulative.Div(hundred).InexactFloat64() * 360
		cumulative = cumulative.Add(share)
		end := cumulative.Div(hundred).InexactFloat64() * 360

		percentage := share.InexactFloat64()
		out = append(out, Slice{
			Name:       name,
			Amount:     amount,
			Percentage: percentage,
			StartAngle: start,
			EndAngle:   end,
			LargeArc:   percentage > 50,
			Start:      pointAt(start),
			End:        pointAt(end),
			Color:      colorAt(PiePalette, i),
		})
		i++
	}

	// decimal division rounds; pin the last edge so the circle closes.
	out[len(out)-1].EndAngle = 360
	out[len(out)-1].End = pointAt(360)

	return PieChart{Slices: out, Total: total}
}

// pointAt maps an angle measured clockwise from 12 o'clock onto the circle.
func pointAt(angle float64) Point {
	rad := (angle - 90) * math.Pi / 180
	return Point{
		X: PieCenter + PieRadius*math.Cos(rad),
		Y: PieCenter + PieRadius*math.Sin(rad),
	}
}

const pieLegendRow = 22

func (c PieChart) WriteSVG(w io.Writer) error {
	if c.Empty {
		return writePlaceholder(w, 200, 200, c.Placeholder)
	}

	height := 200 + len(c.Slices)*pieLegendRow + 10
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="320" height="%d" viewBox="0 0 320 %d" font-family="sans-serif" font-size="13">`+"\n", height, height)
	for _, s := range c.Slices {
		if s.Sweep() <= 0 {
			continue
		}
		fmt.Fprintf(&b, `<path d="%s" fill="%s" stroke="white" stroke-width="2"/>`+"\n", s.Path(), s.Color)
	}
	for i, s := range c.Slices {
		y := 210 + i*pieLegendRow
		fmt.Fprintf(&b, `<rect x="10" y="%d" width="14" height="14" rx="7" fill="%s"/><text x="32" y="%d">%s: $%s</text>`+"\n",
			y, s.Color, y+12, escape(s.Name), aggregate.FormatAmount(s.Amount))
	}
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}
