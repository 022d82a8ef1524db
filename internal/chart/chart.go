// Package chart lays out category totals as bar and pie geometry and
// renders that geometry to SVG. Layout never fails.
package chart

import (
	"bytes"
	"encoding/xml"
)

const (
	BarPlaceholder = "No data available"
	PiePlaceholder = "No expenses this month"
)

var (
	BarPalette = []string{
		"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6",
		"#EC4899", "#06B6D4", "#84CC16", "#F97316", "#6366F1",
	}
	PiePalette = []string{
		"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6", "#F97316", "#06B6D4", "#84CC16",
	}
)

func colorAt(palette []string, i int) string {
	return palette[i%len(palette)]
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
