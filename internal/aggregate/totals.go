package aggregate

import (
	"encoding/json"
	"iter"

	"github.com/shopspring/decimal"
)

type Entry struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Totals is an insertion ordered name to amount mapping.
type Totals struct {
	order []string
	sums  map[string]decimal.Decimal
}

func NewTotals() *Totals {
	return &Totals{sums: make(map[string]decimal.Decimal)}
}

func (t *Totals) Add(name string, amount decimal.Decimal) {
	current, seen := t.sums[name]
	if !seen {
		t.order = append(t.order, name)
		current = decimal.Zero
	}
	t.sums[name] = current.Add(amount)
}

func (t *Totals) Get(name string) (decimal.Decimal, bool) {
	v, ok := t.sums[name]
	return v, ok
}

func (t *Totals) Len() int {
	return len(t.order)
}

func (t *Totals) Names() []string {
	return append([]string(nil), t.order...)
}

// All yields name and amount in insertion order.
func (t *Totals) All() iter.Seq2[string, decimal.Decimal] {
	return func(yield func(string, decimal.Decimal) bool) {
		for _, name := range t.order {
			if !yield(name, t.sums[name]) {
				return
			}
		}
	}
}

func (t *Totals) Entries() []Entry {
	out := make([]Entry, 0, len(t.order))
	for name, amount := range t.All() {
		out = append(out, Entry{Name: name, Amount: amount})
	}
	return out
}

func (t *Totals) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range t.All() {
		total = total.Add(amount)
	}
	return total
}

// MarshalJSON keeps insertion order by encoding as a list of entries.
func (t *Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Entries())
}
