// Package datamodel holds the wire shapes exchanged with the expense API.
package datamodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	locationMu sync.RWMutex
	location   = time.Local
)

// SetLocation sets the zone in which naive API datetimes are interpreted.
func SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	locationMu.Lock()
	location = loc
	locationMu.Unlock()
}

func Location() *time.Location {
	locationMu.RLock()
	defer locationMu.RUnlock()
	return location
}

// naive layouts carry no offset and are read in Location().
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is a record date as emitted by the API. Values with an offset
// are converted to Location(); naive values are taken as already local.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	loc := Location()

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return Timestamp{Time: t.In(loc)}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised date %q", value)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// YearMonth returns the calendar year and zero based month in Location().
func (t Timestamp) YearMonth() (int, int) {
	local := t.In(Location())
	return local.Year(), int(local.Month()) - 1
}
