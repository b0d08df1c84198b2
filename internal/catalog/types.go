// Package catalog holds the immutable title catalog, structured filtering,
// sort specifications, and title resolution (exact and fuzzy).
//
// The catalog is loaded once at startup and passed into every component that
// needs it; nothing in this package mutates it after construction.
package catalog

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// RawValue is a scraped field value. The scrapers emit a mix of JSON strings
// and numbers for the same logical field, so both decode into the raw string
// form; numeric interpretation happens lazily at filter/sort time.
type RawValue string

// UnmarshalJSON accepts strings, numbers, and null.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = RawValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = RawValue(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	return fmt.Errorf("unsupported value %s", string(data))
}

// Float interprets the value as a number. Empty (missing) values read as 0;
// ok reports whether the value actually parsed.
func (v RawValue) Float() (f float64, ok bool) {
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FloatOrZero interprets the value as a number, treating missing or
// unparseable values as 0. Used by filtering, where absent metadata must not
// exclude an item from numeric thresholds by raising.
func (v RawValue) FloatOrZero() float64 {
	f, _ := v.Float()
	return f
}

// Item is one catalog entry. The title string is the unique key; everything
// else is scraped metadata.
type Item struct {
	Title         string `json:"title"`
	Genre         string `json:"genre"`
	Description   string `json:"description"`
	Cast          string `json:"cast"`
	Director      string `json:"director"`
	Publisher     string `json:"publisher"`
	Keywords      string `json:"keywords"`
	Screenwriters string `json:"screenwriters"`

	RatingValue   RawValue `json:"rating_value"`
	RatingCount   RawValue `json:"rating_count"`
	Episodes      RawValue `json:"episodes"`
	Duration      RawValue `json:"duration"`
	Popularity    RawValue `json:"popularity"`
	Ranked        RawValue `json:"ranked"`
	Watchers      RawValue `json:"watchers"`
	DatePublished RawValue `json:"date_published"`
}

// SortField identifies a sortable item field. The set is closed: dynamic
// string field names from callers are parsed through ParseSortField.
type SortField string

const (
	SortByRatingValue   SortField = "rating_value"
	SortByPopularity    SortField = "popularity"
	SortByDatePublished SortField = "date_published"
	SortByEpisodes      SortField = "episodes"
	SortByDuration      SortField = "duration"
	SortByRanked        SortField = "ranked"
	SortByWatchers      SortField = "watchers"
)

// sortFields is the allowed set, in the order the UI offers them.
var sortFields = []SortField{
	SortByRatingValue,
	SortByPopularity,
	SortByDatePublished,
	SortByEpisodes,
	SortByDuration,
	SortByRanked,
	SortByWatchers,
}

// ParseSortField validates a caller-supplied field name.
func ParseSortField(name string) (SortField, error) {
	for _, f := range sortFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported sort field %q", name)
}

// value returns the raw value for a sort field.
func (it *Item) value(field SortField) RawValue {
	switch field {
	case SortByRatingValue:
		return it.RatingValue
	case SortByPopularity:
		return it.Popularity
	case SortByDatePublished:
		return it.DatePublished
	case SortByEpisodes:
		return it.Episodes
	case SortByDuration:
		return it.Duration
	case SortByRanked:
		return it.Ranked
	case SortByWatchers:
		return it.Watchers
	default:
		return ""
	}
}
