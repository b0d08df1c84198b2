package catalog

import "strings"

// FilterSpec narrows the catalog to a candidate universe before retrieval.
// Text fields are case-insensitive substring matches; numeric thresholds are
// inclusive minimums with zero meaning unset.
type FilterSpec struct {
	Genre         string
	Director      string
	Publisher     string
	Description   string
	Keywords      string
	Screenwriters string

	MinRatingValue float64
	MinRatingCount float64
}

// IsZero reports whether no filter is set.
func (f FilterSpec) IsZero() bool {
	return f == FilterSpec{}
}

// Matches reports whether an item passes every set predicate.
func (f FilterSpec) Matches(it *Item) bool {
	if !containsFold(it.Genre, f.Genre) {
		return false
	}
	if !containsFold(it.Director, f.Director) {
		return false
	}
	if !containsFold(it.Publisher, f.Publisher) {
		return false
	}
	if !containsFold(it.Description, f.Description) {
		return false
	}
	if !containsFold(it.Keywords, f.Keywords) {
		return false
	}
	if !containsFold(it.Screenwriters, f.Screenwriters) {
		return false
	}
	if f.MinRatingValue > 0 && it.RatingValue.FloatOrZero() < f.MinRatingValue {
		return false
	}
	if f.MinRatingCount > 0 && it.RatingCount.FloatOrZero() < f.MinRatingCount {
		return false
	}
	return true
}

// Apply returns the indices of matching items in ascending catalog order.
// An unset filter returns every index.
func (f FilterSpec) Apply(c *Catalog) []int {
	universe := make([]int, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if f.Matches(c.At(i)) {
			universe = append(universe, i)
		}
	}
	return universe
}

// containsFold is a case-insensitive substring check. An empty needle always
// matches (unset predicate).
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
