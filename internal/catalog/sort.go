package catalog

import "sort"

// SortSpec orders items by a single field.
type SortSpec struct {
	Field      SortField
	Descending bool
}

// Less compares two items under the spec. Values that parse as numbers
// compare numerically; if either side fails to parse, both compare as raw
// strings. Missing values read as 0 on the numeric path.
func (s SortSpec) Less(a, b *Item) bool {
	av, bv := a.value(s.Field), b.value(s.Field)
	af, aok := av.Float()
	bf, bok := bv.Float()
	if av == "" {
		af, aok = 0, true
	}
	if bv == "" {
		bf, bok = 0, true
	}
	if aok && bok {
		if s.Descending {
			return af > bf
		}
		return af < bf
	}
	if s.Descending {
		return string(av) > string(bv)
	}
	return string(av) < string(bv)
}

// Sort stably orders catalog indices in place under the spec.
func (s SortSpec) Sort(c *Catalog, indices []int) {
	sort.SliceStable(indices, func(i, j int) bool {
		return s.Less(c.At(indices[i]), c.At(indices[j]))
	})
}
