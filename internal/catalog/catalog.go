package catalog

import (
	"os"
	"strings"

	"github.com/goccy/go-json"

	serrors "github.com/hanbit/seoulmate/internal/errors"
)

// Catalog is the loaded title set. Item order is load order and is stable for
// the life of the process; ranking ties break on this order.
type Catalog struct {
	items        []Item
	byLowerTitle map[string]int
}

// Load reads a JSON array of items from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeCatalogLoad, "read catalog file", err).
			WithDetail("path", path)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, serrors.New(serrors.ErrCodeCatalogLoad, "parse catalog file", err).
			WithDetail("path", path)
	}
	return New(items), nil
}

// New builds a catalog from an item slice. The slice is not copied; callers
// must not mutate it afterwards.
func New(items []Item) *Catalog {
	byTitle := make(map[string]int, len(items))
	for i := range items {
		key := strings.ToLower(items[i].Title)
		if _, exists := byTitle[key]; !exists {
			byTitle[key] = i
		}
	}
	return &Catalog{items: items, byLowerTitle: byTitle}
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Items returns the underlying item slice. Read-only.
func (c *Catalog) Items() []Item { return c.items }

// At returns the item at index i.
func (c *Catalog) At(i int) *Item { return &c.items[i] }

// IndexOf resolves a title case-insensitively to its catalog index.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.byLowerTitle[strings.ToLower(title)]
	return i, ok
}
