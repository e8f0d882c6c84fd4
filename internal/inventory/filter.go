package inventory

import "strings"

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	CategoryID string
	LowStock   bool
	ActiveOnly bool

	// Search matches SKU or name, case-insensitively.
	Search string

	// IDs restricts the listing to the given product ids.
	IDs []string
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Product) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.LowStock && !p.LowStock() {
		return false
	}
	if f.ActiveOnly && !p.Active {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.SKU), q) && !strings.Contains(strings.ToLower(p.Name), q) {
			return false
		}
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == p.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply returns the products that match, in order.
func (f Filter) Apply(products []Product) []Product {
	var out []Product
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
