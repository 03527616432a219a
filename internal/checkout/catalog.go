package checkout

import (
	"sort"

	"popup-checkout/internal/domain"
)

// Catalog indexes the products a cart may reference. Inactive products are
// kept so owned items can still be priced, but they are never offered.
type Catalog struct {
	products map[int64]domain.Product
	order    []int64
}

// NewCatalog builds a Catalog preserving the input order.
func NewCatalog(products []domain.Product) *Catalog {
	c := &Catalog{products: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		if _, dup := c.products[p.ID]; !dup {
			c.order = append(c.order, p.ID)
		}
		c.products[p.ID] = p
	}
	return c
}

// Product returns any known product, active or not.
func (c *Catalog) Product(id int64) (domain.Product, bool) {
	if c == nil {
		return domain.Product{}, false
	}
	p, ok := c.products[id]
	return p, ok
}

// Offered returns the product only when it is active and of the given category.
func (c *Catalog) Offered(id int64, category domain.ProductCategory) (domain.Product, bool) {
	p, ok := c.Product(id)
	if !ok || !p.IsActive || p.Category != category {
		return domain.Product{}, false
	}
	return p, true
}

// ByCategory lists active products of a category in catalog order.
func (c *Catalog) ByCategory(category domain.ProductCategory) []domain.Product {
	if c == nil {
		return nil
	}
	var out []domain.Product
	for _, id := range c.order {
		p := c.products[id]
		if p.IsActive && p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Has reports whether at least one active product of the category exists.
func (c *Catalog) Has(category domain.ProductCategory) bool {
	return len(c.ByCategory(category)) > 0
}

// All returns every product in catalog order.
func (c *Catalog) All() []domain.Product {
	if c == nil {
		return nil
	}
	out := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

// Grouped returns active products keyed by category with stable ordering by price.
func (c *Catalog) Grouped() map[domain.ProductCategory][]domain.Product {
	out := map[domain.ProductCategory][]domain.Product{}
	for _, cat := range []domain.ProductCategory{domain.CategoryPass, domain.CategoryHousing, domain.CategoryMerch, domain.CategoryPatron} {
		items := c.ByCategory(cat)
		sort.SliceStable(items, func(i, j int) bool { return items[i].PriceCents < items[j].PriceCents })
		out[cat] = items
	}
	return out
}
