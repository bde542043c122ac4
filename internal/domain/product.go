package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ColorTable names the plotting palette for a product and the linear mapping
// from an unsigned pixel level to the palette's physical scale.
type ColorTable struct {
	Name      string  `json:"name"`
	Min       float64 `json:"min"`
	Increment float64 `json:"increment"`
}

// Value maps a pixel level onto the color table scale.
func (c ColorTable) Value(level uint8) float64 {
	return c.Min + float64(level)*c.Increment
}

// Product describes one NEXRAD Level-III product.
type Product struct {
	Code       string     `json:"code"`
	ID         int        `json:"id"`
	Unit       string     `json:"unit"`
	Name       string     `json:"name"`
	ColorTable ColorTable `json:"color_table"`
	Resolution float64    `json:"resolution"` // metres per range gate
	Elevation  string     `json:"elevation"`  // primary elevation angle, degrees
}

// Catalog is an immutable lookup of products by code.
type Catalog struct {
	products map[string]Product
}

// NewCatalog builds a catalog from the given products. Codes are matched
// case-insensitively; a duplicate code is an error.
func NewCatalog(products ...Product) (Catalog, error) {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		code := strings.ToUpper(strings.TrimSpace(p.Code))
		if code == "" {
			return Catalog{}, fmt.Errorf("product %d: empty code", p.ID)
		}
		if _, ok := m[code]; ok {
			return Catalog{}, fmt.Errorf("duplicate product code %q", code)
		}
		p.Code = code
		m[code] = p
	}
	return Catalog{products: m}, nil
}

// DefaultCatalog returns the built-in base reflectivity and base velocity products.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(
		Product{
			Code:       "N0Q",
			ID:         94,
			Unit:       "dBZ",
			Name:       "0.5 deg Base Reflectivity",
			ColorTable: ColorTable{Name: "NWSStormClearReflectivity", Min: -20, Increment: 0.5},
			Resolution: 1000,
			Elevation:  "0.5",
		},
		Product{
			Code:       "N0U",
			ID:         99,
			Unit:       "kts",
			Name:       "0.5 deg Base Velocity",
			ColorTable: ColorTable{Name: "NWS8bitVel", Min: -100, Increment: 1},
			Resolution: 250,
			Elevation:  "0.5",
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the product registered under code.
func (c Catalog) Lookup(code string) (Product, bool) {
	p, ok := c.products[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}

// Codes lists the registered product codes in sorted order.
func (c Catalog) Codes() []string {
	codes := make([]string, 0, len(c.products))
	for code := range c.products {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
