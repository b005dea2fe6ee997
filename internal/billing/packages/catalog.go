package packages

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/quotebook/quotebook/internal/billing/shared"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Packages []packageEntry `yaml:"packages"`
}

type packageEntry struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description"`
	PriceInclVat string      `yaml:"price_incl_vat"`
	PriceExclVat string      `yaml:"price_excl_vat"`
	Items        []itemEntry `yaml:"items"`
}

type itemEntry struct {
	Description string `yaml:"description"`
	Unit        string `yaml:"unit"`
	Qty         string `yaml:"qty"`
	UnitPrice   string `yaml:"unit_price"`
	Taxable     bool   `yaml:"taxable"`
	ItemType    string `yaml:"item_type"`
}

// Catalog is the static list of packages offered in the quote editor.
type Catalog struct {
	packages []Package
	byID     map[string]int
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(defaultCatalog)
	})
	return defaultCat, defaultErr
}

// Parse decodes a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("packages: decode catalog: %w", err)
	}
	cat := &Catalog{byID: make(map[string]int, len(file.Packages))}
	for _, entry := range file.Packages {
		pkg, err := entry.toPackage()
		if err != nil {
			return nil, err
		}
		if _, dup := cat.byID[pkg.ID]; dup {
			return nil, fmt.Errorf("packages: duplicate id %q", pkg.ID)
		}
		cat.byID[pkg.ID] = len(cat.packages)
		cat.packages = append(cat.packages, pkg)
	}
	return cat, nil
}

func (e packageEntry) toPackage() (Package, error) {
	if e.ID == "" {
		return Package{}, fmt.Errorf("packages: entry %q missing id", e.Name)
	}
	pkg := Package{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Items:       make([]shared.Item, 0, len(e.Items)),
	}
	var err error
	if pkg.PriceInclVat, err = decimal.NewFromString(e.PriceInclVat); err != nil {
		return Package{}, fmt.Errorf("packages: %s price_incl_vat: %w", e.ID, err)
	}
	if pkg.PriceExclVat, err = decimal.NewFromString(e.PriceExclVat); err != nil {
		return Package{}, fmt.Errorf("packages: %s price_excl_vat: %w", e.ID, err)
	}
	for i, it := range e.Items {
		itemType := shared.ItemType(it.ItemType)
		if itemType == "" {
			itemType = shared.ItemTypeFixed
		}
		if !itemType.Valid() {
			return Package{}, fmt.Errorf("packages: %s item %d: unknown item type %q", e.ID, i, it.ItemType)
		}
		qty, err := decimal.NewFromString(it.Qty)
		if err != nil {
			return Package{}, fmt.Errorf("packages: %s item %d qty: %w", e.ID, i, err)
		}
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return Package{}, fmt.Errorf("packages: %s item %d unit_price: %w", e.ID, i, err)
		}
		unit := it.Unit
		if unit == "" {
			unit = "unit"
		}
		pkg.Items = append(pkg.Items, shared.Item{
			Description: it.Description,
			Unit:        unit,
			Qty:         qty,
			UnitPrice:   price,
			Taxable:     it.Taxable,
			ItemType:    itemType,
		})
	}
	return pkg, nil
}

// List returns the packages in catalog order. Item slices are copies.
func (c *Catalog) List() []Package {
	if c == nil {
		return nil
	}
	out := make([]Package, len(c.packages))
	for i, pkg := range c.packages {
		out[i] = clonePackage(pkg)
	}
	return out
}

// Get looks a package up by id.
func (c *Catalog) Get(id string) (Package, bool) {
	if c == nil {
		return Package{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return Package{}, false
	}
	return clonePackage(c.packages[idx]), true
}

func clonePackage(pkg Package) Package {
	pkg.Items = shared.CloneItems(pkg.Items)
	return pkg
}
