// Package catalogfile reads the product seed from YAML.
package catalogfile

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type file struct {
	Products []entry `yaml:"products"`
}

type entry struct {
	ID       int      `yaml:"id"`
	Name     string   `yaml:"name"`
	Price    string   `yaml:"price"`
	Stock    int      `yaml:"stock"`
	Category string   `yaml:"category"`
	Sizes    []string `yaml:"sizes"`
	Colors   []string `yaml:"colors"`
}

// Default returns the built-in six-product catalog.
func Default() ([]*inventory.Product, error) {
	return Parse(defaultCatalog)
}

// LoadFile loads and parses a YAML catalog from the given path.
func LoadFile(path string) ([]*inventory.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML data into products. Ids must be unique.
func Parse(data []byte) ([]*inventory.Product, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}

	seen := make(map[int]bool, len(f.Products))
	out := make([]*inventory.Product, 0, len(f.Products))
	for i, e := range f.Products {
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog: entry %d: %w: id %d", i, inventory.ErrDuplicateProduct, e.ID)
		}
		seen[e.ID] = true

		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog: entry %d: price %q: %w", i, e.Price, err)
		}
		p, err := inventory.NewProduct(e.ID, e.Name, price, e.Stock, e.Category, e.Sizes, e.Colors)
		if err != nil {
			return nil, fmt.Errorf("catalog: entry %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
