package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Load reads and validates a menu file. The file carries the items, the
// categories and the store settings in one document.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a menu document.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid menu: %w", err)
	}
	c.index()
	return &c, nil
}

func (c *Catalog) validate() error {
	if c.Settings.Currency == "" {
		return fmt.Errorf("settings: currency is required")
	}
	if c.Settings.TaxRate.IsNegative() || c.Settings.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("settings: tax rate %s out of range [0, 1]", c.Settings.TaxRate)
	}
	cats := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("category %q: missing id", cat.Name)
		}
		if cats[cat.ID] {
			return fmt.Errorf("duplicate category id %q", cat.ID)
		}
		cats[cat.ID] = true
	}
	seen := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		if it.ID == "" {
			return fmt.Errorf("item %q: missing id", it.Name)
		}
		if seen[it.ID] {
			return fmt.Errorf("duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if it.BasePrice.IsNegative() {
			return fmt.Errorf("item %q: negative base price %s", it.ID, it.BasePrice)
		}
		if !cats[it.CategoryID] {
			return fmt.Errorf("item %q: unknown category %q", it.ID, it.CategoryID)
		}
		if err := validateGroups(it); err != nil {
			return err
		}
	}
	return nil
}

func validateGroups(it Item) error {
	groups := make(map[string]bool, len(it.Groups))
	for _, g := range it.Groups {
		if g.ID == "" {
			return fmt.Errorf("item %q: customization group with missing id", it.ID)
		}
		if groups[g.ID] {
			return fmt.Errorf("item %q: duplicate group id %q", it.ID, g.ID)
		}
		groups[g.ID] = true
		if g.MaxSelections != nil && *g.MaxSelections < 1 {
			return fmt.Errorf("item %q group %q: max_selections must be >= 1", it.ID, g.ID)
		}
		if len(g.Options) == 0 {
			return fmt.Errorf("item %q group %q: no options", it.ID, g.ID)
		}
		opts := make(map[string]bool, len(g.Options))
		for _, o := range g.Options {
			if o.ID == "" {
				return fmt.Errorf("item %q group %q: option with missing id", it.ID, g.ID)
			}
			if opts[o.ID] {
				return fmt.Errorf("item %q group %q: duplicate option id %q", it.ID, g.ID, o.ID)
			}
			opts[o.ID] = true
		}
	}
	return nil
}
