// Package catalog holds the static registry of purchasable items, their
// customization groups and category metadata, plus the store settings that
// pricing and order assembly depend on. Everything here is read-only after
// load and safe to share across sessions.
package catalog

import (
	"sort"

	"github.com/shopspring/decimal"
)

// GroupKind tags a customization group with its semantic role. The set is
// open: unknown kinds are accepted by the loader and passed through.
type GroupKind string

const (
	KindSize        GroupKind = "size"
	KindMilk        GroupKind = "milk"
	KindSyrup       GroupKind = "syrup"
	KindExtra       GroupKind = "extra"
	KindTemperature GroupKind = "temperature"
)

// Option is one selectable choice within a customization group. The price
// modifier is signed: negative modifiers discount the item.
type Option struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

// Group is a named set of related options attached to an item. When
// MaxSelections is nil the group is unlimited; when it is 1 the group has
// single-choice (radio) semantics.
type Group struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Kind          GroupKind `json:"kind"`
	Required      bool      `json:"required"`
	MaxSelections *int      `json:"max_selections,omitempty"`
	Options       []Option  `json:"options"`
}

// Option returns the option with the given id, or false if the group has no
// such option.
func (g Group) Option(id string) (Option, bool) {
	for _, o := range g.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// SingleChoice reports whether the group carries radio semantics.
func (g Group) SingleChoice() bool {
	return g.MaxSelections != nil && *g.MaxSelections == 1
}

// Item is one purchasable catalog entry.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price"`
	CategoryID  string          `json:"category"`
	Available   bool            `json:"available"`
	Groups      []Group         `json:"customizations,omitempty"`
}

// Group returns the customization group with the given id, or false if the
// item has no such group.
func (it Item) Group(id string) (Group, bool) {
	for _, g := range it.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// Category is display metadata for grouping menu items.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	Color        string `json:"color,omitempty"`
}

// Settings is the store-level configuration loaded alongside the menu.
type Settings struct {
	StoreName         string          `json:"store_name"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Currency          string          `json:"currency"`
	OrderNumberPrefix string          `json:"order_number_prefix"`
	TableService      bool            `json:"enable_table_service"`
	CustomerNames     bool            `json:"enable_customer_names"`
}

// Catalog is the loaded menu: items, categories and store settings.
type Catalog struct {
	Items      []Item     `json:"items"`
	Categories []Category `json:"categories"`
	Settings   Settings   `json:"settings"`

	byID map[string]int
}

// Item returns the catalog item with the given id, or false if absent.
func (c *Catalog) Item(id string) (Item, bool) {
	if c.byID != nil {
		if i, ok := c.byID[id]; ok {
			return c.Items[i], true
		}
		return Item{}, false
	}
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Available returns the available items, optionally restricted to one
// category. Order follows the menu file.
func (c *Catalog) Available(categoryID string) []Item {
	out := make([]Item, 0, len(c.Items))
	for _, it := range c.Items {
		if !it.Available {
			continue
		}
		if categoryID != "" && it.CategoryID != categoryID {
			continue
		}
		out = append(out, it)
	}
	return out
}

// SortedCategories returns the categories in display order.
func (c *Catalog) SortedCategories() []Category {
	out := make([]Category, len(c.Categories))
	copy(out, c.Categories)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

func (c *Catalog) index() {
	c.byID = make(map[string]int, len(c.Items))
	for i, it := range c.Items {
		c.byID[it.ID] = i
	}
}
