package catalog

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuDoc = `{
  "settings": {
    "store_name": "Test Cafe",
    "tax_rate": "0.0875",
    "currency": "USD",
    "order_number_prefix": "TC",
    "enable_table_service": true,
    "enable_customer_names": true
  },
  "categories": [
    {"id": "pastries", "name": "Pastries", "display_order": 2},
    {"id": "espresso", "name": "Espresso Drinks", "display_order": 1, "color": "#654321"}
  ],
  "items": [
    {
      "id": "latte",
      "name": "Latte",
      "base_price": "4.50",
      "category": "espresso",
      "available": true,
      "customizations": [
        {
          "id": "size",
          "name": "Size",
          "kind": "size",
          "required": true,
          "max_selections": 1,
          "options": [
            {"id": "small", "name": "Small", "price_modifier": "0"},
            {"id": "large", "name": "Large", "price_modifier": "1.00"}
          ]
        },
        {
          "id": "milk",
          "name": "Milk Type",
          "kind": "milk",
          "options": [
            {"id": "oat", "name": "Oat Milk", "price_modifier": "0.60"}
          ]
        }
      ]
    },
    {"id": "croissant", "name": "Butter Croissant", "base_price": "3.50", "category": "pastries", "available": true},
    {"id": "danish", "name": "Cheese Danish", "base_price": "3.75", "category": "pastries", "available": false}
  ]
}`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(menuDoc))
	require.NoError(t, err)

	assert.Equal(t, "Test Cafe", c.Settings.StoreName)
	assert.True(t, c.Settings.TaxRate.Equal(decimal.RequireFromString("0.0875")))
	assert.Equal(t, "TC", c.Settings.OrderNumberPrefix)

	latte, ok := c.Item("latte")
	require.True(t, ok)
	assert.True(t, latte.BasePrice.Equal(decimal.RequireFromString("4.50")))

	size, ok := latte.Group("size")
	require.True(t, ok)
	assert.True(t, size.Required)
	assert.True(t, size.SingleChoice())

	milk, ok := latte.Group("milk")
	require.True(t, ok)
	assert.False(t, milk.SingleChoice())
	oat, ok := milk.Option("oat")
	require.True(t, ok)
	assert.True(t, oat.PriceModifier.Equal(decimal.RequireFromString("0.60")))

	_, ok = c.Item("flat-white")
	assert.False(t, ok)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing currency",
			doc:  `{"settings": {"tax_rate": "0.05"}, "items": [], "categories": []}`,
			want: "currency is required",
		},
		{
			name: "tax rate above one",
			doc:  `{"settings": {"currency": "USD", "tax_rate": "1.5"}, "items": [], "categories": []}`,
			want: "out of range",
		},
		{
			name: "duplicate item id",
			doc: `{"settings": {"currency": "USD", "tax_rate": "0"},
				"categories": [{"id": "c", "name": "C"}],
				"items": [
					{"id": "a", "name": "A", "base_price": "1", "category": "c", "available": true},
					{"id": "a", "name": "A2", "base_price": "1", "category": "c", "available": true}
				]}`,
			want: `duplicate item id "a"`,
		},
		{
			name: "negative base price",
			doc: `{"settings": {"currency": "USD", "tax_rate": "0"},
				"categories": [{"id": "c", "name": "C"}],
				"items": [{"id": "a", "name": "A", "base_price": "-1", "category": "c", "available": true}]}`,
			want: "negative base price",
		},
		{
			name: "unknown category",
			doc: `{"settings": {"currency": "USD", "tax_rate": "0"},
				"categories": [],
				"items": [{"id": "a", "name": "A", "base_price": "1", "category": "ghost", "available": true}]}`,
			want: `unknown category "ghost"`,
		},
		{
			name: "max selections below one",
			doc: `{"settings": {"currency": "USD", "tax_rate": "0"},
				"categories": [{"id": "c", "name": "C"}],
				"items": [{"id": "a", "name": "A", "base_price": "1", "category": "c", "available": true,
					"customizations": [{"id": "g", "name": "G", "max_selections": 0,
						"options": [{"id": "o", "name": "O", "price_modifier": "0"}]}]}]}`,
			want: "max_selections must be >= 1",
		},
		{
			name: "group without options",
			doc: `{"settings": {"currency": "USD", "tax_rate": "0"},
				"categories": [{"id": "c", "name": "C"}],
				"items": [{"id": "a", "name": "A", "base_price": "1", "category": "c", "available": true,
					"customizations": [{"id": "g", "name": "G", "options": []}]}]}`,
			want: "no options",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAvailable(t *testing.T) {
	c, err := Parse([]byte(menuDoc))
	require.NoError(t, err)

	all := c.Available("")
	require.Len(t, all, 2)
	for _, it := range all {
		assert.True(t, it.Available)
	}

	pastries := c.Available("pastries")
	require.Len(t, pastries, 1)
	assert.Equal(t, "croissant", pastries[0].ID)

	assert.Empty(t, c.Available("tea"))
}

func TestSortedCategories(t *testing.T) {
	c, err := Parse([]byte(menuDoc))
	require.NoError(t, err)

	cats := c.SortedCategories()
	require.Len(t, cats, 2)
	assert.Equal(t, "espresso", cats[0].ID)
	assert.Equal(t, "pastries", cats[1].ID)

	// the backing slice keeps file order
	assert.Equal(t, "pastries", c.Categories[0].ID)
}

func TestItemLookupWithoutIndex(t *testing.T) {
	c := &Catalog{Items: make([]Item, 0, 4)}
	for i := 0; i < 3; i++ {
		c.Items = append(c.Items, Item{ID: fmt.Sprintf("item-%d", i)})
	}
	got, ok := c.Item("item-1")
	require.True(t, ok)
	assert.Equal(t, "item-1", got.ID)
}
