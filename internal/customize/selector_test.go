package customize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-pos/internal/catalog"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intp(n int) *int { return &n }

func latte() catalog.Item {
	return catalog.Item{
		ID: "latte", Name: "Latte", BasePrice: dec("4.50"), CategoryID: "espresso", Available: true,
		Groups: []catalog.Group{
			{
				ID: "size", Name: "Size", Kind: catalog.KindSize, Required: true, MaxSelections: intp(1),
				Options: []catalog.Option{
					{ID: "small", Name: "Small (8oz)", PriceModifier: decimal.Zero},
					{ID: "medium", Name: "Medium (12oz)", PriceModifier: dec("0.5")},
					{ID: "large", Name: "Large (16oz)", PriceModifier: dec("1.0")},
				},
			},
			{
				ID: "syrup", Name: "Syrup", Kind: catalog.KindSyrup, MaxSelections: intp(3),
				Options: []catalog.Option{
					{ID: "vanilla", Name: "Vanilla", PriceModifier: dec("0.5")},
					{ID: "caramel", Name: "Caramel", PriceModifier: dec("0.5")},
					{ID: "hazelnut", Name: "Hazelnut", PriceModifier: dec("0.5")},
					{ID: "cinnamon", Name: "Cinnamon", PriceModifier: dec("0.5")},
				},
			},
			{
				ID: "extras", Name: "Extras", Kind: catalog.KindExtra,
				Options: []catalog.Option{
					{ID: "extra-shot", Name: "Extra Shot", PriceModifier: dec("0.75")},
					{ID: "decaf", Name: "Decaf", PriceModifier: decimal.Zero},
				},
			},
		},
	}
}

func TestSingleChoiceReplaces(t *testing.T) {
	s := New(latte())
	require.NoError(t, s.Select("size", "small"))
	require.NoError(t, s.Select("size", "large"))

	sels := s.Selections()
	require.Len(t, sels, 1)
	assert.Equal(t, "large", sels[0].OptionID)
}

func TestCappedGroupSilentlyStopsAtMax(t *testing.T) {
	s := New(latte())
	require.NoError(t, s.Select("syrup", "vanilla"))
	require.NoError(t, s.Select("syrup", "caramel"))
	require.NoError(t, s.Select("syrup", "hazelnut"))
	assert.False(t, s.CanSelectMore("syrup"))

	// Fourth select is a no-op, not an error.
	require.NoError(t, s.Select("syrup", "cinnamon"))
	assert.Len(t, s.Selections(), 3)
}

func TestUncappedGroup(t *testing.T) {
	s := New(latte())
	require.NoError(t, s.Select("extras", "extra-shot"))
	require.NoError(t, s.Select("extras", "decaf"))
	assert.True(t, s.CanSelectMore("extras"))
}

func TestDeselect(t *testing.T) {
	s := New(latte())
	require.NoError(t, s.Select("syrup", "vanilla"))
	s.Deselect("syrup", "vanilla")
	assert.Empty(t, s.Selections())
	assert.True(t, s.CanSelectMore("syrup"))

	// Absent entry: no-op.
	s.Deselect("syrup", "vanilla")
	assert.Empty(t, s.Selections())
}

func TestSelectUnknown(t *testing.T) {
	s := New(latte())
	assert.ErrorIs(t, s.Select("shots", "double"), ErrUnknownGroup)
	assert.ErrorIs(t, s.Select("syrup", "maple"), ErrUnknownOption)
}

func TestFinalizeEnforcesRequiredGroups(t *testing.T) {
	s := New(latte())
	require.NoError(t, s.Select("syrup", "vanilla"))

	_, err := s.Finalize("li-1", 1)
	assert.ErrorIs(t, err, ErrRequiredGroup)

	require.NoError(t, s.Select("size", "large"))
	li, err := s.Finalize("li-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, li.Quantity)
	assert.Equal(t, "6.00", li.UnitPrice.StringFixed(2)) // 4.50 + 1.00 + 0.50
}

func TestFinalizeRejectsBadQuantity(t *testing.T) {
	s := New(latte())
	require.NoError(t, s.Select("size", "small"))
	_, err := s.Finalize("li-1", 0)
	assert.ErrorIs(t, err, ErrQuantity)
}

func TestFinalizeResets(t *testing.T) {
	s := New(latte())
	s.SetQuantity(4)
	require.NoError(t, s.Select("size", "large"))
	_, err := s.Finalize("li-1", s.Quantity())
	require.NoError(t, err)

	assert.Empty(t, s.Selections())
	assert.Equal(t, 1, s.Quantity())
}

func TestFinalizeSnapshotIsDecoupledFromCatalog(t *testing.T) {
	item := latte()
	s := New(item)
	require.NoError(t, s.Select("size", "large"))
	li, err := s.Finalize("li-1", 1)
	require.NoError(t, err)

	// A later catalog edit must not reach into the placed line.
	item.Groups[0].Options[2].Name = "Grande"
	assert.Equal(t, "Large (16oz)", li.Selections[0].Name)
}
