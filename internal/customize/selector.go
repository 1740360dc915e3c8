// Package customize holds the in-progress selection state for one catalog
// item before it becomes a cart line: which options are picked per group and
// how many units. Single-choice groups replace, capped groups silently stop
// accepting, and finalize checks the required groups.
package customize

import (
	"errors"
	"fmt"

	"coffee-pos/internal/cart"
	"coffee-pos/internal/catalog"
)

var (
	// ErrUnknownGroup is returned when the item has no such customization
	// group.
	ErrUnknownGroup = errors.New("unknown customization group")
	// ErrUnknownOption is returned when the group has no such option.
	ErrUnknownOption = errors.New("unknown customization option")
	// ErrRequiredGroup is returned by Finalize when a required group has no
	// selection.
	ErrRequiredGroup = errors.New("required customization group has no selection")
	// ErrQuantity is returned by Finalize for a quantity below 1.
	ErrQuantity = errors.New("quantity must be at least 1")
)

// Selector accumulates selections for one item. The zero value is not
// usable; construct with New.
type Selector struct {
	item       catalog.Item
	selections []cart.Selection
	quantity   int
}

// New starts a customization session for the given item with quantity 1.
func New(item catalog.Item) *Selector {
	return &Selector{item: item, quantity: 1}
}

// Item returns the item being customized.
func (s *Selector) Item() catalog.Item { return s.item }

// Selections returns a copy of the current selection set, in selection
// order.
func (s *Selector) Selections() []cart.Selection {
	return append([]cart.Selection(nil), s.selections...)
}

// Quantity returns the current unit count.
func (s *Selector) Quantity() int { return s.quantity }

// SetQuantity sets the unit count; values below 1 are ignored, matching the
// stepper control that never goes under one.
func (s *Selector) SetQuantity(q int) {
	if q >= 1 {
		s.quantity = q
	}
}

// Select picks an option. For a single-choice group any existing selection
// for that group is replaced. For a capped group that is already full the
// call is a silent no-op, matching the disabled checkbox affordance. The
// selection stores a snapshot of the option's name and price modifier.
func (s *Selector) Select(groupID, optionID string) error {
	group, ok := s.item.Group(groupID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, groupID)
	}
	opt, ok := group.Option(optionID)
	if !ok {
		return fmt.Errorf("%w: %q in group %q", ErrUnknownOption, optionID, groupID)
	}

	if group.SingleChoice() {
		kept := make([]cart.Selection, 0, len(s.selections)+1)
		for _, sel := range s.selections {
			if sel.GroupID != groupID {
				kept = append(kept, sel)
			}
		}
		s.selections = append(kept, snapshot(group, opt))
		return nil
	}
	if !s.CanSelectMore(groupID) {
		return nil
	}
	s.selections = append(s.selections, snapshot(group, opt))
	return nil
}

// Deselect removes the matching (group, option) entry if present; absent
// entries are a no-op.
func (s *Selector) Deselect(groupID, optionID string) {
	kept := make([]cart.Selection, 0, len(s.selections))
	for _, sel := range s.selections {
		if sel.GroupID == groupID && sel.OptionID == optionID {
			continue
		}
		kept = append(kept, sel)
	}
	s.selections = kept
}

// CanSelectMore reports whether the group accepts another selection: true
// when the group is uncapped or under its cap. Unknown groups report false.
func (s *Selector) CanSelectMore(groupID string) bool {
	group, ok := s.item.Group(groupID)
	if !ok {
		return false
	}
	if group.MaxSelections == nil {
		return true
	}
	return s.count(groupID) < *group.MaxSelections
}

// Finalize validates the session and produces a cart line item priced from
// the snapshot. Every required group must hold at least one selection. On
// success the selector resets to an empty selection with quantity 1, ready
// for the next item.
func (s *Selector) Finalize(lineID string, quantity int) (cart.LineItem, error) {
	if quantity < 1 {
		return cart.LineItem{}, ErrQuantity
	}
	for _, g := range s.item.Groups {
		if g.Required && s.count(g.ID) == 0 {
			return cart.LineItem{}, fmt.Errorf("%w: %q", ErrRequiredGroup, g.ID)
		}
	}
	li := cart.NewLineItem(lineID, s.item, s.selections, quantity)
	s.selections = nil
	s.quantity = 1
	return li, nil
}

func (s *Selector) count(groupID string) int {
	n := 0
	for _, sel := range s.selections {
		if sel.GroupID == groupID {
			n++
		}
	}
	return n
}

func snapshot(g catalog.Group, o catalog.Option) cart.Selection {
	return cart.Selection{
		GroupID:       g.ID,
		OptionID:      o.ID,
		Name:          o.Name,
		PriceModifier: o.PriceModifier,
	}
}
