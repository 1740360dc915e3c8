// Package ids isolates identifier generation so cart and order construction
// stay deterministic under test.
package ids

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Source produces the identifiers the domain needs: opaque unique ids for
// line items and orders, and human-facing order numbers.
type Source interface {
	// NewID returns a globally unique opaque identifier.
	NewID() string
	// OrderNumber returns a short display number: prefix + six time-derived
	// digits + two random digits. Display-grade uniqueness only.
	OrderNumber(prefix string) string
}

type source struct{}

// New returns the production Source backed by UUIDv4 and the wall clock.
func New() Source { return source{} }

func (source) NewID() string { return uuid.NewString() }

func (source) OrderNumber(prefix string) string {
	ms := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("%s%s%02d", prefix, ms, rand.Intn(100))
}
