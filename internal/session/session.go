// Package session holds the live state of each register terminal: one cart,
// at most one in-progress customization, at most one pending order. A
// session is exclusively owned by its register; the registry only guards the
// map itself and the payment-in-flight lock.
package session

import (
	"errors"
	"sync"

	"coffee-pos/internal/cart"
	"coffee-pos/internal/customize"
	"coffee-pos/internal/order"
)

var (
	// ErrNotFound is returned for an unknown session id.
	ErrNotFound = errors.New("session not found")
	// ErrPaymentInFlight is returned when a mutation is attempted while
	// settlement is pending. The UI disables the controls; the server
	// enforces it.
	ErrPaymentInFlight = errors.New("payment in flight, session is locked")
	// ErrNoPendingOrder is returned when payment or cancel is attempted
	// without an assembled order.
	ErrNoPendingOrder = errors.New("no pending order for this session")
)

// Session is one register terminal's state.
type Session struct {
	ID       string
	Cart     cart.Cart
	Selector *customize.Selector
	Pending  *order.Order

	paying bool
}

// Registry owns the sessions of this process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	newID    func() string
}

// NewRegistry builds a registry generating session ids from newID.
func NewRegistry(newID func() string) *Registry {
	return &Registry{sessions: make(map[string]*Session), newID: newID}
}

// Open creates a session with an empty takeaway cart.
func (r *Registry) Open() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &Session{ID: r.newID(), Cart: cart.New()}
	r.sessions[s.ID] = s
	return s
}

// Close drops the session.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Mutate runs fn against the session unless settlement is in flight. The
// session stays locked for the duration of fn, which keeps the one-logical-
// flow ownership rule even against misbehaving clients.
func (r *Registry) Mutate(id string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.paying {
		return ErrPaymentInFlight
	}
	return fn(s)
}

// View runs fn read-only; allowed during settlement.
func (r *Registry) View(id string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

// BeginPayment marks the session as settling and returns its pending order.
// Further mutations are rejected until EndPayment.
func (r *Registry) BeginPayment(id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.paying {
		return nil, ErrPaymentInFlight
	}
	if s.Pending == nil {
		return nil, ErrNoPendingOrder
	}
	s.paying = true
	return s.Pending, nil
}

// EndPayment releases the settlement lock. When the order completed, the
// cart and the pending slot are reset for the next customer; on decline both
// are preserved so the register can retry or switch method.
func (r *Registry) EndPayment(id string, completed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return
	}
	s.paying = false
	if completed {
		s.Cart = cart.New()
		s.Pending = nil
		s.Selector = nil
	}
}
