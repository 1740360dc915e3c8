// Package server is the register-facing HTTP API: menu browsing, cart
// mutation, checkout and payment. Handlers stay thin; all business rules
// live in the domain packages and are only mapped to status codes here.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"coffee-pos/internal/catalog"
	"coffee-pos/internal/ids"
	"coffee-pos/internal/mq"
	"coffee-pos/internal/order"
	"coffee-pos/internal/payment"
	"coffee-pos/internal/repository"
	"coffee-pos/internal/session"
)

// Server wires the POS API together.
type Server struct {
	echo      *echo.Echo
	catalog   *catalog.Catalog
	menu      *catalog.Cache
	sessions  *session.Registry
	assembler *order.Assembler
	settler   payment.Settler
	orders    repository.Orders
	tickets   *mq.Client
	ids       ids.Source
	log       *zap.Logger
	now       func() time.Time
}

// Deps carries everything the server needs. Tickets may be nil in tests;
// publishing is then skipped.
type Deps struct {
	Catalog   *catalog.Catalog
	Menu      *catalog.Cache
	Assembler *order.Assembler
	Settler   payment.Settler
	Orders    repository.Orders
	Tickets   *mq.Client
	IDs       ids.Source
	Log       *zap.Logger
	Now       func() time.Time
}

// New builds the server and its routes.
func New(d Deps) *Server {
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &Server{
		catalog:   d.Catalog,
		menu:      d.Menu,
		sessions:  session.NewRegistry(d.IDs.NewID),
		assembler: d.Assembler,
		settler:   d.Settler,
		orders:    d.Orders,
		tickets:   d.Tickets,
		ids:       d.IDs,
		log:       d.Log,
		now:       d.Now,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/menu", s.getMenu)
	e.GET("/categories", s.getCategories)

	e.POST("/sessions", s.openSession)
	e.DELETE("/sessions/:id", s.closeSession)
	e.GET("/sessions/:id/cart", s.getCart)
	e.PUT("/sessions/:id/cart", s.updateCartMeta)
	e.DELETE("/sessions/:id/cart", s.clearCart)
	e.POST("/sessions/:id/items", s.addItem)
	e.PATCH("/sessions/:id/items/:lineID", s.updateQuantity)
	e.DELETE("/sessions/:id/items/:lineID", s.removeItem)
	e.POST("/sessions/:id/checkout", s.checkout)
	e.POST("/sessions/:id/pay", s.pay)
	e.POST("/sessions/:id/cancel", s.cancelOrder)

	e.GET("/orders/:number", s.getOrder)

	s.echo = e
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves until the context is cancelled, then drains with a short
// shutdown window.
func (s *Server) Run(ctx context.Context, port int) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.echo.Start(fmt.Sprintf(":%d", port)) }()
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
