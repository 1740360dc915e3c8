package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"coffee-pos/internal/cart"
	"coffee-pos/internal/customize"
	"coffee-pos/internal/mq"
	"coffee-pos/internal/order"
	"coffee-pos/internal/payment"
	"coffee-pos/internal/receipt"
	"coffee-pos/internal/repository"
	"coffee-pos/internal/session"
)

// errUnavailable covers ordering an item the menu does not currently offer.
var errUnavailable = errors.New("item is not available")

func (s *Server) getMenu(c echo.Context) error {
	m := s.menu.Menu(c.Request().Context())
	if cat := c.QueryParam("category"); cat != "" {
		filtered := m.Items[:0:0]
		for _, it := range m.Items {
			if it.CategoryID == cat {
				filtered = append(filtered, it)
			}
		}
		m.Items = filtered
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) getCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog.SortedCategories())
}

func (s *Server) openSession(c echo.Context) error {
	sess := s.sessions.Open()
	s.log.Info("session opened", zap.String("session", sess.ID))
	return c.JSON(http.StatusCreated, map[string]string{"session_id": sess.ID})
}

func (s *Server) closeSession(c echo.Context) error {
	s.sessions.Close(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

type cartView struct {
	Cart     cart.Cart       `json:"cart"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (s *Server) getCart(c echo.Context) error {
	var view cartView
	err := s.sessions.View(c.Param("id"), func(sess *session.Session) error {
		view = cartView{Cart: sess.Cart, Subtotal: sess.Cart.Subtotal()}
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

type cartMetaRequest struct {
	Fulfillment  cart.Fulfillment `json:"fulfillment"`
	Table        string           `json:"table"`
	CustomerName string           `json:"customer_name"`
}

func (s *Server) updateCartMeta(c echo.Context) error {
	var req cartMetaRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if !req.Fulfillment.Valid() {
		return badRequest(c, "fulfillment must be takeaway or dine-in")
	}
	err := s.sessions.Mutate(c.Param("id"), func(sess *session.Session) error {
		sess.Cart.Fulfillment = req.Fulfillment
		sess.Cart.Table = req.Table
		sess.Cart.CustomerName = req.CustomerName
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) clearCart(c echo.Context) error {
	err := s.sessions.Mutate(c.Param("id"), func(sess *session.Session) error {
		sess.Cart = sess.Cart.Clear()
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type selectionRequest struct {
	GroupID  string `json:"group_id"`
	OptionID string `json:"option_id"`
}

type addItemRequest struct {
	ItemID     string             `json:"item_id"`
	Quantity   int                `json:"quantity"`
	Selections []selectionRequest `json:"selections"`
}

func (s *Server) addItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, ok := s.catalog.Item(req.ItemID)
	if !ok {
		return c.JSON(http.StatusNotFound, errBody("unknown item "+req.ItemID))
	}
	if !item.Available {
		return c.JSON(http.StatusConflict, errBody(errUnavailable.Error()))
	}

	var li cart.LineItem
	err := s.sessions.Mutate(c.Param("id"), func(sess *session.Session) error {
		sel := customize.New(item)
		for _, r := range req.Selections {
			if err := sel.Select(r.GroupID, r.OptionID); err != nil {
				return err
			}
		}
		var err error
		li, err = sel.Finalize(s.ids.NewID(), req.Quantity)
		if err != nil {
			return err
		}
		sess.Cart = sess.Cart.Add(li)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, li)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) updateQuantity(c echo.Context) error {
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	err := s.sessions.Mutate(c.Param("id"), func(sess *session.Session) error {
		sess.Cart = sess.Cart.UpdateQuantity(c.Param("lineID"), req.Quantity)
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) removeItem(c echo.Context) error {
	err := s.sessions.Mutate(c.Param("id"), func(sess *session.Session) error {
		sess.Cart = sess.Cart.Remove(c.Param("lineID"))
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type checkoutRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	var o *order.Order
	err := s.sessions.Mutate(c.Param("id"), func(sess *session.Session) error {
		assembled, err := s.assembler.Assemble(sess.Cart, req.Notes)
		if err != nil {
			return err
		}
		sess.Pending = assembled
		o = assembled
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	if err := s.orders.Create(c.Request().Context(), o); err != nil {
		s.log.Error("persist order failed", zap.Error(err), zap.String("order", o.Number))
		return c.JSON(http.StatusInternalServerError, errBody("failed to save order"))
	}
	s.log.Info("order assembled",
		zap.String("order", o.Number),
		zap.String("total", o.Total.StringFixed(2)))
	return c.JSON(http.StatusCreated, o)
}

type payRequest struct {
	Method    payment.Method  `json:"method"`
	Tendered  decimal.Decimal `json:"tendered"`
	CardLast4 string          `json:"card_last4"`
}

type payResponse struct {
	Result  payment.Result  `json:"result"`
	Order   *order.Order    `json:"order"`
	Change  decimal.Decimal `json:"change"`
	Receipt string          `json:"receipt,omitempty"`
}

func (s *Server) pay(c echo.Context) error {
	var req payRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	sessionID := c.Param("id")

	o, err := s.sessions.BeginPayment(sessionID)
	if err != nil {
		return fail(c, err)
	}

	preq := payment.Request{Method: req.Method, Tendered: req.Tendered, CardLast4: req.CardLast4}
	res, change, err := payment.Process(c.Request().Context(), s.settler, o, preq, s.now)
	if err != nil {
		s.sessions.EndPayment(sessionID, false)
		return fail(c, err)
	}
	if !res.Success {
		// Declined: order stays pending, cart untouched, register retries.
		s.sessions.EndPayment(sessionID, false)
		return c.JSON(http.StatusPaymentRequired, payResponse{Result: res, Order: o})
	}

	s.recordSettled(c, o)
	s.sessions.EndPayment(sessionID, true)

	return c.JSON(http.StatusOK, payResponse{
		Result:  res,
		Order:   o,
		Change:  change,
		Receipt: receipt.Render(s.catalog.Settings.StoreName, o, req.Method),
	})
}

// recordSettled persists the completed status and hands the ticket to the
// prep station. The customer has already paid, so failures here are logged
// and do not undo the settlement.
func (s *Server) recordSettled(c echo.Context, o *order.Order) {
	ctx := c.Request().Context()
	if err := s.orders.AppendStatus(ctx, o.ID, o.Status, "pos-server", o.UpdatedAt); err != nil {
		s.log.Error("record settlement failed", zap.Error(err), zap.String("order", o.Number))
	}
	if s.tickets == nil {
		return
	}
	ticket := mq.NewTicket(o)
	body, err := json.Marshal(ticket)
	if err != nil {
		s.log.Error("marshal ticket failed", zap.Error(err), zap.String("order", o.Number))
		return
	}
	if err := s.tickets.PublishTicket(ctx, ticket.RoutingKey(), o.Number, body); err != nil {
		s.log.Error("publish ticket failed", zap.Error(err), zap.String("order", o.Number))
	}
}

func (s *Server) cancelOrder(c echo.Context) error {
	var o *order.Order
	err := s.sessions.Mutate(c.Param("id"), func(sess *session.Session) error {
		if sess.Pending == nil {
			return session.ErrNoPendingOrder
		}
		if err := sess.Pending.Transition(order.StatusCancelled, s.now().UTC()); err != nil {
			return err
		}
		o = sess.Pending
		sess.Pending = nil
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	if err := s.orders.AppendStatus(c.Request().Context(), o.ID, o.Status, "pos-server", o.UpdatedAt); err != nil {
		s.log.Error("record cancellation failed", zap.Error(err), zap.String("order", o.Number))
	}
	s.log.Info("order cancelled", zap.String("order", o.Number))
	return c.JSON(http.StatusOK, o)
}

func (s *Server) getOrder(c echo.Context) error {
	so, err := s.orders.GetByNumber(c.Request().Context(), c.Param("number"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errBody("order not found"))
	}
	if err != nil {
		s.log.Error("order lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errBody("failed to load order"))
	}
	return c.JSON(http.StatusOK, so)
}

// fail maps domain sentinels to status codes; anything unrecognized is a
// 500.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return c.JSON(http.StatusNotFound, errBody(err.Error()))
	case errors.Is(err, session.ErrPaymentInFlight):
		return c.JSON(http.StatusConflict, errBody(err.Error()))
	case errors.Is(err, session.ErrNoPendingOrder),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrTableRequired),
		errors.Is(err, order.ErrFulfillment),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, customize.ErrUnknownGroup),
		errors.Is(err, customize.ErrUnknownOption),
		errors.Is(err, customize.ErrRequiredGroup),
		errors.Is(err, customize.ErrQuantity),
		errors.Is(err, payment.ErrUnknownMethod),
		errors.Is(err, payment.ErrInsufficientTender),
		errors.Is(err, payment.ErrNotPending):
		return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, errBody(err.Error()))
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errBody(msg))
}

func errBody(msg string) map[string]string { return map[string]string{"error": msg} }
