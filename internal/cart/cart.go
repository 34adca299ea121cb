// Package cart keeps the durable list of rooms a visitor intends to book.
// Every mutation rewrites the whole list under store.CartKey and notifies the
// registered listeners with the new count.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/idilsaglam/hotelres/internal/metrics"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/internal/store"
	"github.com/idilsaglam/hotelres/pkg/logging"
)

// ErrIndexOutOfRange is returned by Remove for a position outside the list.
var ErrIndexOutOfRange = errors.New("cart: index out of range")

// Listener is called after every mutation with the new item count.
type Listener func(count int)

// Cart is not safe for concurrent use.
type Cart struct {
	items     []model.CartItem
	store     store.Store
	now       func() time.Time
	logger    *logging.Logger
	metrics   *metrics.Metrics
	listeners []Listener
}

type Option func(*Cart)

func WithClock(now func() time.Time) Option {
	return func(c *Cart) { c.now = now }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Cart) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cart) { c.metrics = m }
}

// New loads the persisted cart. A missing entry yields an empty cart.
func New(ctx context.Context, st store.Store, opts ...Option) (*Cart, error) {
	c := &Cart{
		store:  st,
		now:    time.Now,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	b, err := st.Get(ctx, store.CartKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if err := json.Unmarshal(b, &c.items); err != nil {
		return nil, fmt.Errorf("load cart: json unmarshal: %w", err)
	}
	return c, nil
}

// OnChange registers a listener. Listeners run synchronously in
// registration order.
func (c *Cart) OnChange(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Add appends an item stamped with the current time. A persistence failure
// is returned but the item stays in the in-memory list.
func (c *Cart) Add(ctx context.Context, roomID string, checkIn, checkOut model.Date, guests int) error {
	c.items = append(c.items, model.CartItem{
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   guests,
		AddedAt:  c.now().UTC(),
	})
	return c.commit(ctx, "add")
}

// Remove deletes the item at a 0-based position.
func (c *Cart) Remove(ctx context.Context, index int) error {
	if index < 0 || index >= len(c.items) {
		c.metrics.ObserveCart("remove", false)
		return fmt.Errorf("%w: have %d, got %d", ErrIndexOutOfRange, len(c.items), index)
	}
	c.items = slices.Delete(c.items, index, index+1)
	return c.commit(ctx, "remove")
}

func (c *Cart) Clear(ctx context.Context) error {
	c.items = nil
	return c.commit(ctx, "clear")
}

func (c *Cart) Count() int { return len(c.items) }

// Items returns a copy of the list in insertion order.
func (c *Cart) Items() []model.CartItem {
	return slices.Clone(c.items)
}

func (c *Cart) commit(ctx context.Context, op string) error {
	err := c.save(ctx)
	c.metrics.ObserveCart(op, err == nil)
	if err != nil {
		c.logger.Warn("cart save failed", "op", op, "error", err)
	} else {
		c.logger.Debug("cart updated", "op", op, "count", len(c.items))
	}
	for _, l := range c.listeners {
		l(len(c.items))
	}
	return err
}

func (c *Cart) save(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []model.CartItem{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("save cart: json marshal: %w", err)
	}
	if err := c.store.Set(ctx, store.CartKey, b); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
