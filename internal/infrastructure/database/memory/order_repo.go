// Package memory holds in-process repositories used in standalone mode and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"order-fraud-review/internal/domain/order"
)

// OrderRepository keeps orders in a map guarded by a mutex
type OrderRepository struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

// NewOrderRepository creates an empty order repository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*order.Order)}
}

// Create stores a copy of o
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if o.Number == "" {
		return order.ErrInvalidOrderNumber
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.Number] = cloneOrder(o)
	return nil
}

// FindByNumber returns a copy of the stored order
func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[number]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// UpdateWithLock applies fn to a copy while holding the repository lock and stores it on success
func (r *OrderRepository) UpdateWithLock(ctx context.Context, number string, fn func(o *order.Order) error) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[number]
	if !ok {
		return nil, order.ErrOrderNotFound
	}

	o := cloneOrder(stored)
	if err := fn(o); err != nil {
		return nil, err
	}
	r.orders[number] = cloneOrder(o)
	return o, nil
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Shipments = make([]*order.Shipment, len(o.Shipments))
	for i, s := range o.Shipments {
		sc := *s
		c.Shipments[i] = &sc
	}
	c.LineItems = make([]*order.LineItem, len(o.LineItems))
	for i, li := range o.LineItems {
		lc := *li
		c.LineItems[i] = &lc
	}
	if o.Payment != nil {
		p := *o.Payment
		if o.Payment.BillingAddress != nil {
			a := *o.Payment.BillingAddress
			p.BillingAddress = &a
		}
		c.Payment = &p
	}
	return &c
}
