package order

import "context"

// Repository reads and transitions persisted orders
type Repository interface {
	// Create stores a new order with its shipments, line items and payment
	Create(ctx context.Context, o *Order) error

	// FindByNumber retrieves an order by its public number
	FindByNumber(ctx context.Context, number string) (*Order, error)

	// UpdateWithLock loads the order under a row lock, applies fn and persists the result.
	// Nothing is written when fn returns an error.
	UpdateWithLock(ctx context.Context, number string, fn func(o *Order) error) (*Order, error)
}
