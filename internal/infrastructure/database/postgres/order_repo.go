package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"order-fraud-review/internal/domain/order"
)

// OrderRepository implements order.Repository
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(client *Client) *OrderRepository {
	return &OrderRepository{db: client.DB()}
}

// Create stores a new order together with its shipments, line items and payment
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if o.Number == "" {
		return order.ErrInvalidOrderNumber
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}

	return r.db.WithContext(ctx).Create(orderToModel(o)).Error
}

// FindByNumber retrieves an order with its associations
func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var model OrderModel
	if err := preloadOrder(r.db.WithContext(ctx)).First(&model, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return modelToOrder(&model), nil
}

// UpdateWithLock locks the order row (SELECT ... FOR UPDATE), applies fn and writes the result back
func (r *OrderRepository) UpdateWithLock(ctx context.Context, number string, fn func(o *order.Order) error) (*order.Order, error) {
	var updated *order.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("number = ?", number).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return order.ErrOrderNotFound
			}
			return err
		}

		if err := preloadOrder(tx).First(&model, "id = ?", model.ID).Error; err != nil {
			return err
		}

		o := modelToOrder(&model)
		if err := fn(o); err != nil {
			return err
		}

		if err := tx.Model(&OrderModel{}).
			Where("id = ?", o.ID).
			Updates(map[string]interface{}{
				"state":          string(o.State),
				"payment_state":  string(o.PaymentState),
				"shipment_state": string(o.ShipmentState),
				"approved_at":    o.ApprovedAt,
				"approver_name":  o.ApproverName,
				"canceled_at":    o.CanceledAt,
				"updated_at":     time.Now(),
			}).Error; err != nil {
			return err
		}

		for _, s := range o.Shipments {
			if err := tx.Model(&ShipmentModel{}).
				Where("id = ?", s.ID).
				Updates(map[string]interface{}{
					"state":      string(s.State),
					"shipped_at": s.ShippedAt,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Shipments", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Preload("LineItems").
		Preload("Payment")
}
