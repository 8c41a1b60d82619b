package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"order-fraud-review/internal/domain/risk"
)

// RiskRepository implements risk.Repository
type RiskRepository struct {
	db *gorm.DB
}

// NewRiskRepository creates a new risk record repository
func NewRiskRepository(client *Client) *RiskRepository {
	return &RiskRepository{db: client.DB()}
}

// UpsertScore runs INSERT ... ON CONFLICT (order_id) DO UPDATE so concurrent first events cannot create two records
func (r *RiskRepository) UpsertScore(ctx context.Context, orderID uuid.UUID, score int) (*risk.RiskRecord, error) {
	now := time.Now()
	model := &RiskRecordModel{
		ID:        uuid.New(),
		OrderID:   orderID,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":      score,
			"updated_at": now,
		}),
	}).Create(model).Error; err != nil {
		return nil, err
	}

	return r.GetByOrderID(ctx, orderID)
}

// UpdateCaseID sets case_id in a single conditional UPDATE
func (r *RiskRepository) UpdateCaseID(ctx context.Context, orderID uuid.UUID, caseID int64) (bool, error) {
	return r.updateExisting(ctx, orderID, map[string]interface{}{"case_id": caseID})
}

// UpdateCaseDisposition sets case_disposition in a single conditional UPDATE
func (r *RiskRepository) UpdateCaseDisposition(ctx context.Context, orderID uuid.UUID, d risk.Disposition) (bool, error) {
	return r.updateExisting(ctx, orderID, map[string]interface{}{"case_disposition": string(d)})
}

// GetByOrderID retrieves the record for an order
func (r *RiskRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*risk.RiskRecord, error) {
	var model RiskRecordModel
	if err := r.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, risk.ErrRiskRecordNotFound
		}
		return nil, err
	}
	return modelToRiskRecord(&model), nil
}

func (r *RiskRepository) updateExisting(ctx context.Context, orderID uuid.UUID, fields map[string]interface{}) (bool, error) {
	fields["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&RiskRecordModel{}).
		Where("order_id = ?", orderID).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
