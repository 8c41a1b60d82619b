package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"order-fraud-review/internal/domain/risk"
)

// RiskRepository keeps risk records keyed by order id
type RiskRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*risk.RiskRecord
}

// NewRiskRepository creates an empty risk repository
func NewRiskRepository() *RiskRepository {
	return &RiskRepository{records: make(map[uuid.UUID]*risk.RiskRecord)}
}

// UpsertScore creates or updates the order's record
func (r *RiskRepository) UpsertScore(ctx context.Context, orderID uuid.UUID, score int) (*risk.RiskRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[orderID]
	if !ok {
		rec = risk.NewRiskRecord(orderID, score)
		r.records[orderID] = rec
		return cloneRecord(rec), nil
	}

	rec.Score = score
	rec.UpdatedAt = time.Now()
	return cloneRecord(rec), nil
}

// UpdateCaseID sets the case id when a record exists
func (r *RiskRepository) UpdateCaseID(ctx context.Context, orderID uuid.UUID, caseID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[orderID]
	if !ok {
		return false, nil
	}
	rec.CaseID = &caseID
	rec.UpdatedAt = time.Now()
	return true, nil
}

// UpdateCaseDisposition sets the disposition when a record exists
func (r *RiskRepository) UpdateCaseDisposition(ctx context.Context, orderID uuid.UUID, d risk.Disposition) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[orderID]
	if !ok {
		return false, nil
	}
	rec.CaseDisposition = &d
	rec.UpdatedAt = time.Now()
	return true, nil
}

// GetByOrderID returns a copy of the order's record
func (r *RiskRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*risk.RiskRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[orderID]
	if !ok {
		return nil, risk.ErrRiskRecordNotFound
	}
	return cloneRecord(rec), nil
}

// Count returns the number of stored records
func (r *RiskRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func cloneRecord(rec *risk.RiskRecord) *risk.RiskRecord {
	c := *rec
	if rec.CaseID != nil {
		id := *rec.CaseID
		c.CaseID = &id
	}
	if rec.CaseDisposition != nil {
		d := *rec.CaseDisposition
		c.CaseDisposition = &d
	}
	return &c
}
