package risk

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists risk records
type Repository interface {
	// UpsertScore creates the order's record or overwrites its score, atomically
	UpsertScore(ctx context.Context, orderID uuid.UUID, score int) (*RiskRecord, error)

	// UpdateCaseID sets the case id on an existing record. Reports false when there is none.
	UpdateCaseID(ctx context.Context, orderID uuid.UUID, caseID int64) (bool, error)

	// UpdateCaseDisposition sets the disposition on an existing record. Reports false when there is none.
	UpdateCaseDisposition(ctx context.Context, orderID uuid.UUID, d Disposition) (bool, error)

	// GetByOrderID retrieves the order's record
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*RiskRecord, error)
}
