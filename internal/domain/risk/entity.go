package risk

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Disposition is the outcome of a human review of a vendor case
type Disposition string

const (
	DispositionNone       Disposition = "none"
	DispositionGood       Disposition = "good"
	DispositionFraudulent Disposition = "fraudulent"
	DispositionOther      Disposition = "other"
)

// Literal dispositions sent by the vendor
const (
	VendorDispositionNone       = "NONE"
	VendorDispositionGood       = "GOOD"
	VendorDispositionFraudulent = "FRAUDULENT"
)

// ParseDisposition maps the vendor's literal onto a Disposition.
// The match is case-sensitive; an empty literal means no disposition was sent.
func ParseDisposition(raw string) (Disposition, bool) {
	switch raw {
	case "":
		return "", false
	case VendorDispositionNone:
		return DispositionNone, true
	case VendorDispositionGood:
		return DispositionGood, true
	case VendorDispositionFraudulent:
		return DispositionFraudulent, true
	default:
		return DispositionOther, true
	}
}

// RiskRecord is the vendor's latest assessment of an order. There is at most one per order.
type RiskRecord struct {
	ID              uuid.UUID    `json:"id"`
	OrderID         uuid.UUID    `json:"order_id"`
	Score           int          `json:"score"`
	CaseID          *int64       `json:"case_id,omitempty"`
	CaseDisposition *Disposition `json:"case_disposition,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewRiskRecord creates a record holding only a score
func NewRiskRecord(orderID uuid.UUID, score int) *RiskRecord {
	now := time.Now()
	return &RiskRecord{
		ID:        uuid.New(),
		OrderID:   orderID,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TruncateScore converts a vendor score to the stored integer, dropping the fraction.
// Scores outside MinScore..MaxScore are clamped so the conversion stays defined.
func TruncateScore(score float64) int {
	switch {
	case math.IsNaN(score) || score < MinScore:
		return MinScore
	case score > MaxScore:
		return MaxScore
	}
	return int(score)
}
