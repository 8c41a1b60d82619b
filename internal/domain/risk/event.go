package risk

import "fmt"

// Bounds of the vendor's score scale
const (
	MinScore = 0
	MaxScore = 1000
)

// CaseEvent is the vendor's case update callback.
// Only the fields fraud review acts on are decoded.
type CaseEvent struct {
	OrderNumber       string  `json:"orderId" validate:"required"`
	Score             float64 `json:"score" validate:"gte=0,lte=1000"`
	AdjustedScore     float64 `json:"adjustedScore" validate:"gte=0,lte=1000"`
	CaseID            *int64  `json:"caseId"`
	InvestigationID   *int64  `json:"investigationId"`
	ReviewDisposition *string `json:"reviewDisposition"`
	Status            string  `json:"status"`
	UUID              string  `json:"uuid"`
}

// Disposition returns the raw review disposition literal, empty when none was sent
func (e CaseEvent) Disposition() string {
	if e.ReviewDisposition == nil {
		return ""
	}
	return *e.ReviewDisposition
}

// StoredScore is the adjusted score as persisted on the risk record
func (e CaseEvent) StoredScore() int {
	return TruncateScore(e.AdjustedScore)
}

// CheckScores rejects scores outside the vendor's scale before anything is stored
func (e CaseEvent) CheckScores() error {
	for _, s := range []float64{e.Score, e.AdjustedScore} {
		if !(s >= MinScore && s <= MaxScore) {
			return fmt.Errorf("%w: %v", ErrScoreOutOfRange, s)
		}
	}
	return nil
}
