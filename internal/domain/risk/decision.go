package risk

import (
	"github.com/shopspring/decimal"
)

// Decision is what should happen to an order after a case update
type Decision string

const (
	DecisionIgnore  Decision = "ignore"
	DecisionApprove Decision = "approve"
	DecisionCancel  Decision = "cancel"
)

// OrderState is the part of an order the decision rules read
type OrderState interface {
	Shipped() bool
	Canceled() bool
	Approved() bool
}

// Policy configures the decision rules
type Policy struct {
	// ScoreThreshold must be strictly exceeded for an approval
	ScoreThreshold decimal.Decimal

	// ApproveOnGoodDisposition approves a GOOD review regardless of score
	ApproveOnGoodDisposition bool
}

// DefaultPolicy returns the vendor's default threshold of 500
func DefaultPolicy() Policy {
	return Policy{ScoreThreshold: decimal.NewFromInt(500)}
}

// Verdict is a decision with the rule that produced it
type Verdict struct {
	Decision Decision
	Reason   string
}

// Engine applies the decision rules
type Engine struct {
	policy Policy
}

// NewEngine creates an engine for policy
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Decide evaluates the rules in order; the first match wins
func (e *Engine) Decide(o OrderState, event CaseEvent) Verdict {
	if o.Shipped() || o.Canceled() {
		return Verdict{Decision: DecisionIgnore, Reason: "order already shipped or canceled"}
	}

	if o.Approved() {
		return Verdict{Decision: DecisionIgnore, Reason: "order already approved"}
	}

	disposition := event.Disposition()
	if disposition == VendorDispositionFraudulent {
		return Verdict{Decision: DecisionCancel, Reason: "case reviewed as fraudulent"}
	}

	if e.policy.ApproveOnGoodDisposition && disposition == VendorDispositionGood {
		return Verdict{Decision: DecisionApprove, Reason: "case reviewed as good"}
	}

	if e.ScoreAboveThreshold(event.AdjustedScore) {
		return Verdict{Decision: DecisionApprove, Reason: "adjusted score above threshold"}
	}

	return Verdict{Decision: DecisionIgnore, Reason: "adjusted score at or below threshold"}
}

// ScoreAboveThreshold compares the unrounded vendor score to the threshold
func (e *Engine) ScoreAboveThreshold(score float64) bool {
	return decimal.NewFromFloat(score).GreaterThan(e.policy.ScoreThreshold)
}
