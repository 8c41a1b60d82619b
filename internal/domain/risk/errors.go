package risk

import "errors"

var (
	// ErrRiskRecordNotFound is returned when an order has no assessment yet
	ErrRiskRecordNotFound = errors.New("risk record not found")

	// ErrInvalidOrderID is returned when a record is addressed without an order
	ErrInvalidOrderID = errors.New("invalid order ID")

	// ErrScoreOutOfRange is returned when a vendor score falls outside MinScore..MaxScore
	ErrScoreOutOfRange = errors.New("score out of range")
)
