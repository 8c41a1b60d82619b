package risk

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service keeps each order's risk record in step with vendor callbacks
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new risk record service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetScore records score for the order, creating its record on first use
func (s *Service) SetScore(ctx context.Context, orderID uuid.UUID, score int) (*RiskRecord, error) {
	if orderID == uuid.Nil {
		return nil, ErrInvalidOrderID
	}

	record, err := s.repo.UpsertScore(ctx, orderID, score)
	if err != nil {
		return nil, fmt.Errorf("failed to set score: %w", err)
	}

	s.logger.Info("risk score recorded",
		zap.String("order_id", orderID.String()),
		zap.Int("score", score),
	)
	return record, nil
}

// SetCaseID attaches the vendor case id. Without a prior score it is a logged no-op returning false.
func (s *Service) SetCaseID(ctx context.Context, orderID uuid.UUID, caseID int64) (bool, error) {
	if orderID == uuid.Nil {
		return false, ErrInvalidOrderID
	}

	ok, err := s.repo.UpdateCaseID(ctx, orderID, caseID)
	if err != nil {
		return false, fmt.Errorf("failed to set case id: %w", err)
	}
	if !ok {
		s.logger.Warn("case id received before any score, ignoring",
			zap.String("order_id", orderID.String()),
			zap.Int64("case_id", caseID),
		)
		return false, nil
	}

	s.logger.Info("case id recorded",
		zap.String("order_id", orderID.String()),
		zap.Int64("case_id", caseID),
	)
	return true, nil
}

// SetCaseDisposition records the review outcome, with the same no-op contract as SetCaseID
func (s *Service) SetCaseDisposition(ctx context.Context, orderID uuid.UUID, d Disposition) (bool, error) {
	if orderID == uuid.Nil {
		return false, ErrInvalidOrderID
	}

	ok, err := s.repo.UpdateCaseDisposition(ctx, orderID, d)
	if err != nil {
		return false, fmt.Errorf("failed to set case disposition: %w", err)
	}
	if !ok {
		s.logger.Warn("case disposition received before any score, ignoring",
			zap.String("order_id", orderID.String()),
			zap.String("disposition", string(d)),
		)
		return false, nil
	}

	s.logger.Info("case disposition recorded",
		zap.String("order_id", orderID.String()),
		zap.String("disposition", string(d)),
	)
	return true, nil
}

// GetByOrderID retrieves the order's risk record
func (s *Service) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*RiskRecord, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}
