package service

import (
	"context"

	"github.com/otoworks/otowork-backend/internal/repository"
)

// ============================================
// Earnings Service
// ============================================

type EarningsService interface {
	Summary(ctx context.Context, creatorID string) (*repository.EarningsSummary, error)
	History(ctx context.Context, creatorID string, limit int) ([]*repository.EarningsEntry, error)
}

type earningsService struct {
	earningsRepo repository.EarningsRepository
}

func NewEarningsService(earningsRepo repository.EarningsRepository) EarningsService {
	return &earningsService{earningsRepo: earningsRepo}
}

func (s *earningsService) Summary(ctx context.Context, creatorID string) (*repository.EarningsSummary, error) {
	return s.earningsRepo.Summary(ctx, creatorID)
}

func (s *earningsService) History(ctx context.Context, creatorID string, limit int) ([]*repository.EarningsEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.earningsRepo.History(ctx, creatorID, limit)
}
