package service

import (
	"context"

	"github.com/chestergarett/twba/internal/dashsvc/models"
)

type AnalyticsStore interface {
	TransactionSummary(ctx context.Context) (*models.TransactionSummary, error)
}

type AnalyticsService struct {
	analyticsStore AnalyticsStore
}

func NewAnalyticsService(analyticsStore AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{analyticsStore: analyticsStore}
}

func (s *AnalyticsService) TransactionSummary(ctx context.Context) (*models.TransactionSummary, error) {
	return s.analyticsStore.TransactionSummary(ctx)
}
