package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chestergarett/twba/internal/dashsvc/models"
)

// LayoutStore is the persistence contract the service needs.
type LayoutStore interface {
	SaveLayout(ctx context.Context, name string, layout json.RawMessage) (*models.DashboardLayout, error)
	GetLayoutByName(ctx context.Context, name string) (*models.DashboardLayout, error)
	ListLayouts(ctx context.Context) ([]models.DashboardLayout, error)
}

// LayoutService struct represents the layout service layer
type LayoutService struct {
	layoutStore LayoutStore
}

// NewLayoutService creates a new LayoutService instance
func NewLayoutService(layoutStore LayoutStore) *LayoutService {
	return &LayoutService{
		layoutStore: layoutStore,
	}
}

// SaveLayout validates the payload and upserts the row for name.
func (s *LayoutService) SaveLayout(ctx context.Context, name string, layout json.RawMessage) (*models.DashboardLayout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("dashboard name is required")
	}
	if len(layout) == 0 || !json.Valid(layout) {
		return nil, fmt.Errorf("layout must be a valid JSON document")
	}

	saved, err := s.layoutStore.SaveLayout(ctx, name, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to save layout: %w", err)
	}

	return saved, nil
}

// GetLayout returns the stored layout; store.ErrLayoutNotFound passes
// through so the handler can answer 404 instead of 500.
func (s *LayoutService) GetLayout(ctx context.Context, name string) (*models.DashboardLayout, error) {
	return s.layoutStore.GetLayoutByName(ctx, name)
}

// ListLayouts returns every saved layout.
func (s *LayoutService) ListLayouts(ctx context.Context) ([]models.DashboardLayout, error) {
	return s.layoutStore.ListLayouts(ctx)
}
