package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/chestergarett/twba/internal/dashsvc/models"
	"github.com/chestergarett/twba/internal/dashsvc/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLayoutStore mimics the single-row-per-name upsert the database does.
type memLayoutStore struct {
	rows   map[string]*models.DashboardLayout
	nextID int64
}

func newMemLayoutStore() *memLayoutStore {
	return &memLayoutStore{rows: make(map[string]*models.DashboardLayout), nextID: 1}
}

func (m *memLayoutStore) SaveLayout(_ context.Context, name string, layout json.RawMessage) (*models.DashboardLayout, error) {
	now := time.Now()
	if existing, ok := m.rows[name]; ok {
		existing.Layout = append(json.RawMessage(nil), layout...)
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}
	l := &models.DashboardLayout{
		ID:            m.nextID,
		DashboardName: name,
		Layout:        append(json.RawMessage(nil), layout...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.nextID++
	m.rows[name] = l
	cp := *l
	return &cp, nil
}

func (m *memLayoutStore) GetLayoutByName(_ context.Context, name string) (*models.DashboardLayout, error) {
	l, ok := m.rows[name]
	if !ok {
		return nil, store.ErrLayoutNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLayoutStore) ListLayouts(_ context.Context) ([]models.DashboardLayout, error) {
	var out []models.DashboardLayout
	for _, l := range m.rows {
		out = append(out, *l)
	}
	return out, nil
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	st := newMemLayoutStore()
	svc := NewLayoutService(st)
	ctx := context.Background()

	doc := json.RawMessage(`{"tabs":["overview","tobacco"],"theme":"dark"}`)
	saved, err := svc.SaveLayout(ctx, "main", doc)
	require.NoError(t, err)
	assert.Equal(t, "main", saved.DashboardName)

	loaded, err := svc.GetLayout(ctx, "main")
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(loaded.Layout))
	assert.Len(t, st.rows, 1)
}

func TestSecondSaveOverwritesSingleRow(t *testing.T) {
	st := newMemLayoutStore()
	svc := NewLayoutService(st)
	ctx := context.Background()

	first, err := svc.SaveLayout(ctx, "main", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	second, err := svc.SaveLayout(ctx, "main", json.RawMessage(`{"v":2}`))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "upsert must not create a second row")
	assert.Len(t, st.rows, 1)

	loaded, err := svc.GetLayout(ctx, "main")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(loaded.Layout))
	assert.True(t, loaded.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, first.CreatedAt, loaded.CreatedAt)
}

func TestGetUnknownNameIsNotFound(t *testing.T) {
	svc := NewLayoutService(newMemLayoutStore())

	_, err := svc.GetLayout(context.Background(), "never-saved")
	assert.ErrorIs(t, err, store.ErrLayoutNotFound)
}

func TestSaveRejectsBadInput(t *testing.T) {
	svc := NewLayoutService(newMemLayoutStore())
	ctx := context.Background()

	_, err := svc.SaveLayout(ctx, "  ", json.RawMessage(`{}`))
	assert.Error(t, err)

	_, err = svc.SaveLayout(ctx, "main", json.RawMessage(`{"broken":`))
	assert.Error(t, err)

	_, err = svc.SaveLayout(ctx, "main", nil)
	assert.Error(t, err)
}

func TestSaveIsIdempotentForIdenticalPayload(t *testing.T) {
	st := newMemLayoutStore()
	svc := NewLayoutService(st)
	ctx := context.Background()

	doc := json.RawMessage(`{"tabs":[]}`)
	for i := 0; i < 3; i++ {
		_, err := svc.SaveLayout(ctx, "main", doc)
		require.NoError(t, err)
	}

	layouts, err := svc.ListLayouts(ctx)
	require.NoError(t, err)
	require.Len(t, layouts, 1)
	assert.JSONEq(t, string(doc), string(layouts[0].Layout))
}
