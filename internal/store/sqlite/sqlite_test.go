package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Ping(context.Background()))
	require.NoError(t, st.Close(context.Background()))
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.CreateProject(ctx, "alpha"))
	require.NoError(t, st.CreateProject(ctx, "beta"))
	assert.ErrorIs(t, st.CreateProject(ctx, "alpha"), store.ErrConflict)

	names, err := st.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	// Dropping removes the project's items too.
	col := st.Project("alpha")
	ep := item.NewEpic("E", "", "")
	_, err = col.InsertOne(ctx, &ep)
	require.NoError(t, err)

	require.NoError(t, st.DropProject(ctx, "alpha"))
	assert.ErrorIs(t, st.DropProject(ctx, "alpha"), store.ErrNotFound)

	_, err = col.FindOne(ctx, store.Filter{ID: ep.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestItemRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.CreateProject(ctx, "p"))
	col := st.Project("p")

	ft := item.NewFeature(store.NewID(), "Checkout", "stripe integration", "cart works", item.StatusInProgress, "docs/checkout.md")
	id, err := col.InsertOne(ctx, &ft)
	require.NoError(t, err)

	got, err := col.FindOne(ctx, store.Filter{ID: id})
	require.NoError(t, err)
	assert.Equal(t, ft.Title, got.Title)
	assert.Equal(t, ft.Desc, got.Desc)
	assert.Equal(t, ft.UAT, got.UAT)
	assert.Equal(t, ft.Status, got.Status)
	assert.Equal(t, ft.ReferenceFile, got.ReferenceFile)
	assert.Equal(t, ft.EpicID, got.EpicID)
	// RFC 3339 nano survives the round trip to the microsecond and back.
	assert.WithinDuration(t, ft.UpdatedAt, got.UpdatedAt, time.Millisecond)
}

func TestProjectsAreIsolated(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.CreateProject(ctx, "a"))
	require.NoError(t, st.CreateProject(ctx, "b"))

	ep := item.NewEpic("E", "", "")
	_, err := st.Project("a").InsertOne(ctx, &ep)
	require.NoError(t, err)

	inB, err := st.Project("b").Find(ctx, store.Filter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, inB)

	_, err = st.Project("b").FindOne(ctx, store.Filter{ID: ep.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.CreateProject(ctx, "p"))
	col := st.Project("p")

	ep := item.NewEpic("Payments", "billing pipeline", "")
	_, err := col.InsertOne(ctx, &ep)
	require.NoError(t, err)
	ft := item.NewFeature(ep.ID, "Checkout", "", "", "", "")
	_, err = col.InsertOne(ctx, &ft)
	require.NoError(t, err)
	tk := item.NewTask(ft.ID, "Webhook", "", "", item.StatusDone, "")
	_, err = col.InsertOne(ctx, &tk)
	require.NoError(t, err)

	byType, err := col.Find(ctx, store.Filter{Type: item.KindFeature}, nil)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, ft.ID, byType[0].ID)

	byParent, err := col.Find(ctx, store.Filter{Type: item.KindTask, FeatureID: ft.ID}, nil)
	require.NoError(t, err)
	assert.Len(t, byParent, 1)

	byIn, err := col.Find(ctx, store.Filter{FeatureIDIn: []string{ft.ID, store.NewID()}}, nil)
	require.NoError(t, err)
	assert.Len(t, byIn, 1)

	byStatus, err := col.Find(ctx, store.Filter{Status: item.StatusDone}, nil)
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	// Text search is case-insensitive across title and desc.
	byQuery, err := col.Find(ctx, store.Filter{Query: "BILLING"}, nil)
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, ep.ID, byQuery[0].ID)
}

func TestSortAndLimit(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.CreateProject(ctx, "p"))
	col := st.Project("p")

	base := time.Now().UTC()
	for i, title := range []string{"oldest", "middle", "newest"} {
		ep := item.NewEpic(title, "", "")
		ep.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := col.InsertOne(ctx, &ep)
		require.NoError(t, err)
	}

	got, err := col.Find(ctx, store.Filter{}, &store.FindOptions{SortUpdatedDesc: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newest", got[0].Title)
	assert.Equal(t, "middle", got[1].Title)
}

func TestUpdateOne(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.CreateProject(ctx, "p"))
	col := st.Project("p")

	ep := item.NewEpic("E", "", "")
	_, err := col.InsertOne(ctx, &ep)
	require.NoError(t, err)

	later := time.Now().UTC().Add(time.Hour)
	matched, err := col.UpdateOne(ctx, store.Filter{ID: ep.ID}, map[string]any{
		"title":      "E2",
		"desc":       "updated",
		"status":     item.StatusInProgress,
		"updated_at": later,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, matched)

	got, err := col.FindOne(ctx, store.Filter{ID: ep.ID})
	require.NoError(t, err)
	assert.Equal(t, "E2", got.Title)
	assert.Equal(t, "updated", got.Desc)
	assert.Equal(t, item.StatusInProgress, got.Status)
	assert.WithinDuration(t, later, got.UpdatedAt, time.Millisecond)

	matched, err = col.UpdateOne(ctx, store.Filter{ID: store.NewID()}, map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.Zero(t, matched)

	_, err = col.UpdateOne(ctx, store.Filter{ID: ep.ID}, map[string]any{"type": "epic"})
	assert.Error(t, err)
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.CreateProject(ctx, "p"))
	col := st.Project("p")

	featureID := store.NewID()
	for i := 0; i < 3; i++ {
		tk := item.NewTask(featureID, "T", "", "", "", "")
		_, err := col.InsertOne(ctx, &tk)
		require.NoError(t, err)
	}
	other := item.NewTask(store.NewID(), "keep", "", "", "", "")
	_, err := col.InsertOne(ctx, &other)
	require.NoError(t, err)

	deleted, err := col.DeleteMany(ctx, store.Filter{Type: item.KindTask, FeatureID: featureID})
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	remaining, err := col.Find(ctx, store.Filter{}, nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "keep", remaining[0].Title)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := st.Users()

	now := time.Now().UTC()
	u := &store.User{Username: "ada", Email: "ada@example.com", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
	id, err := users.Insert(ctx, u)
	require.NoError(t, err)

	_, err = users.Insert(ctx, &store.User{Username: "ada", Email: "x@example.com", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, store.ErrConflict)
	_, err = users.Insert(ctx, &store.User{Username: "x", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := users.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)

	got, err = users.ByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = users.ByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
