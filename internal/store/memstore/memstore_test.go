package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	names, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.CreateProject(ctx, "alpha"))
	require.NoError(t, s.CreateProject(ctx, "beta"))
	assert.ErrorIs(t, s.CreateProject(ctx, "alpha"), store.ErrConflict)

	names, err = s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	require.NoError(t, s.DropProject(ctx, "alpha"))
	assert.ErrorIs(t, s.DropProject(ctx, "alpha"), store.ErrNotFound)
}

func TestInsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateProject(ctx, "p"))
	col := s.Project("p")

	ep := item.NewEpic("Launch", "", "")
	id, err := col.InsertOne(ctx, &ep)
	require.NoError(t, err)
	assert.Len(t, id, 24)
	assert.Equal(t, id, ep.ID)

	got, err := col.FindOne(ctx, store.Filter{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "Launch", got.Title)

	_, err = col.FindOne(ctx, store.Filter{ID: store.NewID()})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFilterMatching(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateProject(ctx, "p"))
	col := s.Project("p")

	ep := item.NewEpic("Launch", "", "")
	_, err := col.InsertOne(ctx, &ep)
	require.NoError(t, err)

	ft := item.NewFeature(ep.ID, "Auth flow", "JWT login", "", "", "")
	_, err = col.InsertOne(ctx, &ft)
	require.NoError(t, err)

	t1 := item.NewTask(ft.ID, "Hash passwords", "", "", item.StatusDone, "")
	t2 := item.NewTask(ft.ID, "Issue tokens", "", "", "", "")
	for _, tk := range []*item.Item{&t1, &t2} {
		_, err = col.InsertOne(ctx, tk)
		require.NoError(t, err)
	}

	byType, err := col.Find(ctx, store.Filter{Type: item.KindTask}, nil)
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byStatus, err := col.Find(ctx, store.Filter{Status: item.StatusDone}, nil)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Hash passwords", byStatus[0].Title)

	byParent, err := col.Find(ctx, store.Filter{Type: item.KindFeature, EpicID: ep.ID}, nil)
	require.NoError(t, err)
	assert.Len(t, byParent, 1)

	byIn, err := col.Find(ctx, store.Filter{Type: item.KindTask, FeatureIDIn: []string{ft.ID}}, nil)
	require.NoError(t, err)
	assert.Len(t, byIn, 2)

	// Query is case-insensitive and spans title and desc.
	byQuery, err := col.Find(ctx, store.Filter{Query: "jwt"}, nil)
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "Auth flow", byQuery[0].Title)
}

func TestFindOptions(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateProject(ctx, "p"))
	col := s.Project("p")

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
	s := New()
	require.NoError(t, s.CreateProject(ctx, "p"))
	col := s.Project("p")

	ep := item.NewEpic("Launch", "", "")
	_, err := col.InsertOne(ctx, &ep)
	require.NoError(t, err)

	later := time.Now().UTC().Add(time.Hour)
	matched, err := col.UpdateOne(ctx, store.Filter{ID: ep.ID}, map[string]any{
		"title":      "Launch v2",
		"status":     item.StatusInProgress,
		"updated_at": later,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, matched)

	got, err := col.FindOne(ctx, store.Filter{ID: ep.ID})
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", got.Title)
	assert.Equal(t, item.StatusInProgress, got.Status)
	assert.True(t, got.UpdatedAt.Equal(later))

	matched, err = col.UpdateOne(ctx, store.Filter{ID: store.NewID()}, map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.Zero(t, matched)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateProject(ctx, "p"))
	col := s.Project("p")

	ft := item.NewFeature(store.NewID(), "F", "", "", "", "")
	_, err := col.InsertOne(ctx, &ft)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		tk := item.NewTask(ft.ID, "T", "", "", "", "")
		_, err = col.InsertOne(ctx, &tk)
		require.NoError(t, err)
	}

	deleted, err := col.DeleteMany(ctx, store.Filter{Type: item.KindTask, FeatureID: ft.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	deleted, err = col.DeleteOne(ctx, store.Filter{ID: ft.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	remaining, err := col.Find(ctx, store.Filter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	users := s.Users()

	u := &store.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	id, err := users.Insert(ctx, u)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = users.Insert(ctx, &store.User{Username: "ada", Email: "other@example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)
	_, err = users.Insert(ctx, &store.User{Username: "other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)

	byName, err := users.ByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	byID, err := users.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	_, err = users.ByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
