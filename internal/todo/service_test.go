package todo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
	"github.com/vibetodo/vibetodo/internal/store/memstore"
)

// newTestService returns a service over a fresh in-memory store with
// one project "p" already created.
func newTestService(t *testing.T) *Service {
	t.Helper()
	st := memstore.New()
	require.NoError(t, st.CreateProject(context.Background(), "p"))
	return NewService(st, nil)
}

func TestCreateProjectSanitizes(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memstore.New(), nil)

	name, err := svc.CreateProject(ctx, "My Cool Project!!")
	require.NoError(t, err)
	assert.Equal(t, "my_cool_project", name)

	exists, err := svc.ProjectExists(ctx, "my_cool_project")
	require.NoError(t, err)
	assert.True(t, exists)

	// Same sanitized name collides.
	_, err = svc.CreateProject(ctx, "my cool PROJECT")
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestCreateProjectRejectsEmptyResult(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memstore.New(), nil)

	var ve *item.ValidationError
	_, err := svc.CreateProject(ctx, "   ")
	require.ErrorAs(t, err, &ve)

	_, err = svc.CreateProject(ctx, "!!!")
	require.ErrorAs(t, err, &ve)
}

func TestEpicCRUD(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	ep, err := svc.CreateEpic(ctx, "p", "  Launch  ", "ship it", "")
	require.NoError(t, err)
	assert.Equal(t, "Launch", ep.Title)
	assert.Equal(t, item.StatusPlanning, ep.Status)
	assert.Len(t, ep.ID, 24)

	got, err := svc.GetEpic(ctx, "p", ep.ID)
	require.NoError(t, err)
	assert.Equal(t, ep.ID, got.ID)

	title := "Launch v2"
	updated, err := svc.UpdateEpic(ctx, "p", ep.ID, Update{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", updated.Title)

	epics, err := svc.ListEpics(ctx, "p")
	require.NoError(t, err)
	assert.Len(t, epics, 1)

	require.NoError(t, svc.DeleteEpic(ctx, "p", ep.ID))
	assert.ErrorIs(t, svc.DeleteEpic(ctx, "p", ep.ID), store.ErrNotFound)
}

func TestCreateEpicValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	var ve *item.ValidationError
	_, err := svc.CreateEpic(ctx, "p", "   ", "", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	_, err = svc.CreateEpic(ctx, "p", "ok", "", "todo")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)
}

func TestCreateChildRequiresParent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateFeature(ctx, "p", store.NewID(), "F", "", "", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.CreateTask(ctx, "p", store.NewID(), "T", "", "", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Structurally bad IDs fail before the lookup.
	var ve *item.ValidationError
	_, err = svc.CreateFeature(ctx, "p", "not-an-id", "F", "", "", "", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "epicId", ve.Field)
}

// failingStore wraps a real store but makes every FindOne fail with a
// fixed backend error.
type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) Project(name string) store.Collection {
	return &failingCollection{Collection: f.Store.Project(name), err: f.err}
}

type failingCollection struct {
	store.Collection
	err error
}

func (c *failingCollection) FindOne(ctx context.Context, f store.Filter) (*item.Item, error) {
	return nil, c.err
}

func TestBackendFailureIsNotTreatedAsMissing(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.CreateProject(ctx, "p"))

	backendErr := errors.New("backend down")
	svc := NewService(&failingStore{Store: st, err: backendErr}, nil)
	id := store.NewID()

	_, err := svc.GetEpic(ctx, "p", id)
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	_, err = svc.GetFeature(ctx, "p", id)
	assert.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	_, err = svc.GetTask(ctx, "p", id)
	assert.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	_, err = svc.EpicTree(ctx, "p", id)
	assert.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteTask(ctx, "p", id), backendErr)
	assert.ErrorIs(t, svc.DeleteFeature(ctx, "p", id), backendErr)
}

func TestCreateRequiresExistingProject(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateEpic(ctx, "ghost", "E", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.CreateFeature(ctx, "ghost", store.NewID(), "F", "", "", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.CreateTask(ctx, "ghost", store.NewID(), "T", "", "", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Nothing was materialized as a side effect.
	projects, err := svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, projects)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	ep, err := svc.CreateEpic(ctx, "p", "E", "", "")
	require.NoError(t, err)

	bad := item.Status("shipped")
	var ve *item.ValidationError
	_, err = svc.UpdateEpic(ctx, "p", ep.ID, Update{Status: &bad})
	require.ErrorAs(t, err, &ve)

	// todo is legal for tasks but not for epics.
	todoStatus := item.StatusTodo
	_, err = svc.UpdateEpic(ctx, "p", ep.ID, Update{Status: &todoStatus})
	require.ErrorAs(t, err, &ve)
}

func TestCascadeDeleteEpic(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	ep, err := svc.CreateEpic(ctx, "p", "E", "", "")
	require.NoError(t, err)
	f1, err := svc.CreateFeature(ctx, "p", ep.ID, "F1", "", "", "", "")
	require.NoError(t, err)
	f2, err := svc.CreateFeature(ctx, "p", ep.ID, "F2", "", "", "", "")
	require.NoError(t, err)
	for _, ft := range []*item.Item{f1, f2} {
		for i := 0; i < 2; i++ {
			_, err = svc.CreateTask(ctx, "p", ft.ID, "T", "", "", "", "")
			require.NoError(t, err)
		}
	}

	// An unrelated epic must survive the cascade.
	other, err := svc.CreateEpic(ctx, "p", "Other", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEpic(ctx, "p", ep.ID))

	stats, err := svc.ProjectStats(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Epics)
	assert.Zero(t, stats.Features)
	assert.Zero(t, stats.Tasks)

	_, err = svc.GetEpic(ctx, "p", other.ID)
	assert.NoError(t, err)
}

func TestCascadeDeleteFeature(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	ep, err := svc.CreateEpic(ctx, "p", "E", "", "")
	require.NoError(t, err)
	ft, err := svc.CreateFeature(ctx, "p", ep.ID, "F", "", "", "", "")
	require.NoError(t, err)
	tk, err := svc.CreateTask(ctx, "p", ft.ID, "T", "", "", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFeature(ctx, "p", ft.ID))

	_, err = svc.GetTask(ctx, "p", tk.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.GetEpic(ctx, "p", ep.ID)
	assert.NoError(t, err)
}
