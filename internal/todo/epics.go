package todo

import (
	"context"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// ListEpics returns every epic in the project.
func (s *Service) ListEpics(ctx context.Context, project string) ([]item.Item, error) {
	return s.col(project).Find(ctx, store.Filter{Type: item.KindEpic}, nil)
}

// GetEpic fetches one epic by ID.
func (s *Service) GetEpic(ctx context.Context, project, epicID string) (*item.Item, error) {
	if err := item.ValidateID("epicId", epicID); err != nil {
		return nil, err
	}
	ep, err := s.col(project).FindOne(ctx, store.Filter{ID: epicID, Type: item.KindEpic})
	if err != nil {
		return nil, orNotFound(err, "epic %s", epicID)
	}
	return ep, nil
}

// CreateEpic validates and persists a new epic. Title is stored
// trimmed; status defaults to planning.
func (s *Service) CreateEpic(ctx context.Context, project, title, desc string, status item.Status) (*item.Item, error) {
	if err := item.ValidateTitle(title); err != nil {
		return nil, err
	}
	if status != "" {
		if err := item.ValidateEpicStatus(status); err != nil {
			return nil, err
		}
	}
	if err := s.requireProject(ctx, project); err != nil {
		return nil, err
	}

	ep := item.NewEpic(title, desc, status)
	if _, err := s.col(project).InsertOne(ctx, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

// UpdateEpic applies the mutable-field patch. Epics are roots, so no
// propagation follows.
func (s *Service) UpdateEpic(ctx context.Context, project, epicID string, upd Update) (*item.Item, error) {
	if err := item.ValidateID("epicId", epicID); err != nil {
		return nil, err
	}
	if err := upd.validate(true); err != nil {
		return nil, err
	}

	col := s.col(project)
	f := store.Filter{ID: epicID, Type: item.KindEpic}
	matched, err := col.UpdateOne(ctx, f, upd.patch())
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, notFoundf("epic %s", epicID)
	}
	return col.FindOne(ctx, f)
}

// DeleteEpic removes the epic and its whole subtree: tasks of its
// features first, then the features, then the epic itself. Children go
// before parents so a crash mid-cascade never leaves a child pointing
// at a missing ancestor that we deleted.
func (s *Service) DeleteEpic(ctx context.Context, project, epicID string) error {
	if err := item.ValidateID("epicId", epicID); err != nil {
		return err
	}

	col := s.col(project)
	features, err := col.Find(ctx, store.Filter{Type: item.KindFeature, EpicID: epicID}, nil)
	if err != nil {
		return err
	}

	if len(features) > 0 {
		featureIDs := make([]string, len(features))
		for i := range features {
			featureIDs[i] = features[i].ID
		}
		if _, err := col.DeleteMany(ctx, store.Filter{Type: item.KindTask, FeatureIDIn: featureIDs}); err != nil {
			return err
		}
		if _, err := col.DeleteMany(ctx, store.Filter{Type: item.KindFeature, EpicID: epicID}); err != nil {
			return err
		}
	}

	deleted, err := col.DeleteOne(ctx, store.Filter{ID: epicID, Type: item.KindEpic})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return notFoundf("epic %s", epicID)
	}
	return nil
}
