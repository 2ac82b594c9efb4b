package todo

import (
	"context"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// ListFeatures returns features, optionally scoped to one epic.
func (s *Service) ListFeatures(ctx context.Context, project, epicID string) ([]item.Item, error) {
	f := store.Filter{Type: item.KindFeature}
	if epicID != "" {
		if err := item.ValidateID("epicId", epicID); err != nil {
			return nil, err
		}
		f.EpicID = epicID
	}
	return s.col(project).Find(ctx, f, nil)
}

// GetFeature fetches one feature by ID.
func (s *Service) GetFeature(ctx context.Context, project, featureID string) (*item.Item, error) {
	if err := item.ValidateID("featureId", featureID); err != nil {
		return nil, err
	}
	ft, err := s.col(project).FindOne(ctx, store.Filter{ID: featureID, Type: item.KindFeature})
	if err != nil {
		return nil, orNotFound(err, "feature %s", featureID)
	}
	return ft, nil
}

// CreateFeature persists a new feature under the given epic. The epic
// must exist at creation time; the reference is never re-validated
// afterwards. Creating a non-done feature under a done epic does NOT
// trigger a rollup; the epic recomputes on the next status-changing
// mutation among its children.
func (s *Service) CreateFeature(ctx context.Context, project string, epicID, title, desc, uat string, status item.Status, referenceFile string) (*item.Item, error) {
	if err := item.ValidateID("epicId", epicID); err != nil {
		return nil, err
	}
	if err := item.ValidateTitle(title); err != nil {
		return nil, err
	}
	if status != "" {
		if err := item.ValidateItemStatus(status); err != nil {
			return nil, err
		}
	}

	if err := s.requireProject(ctx, project); err != nil {
		return nil, err
	}
	col := s.col(project)
	if _, err := col.FindOne(ctx, store.Filter{ID: epicID, Type: item.KindEpic}); err != nil {
		return nil, orNotFound(err, "epic %s", epicID)
	}

	ft := item.NewFeature(epicID, title, desc, uat, status, referenceFile)
	if _, err := col.InsertOne(ctx, &ft); err != nil {
		return nil, err
	}
	return &ft, nil
}

// UpdateFeature applies the mutable-field patch. A status change rolls
// up to the owning epic after the write commits.
func (s *Service) UpdateFeature(ctx context.Context, project, featureID string, upd Update) (*item.Item, error) {
	if err := item.ValidateID("featureId", featureID); err != nil {
		return nil, err
	}
	if err := upd.validate(false); err != nil {
		return nil, err
	}

	col := s.col(project)
	f := store.Filter{ID: featureID, Type: item.KindFeature}

	current, err := col.FindOne(ctx, f)
	if err != nil {
		return nil, orNotFound(err, "feature %s", featureID)
	}

	if _, err := col.UpdateOne(ctx, f, upd.patch()); err != nil {
		return nil, err
	}

	if upd.Status != nil {
		s.propagateStatus(ctx, project, current.EpicID, item.KindEpic)
	}
	return col.FindOne(ctx, f)
}

// DeleteFeature removes the feature and its tasks, then rolls status
// up to the epic captured before the delete: removing the last
// non-done feature may auto-complete the epic.
func (s *Service) DeleteFeature(ctx context.Context, project, featureID string) error {
	if err := item.ValidateID("featureId", featureID); err != nil {
		return err
	}

	col := s.col(project)
	ft, err := col.FindOne(ctx, store.Filter{ID: featureID, Type: item.KindFeature})
	if err != nil {
		return orNotFound(err, "feature %s", featureID)
	}

	if _, err := col.DeleteMany(ctx, store.Filter{Type: item.KindTask, FeatureID: featureID}); err != nil {
		return err
	}
	if _, err := col.DeleteOne(ctx, store.Filter{ID: featureID, Type: item.KindFeature}); err != nil {
		return err
	}

	s.propagateStatus(ctx, project, ft.EpicID, item.KindEpic)
	return nil
}
