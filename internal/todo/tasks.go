package todo

import (
	"context"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// ListTasks returns tasks, optionally scoped to one feature.
func (s *Service) ListTasks(ctx context.Context, project, featureID string) ([]item.Item, error) {
	f := store.Filter{Type: item.KindTask}
	if featureID != "" {
		if err := item.ValidateID("featureId", featureID); err != nil {
			return nil, err
		}
		f.FeatureID = featureID
	}
	return s.col(project).Find(ctx, f, nil)
}

// GetTask fetches one task by ID.
func (s *Service) GetTask(ctx context.Context, project, taskID string) (*item.Item, error) {
	if err := item.ValidateID("taskId", taskID); err != nil {
		return nil, err
	}
	t, err := s.col(project).FindOne(ctx, store.Filter{ID: taskID, Type: item.KindTask})
	if err != nil {
		return nil, orNotFound(err, "task %s", taskID)
	}
	return t, nil
}

// CreateTask persists a new task under the given feature, which must
// exist at creation time. Like feature creation, adding a task does
// not trigger a rollup on its own.
func (s *Service) CreateTask(ctx context.Context, project string, featureID, title, desc, uat string, status item.Status, referenceFile string) (*item.Item, error) {
	if err := item.ValidateID("featureId", featureID); err != nil {
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
	if _, err := col.FindOne(ctx, store.Filter{ID: featureID, Type: item.KindFeature}); err != nil {
		return nil, orNotFound(err, "feature %s", featureID)
	}

	t := item.NewTask(featureID, title, desc, uat, status, referenceFile)
	if _, err := col.InsertOne(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask applies the mutable-field patch. A status change rolls up
// to the owning feature and possibly on to the epic.
func (s *Service) UpdateTask(ctx context.Context, project, taskID string, upd Update) (*item.Item, error) {
	if err := item.ValidateID("taskId", taskID); err != nil {
		return nil, err
	}
	if err := upd.validate(false); err != nil {
		return nil, err
	}

	col := s.col(project)
	f := store.Filter{ID: taskID, Type: item.KindTask}

	current, err := col.FindOne(ctx, f)
	if err != nil {
		return nil, orNotFound(err, "task %s", taskID)
	}

	if _, err := col.UpdateOne(ctx, f, upd.patch()); err != nil {
		return nil, err
	}

	if upd.Status != nil {
		s.propagateStatus(ctx, project, current.FeatureID, item.KindFeature)
	}
	return col.FindOne(ctx, f)
}

// DeleteTask removes the task, then rolls status up to the feature
// captured before the delete.
func (s *Service) DeleteTask(ctx context.Context, project, taskID string) error {
	if err := item.ValidateID("taskId", taskID); err != nil {
		return err
	}

	col := s.col(project)
	t, err := col.FindOne(ctx, store.Filter{ID: taskID, Type: item.KindTask})
	if err != nil {
		return orNotFound(err, "task %s", taskID)
	}

	if _, err := col.DeleteOne(ctx, store.Filter{ID: taskID, Type: item.KindTask}); err != nil {
		return err
	}

	s.propagateStatus(ctx, project, t.FeatureID, item.KindFeature)
	return nil
}

// MarkTaskDone is a convenience status setter used by the tool surface.
func (s *Service) MarkTaskDone(ctx context.Context, project, taskID string) (*item.Item, error) {
	return s.setTaskStatus(ctx, project, taskID, item.StatusDone)
}

// MarkTaskInProgress is a convenience status setter.
func (s *Service) MarkTaskInProgress(ctx context.Context, project, taskID string) (*item.Item, error) {
	return s.setTaskStatus(ctx, project, taskID, item.StatusInProgress)
}

// MarkTaskBlocked is a convenience status setter.
func (s *Service) MarkTaskBlocked(ctx context.Context, project, taskID string) (*item.Item, error) {
	return s.setTaskStatus(ctx, project, taskID, item.StatusBlocked)
}

func (s *Service) setTaskStatus(ctx context.Context, project, taskID string, status item.Status) (*item.Item, error) {
	return s.UpdateTask(ctx, project, taskID, Update{Status: &status})
}
