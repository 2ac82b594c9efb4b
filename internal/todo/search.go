package todo

import (
	"context"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// Search finds items matching a case-insensitive text query over
// title, desc, uat and reference_file, optionally narrowed by kind and
// status. All arguments besides project are optional.
func (s *Service) Search(ctx context.Context, project, query string, kind item.Kind, status item.Status) ([]item.Item, error) {
	if status != "" {
		if err := validAnyStatus(status); err != nil {
			return nil, err
		}
	}
	if kind != "" && kind != item.KindEpic && kind != item.KindFeature && kind != item.KindTask {
		return nil, &item.ValidationError{Field: "type", Message: "must be one of: epic, feature, task"}
	}
	return s.col(project).Find(ctx, store.Filter{Type: kind, Status: status, Query: query}, nil)
}

// ItemsByStatus lists items carrying the given status, optionally
// narrowed by kind.
func (s *Service) ItemsByStatus(ctx context.Context, project string, status item.Status, kind item.Kind) ([]item.Item, error) {
	if err := validAnyStatus(status); err != nil {
		return nil, err
	}
	return s.col(project).Find(ctx, store.Filter{Type: kind, Status: status}, nil)
}

// BlockedItems lists everything currently blocked, at any level.
func (s *Service) BlockedItems(ctx context.Context, project string) ([]item.Item, error) {
	return s.ItemsByStatus(ctx, project, item.StatusBlocked, "")
}

// InProgressItems lists everything currently in progress, at any level.
func (s *Service) InProgressItems(ctx context.Context, project string) ([]item.Item, error) {
	return s.ItemsByStatus(ctx, project, item.StatusInProgress, "")
}

// RecentlyUpdated returns the most recently touched items, newest
// first. A non-positive limit defaults to 10.
func (s *Service) RecentlyUpdated(ctx context.Context, project string, limit int) ([]item.Item, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.col(project).Find(ctx, store.Filter{}, &store.FindOptions{SortUpdatedDesc: true, Limit: limit})
}

// validAnyStatus accepts any status legal at some level; the union of
// the epic and item sets.
func validAnyStatus(status item.Status) error {
	if item.ValidateEpicStatus(status) == nil || item.ValidateItemStatus(status) == nil {
		return nil
	}
	return &item.ValidationError{Field: "status", Message: "must be one of: planning, todo, in_progress, done, blocked"}
}

// Stats aggregates per-kind and per-status counts for dashboards.
type Stats struct {
	Epics    int                 `json:"epics"`
	Features int                 `json:"features"`
	Tasks    int                 `json:"tasks"`
	ByStatus map[item.Status]int `json:"by_status"`
}

// ProjectStats counts every item in the project by kind and status.
func (s *Service) ProjectStats(ctx context.Context, project string) (*Stats, error) {
	items, err := s.col(project).Find(ctx, store.Filter{}, nil)
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: make(map[item.Status]int)}
	for i := range items {
		switch items[i].Type {
		case item.KindEpic:
			stats.Epics++
		case item.KindFeature:
			stats.Features++
		case item.KindTask:
			stats.Tasks++
		}
		stats.ByStatus[items[i].Status]++
	}
	return stats, nil
}
