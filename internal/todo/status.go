package todo

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// propagateStatus rolls a child mutation up to the parent and, when
// the parent is a feature, on up to its epic. It is called after the
// triggering mutation has committed, and its failures are logged and
// swallowed: losing a rollup is acceptable, failing the already
// committed mutation is not.
func (s *Service) propagateStatus(ctx context.Context, project, parentID string, parentKind item.Kind) {
	if err := s.updateParentStatus(ctx, project, parentID, parentKind); err != nil {
		s.log.Error("status propagation failed",
			"project", project, "parent_id", parentID, "level", parentKind, "error", err)
	}
}

// updateParentStatus recomputes one parent's status from its immediate
// children and writes it if it changed.
//
// Rules:
//   - a parent with no children is never auto-changed, so an explicit
//     status like planning survives on an empty epic
//   - all children done and parent not done → parent becomes done
//   - any child not done and parent done → parent reverts to in_progress
//   - otherwise the parent's own status stands; in particular a blocked
//     child does not force the parent to blocked
//
// Recomputing from current children is idempotent, so a concurrent
// double invocation converges to the same result.
func (s *Service) updateParentStatus(ctx context.Context, project, parentID string, parentKind item.Kind) error {
	childF, ok := childFilter(parentKind, parentID)
	if !ok {
		// Tasks have no children.
		return nil
	}

	col := s.col(project)
	children, err := col.Find(ctx, childF, nil)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}

	allDone := true
	for i := range children {
		if children[i].Status != item.StatusDone {
			allDone = false
			break
		}
	}

	parent, err := col.FindOne(ctx, store.Filter{ID: parentID, Type: parentKind})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Deleted concurrently; nothing to roll up.
			return nil
		}
		return err
	}

	newStatus := parent.Status
	if allDone && parent.Status != item.StatusDone {
		newStatus = item.StatusDone
	} else if !allDone && parent.Status == item.StatusDone {
		newStatus = item.StatusInProgress
	}
	if newStatus == parent.Status {
		return nil
	}

	_, err = col.UpdateOne(ctx, store.Filter{ID: parentID, Type: parentKind}, map[string]any{
		"status":     newStatus,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	// A feature's change can complete (or reopen) its epic. Epics are
	// roots, so the recursion stops there.
	if parentKind == item.KindFeature && parent.EpicID != "" {
		return s.updateParentStatus(ctx, project, parent.EpicID, item.KindEpic)
	}
	return nil
}

// Progress summarizes completion of a node's immediate children.
type Progress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// Progress computes {total, completed, percentage} from the node's
// immediate children. Tasks always report zeros. Pure read.
func (s *Service) Progress(ctx context.Context, project, nodeID string, nodeKind item.Kind) (Progress, error) {
	childF, ok := childFilter(nodeKind, nodeID)
	if !ok {
		return Progress{}, nil
	}

	children, err := s.col(project).Find(ctx, childF, nil)
	if err != nil {
		return Progress{}, err
	}
	return progressOf(children), nil
}

func progressOf(children []item.Item) Progress {
	p := Progress{Total: len(children)}
	for i := range children {
		if children[i].Status == item.StatusDone {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
	}
	return p
}
