package todo

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// FeatureNode is a feature with its tasks and progress embedded.
type FeatureNode struct {
	item.Item
	Progress Progress    `json:"progress"`
	Tasks    []item.Item `json:"tasks"`
}

// EpicNode is an epic with its feature subtrees and progress embedded.
type EpicNode struct {
	item.Item
	Progress Progress      `json:"progress"`
	Features []FeatureNode `json:"features"`
}

// ProjectTree assembles the whole hierarchy with per-node progress.
// Nothing is cached: every call recomputes from the store, so a
// structural change is visible on the next read. Epics are assembled
// concurrently; the fan-out is read-only, and results land at fixed
// indices to keep output order stable.
func (s *Service) ProjectTree(ctx context.Context, project string) ([]EpicNode, error) {
	col := s.col(project)
	epics, err := col.Find(ctx, store.Filter{Type: item.KindEpic}, nil)
	if err != nil {
		return nil, err
	}

	nodes := make([]EpicNode, len(epics))
	g, gctx := errgroup.WithContext(ctx)
	for i := range epics {
		g.Go(func() error {
			node, err := s.assembleEpic(gctx, col, epics[i])
			if err != nil {
				return err
			}
			nodes[i] = node
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// EpicTree assembles the subtree of a single epic.
func (s *Service) EpicTree(ctx context.Context, project, epicID string) (*EpicNode, error) {
	if err := item.ValidateID("epicId", epicID); err != nil {
		return nil, err
	}

	col := s.col(project)
	epic, err := col.FindOne(ctx, store.Filter{ID: epicID, Type: item.KindEpic})
	if err != nil {
		return nil, orNotFound(err, "epic %s", epicID)
	}

	node, err := s.assembleEpic(ctx, col, *epic)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (s *Service) assembleEpic(ctx context.Context, col store.Collection, epic item.Item) (EpicNode, error) {
	features, err := col.Find(ctx, store.Filter{Type: item.KindFeature, EpicID: epic.ID}, nil)
	if err != nil {
		return EpicNode{}, err
	}

	featureNodes := make([]FeatureNode, len(features))
	for i := range features {
		tasks, err := col.Find(ctx, store.Filter{Type: item.KindTask, FeatureID: features[i].ID}, nil)
		if err != nil {
			return EpicNode{}, err
		}
		if tasks == nil {
			tasks = []item.Item{}
		}
		featureNodes[i] = FeatureNode{
			Item:     features[i],
			Progress: progressOf(tasks),
			Tasks:    tasks,
		}
	}

	return EpicNode{
		Item:     epic,
		Progress: progressOf(features),
		Features: featureNodes,
	}, nil
}
