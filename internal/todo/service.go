// Package todo implements the task-hierarchy core: CRUD over epics,
// features and tasks, status propagation up the tree, progress
// aggregation, tree assembly and cascade deletion.
//
// The package is transport-agnostic: the REST handlers and the MCP
// tools are both thin adapters over Service, so the hierarchy rules
// live in exactly one place.
package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// Service is the single implementation of the hierarchy operations,
// shared by every transport.
type Service struct {
	store store.Store
	log   *slog.Logger
}

// NewService wires the core against a store backend. A nil logger
// falls back to slog.Default().
func NewService(st store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, log: log}
}

// ListProjects returns all project names, sorted by the backend.
func (s *Service) ListProjects(ctx context.Context) ([]string, error) {
	return s.store.ListProjects(ctx)
}

// CreateProject sanitizes the requested name and provisions the
// project namespace. Returns the sanitized name.
func (s *Service) CreateProject(ctx context.Context, name string) (string, error) {
	if err := item.ValidateTitle(name); err != nil {
		return "", &item.ValidationError{Field: "name", Message: "required and must be a non-empty string"}
	}
	sanitized := item.SanitizeProjectName(name)
	if sanitized == "" {
		return "", &item.ValidationError{Field: "name", Message: "must contain at least one alphanumeric character"}
	}
	if err := s.store.CreateProject(ctx, sanitized); err != nil {
		return "", err
	}
	return sanitized, nil
}

// DeleteProject drops the project and everything in it.
func (s *Service) DeleteProject(ctx context.Context, name string) error {
	return s.store.DropProject(ctx, name)
}

// ProjectExists reports whether the named project has been created.
func (s *Service) ProjectExists(ctx context.Context, name string) (bool, error) {
	names, err := s.store.ListProjects(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// col returns the project-scoped collection handle.
func (s *Service) col(project string) store.Collection {
	return s.store.Project(project)
}

// childFilter selects the immediate children of a parent.
func childFilter(parentKind item.Kind, parentID string) (store.Filter, bool) {
	switch parentKind {
	case item.KindEpic:
		return store.Filter{Type: item.KindFeature, EpicID: parentID}, true
	case item.KindFeature:
		return store.Filter{Type: item.KindTask, FeatureID: parentID}, true
	default:
		return store.Filter{}, false
	}
}

// notFoundf wraps store.ErrNotFound with the entity that was missed,
// keeping errors.Is(err, store.ErrNotFound) true at the transports.
func notFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, store.ErrNotFound)...)
}

// orNotFound names the entity behind a missing-document error. Backend
// failures pass through untouched so the transports map them to 500,
// not 404.
func orNotFound(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFoundf(format, args...)
	}
	return err
}

// requireProject fails lookups and writes against projects that were
// never created, so no store backend materializes one implicitly.
func (s *Service) requireProject(ctx context.Context, project string) error {
	exists, err := s.ProjectExists(ctx, project)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundf("project %s", project)
	}
	return nil
}
