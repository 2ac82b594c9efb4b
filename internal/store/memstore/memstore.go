// Package memstore is an in-memory store backend. It backs unit tests
// and the ephemeral `--store memory` mode; nothing survives process
// exit.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// Store holds every project collection and the user set behind one
// RWMutex. Good enough for tests and single-process ephemeral use.
type Store struct {
	mu       sync.RWMutex
	projects map[string][]item.Item
	users    []store.User
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{projects: make(map[string][]item.Item)}
}

func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.projects))
	for name := range s.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) CreateProject(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[name]; ok {
		return store.ErrConflict
	}
	s.projects[name] = nil
	return nil
}

func (s *Store) DropProject(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[name]; !ok {
		return store.ErrNotFound
	}
	delete(s.projects, name)
	return nil
}

func (s *Store) Project(name string) store.Collection {
	return &collection{store: s, project: name}
}

func (s *Store) Users() store.UserCollection {
	return &userCollection{store: s}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error { return nil }

type collection struct {
	store   *Store
	project string
}

func matches(it *item.Item, f store.Filter) bool {
	if f.ID != "" && it.ID != f.ID {
		return false
	}
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	if f.EpicID != "" && it.EpicID != f.EpicID {
		return false
	}
	if f.FeatureID != "" && it.FeatureID != f.FeatureID {
		return false
	}
	if len(f.FeatureIDIn) > 0 && !slices.Contains(f.FeatureIDIn, it.FeatureID) {
		return false
	}
	if f.Status != "" && it.Status != f.Status {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		haystacks := []string{it.Title, it.Desc, it.UAT, it.ReferenceFile}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (c *collection) Find(ctx context.Context, f store.Filter, opts *store.FindOptions) ([]item.Item, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	var out []item.Item
	for _, it := range c.store.projects[c.project] {
		if matches(&it, f) {
			out = append(out, it)
		}
	}
	if opts != nil {
		if opts.SortUpdatedDesc {
			sort.SliceStable(out, func(i, j int) bool {
				return out[i].UpdatedAt.After(out[j].UpdatedAt)
			})
		}
		if opts.Limit > 0 && len(out) > opts.Limit {
			out = out[:opts.Limit]
		}
	}
	return out, nil
}

func (c *collection) FindOne(ctx context.Context, f store.Filter) (*item.Item, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	for _, it := range c.store.projects[c.project] {
		if matches(&it, f) {
			return &it, nil
		}
	}
	return nil, store.ErrNotFound
}

func (c *collection) InsertOne(ctx context.Context, it *item.Item) (string, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if it.ID == "" {
		it.ID = store.NewID()
	}
	c.store.projects[c.project] = append(c.store.projects[c.project], *it)
	return it.ID, nil
}

func (c *collection) UpdateOne(ctx context.Context, f store.Filter, patch map[string]any) (int, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	items := c.store.projects[c.project]
	for i := range items {
		if !matches(&items[i], f) {
			continue
		}
		applyPatch(&items[i], patch)
		return 1, nil
	}
	return 0, nil
}

func applyPatch(it *item.Item, patch map[string]any) {
	for key, val := range patch {
		switch key {
		case "title":
			if s, ok := val.(string); ok {
				it.Title = s
			}
		case "desc":
			if s, ok := val.(string); ok {
				it.Desc = s
			}
		case "uat":
			if s, ok := val.(string); ok {
				it.UAT = s
			}
		case "status":
			switch s := val.(type) {
			case item.Status:
				it.Status = s
			case string:
				it.Status = item.Status(s)
			}
		case "reference_file":
			if s, ok := val.(string); ok {
				it.ReferenceFile = s
			}
		case "updated_at":
			if t, ok := val.(time.Time); ok {
				it.UpdatedAt = t
			}
		}
	}
}

func (c *collection) DeleteOne(ctx context.Context, f store.Filter) (int, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	items := c.store.projects[c.project]
	for i := range items {
		if matches(&items[i], f) {
			c.store.projects[c.project] = append(items[:i], items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *collection) DeleteMany(ctx context.Context, f store.Filter) (int, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	items := c.store.projects[c.project]
	kept := items[:0:0]
	deleted := 0
	for i := range items {
		if matches(&items[i], f) {
			deleted++
			continue
		}
		kept = append(kept, items[i])
	}
	c.store.projects[c.project] = kept
	return deleted, nil
}

type userCollection struct {
	store *Store
}

func (u *userCollection) Insert(ctx context.Context, usr *store.User) (string, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, existing := range u.store.users {
		if existing.Username == usr.Username || existing.Email == usr.Email {
			return "", store.ErrConflict
		}
	}
	if usr.ID == "" {
		usr.ID = store.NewID()
	}
	u.store.users = append(u.store.users, *usr)
	return usr.ID, nil
}

func (u *userCollection) ByID(ctx context.Context, id string) (*store.User, error) {
	return u.find(func(usr *store.User) bool { return usr.ID == id })
}

func (u *userCollection) ByUsername(ctx context.Context, username string) (*store.User, error) {
	return u.find(func(usr *store.User) bool { return usr.Username == username })
}

func (u *userCollection) ByEmail(ctx context.Context, email string) (*store.User, error) {
	return u.find(func(usr *store.User) bool { return usr.Email == email })
}

func (u *userCollection) find(pred func(*store.User) bool) (*store.User, error) {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	for i := range u.store.users {
		if pred(&u.store.users[i]) {
			usr := u.store.users[i]
			return &usr, nil
		}
	}
	return nil, store.ErrNotFound
}
