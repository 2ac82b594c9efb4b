// Package store defines the document-store contract the core depends
// on. Three backends implement it: memstore (in-memory), sqlite
// (embedded, local default) and mongo (production). The core never
// touches a backend directly; it receives a Store and works against
// project-scoped Collections.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vibetodo/vibetodo/internal/item"
)

var (
	// ErrNotFound reports a missing project, item or user.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a uniqueness violation, e.g. a duplicate
	// project name or username.
	ErrConflict = errors.New("already exists")
)

// NewID returns a fresh object ID in canonical hex form. All backends
// use the same format so IDs survive a backend switch.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// Filter selects items within one project collection. Zero-valued
// fields are ignored; set fields are ANDed together.
type Filter struct {
	ID          string
	Type        item.Kind
	EpicID      string
	FeatureID   string
	FeatureIDIn []string
	Status      item.Status
	// Query is a case-insensitive substring match over title, desc,
	// uat and reference_file.
	Query string
}

// FindOptions controls ordering and result size for Find.
type FindOptions struct {
	SortUpdatedDesc bool
	Limit           int
}

// Collection is the per-project document set. All methods are safe for
// concurrent use; none of them is atomic with respect to any other.
type Collection interface {
	Find(ctx context.Context, f Filter, opts *FindOptions) ([]item.Item, error)
	// FindOne returns ErrNotFound when no document matches.
	FindOne(ctx context.Context, f Filter) (*item.Item, error)
	// InsertOne stores the item, assigning an ID when it has none,
	// and returns the ID.
	InsertOne(ctx context.Context, it *item.Item) (string, error)
	// UpdateOne applies the field patch to the first match and
	// returns the matched count (0 or 1). Patch keys use wire field
	// names: title, desc, uat, status, reference_file, updated_at.
	UpdateOne(ctx context.Context, f Filter, patch map[string]any) (int, error)
	DeleteOne(ctx context.Context, f Filter) (int, error)
	DeleteMany(ctx context.Context, f Filter) (int, error)
}

// User is an account document, stored outside project namespaces.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCollection persists accounts. Insert returns ErrConflict when
// the username or email is already taken.
type UserCollection interface {
	Insert(ctx context.Context, u *User) (string, error)
	ByID(ctx context.Context, id string) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
}

// Store is the backend handle. Project lifecycle is explicit: a
// project must be created before its Collection is used, and dropping
// it removes every contained item irreversibly.
type Store interface {
	ListProjects(ctx context.Context) ([]string, error)
	// CreateProject provisions the namespace and its indexes.
	// Returns ErrConflict when the name is taken.
	CreateProject(ctx context.Context, name string) error
	// DropProject removes the namespace and all items in it.
	// Returns ErrNotFound when the project does not exist.
	DropProject(ctx context.Context, name string) error
	Project(name string) Collection
	Users() UserCollection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
