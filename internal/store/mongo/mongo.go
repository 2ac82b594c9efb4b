// Package mongo is the MongoDB store backend. Each project lives in
// its own collection named project_<name>; users live in a shared
// users collection. IDs are ObjectIDs, exposed to the rest of the
// system as hex strings.
package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

const (
	projectPrefix   = "project_"
	usersCollection = "users"
)

// Store wraps a mongo client scoped to one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials the server and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo: list collections: %w", err)
	}
	var projects []string
	for _, name := range names {
		if strings.HasPrefix(name, projectPrefix) {
			projects = append(projects, strings.TrimPrefix(name, projectPrefix))
		}
	}
	return projects, nil
}

// CreateProject materializes the collection by inserting and removing
// a marker document, then builds the indexes the item queries rely on.
func (s *Store) CreateProject(ctx context.Context, name string) error {
	existing, err := s.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p == name {
			return store.ErrConflict
		}
	}

	coll := s.db.Collection(projectPrefix + name)
	if _, err := coll.InsertOne(ctx, bson.M{"_marker": true}); err != nil {
		return fmt.Errorf("mongo: create project: %w", err)
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"_marker": true}); err != nil {
		return fmt.Errorf("mongo: create project: %w", err)
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "epic_id", Value: 1}}},
		{Keys: bson.D{{Key: "feature_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("mongo: create indexes: %w", err)
	}
	return nil
}

func (s *Store) DropProject(ctx context.Context, name string) error {
	existing, err := s.ListProjects(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, p := range existing {
		if p == name {
			found = true
			break
		}
	}
	if !found {
		return store.ErrNotFound
	}
	if err := s.db.Collection(projectPrefix + name).Drop(ctx); err != nil {
		return fmt.Errorf("mongo: drop project: %w", err)
	}
	return nil
}

func (s *Store) Project(name string) store.Collection {
	return &collection{coll: s.db.Collection(projectPrefix + name)}
}

func (s *Store) Users() store.UserCollection {
	return &userCollection{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// itemDoc is the BSON shape of an item. Parent references are stored
// as ObjectIDs so they hit the epic_id/feature_id indexes.
type itemDoc struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Type          string              `bson:"type"`
	EpicID        *primitive.ObjectID `bson:"epic_id,omitempty"`
	FeatureID     *primitive.ObjectID `bson:"feature_id,omitempty"`
	Title         string              `bson:"title"`
	Desc          string              `bson:"desc"`
	UAT           string              `bson:"uat"`
	Status        string              `bson:"status"`
	ReferenceFile string              `bson:"reference_file"`
	CreatedAt     time.Time           `bson:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at"`
}

func (d *itemDoc) toItem() item.Item {
	it := item.Item{
		ID:            d.ID.Hex(),
		Type:          item.Kind(d.Type),
		Title:         d.Title,
		Desc:          d.Desc,
		UAT:           d.UAT,
		Status:        item.Status(d.Status),
		ReferenceFile: d.ReferenceFile,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.EpicID != nil {
		it.EpicID = d.EpicID.Hex()
	}
	if d.FeatureID != nil {
		it.FeatureID = d.FeatureID.Hex()
	}
	return it
}

func oid(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("mongo: bad object id %q: %w", hex, err)
	}
	return id, nil
}

type collection struct {
	coll *mongo.Collection
}

func buildFilter(f store.Filter) (bson.M, error) {
	m := bson.M{}
	if f.ID != "" {
		id, err := oid(f.ID)
		if err != nil {
			return nil, err
		}
		m["_id"] = id
	}
	if f.Type != "" {
		m["type"] = string(f.Type)
	}
	if f.EpicID != "" {
		id, err := oid(f.EpicID)
		if err != nil {
			return nil, err
		}
		m["epic_id"] = id
	}
	if f.FeatureID != "" {
		id, err := oid(f.FeatureID)
		if err != nil {
			return nil, err
		}
		m["feature_id"] = id
	}
	if len(f.FeatureIDIn) > 0 {
		ids := make([]primitive.ObjectID, 0, len(f.FeatureIDIn))
		for _, hex := range f.FeatureIDIn {
			id, err := oid(hex)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		m["feature_id"] = bson.M{"$in": ids}
	}
	if f.Status != "" {
		m["status"] = string(f.Status)
	}
	if f.Query != "" {
		regex := primitive.Regex{Pattern: regexQuoteMeta(f.Query), Options: "i"}
		m["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"desc": regex},
			bson.M{"uat": regex},
			bson.M{"reference_file": regex},
		}
	}
	return m, nil
}

// regexQuoteMeta escapes regex metacharacters so user queries match as
// literal substrings.
func regexQuoteMeta(s string) string {
	const meta = `\.+*?()|[]{}^$`
	var b strings.Builder
	for _, c := range s {
		if strings.ContainsRune(meta, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (c *collection) Find(ctx context.Context, f store.Filter, opts *store.FindOptions) ([]item.Item, error) {
	filter, err := buildFilter(f)
	if err != nil {
		return nil, err
	}
	findOpts := options.Find()
	if opts != nil {
		if opts.SortUpdatedDesc {
			findOpts.SetSort(bson.D{{Key: "updated_at", Value: -1}})
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(int64(opts.Limit))
		}
	}

	cur, err := c.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode: %w", err)
	}
	items := make([]item.Item, len(docs))
	for i := range docs {
		items[i] = docs[i].toItem()
	}
	return items, nil
}

func (c *collection) FindOne(ctx context.Context, f store.Filter) (*item.Item, error) {
	filter, err := buildFilter(f)
	if err != nil {
		return nil, err
	}
	var doc itemDoc
	err = c.coll.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find one: %w", err)
	}
	it := doc.toItem()
	return &it, nil
}

func (c *collection) InsertOne(ctx context.Context, it *item.Item) (string, error) {
	doc := itemDoc{
		Type:          string(it.Type),
		Title:         it.Title,
		Desc:          it.Desc,
		UAT:           it.UAT,
		Status:        string(it.Status),
		ReferenceFile: it.ReferenceFile,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
	if it.ID != "" {
		id, err := oid(it.ID)
		if err != nil {
			return "", err
		}
		doc.ID = id
	}
	if it.EpicID != "" {
		id, err := oid(it.EpicID)
		if err != nil {
			return "", err
		}
		doc.EpicID = &id
	}
	if it.FeatureID != "" {
		id, err := oid(it.FeatureID)
		if err != nil {
			return "", err
		}
		doc.FeatureID = &id
	}

	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("mongo: insert: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		it.ID = id.Hex()
	}
	return it.ID, nil
}

func (c *collection) UpdateOne(ctx context.Context, f store.Filter, patch map[string]any) (int, error) {
	filter, err := buildFilter(f)
	if err != nil {
		return 0, err
	}
	set := bson.M{}
	for key, val := range patch {
		if s, ok := val.(item.Status); ok {
			val = string(s)
		}
		set[key] = val
	}
	res, err := c.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("mongo: update: %w", err)
	}
	return int(res.MatchedCount), nil
}

func (c *collection) DeleteOne(ctx context.Context, f store.Filter) (int, error) {
	filter, err := buildFilter(f)
	if err != nil {
		return 0, err
	}
	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongo: delete one: %w", err)
	}
	return int(res.DeletedCount), nil
}

func (c *collection) DeleteMany(ctx context.Context, f store.Filter) (int, error) {
	filter, err := buildFilter(f)
	if err != nil {
		return 0, err
	}
	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongo: delete many: %w", err)
	}
	return int(res.DeletedCount), nil
}

// userDoc is the BSON shape of an account.
type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type userCollection struct {
	coll *mongo.Collection
}

func (u *userCollection) Insert(ctx context.Context, usr *store.User) (string, error) {
	for _, probe := range []bson.M{{"username": usr.Username}, {"email": usr.Email}} {
		err := u.coll.FindOne(ctx, probe).Err()
		if err == nil {
			return "", store.ErrConflict
		}
		if err != mongo.ErrNoDocuments {
			return "", fmt.Errorf("mongo: user lookup: %w", err)
		}
	}

	res, err := u.coll.InsertOne(ctx, userDoc{
		Username:     usr.Username,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("mongo: insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		usr.ID = id.Hex()
	}
	return usr.ID, nil
}

func (u *userCollection) ByID(ctx context.Context, id string) (*store.User, error) {
	objID, err := oid(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return u.one(ctx, bson.M{"_id": objID})
}

func (u *userCollection) ByUsername(ctx context.Context, username string) (*store.User, error) {
	return u.one(ctx, bson.M{"username": username})
}

func (u *userCollection) ByEmail(ctx context.Context, email string) (*store.User, error) {
	return u.one(ctx, bson.M{"email": email})
}

func (u *userCollection) one(ctx context.Context, filter bson.M) (*store.User, error) {
	var doc userDoc
	err := u.coll.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find user: %w", err)
	}
	return &store.User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}
