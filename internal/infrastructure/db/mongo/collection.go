package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

// Collection names used by the gateway.
const (
	CollectionPlans        = "plans"
	CollectionDrafts       = "drafts"
	CollectionShares       = "shared_plans"
	CollectionBlogPosts    = "blog_posts"
	CollectionTestimonials = "testimonials"
	CollectionTransactions = "transactions"
)

// Collection is a generic remote collection keyed by the document _id.
// ownerField names the document field matched against Scope.OwnerID; an empty
// ownerField means the collection is not partitioned by owner.
type Collection[T domain.Entity] struct {
	col        *mongo.Collection
	ownerField string
}

func NewCollection[T domain.Entity](db *mongo.Database, name, ownerField string) *Collection[T] {
	return &Collection[T]{col: db.Collection(name), ownerField: ownerField}
}

var _ ports.RemoteCollection[domain.SavedPlan] = (*Collection[domain.SavedPlan])(nil)

// Upsert replaces the document with the record's id, inserting it if absent.
func (c *Collection[T]) Upsert(ctx context.Context, rec T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := c.col.ReplaceOne(ctx, bson.M{"_id": rec.EntityID()}, rec, options.Replace().SetUpsert(true))
	return err
}

// List returns every document visible in scope.
func (c *Collection[T]) List(ctx context.Context, scope domain.Scope) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := c.col.Find(ctx, c.filter(scope))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the document with id, or nil when it does not exist.
func (c *Collection[T]) Get(ctx context.Context, scope domain.Scope, id string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := c.filter(scope)
	filter["_id"] = id

	var rec T
	err := c.col.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (c *Collection[T]) Delete(ctx context.Context, scope domain.Scope, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := c.filter(scope)
	filter["_id"] = id
	_, err := c.col.DeleteOne(ctx, filter)
	return err
}

// EnsureIndexes creates the owner and category indexes when applicable.
func (c *Collection[T]) EnsureIndexes(ctx context.Context) error {
	if c.ownerField == "" || c.ownerField == "_id" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := c.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: c.ownerField, Value: 1}},
	})
	return err
}

func (c *Collection[T]) filter(scope domain.Scope) bson.M {
	filter := bson.M{}
	if c.ownerField != "" && scope.OwnerID != "" {
		filter[c.ownerField] = scope.OwnerID
	}
	if scope.Category != "" {
		filter["category"] = scope.Category
	}
	return filter
}
