// internal/repository/mongo/plan_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan of any type.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.ClientID == primitive.NilObjectID || plan.CoachID == primitive.NilObjectID || plan.Type == "" {
		return primitive.NilObjectID, errors.New("plan requires clientId, coachId, and type")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Update persists the mutable fields of a plan (status, dates, payload).
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}

	filter := bson.M{"_id": plan.ID}
	// CoachID, ClientID, Type and CreatedAt are not updatable.
	updateDoc := bson.M{
		"$set": bson.M{
			"name":          plan.Name,
			"status":        plan.Status,
			"effectiveFrom": plan.EffectiveFrom,
			"effectiveTo":   plan.EffectiveTo,
			"macros":        plan.Macros,
			"weeks":         plan.Weeks,
			"updatedAt":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a plan document. Descendant cleanup is the service's job.
func (r *mongoPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByClientAndType retrieves all plans for a (client, type) pair, newest
// effective window first. The active/draft/archived presentation grouping is
// applied by the service.
func (r *mongoPlanRepository) GetByClientAndType(ctx context.Context, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.Plan, error) {
	var plans []domain.Plan
	filter := bson.M{
		"clientId": clientID,
		"type":     planType,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "effectiveFrom", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// ArchiveActive flips every active plan of the (client, type) pair to
// archived, except excludeID. Run inside the lifecycle transaction together
// with the activation write so there is never a moment with two active plans.
func (r *mongoPlanRepository) ArchiveActive(ctx context.Context, clientID primitive.ObjectID, planType domain.PlanType, excludeID primitive.ObjectID) error {
	filter := bson.M{
		"clientId": clientID,
		"type":     planType,
		"status":   domain.PlanStatusActive,
		"_id":      bson.M{"$ne": excludeID},
	}
	update := bson.M{"$set": bson.M{"status": domain.PlanStatusArchived, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: plans of one type for one client
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "type", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			// At most one active plan per (client, type); backs the
			// archive-then-activate transaction at the storage level.
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.PlanStatusActive}),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "effectiveFrom", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
