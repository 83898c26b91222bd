// internal/repository/mongo/diet_repo.go
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

const dietStructureCollectionName = "diet_structures"

// mongoDietRepository implements repository.DietRepository
type mongoDietRepository struct {
	collection *mongo.Collection
}

// NewMongoDietRepository creates a new DietStructure repository.
func NewMongoDietRepository(db *mongo.Database) repository.DietRepository {
	return &mongoDietRepository{
		collection: db.Collection(dietStructureCollectionName),
	}
}

// ReplaceForPlan swaps the plan's whole meal tree. The tree lives in a
// single document keyed by planId, so the replace is one atomic write and
// partial structural replacement cannot happen.
func (r *mongoDietRepository) ReplaceForPlan(ctx context.Context, structure *domain.DietStructure) error {
	if structure.PlanID == primitive.NilObjectID {
		return errors.New("diet structure requires planId")
	}
	structure.UpdatedAt = time.Now().UTC()

	filter := bson.M{"planId": structure.PlanID}
	update := bson.M{
		"$set": bson.M{
			"meals":     structure.Meals,
			"updatedAt": structure.UpdatedAt,
		},
		"$setOnInsert": bson.M{"planId": structure.PlanID},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetByPlanID retrieves the meal tree of a diet plan.
func (r *mongoDietRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) (*domain.DietStructure, error) {
	var structure domain.DietStructure
	err := r.collection.FindOne(ctx, bson.M{"planId": planID}).Decode(&structure)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &structure, nil
}

// DeleteByPlanID removes the meal tree of a plan (plan deletion cascade).
// Deleting a missing tree is not an error: a diet plan may never have had
// its structure saved.
func (r *mongoDietRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureDietStructureIndexes creates necessary indexes. Call during startup.
func EnsureDietStructureIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true), // One structure per plan
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
