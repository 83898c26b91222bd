// internal/repository/mongo/cell_repo.go
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

const cellCollectionName = "program_cells"

// mongoCellRepository implements repository.CellRepository
type mongoCellRepository struct {
	collection *mongo.Collection
}

// NewMongoCellRepository creates a new Cell repository.
func NewMongoCellRepository(db *mongo.Database) repository.CellRepository {
	return &mongoCellRepository{
		collection: db.Collection(cellCollectionName),
	}
}

// Upsert writes a cell value keyed by (exerciseId, columnId, week). The
// unique compound index makes the triple the primary key: a write with the
// same key overwrites, it never appends. A nil Value is stored as null so
// "touched but cleared" stays distinguishable from "never touched".
func (r *mongoCellRepository) Upsert(ctx context.Context, cell *domain.Cell) error {
	if cell.ExerciseID == primitive.NilObjectID || cell.ColumnID == primitive.NilObjectID || cell.Week < 1 {
		return errors.New("cell requires exerciseId, columnId, and a positive week")
	}

	filter := bson.M{
		"exerciseId": cell.ExerciseID,
		"columnId":   cell.ColumnID,
		"week":       cell.Week,
	}
	update := bson.M{
		"$set": bson.M{
			"programId": cell.ProgramID,
			"value":     cell.Value,
			"updatedAt": time.Now().UTC(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Get retrieves one cell by its composite key.
func (r *mongoCellRepository) Get(ctx context.Context, exerciseID, columnID primitive.ObjectID, week int) (*domain.Cell, error) {
	var cell domain.Cell
	filter := bson.M{
		"exerciseId": exerciseID,
		"columnId":   columnID,
		"week":       week,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&cell)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cell, nil
}

// GetByProgramID retrieves every cell of a program in one fetch, for
// client-side matrix hydration.
func (r *mongoCellRepository) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Cell, error) {
	var cells []domain.Cell
	cursor, err := r.collection.Find(ctx, bson.M{"programId": programID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &cells); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return cells, nil
}

// InsertMany inserts a batch of cells (deep-copy path).
func (r *mongoCellRepository) InsertMany(ctx context.Context, cells []domain.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(cells))
	for i := range cells {
		if cells[i].ID == primitive.NilObjectID {
			cells[i].ID = primitive.NewObjectID()
		}
		cells[i].UpdatedAt = now
		docs = append(docs, cells[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// DeleteByExerciseIDs removes all cells of the given exercises, across every
// week and column.
func (r *mongoCellRepository) DeleteByExerciseIDs(ctx context.Context, exerciseIDs []primitive.ObjectID) error {
	if len(exerciseIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"exerciseId": bson.M{"$in": exerciseIDs}})
	return err
}

// DeleteByProgramID removes every cell of a program.
func (r *mongoCellRepository) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"programId": programID})
	return err
}

// EnsureCellIndexes creates necessary indexes. Call during startup.
func EnsureCellIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// The composite primary key of the matrix
			Keys: bson.D{
				{Key: "exerciseId", Value: 1},
				{Key: "columnId", Value: 1},
				{Key: "week", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			// Bulk-load pattern
			Keys:    bson.D{{Key: "programId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
