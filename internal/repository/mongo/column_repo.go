// internal/repository/mongo/column_repo.go
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

const columnCollectionName = "program_columns"

// mongoColumnRepository implements repository.ColumnRepository
type mongoColumnRepository struct {
	collection *mongo.Collection
}

// NewMongoColumnRepository creates a new Column repository.
func NewMongoColumnRepository(db *mongo.Database) repository.ColumnRepository {
	return &mongoColumnRepository{
		collection: db.Collection(columnCollectionName),
	}
}

// InsertMany inserts a batch of columns.
func (r *mongoColumnRepository) InsertMany(ctx context.Context, columns []domain.Column) error {
	if len(columns) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(columns))
	for i := range columns {
		if columns[i].ID == primitive.NilObjectID {
			columns[i].ID = primitive.NewObjectID()
		}
		if columns[i].ProgramID == primitive.NilObjectID || columns[i].Label == "" {
			return errors.New("column requires programId and label")
		}
		columns[i].CreatedAt = now
		docs = append(docs, columns[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByID retrieves a single column by its ID.
func (r *mongoColumnRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Column, error) {
	var column domain.Column
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&column)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &column, nil
}

// GetByProgramID retrieves all columns of a program, in position order.
func (r *mongoColumnRepository) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Column, error) {
	var columns []domain.Column
	filter := bson.M{"programId": programID}
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &columns); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}

// CountByProgramID counts a program's columns (bootstrap idempotency check).
func (r *mongoColumnRepository) CountByProgramID(ctx context.Context, programID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"programId": programID})
}

// DeleteByProgramID removes every column of a program.
func (r *mongoColumnRepository) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"programId": programID})
	return err
}

// EnsureColumnIndexes creates necessary indexes. Call during startup.
func EnsureColumnIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
