// internal/domain/program.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Day is a named training day within a program. Position is 1-based and
// dense within the program.
type Day struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`
	Name      string             `bson:"name" json:"name"` // e.g. "Day 1: Upper Body"
	Position  int                `bson:"position" json:"position"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ColumnDataType restricts what a column's cells may hold.
type ColumnDataType string

const (
	ColumnDataText   ColumnDataType = "text"
	ColumnDataNumber ColumnDataType = "number"
)

// ColumnScope distinguishes per-cell columns (one value per week) from
// exercise-scoped columns (one value regardless of week).
type ColumnScope string

const (
	ColumnScopeCell     ColumnScope = "cell"
	ColumnScopeExercise ColumnScope = "exercise"
)

// ColumnEditor declares which role may write a column's cells.
type ColumnEditor string

const (
	ColumnEditorCoach  ColumnEditor = "coach"
	ColumnEditorClient ColumnEditor = "client"
	ColumnEditorBoth   ColumnEditor = "both"
)

// Column is one column of the program matrix (e.g. Sets, Reps, Weight).
type Column struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`
	Key       string             `bson:"key" json:"key"` // stable programmatic name, e.g. "reps"
	Label     string             `bson:"label" json:"label"`
	DataType  ColumnDataType     `bson:"dataType" json:"dataType"`
	Scope     ColumnScope        `bson:"scope" json:"scope"`
	Editor    ColumnEditor       `bson:"editor" json:"editor"`
	Position  int                `bson:"position" json:"position"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CanEdit reports whether the given role may write cells of this column.
func (c *Column) CanEdit(role Role) bool {
	switch c.Editor {
	case ColumnEditorBoth:
		return role == RoleCoach || role == RoleClient
	case ColumnEditorCoach:
		return role == RoleCoach
	case ColumnEditorClient:
		return role == RoleClient
	}
	return false
}

// Exercise belongs to exactly one day. The fixed scalar fields are the base
// prescription; per-week deviations live in the cell matrix.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID   primitive.ObjectID `bson:"programId" json:"programId"` // Denormalized for program-wide queries
	DayID       primitive.ObjectID `bson:"dayId" json:"dayId"`
	Name        string             `bson:"name" json:"name"`
	Position    int                `bson:"position" json:"position"` // 1-based, dense within the day
	Sets        string             `bson:"sets,omitempty" json:"sets,omitempty"` // free-form, e.g. "4" or "3-4"
	Reps        string             `bson:"reps,omitempty" json:"reps,omitempty"`
	RIR         string             `bson:"rir,omitempty" json:"rir,omitempty"`
	RestSeconds int                `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Cell is a single value in the program matrix, identified by the composite
// (exercise, column, week). Week is 1-based up to the plan's Weeks count.
// A nil Value means the cell was touched and cleared; a missing cell means
// it was never touched. Both states round-trip.
type Cell struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID  primitive.ObjectID `bson:"programId" json:"programId"` // Denormalized for bulk loads
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	ColumnID   primitive.ObjectID `bson:"columnId" json:"columnId"`
	Week       int                `bson:"week" json:"week"`
	Value      *string            `bson:"value" json:"value"` // nil = cleared
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
