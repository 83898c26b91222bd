package repository

import (
	"context"
	"time"

	"titanfit/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner executes a function within one storage transaction. Everything
// written through the callback's context commits or rolls back as a unit.
// The plan lifecycle's archive-then-activate sequence depends on this.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error
	GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error
}

// PlanRepository defines the interface for interacting with plan documents
// of every type (macro, diet, program).
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// GetByClientAndType returns every plan for the (client, type) pair;
	// the service applies the presentation ordering.
	GetByClientAndType(ctx context.Context, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.Plan, error)
	// ArchiveActive archives whatever plan is currently active for the
	// (client, type) pair, excluding excludeID. Archiving nothing is not an
	// error.
	ArchiveActive(ctx context.Context, clientID primitive.ObjectID, planType domain.PlanType, excludeID primitive.ObjectID) error
}

// DayRepository defines the interface for interacting with program days.
type DayRepository interface {
	InsertMany(ctx context.Context, days []domain.Day) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Day, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Day, error)
	DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error
}

// ColumnRepository defines the interface for interacting with program columns.
type ColumnRepository interface {
	InsertMany(ctx context.Context, columns []domain.Column) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Column, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Column, error)
	CountByProgramID(ctx context.Context, programID primitive.ObjectID) (int64, error)
	DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with program
// exercises.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.Exercise, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	UpdatePosition(ctx context.Context, id primitive.ObjectID, position int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error
}

// CellRepository defines the interface for interacting with the sparse
// program matrix.
type CellRepository interface {
	// Upsert writes a cell keyed by (exercise, column, week); a second write
	// with the same key overwrites, it never appends.
	Upsert(ctx context.Context, cell *domain.Cell) error
	Get(ctx context.Context, exerciseID, columnID primitive.ObjectID, week int) (*domain.Cell, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Cell, error)
	InsertMany(ctx context.Context, cells []domain.Cell) error
	DeleteByExerciseIDs(ctx context.Context, exerciseIDs []primitive.ObjectID) error
	DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error
}

// DietRepository defines the interface for interacting with diet structures.
type DietRepository interface {
	// ReplaceForPlan swaps the plan's whole meal tree in one write.
	ReplaceForPlan(ctx context.Context, structure *domain.DietStructure) error
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) (*domain.DietStructure, error)
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

// SessionRepository defines the interface for interacting with scheduled
// sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// GetByClientAndDateRange returns sessions with start <= date <= end,
	// sorted by date then creation time.
	GetByClientAndDateRange(ctx context.Context, clientID primitive.ObjectID, start, end time.Time) ([]domain.Session, error)
}

// AttachmentRepository defines the interface for interacting with session
// attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Attachment, error)
	GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.Attachment, error)
}
