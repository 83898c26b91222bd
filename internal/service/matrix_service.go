package service

import (
	"context"
	"errors"
	"strconv"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrColumnNotFound   = errors.New("matrix column not found")
	ErrCellEditDenied   = errors.New("role may not edit this column")
	ErrCellNotInProgram = errors.New("exercise and column belong to different programs")
)

// CellKey is the composite identity of one matrix cell.
type CellKey struct {
	ExerciseID primitive.ObjectID `json:"exerciseId"`
	ColumnID   primitive.ObjectID `json:"columnId"`
	Week       int                `json:"week"`
}

// --- Service Interface ---

// MatrixService is the sparse (exercise × column × week) value store of a
// training program. Writes are per-cell upserts with last-write-wins
// semantics; a nil value records "touched but cleared", which is a distinct
// observable state from a missing cell.
type MatrixService interface {
	SetCell(ctx context.Context, actorID primitive.ObjectID, role domain.Role, key CellKey, value *string) (*domain.Cell, error)
	GetCell(ctx context.Context, key CellKey) (*domain.Cell, error)
	// BulkLoad returns every cell of a program in one fetch; callers index
	// them by the composite key for matrix hydration.
	BulkLoad(ctx context.Context, programID primitive.ObjectID) ([]domain.Cell, error)
}

// --- Service Implementation ---

// matrixService implements the MatrixService interface.
type matrixService struct {
	planRepo     repository.PlanRepository
	columnRepo   repository.ColumnRepository
	exerciseRepo repository.ExerciseRepository
	cellRepo     repository.CellRepository
}

// NewMatrixService creates a new instance of matrixService.
func NewMatrixService(
	planRepo repository.PlanRepository,
	columnRepo repository.ColumnRepository,
	exerciseRepo repository.ExerciseRepository,
	cellRepo repository.CellRepository,
) MatrixService {
	return &matrixService{
		planRepo:     planRepo,
		columnRepo:   columnRepo,
		exerciseRepo: exerciseRepo,
		cellRepo:     cellRepo,
	}
}

// SetCell upserts one cell keyed by (exercise, column, week). The column's
// editable-by scope is checked against the actor's role; the coach owning
// the program and the client it belongs to are the only actors that reach
// this point (route middleware), so the scope check is the remaining guard.
func (s *matrixService) SetCell(ctx context.Context, actorID primitive.ObjectID, role domain.Role, key CellKey, value *string) (*domain.Cell, error) {
	// 1. Validate the key
	if actorID == primitive.NilObjectID {
		return nil, errors.New("actor ID is required")
	}
	if key.ExerciseID == primitive.NilObjectID || key.ColumnID == primitive.NilObjectID {
		return nil, newValidationError("cell", "exercise ID and column ID are required")
	}
	if key.Week < 1 {
		return nil, newValidationError("week", "week index starts at 1")
	}

	// 2. Resolve column and exercise; both must belong to the same program
	column, err := s.columnRepo.GetByID(ctx, key.ColumnID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, key.ExerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.ProgramID != column.ProgramID {
		return nil, ErrCellNotInProgram
	}

	// 3. Authorization: the column's editable-by scope
	if !column.CanEdit(role) {
		return nil, ErrCellEditDenied
	}

	// 4. Week must fit the program's week count; the actor must be the
	// owning coach or the plan's client
	plan, err := s.planRepo.GetByID(ctx, column.ProgramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if key.Week > plan.Weeks {
		return nil, newValidationError("week", "week index exceeds the program's week count")
	}
	switch role {
	case domain.RoleCoach:
		if plan.CoachID != actorID {
			return nil, ErrAccessDenied
		}
	case domain.RoleClient:
		if plan.ClientID != actorID {
			return nil, ErrAccessDenied
		}
	default:
		return nil, ErrCellEditDenied
	}

	// 5. Validate number columns
	if value != nil && column.DataType == domain.ColumnDataNumber && *value != "" {
		if _, err := strconv.ParseFloat(*value, 64); err != nil {
			return nil, newValidationError("value", "column accepts numeric values only")
		}
	}

	// 6. Upsert: last write per key wins
	cell := &domain.Cell{
		ProgramID:  column.ProgramID,
		ExerciseID: key.ExerciseID,
		ColumnID:   key.ColumnID,
		Week:       key.Week,
		Value:      value,
	}
	if err := s.cellRepo.Upsert(ctx, cell); err != nil {
		return nil, err
	}
	return cell, nil
}

// GetCell returns one cell, or repository.ErrNotFound (wrapped as nil,
// ErrNotFound semantics) when the triple was never touched. A stored cell
// with a nil value is returned as such: "cleared" round-trips.
func (s *matrixService) GetCell(ctx context.Context, key CellKey) (*domain.Cell, error) {
	if key.ExerciseID == primitive.NilObjectID || key.ColumnID == primitive.NilObjectID || key.Week < 1 {
		return nil, newValidationError("cell", "exercise ID, column ID, and a positive week are required")
	}
	cell, err := s.cellRepo.Get(ctx, key.ExerciseID, key.ColumnID, key.Week)
	if err != nil {
		return nil, err // repository.ErrNotFound propagates: "never touched"
	}
	return cell, nil
}

// BulkLoad fetches all cells of a program at once.
func (s *matrixService) BulkLoad(ctx context.Context, programID primitive.ObjectID) ([]domain.Cell, error) {
	if programID == primitive.NilObjectID {
		return nil, errors.New("program ID is required")
	}
	cells, err := s.cellRepo.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if cells == nil {
		cells = []domain.Cell{}
	}
	return cells, nil
}
