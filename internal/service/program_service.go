package service

import (
	"context"
	"errors"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrDayNotFound      = errors.New("program day not found")
	ErrExerciseNotFound = errors.New("exercise not found")
)

// ExerciseInput carries the coach-entered fields of an exercise.
type ExerciseInput struct {
	Name        string
	Sets        string
	Reps        string
	RIR         string
	RestSeconds int
	Notes       string
}

// DayView is a program day with its exercises attached, position order.
type DayView struct {
	Day       domain.Day        `json:"day"`
	Exercises []domain.Exercise `json:"exercises"`
}

// ProgramStructure is the full structural read model of a training program.
type ProgramStructure struct {
	Plan    *domain.Plan    `json:"plan"`
	Days    []DayView       `json:"days"`
	Columns []domain.Column `json:"columns"`
}

// --- Service Interface ---

// ProgramService owns the structural side of a training program: its days,
// exercises and matrix columns. Order indices are renumbered densely from 1
// on every structural change; gaps and duplicates never persist.
type ProgramService interface {
	BootstrapColumns(ctx context.Context, coachID, programID primitive.ObjectID) ([]domain.Column, error)
	ReplaceDays(ctx context.Context, coachID, programID primitive.ObjectID, dayNames []string) ([]domain.Day, error)
	AddExercise(ctx context.Context, coachID, dayID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	RemoveExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error
	ReorderExercises(ctx context.Context, coachID, dayID primitive.ObjectID, orderedIDs []primitive.ObjectID) error
	GetStructure(ctx context.Context, coachID, programID primitive.ObjectID) (*ProgramStructure, error)
}

// --- Service Implementation ---

// programService implements the ProgramService interface.
type programService struct {
	planRepo     repository.PlanRepository
	dayRepo      repository.DayRepository
	columnRepo   repository.ColumnRepository
	exerciseRepo repository.ExerciseRepository
	cellRepo     repository.CellRepository
	tx           repository.TxRunner
}

// NewProgramService creates a new instance of programService.
func NewProgramService(
	planRepo repository.PlanRepository,
	dayRepo repository.DayRepository,
	columnRepo repository.ColumnRepository,
	exerciseRepo repository.ExerciseRepository,
	cellRepo repository.CellRepository,
	tx repository.TxRunner,
) ProgramService {
	return &programService{
		planRepo:     planRepo,
		dayRepo:      dayRepo,
		columnRepo:   columnRepo,
		exerciseRepo: exerciseRepo,
		cellRepo:     cellRepo,
		tx:           tx,
	}
}

// defaultColumns is the fixed column set a new program starts with. The
// exercise name itself is not a column; it lives on the Exercise entity.
func defaultColumns(programID primitive.ObjectID) []domain.Column {
	specs := []struct {
		key      string
		label    string
		dataType domain.ColumnDataType
		editor   domain.ColumnEditor
	}{
		{"sets", "Sets", domain.ColumnDataText, domain.ColumnEditorCoach},
		{"reps", "Reps", domain.ColumnDataText, domain.ColumnEditorCoach},
		{"rir", "RIR", domain.ColumnDataText, domain.ColumnEditorCoach},
		{"rest", "Rest (s)", domain.ColumnDataNumber, domain.ColumnEditorCoach},
		{"notes", "Notes", domain.ColumnDataText, domain.ColumnEditorCoach},
		{"weight", "Weight", domain.ColumnDataNumber, domain.ColumnEditorClient},
		{"repsDone", "Reps done", domain.ColumnDataNumber, domain.ColumnEditorClient},
		{"comments", "Comments", domain.ColumnDataText, domain.ColumnEditorBoth},
	}

	columns := make([]domain.Column, len(specs))
	for i, spec := range specs {
		columns[i] = domain.Column{
			ID:        primitive.NewObjectID(),
			ProgramID: programID,
			Key:       spec.key,
			Label:     spec.label,
			DataType:  spec.dataType,
			Scope:     domain.ColumnScopeCell,
			Editor:    spec.editor,
			Position:  i + 1,
		}
	}
	return columns
}

// BootstrapColumns creates the default column set for a program that has no
// columns yet. Idempotent: a program that already has columns is left alone.
func (s *programService) BootstrapColumns(ctx context.Context, coachID, programID primitive.ObjectID) ([]domain.Column, error) {
	if _, err := s.getOwnedProgram(ctx, coachID, programID); err != nil {
		return nil, err
	}

	count, err := s.columnRepo.CountByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return s.columnRepo.GetByProgramID(ctx, programID)
	}

	columns := defaultColumns(programID)
	if err := s.columnRepo.InsertMany(ctx, columns); err != nil {
		return nil, err
	}
	return columns, nil
}

// ReplaceDays swaps the full day set of a program for the given ordered
// names, renumbering positions densely from 1. Day identity is not preserved
// across the replace; exercises and cells of the old days are removed as a
// cascade, all within one transaction so a partial replace cannot persist.
func (s *programService) ReplaceDays(ctx context.Context, coachID, programID primitive.ObjectID, dayNames []string) ([]domain.Day, error) {
	if _, err := s.getOwnedProgram(ctx, coachID, programID); err != nil {
		return nil, err
	}
	for i, name := range dayNames {
		if name == "" {
			return nil, newValidationError(pathf("days[%d]", i), "day name must not be empty")
		}
	}

	newDays := make([]domain.Day, len(dayNames))
	for i, name := range dayNames {
		newDays[i] = domain.Day{
			ID:        primitive.NewObjectID(),
			ProgramID: programID,
			Name:      name,
			Position:  i + 1,
		}
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Dependency order: cells, exercises, days, then the new day set.
		if err := s.cellRepo.DeleteByProgramID(txCtx, programID); err != nil {
			return err
		}
		if err := s.exerciseRepo.DeleteByProgramID(txCtx, programID); err != nil {
			return err
		}
		if err := s.dayRepo.DeleteByProgramID(txCtx, programID); err != nil {
			return err
		}
		return s.dayRepo.InsertMany(txCtx, newDays)
	})
	if err != nil {
		return nil, err
	}
	return newDays, nil
}

// AddExercise appends an exercise to the end of a day.
func (s *programService) AddExercise(ctx context.Context, coachID, dayID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" {
		return nil, newValidationError("name", "exercise name must not be empty")
	}

	day, err := s.getOwnedDay(ctx, coachID, dayID)
	if err != nil {
		return nil, err
	}

	existing, err := s.exerciseRepo.GetByDayID(ctx, dayID)
	if err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		ProgramID:   day.ProgramID,
		DayID:       dayID,
		Name:        input.Name,
		Position:    len(existing) + 1,
		Sets:        input.Sets,
		Reps:        input.Reps,
		RIR:         input.RIR,
		RestSeconds: input.RestSeconds,
		Notes:       input.Notes,
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

// UpdateExercise rewrites the coach-entered fields of an exercise in place.
func (s *programService) UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" {
		return nil, newValidationError("name", "exercise name must not be empty")
	}

	exercise, err := s.getOwnedExercise(ctx, coachID, exerciseID)
	if err != nil {
		return nil, err
	}

	exercise.Name = input.Name
	exercise.Sets = input.Sets
	exercise.Reps = input.Reps
	exercise.RIR = input.RIR
	exercise.RestSeconds = input.RestSeconds
	exercise.Notes = input.Notes

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// RemoveExercise deletes an exercise and all its cells across every week,
// then renumbers the remaining exercises of the day densely.
func (s *programService) RemoveExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error {
	exercise, err := s.getOwnedExercise(ctx, coachID, exerciseID)
	if err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.cellRepo.DeleteByExerciseIDs(txCtx, []primitive.ObjectID{exercise.ID}); err != nil {
			return err
		}
		if err := s.exerciseRepo.Delete(txCtx, exercise.ID); err != nil {
			return err
		}
		// Close the gap left by the removed exercise.
		remaining, err := s.exerciseRepo.GetByDayID(txCtx, exercise.DayID)
		if err != nil {
			return err
		}
		return s.renumber(txCtx, remaining)
	})
}

// ReorderExercises rewrites the order of a day's exercises to match
// orderedIDs. The id set must match the day's exercises exactly.
func (s *programService) ReorderExercises(ctx context.Context, coachID, dayID primitive.ObjectID, orderedIDs []primitive.ObjectID) error {
	if _, err := s.getOwnedDay(ctx, coachID, dayID); err != nil {
		return err
	}

	existing, err := s.exerciseRepo.GetByDayID(ctx, dayID)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(existing) {
		return newValidationError("order", "ordered ids must cover every exercise of the day exactly once")
	}
	byID := make(map[primitive.ObjectID]domain.Exercise, len(existing))
	for _, e := range existing {
		byID[e.ID] = e
	}
	ordered := make([]domain.Exercise, len(orderedIDs))
	for i, id := range orderedIDs {
		e, ok := byID[id]
		if !ok {
			return newValidationError(pathf("order[%d]", i), "id does not belong to this day")
		}
		delete(byID, id) // catch duplicates in orderedIDs
		ordered[i] = e
	}

	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.renumber(txCtx, ordered)
	})
}

// renumber assigns dense 1-based positions in slice order, writing only the
// positions that actually changed.
func (s *programService) renumber(ctx context.Context, exercises []domain.Exercise) error {
	for i, e := range exercises {
		want := i + 1
		if e.Position == want {
			continue
		}
		if err := s.exerciseRepo.UpdatePosition(ctx, e.ID, want); err != nil {
			return err
		}
	}
	return nil
}

// GetStructure returns the full structural read model of a program: its
// days with exercises, and its columns.
func (s *programService) GetStructure(ctx context.Context, coachID, programID primitive.ObjectID) (*ProgramStructure, error) {
	plan, err := s.getOwnedProgram(ctx, coachID, programID)
	if err != nil {
		return nil, err
	}

	days, err := s.dayRepo.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	columns, err := s.columnRepo.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exerciseRepo.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[primitive.ObjectID][]domain.Exercise)
	for _, e := range exercises {
		byDay[e.DayID] = append(byDay[e.DayID], e)
	}

	views := make([]DayView, len(days))
	for i, d := range days {
		list := byDay[d.ID]
		if list == nil {
			list = []domain.Exercise{}
		}
		views[i] = DayView{Day: d, Exercises: list}
	}

	return &ProgramStructure{Plan: plan, Days: views, Columns: columns}, nil
}

// --- ownership helpers ---

// getOwnedProgram loads a plan, verifies coach ownership and that it is a
// training program.
func (s *programService) getOwnedProgram(ctx context.Context, coachID, programID primitive.ObjectID) (*domain.Plan, error) {
	if coachID == primitive.NilObjectID || programID == primitive.NilObjectID {
		return nil, errors.New("coach ID and program ID are required")
	}
	plan, err := s.planRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.CoachID != coachID {
		return nil, ErrAccessDenied
	}
	if plan.Type != domain.PlanTypeProgram {
		return nil, ErrPlanTypeMismatch
	}
	return plan, nil
}

func (s *programService) getOwnedDay(ctx context.Context, coachID, dayID primitive.ObjectID) (*domain.Day, error) {
	if dayID == primitive.NilObjectID {
		return nil, errors.New("day ID is required")
	}
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}
	if _, err := s.getOwnedProgram(ctx, coachID, day.ProgramID); err != nil {
		return nil, err
	}
	return day, nil
}

func (s *programService) getOwnedExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	if exerciseID == primitive.NilObjectID {
		return nil, errors.New("exercise ID is required")
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if _, err := s.getOwnedProgram(ctx, coachID, exercise.ProgramID); err != nil {
		return nil, err
	}
	return exercise, nil
}
