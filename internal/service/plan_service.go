package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanTypeMismatch = errors.New("plan is not of the expected type")
)

// CreatePlanInput carries everything needed to create a plan of any type.
type CreatePlanInput struct {
	ClientID      primitive.ObjectID
	Type          domain.PlanType
	Name          string
	Status        domain.PlanStatus // draft or active
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Macros        *domain.MacroTargets // macro plans only
	Weeks         int                  // training programs only
}

// DuplicateOverrides optionally adjusts the deep copy produced by Duplicate.
// Zero-value fields keep the defaults: status draft, effective from today,
// open-ended, same client, name suffixed with " (copy)".
type DuplicateOverrides struct {
	Name          *string
	Status        *domain.PlanStatus
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
	ClientID      *primitive.ObjectID
}

// --- Service Interface ---

// PlanService is the lifecycle manager shared by macro plans, diet plans and
// training programs: one draft/active/archived state machine keyed by the
// (client, plan-type) pair, with at most one active plan per pair.
type PlanService interface {
	Create(ctx context.Context, coachID primitive.ObjectID, input CreatePlanInput) (*domain.Plan, error)
	Get(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.Plan, error)
	Activate(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.Plan, error)
	Archive(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.Plan, error)
	Duplicate(ctx context.Context, coachID, planID primitive.ObjectID, overrides DuplicateOverrides) (*domain.Plan, error)
	Delete(ctx context.Context, coachID, planID primitive.ObjectID) error
	ListForClient(ctx context.Context, coachID, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.Plan, error)
}

// --- Service Implementation ---

// planService implements the PlanService interface.
type planService struct {
	planRepo     repository.PlanRepository
	dayRepo      repository.DayRepository
	columnRepo   repository.ColumnRepository
	exerciseRepo repository.ExerciseRepository
	cellRepo     repository.CellRepository
	dietRepo     repository.DietRepository
	tx           repository.TxRunner
}

// NewPlanService creates a new instance of planService. The structure
// repositories are needed for the deep-copy and cascade-delete paths.
func NewPlanService(
	planRepo repository.PlanRepository,
	dayRepo repository.DayRepository,
	columnRepo repository.ColumnRepository,
	exerciseRepo repository.ExerciseRepository,
	cellRepo repository.CellRepository,
	dietRepo repository.DietRepository,
	tx repository.TxRunner,
) PlanService {
	return &planService{
		planRepo:     planRepo,
		dayRepo:      dayRepo,
		columnRepo:   columnRepo,
		exerciseRepo: exerciseRepo,
		cellRepo:     cellRepo,
		dietRepo:     dietRepo,
		tx:           tx,
	}
}

// Create creates a plan in the requested status. Creating directly as active
// archives whatever is currently active for the same (client, type) pair in
// the same transaction, so there is never a moment with two active plans.
func (s *planService) Create(ctx context.Context, coachID primitive.ObjectID, input CreatePlanInput) (*domain.Plan, error) {
	// 1. Validate Input
	if coachID == primitive.NilObjectID || input.ClientID == primitive.NilObjectID {
		return nil, errors.New("coach ID and client ID are required")
	}
	if !domain.ValidPlanType(input.Type) {
		return nil, newValidationError("type", "unknown plan type")
	}
	if input.Name == "" {
		return nil, newValidationError("name", "name is required")
	}
	if input.Status != domain.PlanStatusDraft && input.Status != domain.PlanStatusActive {
		return nil, newValidationError("status", "a plan is created as draft or active")
	}
	if input.EffectiveFrom.IsZero() {
		return nil, newValidationError("effectiveFrom", "effective-from date is required")
	}
	if input.EffectiveTo != nil && input.EffectiveTo.Before(input.EffectiveFrom) {
		return nil, newValidationError("effectiveTo", "effective-to must not precede effective-from")
	}
	if input.Type == domain.PlanTypeProgram && input.Weeks < 1 {
		return nil, newValidationError("weeks", "a program needs at least one week")
	}
	if input.Type == domain.PlanTypeMacro && input.Macros == nil {
		return nil, newValidationError("macros", "a macro plan needs targets")
	}

	// 2. Build the plan domain object
	plan := &domain.Plan{
		CoachID:       coachID,
		ClientID:      input.ClientID,
		Type:          input.Type,
		Name:          input.Name,
		Status:        input.Status,
		EffectiveFrom: input.EffectiveFrom,
		EffectiveTo:   input.EffectiveTo,
		Macros:        input.Macros,
		Weeks:         input.Weeks,
	}

	// 3. Persist. The active path is the only one that can break the
	// single-active invariant, so it runs as one transactional unit:
	// archive-current-active, then insert-new-active.
	if input.Status == domain.PlanStatusActive {
		err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := s.planRepo.ArchiveActive(txCtx, input.ClientID, input.Type, primitive.NilObjectID); err != nil {
				return err
			}
			id, err := s.planRepo.Create(txCtx, plan)
			if err != nil {
				return err
			}
			plan.ID = id
			return nil
		})
		if err != nil {
			return nil, err
		}
		return plan, nil
	}

	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

// Get fetches a plan and verifies coach ownership.
func (s *planService) Get(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.Plan, error) {
	return s.getOwned(ctx, coachID, planID)
}

// Activate makes the target plan the active one for its (client, type) pair,
// archiving the previously active plan if its id differs. Activating an
// already-active plan is a no-op success.
func (s *planService) Activate(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.Plan, error) {
	// 1. Load & authorize
	plan, err := s.getOwned(ctx, coachID, planID)
	if err != nil {
		return nil, err
	}

	// 2. Already active: nothing to do
	if plan.Status == domain.PlanStatusActive {
		return plan, nil
	}

	// 3. Archive-then-activate as one transactional unit
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.planRepo.ArchiveActive(txCtx, plan.ClientID, plan.Type, plan.ID); err != nil {
			return err
		}
		plan.Status = domain.PlanStatusActive
		return s.planRepo.Update(txCtx, plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Archive sets the plan's status to archived. Archiving an already-archived
// plan fails with ErrInvalidTransition (strict mode; documented choice).
func (s *planService) Archive(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.getOwned(ctx, coachID, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status == domain.PlanStatusArchived {
		return nil, ErrInvalidTransition
	}

	plan.Status = domain.PlanStatusArchived
	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// Duplicate deep-copies a plan and its full descendant tree with freshly
// minted ids for every descendant. The copy defaults to a draft effective
// from today.
func (s *planService) Duplicate(ctx context.Context, coachID, planID primitive.ObjectID, overrides DuplicateOverrides) (*domain.Plan, error) {
	// 1. Load & authorize the source
	src, err := s.getOwned(ctx, coachID, planID)
	if err != nil {
		return nil, err
	}

	// 2. Build the copy header
	copyPlan := *src
	copyPlan.ID = primitive.NilObjectID
	copyPlan.Status = domain.PlanStatusDraft
	copyPlan.Name = src.Name + " (copy)"
	copyPlan.EffectiveFrom = time.Now().UTC().Truncate(24 * time.Hour)
	copyPlan.EffectiveTo = nil
	if overrides.Name != nil {
		copyPlan.Name = *overrides.Name
	}
	if overrides.Status != nil {
		copyPlan.Status = *overrides.Status
	}
	if overrides.EffectiveFrom != nil {
		copyPlan.EffectiveFrom = *overrides.EffectiveFrom
	}
	if overrides.EffectiveTo != nil {
		copyPlan.EffectiveTo = overrides.EffectiveTo
	}
	if overrides.ClientID != nil {
		copyPlan.ClientID = *overrides.ClientID
	}
	if copyPlan.EffectiveTo != nil && copyPlan.EffectiveTo.Before(copyPlan.EffectiveFrom) {
		return nil, newValidationError("effectiveTo", "effective-to must not precede effective-from")
	}
	if copyPlan.Status == domain.PlanStatusArchived {
		return nil, newValidationError("status", "a copy is created as draft or active")
	}

	// 3. Copy header + descendants in one transaction
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if copyPlan.Status == domain.PlanStatusActive {
			if err := s.planRepo.ArchiveActive(txCtx, copyPlan.ClientID, copyPlan.Type, primitive.NilObjectID); err != nil {
				return err
			}
		}
		newID, err := s.planRepo.Create(txCtx, &copyPlan)
		if err != nil {
			return err
		}
		copyPlan.ID = newID

		switch src.Type {
		case domain.PlanTypeProgram:
			return s.copyProgramTree(txCtx, src.ID, newID)
		case domain.PlanTypeDiet:
			return s.copyDietTree(txCtx, src.ID, newID)
		default:
			return nil // macro payload travels inside the plan document
		}
	})
	if err != nil {
		return nil, err
	}
	return &copyPlan, nil
}

// copyProgramTree clones days, columns, exercises and cells under a new
// program id. The column and exercise identity maps are rebuilt first, since
// cells reference both by id.
func (s *planService) copyProgramTree(ctx context.Context, srcID, dstID primitive.ObjectID) error {
	days, err := s.dayRepo.GetByProgramID(ctx, srcID)
	if err != nil {
		return err
	}
	columns, err := s.columnRepo.GetByProgramID(ctx, srcID)
	if err != nil {
		return err
	}
	exercises, err := s.exerciseRepo.GetByProgramID(ctx, srcID)
	if err != nil {
		return err
	}
	cells, err := s.cellRepo.GetByProgramID(ctx, srcID)
	if err != nil {
		return err
	}

	dayMap := make(map[primitive.ObjectID]primitive.ObjectID, len(days))
	newDays := make([]domain.Day, len(days))
	for i, d := range days {
		newID := primitive.NewObjectID()
		dayMap[d.ID] = newID
		d.ID = newID
		d.ProgramID = dstID
		newDays[i] = d
	}
	if err := s.dayRepo.InsertMany(ctx, newDays); err != nil {
		return err
	}

	columnMap := make(map[primitive.ObjectID]primitive.ObjectID, len(columns))
	newColumns := make([]domain.Column, len(columns))
	for i, c := range columns {
		newID := primitive.NewObjectID()
		columnMap[c.ID] = newID
		c.ID = newID
		c.ProgramID = dstID
		newColumns[i] = c
	}
	if err := s.columnRepo.InsertMany(ctx, newColumns); err != nil {
		return err
	}

	exerciseMap := make(map[primitive.ObjectID]primitive.ObjectID, len(exercises))
	for _, e := range exercises {
		newID := primitive.NewObjectID()
		exerciseMap[e.ID] = newID
	}
	for _, e := range exercises {
		e.ID = exerciseMap[e.ID]
		e.ProgramID = dstID
		e.DayID = dayMap[e.DayID]
		if _, err := s.exerciseRepo.Create(ctx, &e); err != nil {
			return err
		}
	}

	newCells := make([]domain.Cell, 0, len(cells))
	for _, c := range cells {
		newExercise, okE := exerciseMap[c.ExerciseID]
		newColumn, okC := columnMap[c.ColumnID]
		if !okE || !okC {
			// Orphaned cell in the source; skip rather than copy a dangling
			// reference.
			continue
		}
		c.ID = primitive.NilObjectID
		c.ProgramID = dstID
		c.ExerciseID = newExercise
		c.ColumnID = newColumn
		newCells = append(newCells, c)
	}
	return s.cellRepo.InsertMany(ctx, newCells)
}

// copyDietTree clones the meal tree under a new plan id, minting new ids for
// every node.
func (s *planService) copyDietTree(ctx context.Context, srcID, dstID primitive.ObjectID) error {
	structure, err := s.dietRepo.GetByPlanID(ctx, srcID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil // diet plan without a saved structure yet
		}
		return err
	}

	copied := &domain.DietStructure{PlanID: dstID, Meals: make([]domain.Meal, len(structure.Meals))}
	for i, meal := range structure.Meals {
		meal.ID = primitive.NewObjectID()
		options := make([]domain.MealOption, len(meal.Options))
		for j, option := range meal.Options {
			option.ID = primitive.NewObjectID()
			items := make([]domain.MealItem, len(option.Items))
			for k, item := range option.Items {
				item.ID = primitive.NewObjectID()
				items[k] = item
			}
			option.Items = items
			options[j] = option
		}
		meal.Options = options
		copied.Meals[i] = meal
	}
	return s.dietRepo.ReplaceForPlan(ctx, copied)
}

// Delete removes a plan and cascades through all descendants in dependency
// order. Only draft and archived plans may be deleted; an active plan must
// be archived first.
func (s *planService) Delete(ctx context.Context, coachID, planID primitive.ObjectID) error {
	plan, err := s.getOwned(ctx, coachID, planID)
	if err != nil {
		return err
	}
	if plan.Status == domain.PlanStatusActive {
		return ErrInvalidTransition
	}

	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		switch plan.Type {
		case domain.PlanTypeProgram:
			// Cells first, then exercises, columns, days, finally the plan.
			if err := s.cellRepo.DeleteByProgramID(txCtx, plan.ID); err != nil {
				return err
			}
			if err := s.exerciseRepo.DeleteByProgramID(txCtx, plan.ID); err != nil {
				return err
			}
			if err := s.columnRepo.DeleteByProgramID(txCtx, plan.ID); err != nil {
				return err
			}
			if err := s.dayRepo.DeleteByProgramID(txCtx, plan.ID); err != nil {
				return err
			}
		case domain.PlanTypeDiet:
			if err := s.dietRepo.DeleteByPlanID(txCtx, plan.ID); err != nil {
				return err
			}
		}
		return s.planRepo.Delete(txCtx, plan.ID)
	})
}

// ListForClient returns the client's plans of one type ordered for display:
// active first, then drafts, then archived; within a status by effective-from
// descending.
func (s *planService) ListForClient(ctx context.Context, coachID, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.Plan, error) {
	if coachID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("coach ID and client ID are required")
	}
	if !domain.ValidPlanType(planType) {
		return nil, newValidationError("type", "unknown plan type")
	}

	plans, err := s.planRepo.GetByClientAndType(ctx, clientID, planType)
	if err != nil {
		return nil, err
	}

	// The repository sorts by effective-from descending; a stable sort by
	// status rank preserves that within each group.
	sort.SliceStable(plans, func(i, j int) bool {
		return statusRank(plans[i].Status) < statusRank(plans[j].Status)
	})
	return plans, nil
}

func statusRank(s domain.PlanStatus) int {
	switch s {
	case domain.PlanStatusActive:
		return 0
	case domain.PlanStatusDraft:
		return 1
	default:
		return 2
	}
}

// getOwned loads a plan and verifies the acting coach owns it.
func (s *planService) getOwned(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.Plan, error) {
	if coachID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, errors.New("coach ID and plan ID are required")
	}
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.CoachID != coachID {
		return nil, ErrAccessDenied
	}
	return plan, nil
}
