package service

import (
	"context"
	"errors"
	"sort"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrDietStructureNotFound = errors.New("diet structure not found")
)

// --- Service Interface ---

// DietService owns the meal → option → item hierarchy of a diet plan. The
// tree is saved as one atomic unit: validate everything first, then replace
// the whole subtree, so a partially updated tree can never persist.
type DietService interface {
	SaveStructure(ctx context.Context, coachID, planID primitive.ObjectID, meals []domain.Meal) (*domain.DietStructure, error)
	ReadStructure(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.DietStructure, error)
}

// --- Service Implementation ---

// dietService implements the DietService interface.
type dietService struct {
	planRepo repository.PlanRepository
	dietRepo repository.DietRepository
}

// NewDietService creates a new instance of dietService.
func NewDietService(planRepo repository.PlanRepository, dietRepo repository.DietRepository) DietService {
	return &dietService{
		planRepo: planRepo,
		dietRepo: dietRepo,
	}
}

// SaveStructure replaces the plan's entire meal tree. Every item needs a
// non-empty name, every option at least one item, every meal at least one
// option; violations fail with a ValidationError naming the offending path.
// Items with only a legacy name-less shape are rejected, not migrated.
func (s *dietService) SaveStructure(ctx context.Context, coachID, planID primitive.ObjectID, meals []domain.Meal) (*domain.DietStructure, error) {
	// 1. Load & authorize the plan
	plan, err := s.getOwnedDietPlan(ctx, coachID, planID)
	if err != nil {
		return nil, err
	}

	// 2. Validate the whole tree before touching storage
	if err := validateMealTree(meals); err != nil {
		return nil, err
	}

	// 3. Normalize: mint missing ids, renumber positions densely
	normalized := make([]domain.Meal, len(meals))
	for i, meal := range meals {
		if meal.ID == primitive.NilObjectID {
			meal.ID = primitive.NewObjectID()
		}
		if meal.DayType == "" {
			meal.DayType = domain.DayTypeDefault
		}
		meal.Position = i + 1
		options := make([]domain.MealOption, len(meal.Options))
		for j, option := range meal.Options {
			if option.ID == primitive.NilObjectID {
				option.ID = primitive.NewObjectID()
			}
			option.Position = j + 1
			items := make([]domain.MealItem, len(option.Items))
			for k, item := range option.Items {
				if item.ID == primitive.NilObjectID {
					item.ID = primitive.NewObjectID()
				}
				item.Position = k + 1
				items[k] = item
			}
			option.Items = items
			options[j] = option
		}
		meal.Options = options
		normalized[i] = meal
	}

	// 4. Replace the subtree in one write
	structure := &domain.DietStructure{
		PlanID: plan.ID,
		Meals:  normalized,
	}
	if err := s.dietRepo.ReplaceForPlan(ctx, structure); err != nil {
		return nil, err
	}
	return structure, nil
}

// validateMealTree checks the meal/option/item rules, reporting the first
// offending path.
func validateMealTree(meals []domain.Meal) error {
	for i, meal := range meals {
		if meal.Name == "" {
			return newValidationError(pathf("meals[%d]", i), "meal name must not be empty")
		}
		if meal.DayType != "" && !domain.ValidDayType(meal.DayType) {
			return newValidationError(pathf("meals[%d]", i), "unknown day-type tag")
		}
		if len(meal.Options) == 0 {
			return newValidationError(pathf("meals[%d]", i), "a meal needs at least one option")
		}
		for j, option := range meal.Options {
			if len(option.Items) == 0 {
				return newValidationError(pathf("meals[%d].options[%d]", i, j), "an option needs at least one item")
			}
			for k, item := range option.Items {
				if item.Name == "" {
					return newValidationError(pathf("meals[%d].options[%d].items[%d]", i, j, k), "item name must not be empty")
				}
				if item.Quantity != nil && *item.Quantity < 0 {
					return newValidationError(pathf("meals[%d].options[%d].items[%d]", i, j, k), "item quantity must not be negative")
				}
			}
		}
	}
	return nil
}

// ReadStructure returns the full tree with every level in position order.
// A diet plan whose structure was never saved reads as an empty tree.
func (s *dietService) ReadStructure(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.DietStructure, error) {
	plan, err := s.getOwnedDietPlan(ctx, coachID, planID)
	if err != nil {
		return nil, err
	}

	structure, err := s.dietRepo.GetByPlanID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.DietStructure{PlanID: plan.ID, Meals: []domain.Meal{}}, nil
		}
		return nil, err
	}

	// Order every level by position index.
	sort.SliceStable(structure.Meals, func(i, j int) bool {
		return structure.Meals[i].Position < structure.Meals[j].Position
	})
	for i := range structure.Meals {
		options := structure.Meals[i].Options
		sort.SliceStable(options, func(a, b int) bool { return options[a].Position < options[b].Position })
		for j := range options {
			items := options[j].Items
			sort.SliceStable(items, func(a, b int) bool { return items[a].Position < items[b].Position })
		}
	}
	return structure, nil
}

// getOwnedDietPlan loads a plan and verifies it is a diet plan owned by the
// acting coach.
func (s *dietService) getOwnedDietPlan(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.Plan, error) {
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
	if plan.Type != domain.PlanTypeDiet {
		return nil, ErrPlanTypeMismatch
	}
	return plan, nil
}
