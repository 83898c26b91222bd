// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType tags the three plan specializations that share a lifecycle.
type PlanType string

const (
	PlanTypeMacro   PlanType = "macro"
	PlanTypeDiet    PlanType = "diet"
	PlanTypeProgram PlanType = "program"
)

// PlanStatus is the lifecycle state of a plan.
type PlanStatus string

const (
	PlanStatusDraft    PlanStatus = "draft"
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// ValidPlanType reports whether t is one of the known plan types.
func ValidPlanType(t PlanType) bool {
	return t == PlanTypeMacro || t == PlanTypeDiet || t == PlanTypeProgram
}

// ValidPlanStatus reports whether s is one of the known statuses.
func ValidPlanStatus(s PlanStatus) bool {
	return s == PlanStatusDraft || s == PlanStatusActive || s == PlanStatusArchived
}

// Plan is the versioned, time-boxed object a coach prescribes to a client:
// macro targets, a diet structure, or a training program. At most one plan
// per (client, type) may be active at a time; the effective window
// [EffectiveFrom, EffectiveTo] is independent of status.
type Plan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID       primitive.ObjectID `bson:"coachId" json:"coachId"`   // Who created the plan
	ClientID      primitive.ObjectID `bson:"clientId" json:"clientId"` // Who the plan is for
	Type          PlanType           `bson:"type" json:"type"`
	Name          string             `bson:"name" json:"name"`
	Status        PlanStatus         `bson:"status" json:"status"`
	EffectiveFrom time.Time          `bson:"effectiveFrom" json:"effectiveFrom"`
	EffectiveTo   *time.Time         `bson:"effectiveTo,omitempty" json:"effectiveTo,omitempty"` // nil means open-ended
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Macro plan payload ---
	Macros *MacroTargets `bson:"macros,omitempty" json:"macros,omitempty"`

	// --- Training program payload ---
	// Weeks is the number of week columns in the program matrix. Days,
	// columns, exercises and cells live in their own collections.
	Weeks int `bson:"weeks,omitempty" json:"weeks,omitempty"`
}

// MacroTargets holds the daily macro prescription of a macro plan.
type MacroTargets struct {
	Kcal    int     `bson:"kcal" json:"kcal"`
	Protein float64 `bson:"protein" json:"protein"` // grams
	Carbs   float64 `bson:"carbs" json:"carbs"`     // grams
	Fat     float64 `bson:"fat" json:"fat"`         // grams
	// Optional per-day-type overrides (e.g. higher carbs on training days).
	Overrides []MacroOverride `bson:"overrides,omitempty" json:"overrides,omitempty"`
}

// MacroOverride replaces the base targets for one day-type.
type MacroOverride struct {
	DayType DayType `bson:"dayType" json:"dayType"`
	Kcal    int     `bson:"kcal" json:"kcal"`
	Protein float64 `bson:"protein" json:"protein"`
	Carbs   float64 `bson:"carbs" json:"carbs"`
	Fat     float64 `bson:"fat" json:"fat"`
}
