// internal/domain/diet.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayType partitions diet-plan meals (and macro overrides) by context.
type DayType string

const (
	DayTypeDefault  DayType = "default"
	DayTypeTraining DayType = "training"
	DayTypeRest     DayType = "rest"
	// Weekday-specific tags, for plans that prescribe per-weekday meals.
	DayTypeMonday    DayType = "monday"
	DayTypeTuesday   DayType = "tuesday"
	DayTypeWednesday DayType = "wednesday"
	DayTypeThursday  DayType = "thursday"
	DayTypeFriday    DayType = "friday"
	DayTypeSaturday  DayType = "saturday"
	DayTypeSunday    DayType = "sunday"
)

// ValidDayType reports whether t is a known day-type tag.
func ValidDayType(t DayType) bool {
	switch t {
	case DayTypeDefault, DayTypeTraining, DayTypeRest,
		DayTypeMonday, DayTypeTuesday, DayTypeWednesday, DayTypeThursday,
		DayTypeFriday, DayTypeSaturday, DayTypeSunday:
		return true
	}
	return false
}

// DietStructure holds the full meal tree of one diet plan as a single
// document, so replacing the tree is a single atomic write.
type DietStructure struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID    primitive.ObjectID `bson:"planId" json:"planId"` // Unique: one structure per plan
	Meals     []Meal             `bson:"meals" json:"meals"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Meal groups the exchangeable options a client can pick from at one meal.
type Meal struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	DayType  DayType            `bson:"dayType" json:"dayType"`
	Name     string             `bson:"name" json:"name"` // e.g. "Desayuno"
	Position int                `bson:"position" json:"position"`
	Options  []MealOption       `bson:"options" json:"options"`
}

// MealOption is one interchangeable variant of a meal.
type MealOption struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Position int                `bson:"position" json:"position"`
	Items    []MealItem         `bson:"items" json:"items"`
}

// MealItem is a single food line within an option. Name is required;
// quantity and unit are optional (e.g. "200" "g").
type MealItem struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Quantity *float64           `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Unit     string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Note     string             `bson:"note,omitempty" json:"note,omitempty"`
	Position int                `bson:"position" json:"position"`
}
