// internal/domain/session.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionKind distinguishes the two calendar entry variants.
type SessionKind string

const (
	SessionStrength SessionKind = "strength"
	SessionCardio   SessionKind = "cardio"
)

// Session is a single calendar entry for a client. A strength session is a
// reference into a training program's day and carries no payload of its own;
// a cardio session is fully self-contained. Multiple sessions may share a
// date.
type Session struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID  primitive.ObjectID `bson:"coachId" json:"coachId"`
	ClientID primitive.ObjectID `bson:"clientId" json:"clientId"`
	Kind     SessionKind        `bson:"kind" json:"kind"`
	Date     time.Time          `bson:"date" json:"date"` // normalized to UTC midnight

	// --- Strength variant: weak reference, resolved at read time ---
	ProgramID *primitive.ObjectID `bson:"programId,omitempty" json:"programId,omitempty"`
	DayID     *primitive.ObjectID `bson:"dayId,omitempty" json:"dayId,omitempty"`

	// --- Cardio variant ---
	Name        string        `bson:"name,omitempty" json:"name,omitempty"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Blocks      []CardioBlock `bson:"blocks,omitempty" json:"blocks,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"` // also the within-date tiebreak order
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BlockKind types a cardio block.
type BlockKind string

const (
	BlockContinuous BlockKind = "continuous"
	BlockIntervals  BlockKind = "intervals"
	BlockStation    BlockKind = "station"
)

// CardioBlock is one typed segment of a cardio session. Only the fields for
// the block's kind are populated:
//   - continuous: DurationMinutes and/or DistanceKm, optional Pace/HR targets
//   - intervals:  Sets, WorkSeconds, RestSeconds
//   - station:    Station plus Sets, WorkSeconds, RestSeconds
type CardioBlock struct {
	Kind            BlockKind `bson:"kind" json:"kind"`
	Position        int       `bson:"position" json:"position"`
	DurationMinutes *int      `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	DistanceKm      *float64  `bson:"distanceKm,omitempty" json:"distanceKm,omitempty"`
	PaceTarget      string    `bson:"paceTarget,omitempty" json:"paceTarget,omitempty"` // e.g. "5:30/km"
	HRTarget        string    `bson:"hrTarget,omitempty" json:"hrTarget,omitempty"`     // e.g. "Z2" or "140-150"
	Sets            *int      `bson:"sets,omitempty" json:"sets,omitempty"`
	WorkSeconds     *int      `bson:"workSeconds,omitempty" json:"workSeconds,omitempty"`
	RestSeconds     *int      `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Station         string    `bson:"station,omitempty" json:"station,omitempty"` // e.g. "Ski erg"
}
