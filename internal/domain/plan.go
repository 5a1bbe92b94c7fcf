package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultBaseDaysPerWeek applies when a trainee has no configuration history.
const DefaultBaseDaysPerWeek = 3

// EffectiveConfig is one row of a trainee's weekly frequency history.
// The row in force for a day is the latest one with EffectiveFrom <= day.
type EffectiveConfig struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TraineeID       primitive.ObjectID  `bson:"traineeId" json:"traineeId"`
	EffectiveFrom   time.Time           `bson:"effectiveFrom" json:"effectiveFrom"`
	BaseDaysPerWeek int                 `bson:"baseDaysPerWeek" json:"baseDaysPerWeek"`
	CreatedBy       *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}

// WeeklyState is the per-trainee progression cursor. Exactly one per trainee.
type WeeklyState struct {
	TraineeID         primitive.ObjectID `bson:"_id" json:"traineeId"`
	NextBaseDayIndex  int                `bson:"nextBaseDayIndex" json:"nextBaseDayIndex"`
	BasesDoneThisWeek int                `bson:"basesDoneThisWeek" json:"basesDoneThisWeek"`
	WeekAnchorDate    time.Time          `bson:"weekAnchorDate" json:"weekAnchorDate"` // always a Monday
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewWeeklyState is the state of a trainee who has never trained.
func NewWeeklyState(traineeID primitive.ObjectID, day time.Time) *WeeklyState {
	return &WeeklyState{
		TraineeID:        traineeID,
		NextBaseDayIndex: 1,
		WeekAnchorDate:   WeekMonday(day),
	}
}

// DayClassification is the answer to "what does this trainee owe today".
type DayClassification struct {
	Kind              DayKind   `json:"kind"`
	BaseDaysPerWeek   int       `json:"n"`
	NextBaseDayIndex  int       `json:"nextBaseDayIndex"`
	BasesDoneThisWeek int       `json:"basesDoneThisWeek"`
	WeekAnchorDate    time.Time `json:"weekAnchorDate"`
}
