package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineTemplate is a named, versioned routine in the catalog.
// At most one template per ExternalKey is active.
type RoutineTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalKey string             `bson:"externalKey" json:"externalKey"` // e.g. "PUSH-PULL-LEGS"
	Name        string             `bson:"name" json:"name"`
	Version     int                `bson:"version" json:"version"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// RoutineItem is the shared shape of template items and snapshot items.
type RoutineItem struct {
	DayIndex     int      `bson:"dayIndex" json:"dayIndex"`
	OrderIndex   int      `bson:"orderIndex" json:"orderIndex"`
	Category     string   `bson:"category,omitempty" json:"category,omitempty"`
	ExerciseKey  string   `bson:"exerciseKey" json:"exerciseKey"`
	Sets         *int     `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps         string   `bson:"reps,omitempty" json:"reps,omitempty"` // "8-12", "AMRAP"...
	RestSeconds  *int     `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	TargetWeight *float64 `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	Notes        string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// TemplateItem belongs to a RoutineTemplate.
type TemplateItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID  primitive.ObjectID `bson:"templateId" json:"templateId"`
	RoutineItem `bson:",inline"`
}

// TraineeRoutine is the header of a trainee-owned snapshot of a template.
// Only Active ever changes after creation.
type TraineeRoutine struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TraineeID  primitive.ObjectID  `bson:"traineeId" json:"traineeId"`
	TemplateID primitive.ObjectID  `bson:"templateId" json:"templateId"`
	Active     bool                `bson:"active" json:"active"`
	AssignedAt time.Time           `bson:"assignedAt" json:"assignedAt"`
	AssignedBy *primitive.ObjectID `bson:"assignedBy,omitempty" json:"assignedBy,omitempty"`
}

// TraineeRoutineItem is a physical copy of a TemplateItem owned by a snapshot.
type TraineeRoutineItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID   primitive.ObjectID `bson:"routineId" json:"routineId"`
	RoutineItem `bson:",inline"`
}

// NormalizeTemplateKey trims and upper-cases an external key.
func NormalizeTemplateKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// CycleLength is the number of distinct day positions in items; 1 when empty.
func CycleLength(items []RoutineItem) int {
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		seen[it.DayIndex] = struct{}{}
	}
	if len(seen) == 0 {
		return 1
	}
	return len(seen)
}

// DaysContiguous reports whether the distinct day positions in items are
// exactly 1..n, so that CycleLength equals the highest day position.
func DaysContiguous(items []RoutineItem) bool {
	maxDay := 0
	for _, it := range items {
		if it.DayIndex > maxDay {
			maxDay = it.DayIndex
		}
	}
	return maxDay == CycleLength(items)
}

// NextDay advances a cyclic day pointer, wrapping to 1 above cycleLength.
func NextDay(day, cycleLength int) int {
	if day >= cycleLength {
		return 1
	}
	return day + 1
}
