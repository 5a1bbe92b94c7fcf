package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingLogEntry records one completed session. Entries are append-only.
type TrainingLogEntry struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TraineeID      primitive.ObjectID  `bson:"traineeId" json:"traineeId"`
	RoutineID      primitive.ObjectID  `bson:"routineId" json:"routineId"`
	Kind           DayKind             `bson:"kind" json:"kind"`
	DayIndex       *int                `bson:"dayIndex,omitempty" json:"dayIndex,omitempty"` // nil for EXTRA
	SessionIndex   int                 `bson:"sessionIndex" json:"sessionIndex"`             // 1..N per routine
	WorkoutDate    time.Time           `bson:"workoutDate" json:"workoutDate"`
	WeekAnchorDate time.Time           `bson:"weekAnchorDate" json:"weekAnchorDate"`
	Label          string              `bson:"label,omitempty" json:"label,omitempty"`
	Intensity      Intensity           `bson:"intensity" json:"intensity"`
	CompletedAt    time.Time           `bson:"completedAt" json:"completedAt"`
	RecordedBy     *primitive.ObjectID `bson:"recordedBy,omitempty" json:"recordedBy,omitempty"`
}

// SessionRecord is the result of completing a session.
type SessionRecord struct {
	Entry TrainingLogEntry  `json:"session"`
	Today DayClassification `json:"today"`
}

// HistoryEntry is a log entry enriched with the template it was recorded against.
type HistoryEntry struct {
	TrainingLogEntry
	TemplateKey  string `json:"templateKey,omitempty"`
	TemplateName string `json:"templateName,omitempty"`
}

// Metrics summarizes a trainee's log.
type Metrics struct {
	TotalCount     int        `json:"totalCount"`
	ThisWeekCount  int        `json:"thisWeekCount"`
	BasesThisWeek  int        `json:"basesThisWeek"`
	CurrentStreak  int        `json:"currentStreak"`
	FirstDate      *time.Time `json:"firstDate"`
	LastDate       *time.Time `json:"lastDate"`
	AveragePerWeek float64    `json:"averagePerWeek"`
	CycleLength    int        `json:"cycleLength"`
}
