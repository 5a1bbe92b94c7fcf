package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryExport stores metadata about a CSV export of a trainee's log.
// The file itself lives in object storage.
type HistoryExport struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TraineeID   primitive.ObjectID  `bson:"traineeId" json:"traineeId"`
	RequestedBy *primitive.ObjectID `bson:"requestedBy,omitempty" json:"requestedBy,omitempty"`
	ObjectKey   string              `bson:"objectKey" json:"-"`
	RowCount    int                 `bson:"rowCount" json:"rowCount"`
	Size        int64               `bson:"size" json:"size"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}
