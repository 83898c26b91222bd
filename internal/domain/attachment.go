package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment stores metadata about a file a client attached to a scheduled
// session (e.g. a set video). The actual file resides in S3.
type Attachment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   primitive.ObjectID `bson:"sessionId" json:"sessionId"` // Link back to the session
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`   // Who uploaded
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`     // Denormalized for coach queries
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"`       // Bucket key - internal use
	FileName    string             `bson:"fileName" json:"fileName"`   // Original filename provided by client
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"` // Bytes
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
