package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus type for the lifecycle of a prescribed exercise instance
type WorkoutStatus string

const (
	WorkoutStatusActive    WorkoutStatus = "active"
	WorkoutStatusCompleted WorkoutStatus = "completed"
	WorkoutStatusPending   WorkoutStatus = "pending"
)

// WorkoutRecord is one prescribed/logged exercise instance for a client.
// ClientID is the tenant key: every read of this record passes through the
// ownership check in the access layer. TrainerID records who authored the
// programming; it is informational and is not itself a grant of access.
type WorkoutRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID       string             `bson:"clientId" json:"clientId"`
	TrainerID      string             `bson:"trainerId" json:"trainerId"`
	Exercise       string             `bson:"exercise" json:"exercise"`
	Sets           int                `bson:"sets" json:"sets"`
	Reps           int                `bson:"reps" json:"reps"`
	Status         WorkoutStatus      `bson:"status" json:"status"`
	WeekNumber     int                `bson:"weekNumber" json:"weekNumber"`
	TrainerComment string             `bson:"trainerComment,omitempty" json:"trainerComment,omitempty"`
	VideoObjectKey string             `bson:"videoObjectKey,omitempty" json:"-"` // S3 key for the demo/proof video, internal use
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutPatch is the closed set of fields a guarded update may change.
// Authorization is record-scoped, not field-scoped: once the write is
// allowed, every non-nil field here is applied.
type WorkoutPatch struct {
	Status         *WorkoutStatus `bson:"status,omitempty" json:"status,omitempty"`
	Sets           *int           `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps           *int           `bson:"reps,omitempty" json:"reps,omitempty"`
	TrainerComment *string        `bson:"trainerComment,omitempty" json:"trainerComment,omitempty"`
	VideoObjectKey *string        `bson:"videoObjectKey,omitempty" json:"videoObjectKey,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p WorkoutPatch) IsEmpty() bool {
	return p.Status == nil && p.Sets == nil && p.Reps == nil &&
		p.TrainerComment == nil && p.VideoObjectKey == nil
}
