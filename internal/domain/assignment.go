package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for the grant lifecycle
type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "active"
	AssignmentStatusInactive AssignmentStatus = "inactive"
)

// TrainerClientAssignment grants a trainer standing access to a client's
// workout records. Only rows with status "active" confer access; flipping the
// status revokes on the very next request, since grants are never cached.
// The relationship is many-to-many, expressed as rows: a client may have
// several trainers and a trainer many clients.
type TrainerClientAssignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID string             `bson:"trainerId" json:"trainerId"`
	ClientID  string             `bson:"clientId" json:"clientId"`
	Status    AssignmentStatus   `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Grants reports whether this row currently confers access.
func (a TrainerClientAssignment) Grants() bool {
	return a.Status == AssignmentStatusActive
}
