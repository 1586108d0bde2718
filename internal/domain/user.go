package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a portal account (either a Trainer or a Client).
// Trainer/client relationships are NOT embedded here; they live as
// TrainerClientAssignment rows so a grant can be revoked without touching
// either user document.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MemberID is the opaque identifier the access layer sees for this user.
func (u *User) MemberID() string {
	return u.ID.Hex()
}

// Actor builds the access-layer view of this user.
func (u *User) Actor() Actor {
	return Actor{MemberID: u.MemberID(), Role: u.Role}
}
