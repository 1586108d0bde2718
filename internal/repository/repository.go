package repository

import (
	"coachdesk/portal/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
// Used only by the auth surface; the access layer never touches users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// WorkoutRecordRepository is the record store for workout records.
//
// FetchAll deliberately has no tenant parameter: ownership filtering happens
// in the service layer, after the fetch, so it cannot be bypassed by a
// malformed or missing query predicate.
type WorkoutRecordRepository interface {
	Create(ctx context.Context, rec *domain.WorkoutRecord) (primitive.ObjectID, error)
	FetchAll(ctx context.Context) ([]domain.WorkoutRecord, error)
	FetchByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutRecord, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch domain.WorkoutPatch) error
}

// AssignmentRepository is the record store for trainer-client assignments.
// Read-only from the access layer's perspective; Create/SetStatus serve the
// trainer-management endpoints.
type AssignmentRepository interface {
	Create(ctx context.Context, a *domain.TrainerClientAssignment) (primitive.ObjectID, error)
	FetchAll(ctx context.Context) ([]domain.TrainerClientAssignment, error)
	SetStatus(ctx context.Context, trainerID, clientID string, status domain.AssignmentStatus) error
}
