package service

import (
	"coachdesk/portal/internal/domain"
	"coachdesk/portal/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---

// ErrUnauthorized is the root of the authorization error family. Handlers
// and callers can match it with errors.Is regardless of the precise cause.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrClientScopeViolation = fmt.Errorf("%w: clients can only access their own workouts", ErrUnauthorized)
	ErrClientUpdateDenied   = fmt.Errorf("%w: clients can only update their own workouts", ErrUnauthorized)
	ErrTrainerNotAssigned   = fmt.Errorf("%w: trainer is not assigned to this client", ErrUnauthorized)
	ErrNotTrainer           = fmt.Errorf("%w: only trainers can author workout records", ErrUnauthorized)
	ErrUnknownRole          = fmt.Errorf("%w: unrecognized actor role", ErrUnauthorized)
)

// WorkoutFilter carries the optional content filters a caller may supply.
// They are applied strictly after the ownership filter and can only narrow
// a result set, never widen it.
type WorkoutFilter struct {
	Status     *domain.WorkoutStatus
	WeekNumber *int
}

// WorkoutAccessService enforces the authorization contract on every read and
// write of workout records. All decisions are made per call against the
// store's current contents; nothing is cached between requests.
type WorkoutAccessService interface {
	// ListWorkouts returns the workout records of one explicitly named client,
	// provided the actor may see them. A client actor must name itself; a
	// trainer actor must hold an active assignment. A mismatch is an
	// ErrUnauthorized failure, not an empty result: the caller named a
	// target that is not theirs.
	ListWorkouts(ctx context.Context, targetClientID string, actor domain.Actor, filter WorkoutFilter) ([]domain.WorkoutRecord, error)

	// ListAuthorizedWorkouts returns every record the actor may see without
	// naming a target: a client sees its own records; a trainer sees the
	// records of assigned clients plus records it authored.
	ListAuthorizedWorkouts(ctx context.Context, actor domain.Actor, filter WorkoutFilter) ([]domain.WorkoutRecord, error)

	// GetWorkout fetches one record by id. It returns (nil, nil) both when
	// the record does not exist and when the actor is not authorized for it,
	// so an unauthorized caller cannot probe the id space.
	GetWorkout(ctx context.Context, recordID primitive.ObjectID, actor domain.Actor) (*domain.WorkoutRecord, error)

	// UpdateWorkout applies a patch to one record after the write check.
	// Unlike GetWorkout the failure here is loud: the caller initiated a
	// write against an id it already holds, so an error discloses nothing.
	UpdateWorkout(ctx context.Context, recordID primitive.ObjectID, patch domain.WorkoutPatch, actor domain.Actor) error

	// AuthorizeWrite runs the write check of UpdateWorkout without applying
	// a patch and returns the record. Used by flows that need the write
	// grant before doing something else, such as issuing an upload URL.
	AuthorizeWrite(ctx context.Context, recordID primitive.ObjectID, actor domain.Actor) (*domain.WorkoutRecord, error)

	// CreateWorkout inserts a record authored by a trainer for an assigned client.
	CreateWorkout(ctx context.Context, rec *domain.WorkoutRecord, actor domain.Actor) (primitive.ObjectID, error)
}

// workoutAccessService implements the WorkoutAccessService interface.
type workoutAccessService struct {
	workoutRepo repository.WorkoutRecordRepository
	resolver    AssignmentResolver
}

// NewWorkoutAccessService creates a new instance of workoutAccessService.
func NewWorkoutAccessService(workoutRepo repository.WorkoutRecordRepository, resolver AssignmentResolver) WorkoutAccessService {
	return &workoutAccessService{
		workoutRepo: workoutRepo,
		resolver:    resolver,
	}
}

// === Reads ===

func (s *workoutAccessService) ListWorkouts(ctx context.Context, targetClientID string, actor domain.Actor, filter WorkoutFilter) ([]domain.WorkoutRecord, error) {
	// Absence of identity is absence of access. This state is reachable via
	// normal disconnected sessions, so it is an empty result, not an error.
	if actor.MemberID == "" {
		return []domain.WorkoutRecord{}, nil
	}

	switch actor.Role {
	case domain.RoleClient:
		if actor.MemberID != targetClientID {
			return nil, ErrClientScopeViolation
		}
	case domain.RoleTrainer:
		assigned, err := s.resolver.IsAssigned(ctx, actor.MemberID, targetClientID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, ErrTrainerNotAssigned
		}
	default:
		return nil, ErrUnknownRole
	}

	records, err := s.workoutRepo.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]domain.WorkoutRecord, 0, len(records))
	for _, rec := range records {
		// A record without an owner is filtered out, never surfaced.
		if rec.ClientID == "" || rec.ClientID != targetClientID {
			continue
		}
		owned = append(owned, rec)
	}
	return applyContentFilters(owned, filter), nil
}

func (s *workoutAccessService) ListAuthorizedWorkouts(ctx context.Context, actor domain.Actor, filter WorkoutFilter) ([]domain.WorkoutRecord, error) {
	if actor.MemberID == "" {
		return []domain.WorkoutRecord{}, nil
	}

	switch actor.Role {
	case domain.RoleClient:
		// A client's own id is the only reachable scope.
		return s.ListWorkouts(ctx, actor.MemberID, actor, filter)

	case domain.RoleTrainer:
		assigned, err := s.resolver.ActiveClientsOf(ctx, actor.MemberID)
		if err != nil {
			return nil, err
		}
		records, err := s.workoutRepo.FetchAll(ctx)
		if err != nil {
			return nil, err
		}

		visible := make([]domain.WorkoutRecord, 0, len(records))
		for _, rec := range records {
			_, inScope := assigned[rec.ClientID]
			if rec.ClientID == "" {
				inScope = false
			}
			// A trainer also sees records it authored even when the
			// assignment bookkeeping lags behind. This union exists only on
			// the bulk list; single-record reads and writes always demand an
			// active assignment.
			if inScope || rec.TrainerID == actor.MemberID {
				visible = append(visible, rec)
			}
		}
		return applyContentFilters(visible, filter), nil

	default:
		return nil, ErrUnknownRole
	}
}

func (s *workoutAccessService) GetWorkout(ctx context.Context, recordID primitive.ObjectID, actor domain.Actor) (*domain.WorkoutRecord, error) {
	if actor.MemberID == "" {
		return nil, nil
	}

	rec, err := s.workoutRepo.FetchByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// "Exists but forbidden" and "does not exist" must be indistinguishable
	// from the return value, so an unauthorized read comes back nil as well.
	authorized, err := s.mayTouch(ctx, rec, actor)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, nil
	}
	return rec, nil
}

// === Writes ===

func (s *workoutAccessService) UpdateWorkout(ctx context.Context, recordID primitive.ObjectID, patch domain.WorkoutPatch, actor domain.Actor) error {
	if _, err := s.AuthorizeWrite(ctx, recordID, actor); err != nil {
		return err
	}
	return s.workoutRepo.UpdateByID(ctx, recordID, patch)
}

func (s *workoutAccessService) AuthorizeWrite(ctx context.Context, recordID primitive.ObjectID, actor domain.Actor) (*domain.WorkoutRecord, error) {
	// No empty-result representation exists for a write, so an absent
	// identity surfaces as the error it is.
	if actor.MemberID == "" {
		return nil, ErrUnauthorized
	}

	rec, err := s.workoutRepo.FetchByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case domain.RoleClient:
		if rec.ClientID == "" || rec.ClientID != actor.MemberID {
			return nil, ErrClientUpdateDenied
		}
	case domain.RoleTrainer:
		assigned, err := s.resolver.IsAssigned(ctx, actor.MemberID, rec.ClientID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, ErrTrainerNotAssigned
		}
	default:
		return nil, ErrUnknownRole
	}
	return rec, nil
}

func (s *workoutAccessService) CreateWorkout(ctx context.Context, rec *domain.WorkoutRecord, actor domain.Actor) (primitive.ObjectID, error) {
	if actor.MemberID == "" {
		return primitive.NilObjectID, ErrUnauthorized
	}
	if actor.Role != domain.RoleTrainer {
		return primitive.NilObjectID, ErrNotTrainer
	}
	assigned, err := s.resolver.IsAssigned(ctx, actor.MemberID, rec.ClientID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !assigned {
		return primitive.NilObjectID, ErrTrainerNotAssigned
	}

	rec.TrainerID = actor.MemberID
	return s.workoutRepo.Create(ctx, rec)
}

// === Helpers ===

// mayTouch is the common single-record ownership rule: a client must own the
// record, a trainer must hold an active assignment for its client.
func (s *workoutAccessService) mayTouch(ctx context.Context, rec *domain.WorkoutRecord, actor domain.Actor) (bool, error) {
	if rec.ClientID == "" {
		// Malformed data fails closed.
		return false, nil
	}
	switch actor.Role {
	case domain.RoleClient:
		return rec.ClientID == actor.MemberID, nil
	case domain.RoleTrainer:
		return s.resolver.IsAssigned(ctx, actor.MemberID, rec.ClientID)
	default:
		return false, nil
	}
}

// applyContentFilters narrows an already ownership-filtered slice. Status
// first, then week number; ordering is fixed so content filters can never
// run ahead of the ownership filter.
func applyContentFilters(records []domain.WorkoutRecord, filter WorkoutFilter) []domain.WorkoutRecord {
	if filter.Status == nil && filter.WeekNumber == nil {
		return records
	}
	out := make([]domain.WorkoutRecord, 0, len(records))
	for _, rec := range records {
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		if filter.WeekNumber != nil && rec.WeekNumber != *filter.WeekNumber {
			continue
		}
		out = append(out, rec)
	}
	return out
}
