package service

import (
	"coachdesk/portal/internal/repository"
	"context"
)

// AssignmentResolver answers "which clients may this trainer touch, right
// now?". Every call re-reads the assignment rows; there is no cache, so a
// revoked grant takes effect on the next request with no staleness window.
type AssignmentResolver interface {
	// ActiveClientsOf returns the set of client IDs the trainer actively
	// manages. No active assignments is an empty set, never an error.
	ActiveClientsOf(ctx context.Context, trainerID string) (map[string]struct{}, error)

	// IsAssigned reports whether clientID is in ActiveClientsOf(trainerID).
	IsAssigned(ctx context.Context, trainerID, clientID string) (bool, error)
}

// assignmentResolver implements AssignmentResolver on top of the assignment store.
type assignmentResolver struct {
	assignmentRepo repository.AssignmentRepository
}

// NewAssignmentResolver creates a new instance of assignmentResolver.
func NewAssignmentResolver(assignmentRepo repository.AssignmentRepository) AssignmentResolver {
	return &assignmentResolver{assignmentRepo: assignmentRepo}
}

func (s *assignmentResolver) ActiveClientsOf(ctx context.Context, trainerID string) (map[string]struct{}, error) {
	clients := make(map[string]struct{})

	// An absent trainer identity grants nothing, and must not accidentally
	// match rows that are themselves missing a trainerId.
	if trainerID == "" {
		return clients, nil
	}

	assignments, err := s.assignmentRepo.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range assignments {
		if a.TrainerID != trainerID || !a.Grants() {
			continue
		}
		if a.ClientID == "" {
			// Malformed row; a grant without a client scopes nothing.
			continue
		}
		clients[a.ClientID] = struct{}{}
	}
	return clients, nil
}

func (s *assignmentResolver) IsAssigned(ctx context.Context, trainerID, clientID string) (bool, error) {
	if clientID == "" {
		return false, nil
	}
	clients, err := s.ActiveClientsOf(ctx, trainerID)
	if err != nil {
		return false, err
	}
	_, ok := clients[clientID]
	return ok, nil
}
