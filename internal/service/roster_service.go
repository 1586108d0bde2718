package service

import (
	"coachdesk/portal/internal/domain"
	"coachdesk/portal/internal/repository"
	"context"
	"errors"
)

// --- Error Definitions ---
var (
	ErrClientNotFound = errors.New("client user not found")
	ErrClientNotRole  = errors.New("user found but is not a client")
)

// RosterService manages the trainer-client assignment rows the resolver
// reads. Creating a row grants standing access; revoking flips its status to
// inactive, which the resolver honors on the very next request.
type RosterService interface {
	AddClientByEmail(ctx context.Context, trainerID, clientEmail string) (*domain.TrainerClientAssignment, error)
	RemoveClient(ctx context.Context, trainerID, clientID string) error
}

// rosterService implements the RosterService interface.
type rosterService struct {
	userRepo       repository.UserRepository
	assignmentRepo repository.AssignmentRepository
}

// NewRosterService creates a new instance of rosterService.
func NewRosterService(userRepo repository.UserRepository, assignmentRepo repository.AssignmentRepository) RosterService {
	return &rosterService{
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
	}
}

// AddClientByEmail finds a client by email and creates (or reactivates) the
// assignment row granting the trainer access to that client's records.
func (s *rosterService) AddClientByEmail(ctx context.Context, trainerID, clientEmail string) (*domain.TrainerClientAssignment, error) {
	if trainerID == "" || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	assignment := &domain.TrainerClientAssignment{
		TrainerID: trainerID,
		ClientID:  client.MemberID(),
		Status:    domain.AssignmentStatusActive,
	}
	id, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id
	return assignment, nil
}

// RemoveClient revokes the trainer's access to the client. The row stays
// around with status inactive; re-adding the client reactivates it.
func (s *rosterService) RemoveClient(ctx context.Context, trainerID, clientID string) error {
	if trainerID == "" || clientID == "" {
		return errors.New("trainer ID and client ID are required")
	}
	return s.assignmentRepo.SetStatus(ctx, trainerID, clientID, domain.AssignmentStatusInactive)
}
