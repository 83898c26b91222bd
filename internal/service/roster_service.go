package service

import (
	"context"
	"errors"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound       = errors.New("client not found with the provided email")
	ErrClientNotRole        = errors.New("user found but does not have the client role")
	ErrClientAlreadyManaged = errors.New("client is already managed by this coach")
	ErrClientManagedByOther = errors.New("client is already managed by another coach")
	ErrClientNotManaged     = errors.New("client is not managed by this coach")
)

// --- Service Interface ---

// RosterService manages the coach to client relationship.
type RosterService interface {
	AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	VerifyClientManaged(ctx context.Context, coachID, clientID primitive.ObjectID) (*domain.User, error)
}

// --- Service Implementation ---

type rosterService struct {
	userRepo repository.UserRepository
}

// NewRosterService creates a new instance of rosterService.
func NewRosterService(userRepo repository.UserRepository) RosterService {
	return &rosterService{userRepo: userRepo}
}

// AddClientByEmail finds a client by email and adds them to the coach's roster.
func (s *rosterService) AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	// 1. Validate Input
	if clientEmail == "" {
		return nil, errors.New("client email cannot be empty")
	}
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID cannot be empty")
	}

	// 2. Find the potential client user by email
	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	// 3. Verify the found user has the client role
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}

	// 4. Check existing coach link
	if client.CoachID != nil {
		if *client.CoachID == coachID {
			return nil, ErrClientAlreadyManaged
		}
		return nil, ErrClientManagedByOther
	}

	// 5. Link both sides of the relationship
	if err := s.userRepo.SetCoachForClient(ctx, client.ID, coachID); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddClientIDToCoach(ctx, coachID, client.ID); err != nil {
		return nil, err
	}

	client.CoachID = &coachID
	client.PasswordHash = ""
	return client, nil
}

// GetManagedClients retrieves all clients on the coach's roster.
func (s *rosterService) GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID cannot be empty")
	}

	clients, err := s.userRepo.GetClientsByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// VerifyClientManaged checks that the given client belongs to the coach's roster.
func (s *rosterService) VerifyClientManaged(ctx context.Context, coachID, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}
	if client.CoachID == nil || *client.CoachID != coachID {
		return nil, ErrClientNotManaged
	}
	client.PasswordHash = ""
	return client, nil
}
