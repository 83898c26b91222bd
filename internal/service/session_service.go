package service

import (
	"context"
	"errors"
	"time"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound = errors.New("session not found")
)

// CardioSessionInput carries the coach-entered fields of a cardio session.
type CardioSessionInput struct {
	Name        string
	Description string
	Blocks      []domain.CardioBlock
}

// --- Service Interface ---

// SessionService schedules and maintains calendar sessions of both variants.
// A strength session is a weak reference into a program day; validity of the
// reference is only guaranteed at scheduling time (the composer tolerates a
// day deleted later).
type SessionService interface {
	ScheduleStrength(ctx context.Context, coachID, clientID primitive.ObjectID, date time.Time, programID, dayID primitive.ObjectID) (*domain.Session, error)
	ScheduleCardio(ctx context.Context, coachID, clientID primitive.ObjectID, date time.Time, input CardioSessionInput) (*domain.Session, error)
	UpdateCardio(ctx context.Context, coachID, sessionID primitive.ObjectID, date time.Time, input CardioSessionInput) (*domain.Session, error)
	Reschedule(ctx context.Context, coachID, sessionID primitive.ObjectID, date time.Time) (*domain.Session, error)
	Delete(ctx context.Context, coachID, sessionID primitive.ObjectID) error
	Get(ctx context.Context, coachID, sessionID primitive.ObjectID) (*domain.Session, error)
}

// --- Service Implementation ---

// sessionService implements the SessionService interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	planRepo    repository.PlanRepository
	dayRepo     repository.DayRepository
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	planRepo repository.PlanRepository,
	dayRepo repository.DayRepository,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		planRepo:    planRepo,
		dayRepo:     dayRepo,
	}
}

// ScheduleStrength puts a program day on the client's calendar.
func (s *sessionService) ScheduleStrength(ctx context.Context, coachID, clientID primitive.ObjectID, date time.Time, programID, dayID primitive.ObjectID) (*domain.Session, error) {
	// 1. Validate Inputs
	if coachID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("coach ID and client ID are required")
	}
	if programID == primitive.NilObjectID || dayID == primitive.NilObjectID {
		return nil, newValidationError("reference", "program ID and day ID are required")
	}
	if date.IsZero() {
		return nil, newValidationError("date", "date is required")
	}

	// 2. The referenced program must exist, be a program, and be owned by
	// this coach. The day must belong to that program at scheduling time.
	plan, err := s.planRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.CoachID != coachID {
		return nil, ErrAccessDenied
	}
	if plan.Type != domain.PlanTypeProgram {
		return nil, ErrPlanTypeMismatch
	}
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}
	if day.ProgramID != programID {
		return nil, newValidationError("reference", "day does not belong to the given program")
	}

	// 3. Create
	session := &domain.Session{
		CoachID:   coachID,
		ClientID:  clientID,
		Kind:      domain.SessionStrength,
		Date:      normalizeDate(date),
		ProgramID: &programID,
		DayID:     &dayID,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

// ScheduleCardio puts a self-contained cardio session on the calendar.
func (s *sessionService) ScheduleCardio(ctx context.Context, coachID, clientID primitive.ObjectID, date time.Time, input CardioSessionInput) (*domain.Session, error) {
	if coachID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("coach ID and client ID are required")
	}
	if date.IsZero() {
		return nil, newValidationError("date", "date is required")
	}
	if input.Name == "" {
		return nil, newValidationError("name", "cardio session name must not be empty")
	}
	if err := validateCardioBlocks(input.Blocks); err != nil {
		return nil, err
	}

	session := &domain.Session{
		CoachID:     coachID,
		ClientID:    clientID,
		Kind:        domain.SessionCardio,
		Date:        normalizeDate(date),
		Name:        input.Name,
		Description: input.Description,
		Blocks:      renumberBlocks(input.Blocks),
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

// UpdateCardio rewrites a cardio session's date, name, description, and
// block list.
func (s *sessionService) UpdateCardio(ctx context.Context, coachID, sessionID primitive.ObjectID, date time.Time, input CardioSessionInput) (*domain.Session, error) {
	session, err := s.getOwned(ctx, coachID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Kind != domain.SessionCardio {
		return nil, newValidationError("kind", "only cardio sessions carry an editable payload")
	}
	if input.Name == "" {
		return nil, newValidationError("name", "cardio session name must not be empty")
	}
	if err := validateCardioBlocks(input.Blocks); err != nil {
		return nil, err
	}

	if !date.IsZero() {
		session.Date = normalizeDate(date)
	}
	session.Name = input.Name
	session.Description = input.Description
	session.Blocks = renumberBlocks(input.Blocks)

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Reschedule moves a session of either variant to another date.
func (s *sessionService) Reschedule(ctx context.Context, coachID, sessionID primitive.ObjectID, date time.Time) (*domain.Session, error) {
	if date.IsZero() {
		return nil, newValidationError("date", "date is required")
	}
	session, err := s.getOwned(ctx, coachID, sessionID)
	if err != nil {
		return nil, err
	}

	session.Date = normalizeDate(date)
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Delete removes a session from the calendar. Attachments keep their
// metadata; orphaned S3 objects are reaped out of band.
func (s *sessionService) Delete(ctx context.Context, coachID, sessionID primitive.ObjectID) error {
	session, err := s.getOwned(ctx, coachID, sessionID)
	if err != nil {
		return err
	}
	return s.sessionRepo.Delete(ctx, session.ID)
}

// Get fetches a session and verifies coach ownership.
func (s *sessionService) Get(ctx context.Context, coachID, sessionID primitive.ObjectID) (*domain.Session, error) {
	return s.getOwned(ctx, coachID, sessionID)
}

func (s *sessionService) getOwned(ctx context.Context, coachID, sessionID primitive.ObjectID) (*domain.Session, error) {
	if coachID == primitive.NilObjectID || sessionID == primitive.NilObjectID {
		return nil, errors.New("coach ID and session ID are required")
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.CoachID != coachID {
		return nil, ErrAccessDenied
	}
	return session, nil
}

// validateCardioBlocks checks each block against its kind's required fields.
func validateCardioBlocks(blocks []domain.CardioBlock) error {
	for i, block := range blocks {
		switch block.Kind {
		case domain.BlockContinuous:
			if block.DurationMinutes == nil && block.DistanceKm == nil {
				return newValidationError(pathf("blocks[%d]", i), "a continuous block needs a duration or a distance")
			}
		case domain.BlockIntervals:
			if block.Sets == nil || *block.Sets < 1 {
				return newValidationError(pathf("blocks[%d]", i), "an interval block needs a positive set count")
			}
			if block.WorkSeconds == nil || *block.WorkSeconds < 1 {
				return newValidationError(pathf("blocks[%d]", i), "an interval block needs positive work seconds")
			}
		case domain.BlockStation:
			if block.Station == "" {
				return newValidationError(pathf("blocks[%d]", i), "a station block needs a station name")
			}
		default:
			return newValidationError(pathf("blocks[%d]", i), "unknown block kind")
		}
		if err := nonNegativeBlockFields(i, block); err != nil {
			return err
		}
	}
	return nil
}

func nonNegativeBlockFields(i int, block domain.CardioBlock) error {
	if block.DurationMinutes != nil && *block.DurationMinutes < 0 {
		return newValidationError(pathf("blocks[%d]", i), "duration must not be negative")
	}
	if block.DistanceKm != nil && *block.DistanceKm < 0 {
		return newValidationError(pathf("blocks[%d]", i), "distance must not be negative")
	}
	if block.Sets != nil && *block.Sets < 0 {
		return newValidationError(pathf("blocks[%d]", i), "set count must not be negative")
	}
	if block.WorkSeconds != nil && *block.WorkSeconds < 0 {
		return newValidationError(pathf("blocks[%d]", i), "work seconds must not be negative")
	}
	if block.RestSeconds != nil && *block.RestSeconds < 0 {
		return newValidationError(pathf("blocks[%d]", i), "rest seconds must not be negative")
	}
	return nil
}

// renumberBlocks assigns dense 1-based positions in slice order.
func renumberBlocks(blocks []domain.CardioBlock) []domain.CardioBlock {
	out := make([]domain.CardioBlock, len(blocks))
	for i, block := range blocks {
		block.Position = i + 1
		out[i] = block
	}
	return out
}

// normalizeDate truncates to UTC midnight so sessions compare by calendar
// day regardless of the caller's clock.
func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
