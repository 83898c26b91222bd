package service

import (
	"context"
	"errors"
	"time"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeletedDayLabel is shown for strength sessions whose referenced day no
// longer exists. A dangling reference is a degraded read, never an error.
const DeletedDayLabel = "(deleted workout day)"

// ScheduleEntry is one calendar row: the session plus the resolved display
// fields a UI needs without further lookups.
type ScheduleEntry struct {
	Session     domain.Session `json:"session"`
	Title       string         `json:"title"`                 // day name, cardio name, or placeholder
	ProgramName string         `json:"programName,omitempty"` // strength entries only
}

// --- Service Interface ---

// ScheduleService answers "what is scheduled for client C between two
// dates?" as one list merging both session variants. Pure read composition;
// it writes nothing.
type ScheduleService interface {
	GetSchedule(ctx context.Context, clientID primitive.ObjectID, start, end time.Time) ([]ScheduleEntry, error)
}

// --- Service Implementation ---

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	sessionRepo repository.SessionRepository
	dayRepo     repository.DayRepository
	planRepo    repository.PlanRepository
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	sessionRepo repository.SessionRepository,
	dayRepo repository.DayRepository,
	planRepo repository.PlanRepository,
) ScheduleService {
	return &scheduleService{
		sessionRepo: sessionRepo,
		dayRepo:     dayRepo,
		planRepo:    planRepo,
	}
}

// GetSchedule fetches the window's sessions and resolves each strength
// session's day reference to a display name. Results are non-decreasing by
// date; entries within a date keep insertion order (the repository sorts by
// date, then creation time).
func (s *scheduleService) GetSchedule(ctx context.Context, clientID primitive.ObjectID, start, end time.Time) ([]ScheduleEntry, error) {
	// 1. Validate the window
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, newValidationError("window", "start and end dates are required")
	}
	start = normalizeDate(start)
	end = normalizeDate(end)
	if end.Before(start) {
		return nil, newValidationError("window", "end date must not precede start date")
	}

	// 2. One fetch for both variants
	sessions, err := s.sessionRepo.GetByClientAndDateRange(ctx, clientID, start, end)
	if err != nil {
		return nil, err
	}

	// 3. Resolve strength references, caching lookups per id so a week of
	// repeated days costs one read each
	dayNames := make(map[primitive.ObjectID]string)
	programNames := make(map[primitive.ObjectID]string)

	entries := make([]ScheduleEntry, 0, len(sessions))
	for _, session := range sessions {
		entry := ScheduleEntry{Session: session}

		switch session.Kind {
		case domain.SessionCardio:
			entry.Title = session.Name
		case domain.SessionStrength:
			entry.Title = DeletedDayLabel
			if session.DayID != nil {
				name, err := s.resolveDayName(ctx, *session.DayID, dayNames)
				if err != nil {
					return nil, err
				}
				if name != "" {
					entry.Title = name
				}
			}
			if session.ProgramID != nil {
				name, err := s.resolveProgramName(ctx, *session.ProgramID, programNames)
				if err != nil {
					return nil, err
				}
				entry.ProgramName = name
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// resolveDayName looks up a day name, memoizing results. A missing day
// resolves to "" (the caller substitutes the placeholder); any other
// repository failure propagates.
func (s *scheduleService) resolveDayName(ctx context.Context, dayID primitive.ObjectID, cache map[primitive.ObjectID]string) (string, error) {
	if name, ok := cache[dayID]; ok {
		return name, nil
	}
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			cache[dayID] = ""
			return "", nil
		}
		return "", err
	}
	cache[dayID] = day.Name
	return day.Name, nil
}

// resolveProgramName looks up a program plan's name, memoizing results. A
// deleted program degrades to "" like a deleted day.
func (s *scheduleService) resolveProgramName(ctx context.Context, programID primitive.ObjectID, cache map[primitive.ObjectID]string) (string, error) {
	if name, ok := cache[programID]; ok {
		return name, nil
	}
	plan, err := s.planRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			cache[programID] = ""
			return "", nil
		}
		return "", err
	}
	cache[programID] = plan.Name
	return plan.Name, nil
}
