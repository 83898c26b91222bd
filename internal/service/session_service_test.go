package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"titanfit/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionFixture struct {
	svc         SessionService
	sessionRepo *fakeSessionRepo
	planRepo    *fakePlanRepo
	dayRepo     *fakeDayRepo
	coachID     primitive.ObjectID
	clientID    primitive.ObjectID
	program     *domain.Plan
	day         domain.Day
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	ctx := context.Background()

	f := &sessionFixture{
		sessionRepo: newFakeSessionRepo(),
		planRepo:    newFakePlanRepo(),
		dayRepo:     newFakeDayRepo(),
		coachID:     primitive.NewObjectID(),
		clientID:    primitive.NewObjectID(),
	}
	f.svc = NewSessionService(f.sessionRepo, f.planRepo, f.dayRepo)

	f.program = &domain.Plan{
		CoachID:       f.coachID,
		ClientID:      f.clientID,
		Type:          domain.PlanTypeProgram,
		Name:          "Base block",
		Status:        domain.PlanStatusActive,
		EffectiveFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Weeks:         4,
	}
	id, err := f.planRepo.Create(ctx, f.program)
	if err != nil {
		t.Fatalf("seed program: %v", err)
	}
	f.program.ID = id

	f.day = domain.Day{ID: primitive.NewObjectID(), ProgramID: id, Name: "Push", Position: 1}
	if err := f.dayRepo.InsertMany(ctx, []domain.Day{f.day}); err != nil {
		t.Fatalf("seed day: %v", err)
	}
	return f
}

func intPtr(n int) *int           { return &n }
func floatPtr(x float64) *float64 { return &x }

func TestScheduleStrength(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	// A non-midnight local time lands on the UTC calendar day.
	loc := time.FixedZone("CET", 3600)
	when := time.Date(2026, 4, 10, 18, 30, 0, 0, loc)

	session, err := f.svc.ScheduleStrength(ctx, f.coachID, f.clientID, when, f.program.ID, f.day.ID)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if session.Kind != domain.SessionStrength {
		t.Errorf("kind = %s, want strength", session.Kind)
	}
	want := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	if !session.Date.Equal(want) {
		t.Errorf("date = %v, want %v", session.Date, want)
	}
	if session.ProgramID == nil || *session.ProgramID != f.program.ID {
		t.Errorf("programID = %v", session.ProgramID)
	}
	if session.DayID == nil || *session.DayID != f.day.ID {
		t.Errorf("dayID = %v", session.DayID)
	}
}

func TestScheduleStrengthReferenceChecks(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	when := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	if _, err := f.svc.ScheduleStrength(ctx, f.coachID, f.clientID, when, primitive.NewObjectID(), f.day.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("missing program err = %v, want ErrPlanNotFound", err)
	}
	if _, err := f.svc.ScheduleStrength(ctx, primitive.NewObjectID(), f.clientID, when, f.program.ID, f.day.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign coach err = %v, want ErrAccessDenied", err)
	}
	if _, err := f.svc.ScheduleStrength(ctx, f.coachID, f.clientID, when, f.program.ID, primitive.NewObjectID()); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("missing day err = %v, want ErrDayNotFound", err)
	}

	// A macro plan is not schedulable as a program.
	macro := &domain.Plan{
		CoachID: f.coachID, ClientID: f.clientID,
		Type: domain.PlanTypeMacro, Name: "Cut", Status: domain.PlanStatusActive,
	}
	macroID, _ := f.planRepo.Create(ctx, macro)
	if _, err := f.svc.ScheduleStrength(ctx, f.coachID, f.clientID, when, macroID, f.day.ID); !errors.Is(err, ErrPlanTypeMismatch) {
		t.Errorf("macro program err = %v, want ErrPlanTypeMismatch", err)
	}

	// A day from another program does not pair with this one.
	other := &domain.Plan{
		CoachID: f.coachID, ClientID: f.clientID,
		Type: domain.PlanTypeProgram, Name: "Other", Status: domain.PlanStatusDraft, Weeks: 4,
	}
	otherID, _ := f.planRepo.Create(ctx, other)
	foreignDay := domain.Day{ID: primitive.NewObjectID(), ProgramID: otherID, Name: "Pull", Position: 1}
	if err := f.dayRepo.InsertMany(ctx, []domain.Day{foreignDay}); err != nil {
		t.Fatalf("seed foreign day: %v", err)
	}
	_, err := f.svc.ScheduleStrength(ctx, f.coachID, f.clientID, when, f.program.ID, foreignDay.ID)
	vErr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if vErr.Path != "reference" {
		t.Errorf("path = %q, want reference", vErr.Path)
	}
}

func TestScheduleCardio(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	when := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)

	input := CardioSessionInput{
		Name:        "Tempo run",
		Description: "Steady Z3",
		Blocks: []domain.CardioBlock{
			{Kind: domain.BlockContinuous, DurationMinutes: intPtr(40), PaceTarget: "5:30/km"},
			{Kind: domain.BlockIntervals, Sets: intPtr(6), WorkSeconds: intPtr(60), RestSeconds: intPtr(90)},
		},
	}
	session, err := f.svc.ScheduleCardio(ctx, f.coachID, f.clientID, when, input)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if session.Kind != domain.SessionCardio {
		t.Errorf("kind = %s, want cardio", session.Kind)
	}
	for i, block := range session.Blocks {
		if block.Position != i+1 {
			t.Errorf("blocks[%d].Position = %d, want %d", i, block.Position, i+1)
		}
	}
}

func TestCardioBlockValidation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	when := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		block domain.CardioBlock
		path  string
	}{
		{"continuous without duration or distance", domain.CardioBlock{Kind: domain.BlockContinuous}, "blocks[0]"},
		{"intervals without sets", domain.CardioBlock{Kind: domain.BlockIntervals, WorkSeconds: intPtr(60)}, "blocks[0]"},
		{"intervals without work seconds", domain.CardioBlock{Kind: domain.BlockIntervals, Sets: intPtr(4)}, "blocks[0]"},
		{"station without a name", domain.CardioBlock{Kind: domain.BlockStation, Sets: intPtr(3)}, "blocks[0]"},
		{"unknown kind", domain.CardioBlock{Kind: "swim"}, "blocks[0]"},
		{"negative distance", domain.CardioBlock{Kind: domain.BlockContinuous, DistanceKm: floatPtr(-5)}, "blocks[0]"},
		{
			"negative rest",
			domain.CardioBlock{Kind: domain.BlockIntervals, Sets: intPtr(4), WorkSeconds: intPtr(30), RestSeconds: intPtr(-10)},
			"blocks[0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := CardioSessionInput{Name: "Run", Blocks: []domain.CardioBlock{tt.block}}
			_, err := f.svc.ScheduleCardio(ctx, f.coachID, f.clientID, when, input)
			vErr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if vErr.Path != tt.path {
				t.Errorf("path = %q, want %q", vErr.Path, tt.path)
			}
		})
	}

	// A block-less cardio session is legal; a name-less one is not.
	if _, err := f.svc.ScheduleCardio(ctx, f.coachID, f.clientID, when, CardioSessionInput{Name: "Walk"}); err != nil {
		t.Errorf("block-less cardio rejected: %v", err)
	}
	if _, err := f.svc.ScheduleCardio(ctx, f.coachID, f.clientID, when, CardioSessionInput{}); err == nil {
		t.Errorf("name-less cardio accepted")
	}
}

func TestUpdateCardio(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	when := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)

	session, err := f.svc.ScheduleCardio(ctx, f.coachID, f.clientID, when, CardioSessionInput{Name: "Run"})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	updated, err := f.svc.UpdateCardio(ctx, f.coachID, session.ID, time.Time{}, CardioSessionInput{
		Name:   "Long run",
		Blocks: []domain.CardioBlock{{Kind: domain.BlockContinuous, DistanceKm: floatPtr(16)}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Long run" || len(updated.Blocks) != 1 {
		t.Errorf("updated = %+v", updated)
	}
	// A zero date keeps the original day.
	if !updated.Date.Equal(when) {
		t.Errorf("date = %v, want unchanged %v", updated.Date, when)
	}

	// A strength session has no editable cardio payload.
	strength, err := f.svc.ScheduleStrength(ctx, f.coachID, f.clientID, when, f.program.ID, f.day.ID)
	if err != nil {
		t.Fatalf("schedule strength: %v", err)
	}
	if _, err := f.svc.UpdateCardio(ctx, f.coachID, strength.ID, when, CardioSessionInput{Name: "x"}); err == nil {
		t.Errorf("cardio update of a strength session accepted")
	}
}

func TestRescheduleAndDelete(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	when := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)

	session, err := f.svc.ScheduleStrength(ctx, f.coachID, f.clientID, when, f.program.ID, f.day.ID)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	moved, err := f.svc.Reschedule(ctx, f.coachID, session.ID, time.Date(2026, 4, 14, 9, 15, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	want := time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC)
	if !moved.Date.Equal(want) {
		t.Errorf("date = %v, want %v", moved.Date, want)
	}

	if _, err := f.svc.Reschedule(ctx, primitive.NewObjectID(), session.ID, want); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign reschedule err = %v, want ErrAccessDenied", err)
	}

	if err := f.svc.Delete(ctx, f.coachID, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.coachID, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("get deleted err = %v, want ErrSessionNotFound", err)
	}
}
