package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"titanfit/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type programFixture struct {
	svc      ProgramService
	planRepo *fakePlanRepo
	dayRepo  *fakeDayRepo
	colRepo  *fakeColumnRepo
	exRepo   *fakeExerciseRepo
	cellRepo *fakeCellRepo
	coachID  primitive.ObjectID
	program  *domain.Plan
}

func newProgramFixture(t *testing.T) *programFixture {
	t.Helper()
	f := &programFixture{
		planRepo: newFakePlanRepo(),
		dayRepo:  newFakeDayRepo(),
		colRepo:  newFakeColumnRepo(),
		exRepo:   newFakeExerciseRepo(),
		cellRepo: newFakeCellRepo(),
		coachID:  primitive.NewObjectID(),
	}
	f.svc = NewProgramService(f.planRepo, f.dayRepo, f.colRepo, f.exRepo, f.cellRepo, fakeTxRunner{})

	f.program = &domain.Plan{
		CoachID:       f.coachID,
		ClientID:      primitive.NewObjectID(),
		Type:          domain.PlanTypeProgram,
		Name:          "Base block",
		Status:        domain.PlanStatusDraft,
		EffectiveFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Weeks:         6,
	}
	id, err := f.planRepo.Create(context.Background(), f.program)
	if err != nil {
		t.Fatalf("seed program: %v", err)
	}
	f.program.ID = id
	return f
}

func (f *programFixture) addExercise(t *testing.T, dayID primitive.ObjectID, name string) *domain.Exercise {
	t.Helper()
	e, err := f.svc.AddExercise(context.Background(), f.coachID, dayID, ExerciseInput{Name: name, Sets: "3", Reps: "10"})
	if err != nil {
		t.Fatalf("add exercise %q: %v", name, err)
	}
	return e
}

func TestBootstrapColumns(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()

	columns, err := f.svc.BootstrapColumns(ctx, f.coachID, f.program.ID)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(columns) != 8 {
		t.Fatalf("columns = %d, want 8", len(columns))
	}

	wantKeys := []string{"sets", "reps", "rir", "rest", "notes", "weight", "repsDone", "comments"}
	for i, col := range columns {
		if col.Key != wantKeys[i] {
			t.Errorf("columns[%d].Key = %q, want %q", i, col.Key, wantKeys[i])
		}
		if col.Position != i+1 {
			t.Errorf("columns[%d].Position = %d, want %d", i, col.Position, i+1)
		}
	}

	// Editor scopes: coach prescribes, client logs, comments shared.
	byKey := make(map[string]domain.Column)
	for _, col := range columns {
		byKey[col.Key] = col
	}
	if byKey["weight"].Editor != domain.ColumnEditorClient {
		t.Errorf("weight editor = %s, want client", byKey["weight"].Editor)
	}
	if byKey["sets"].Editor != domain.ColumnEditorCoach {
		t.Errorf("sets editor = %s, want coach", byKey["sets"].Editor)
	}
	if byKey["comments"].Editor != domain.ColumnEditorBoth {
		t.Errorf("comments editor = %s, want both", byKey["comments"].Editor)
	}

	// A second bootstrap is a no-op returning the existing set.
	again, err := f.svc.BootstrapColumns(ctx, f.coachID, f.program.ID)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if len(again) != 8 {
		t.Fatalf("second bootstrap columns = %d, want 8", len(again))
	}
	for i := range again {
		if again[i].ID != columns[i].ID {
			t.Errorf("second bootstrap replaced column %d", i)
		}
	}
}

func TestBootstrapColumnsRejectsNonProgram(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()

	macro := &domain.Plan{
		CoachID: f.coachID, ClientID: primitive.NewObjectID(),
		Type: domain.PlanTypeMacro, Name: "Cut", Status: domain.PlanStatusDraft,
	}
	id, _ := f.planRepo.Create(ctx, macro)

	if _, err := f.svc.BootstrapColumns(ctx, f.coachID, id); !errors.Is(err, ErrPlanTypeMismatch) {
		t.Errorf("err = %v, want ErrPlanTypeMismatch", err)
	}
}

func TestReplaceDays(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()

	days, err := f.svc.ReplaceDays(ctx, f.coachID, f.program.ID, []string{"Push", "Pull", "Legs"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("days = %d, want 3", len(days))
	}
	for i, d := range days {
		if d.Position != i+1 {
			t.Errorf("days[%d].Position = %d, want %d", i, d.Position, i+1)
		}
	}

	// Populate a day, then replace again: the old tree must be gone.
	e := f.addExercise(t, days[0].ID, "Bench press")
	cell := &domain.Cell{
		ProgramID:  f.program.ID,
		ExerciseID: e.ID,
		ColumnID:   primitive.NewObjectID(),
		Week:       1,
	}
	if err := f.cellRepo.Upsert(ctx, cell); err != nil {
		t.Fatalf("seed cell: %v", err)
	}

	replaced, err := f.svc.ReplaceDays(ctx, f.coachID, f.program.ID, []string{"Upper", "Lower"})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if len(replaced) != 2 {
		t.Fatalf("replaced days = %d, want 2", len(replaced))
	}
	for _, d := range replaced {
		for _, old := range days {
			if d.ID == old.ID {
				t.Errorf("day identity survived the replace: %s", d.ID.Hex())
			}
		}
	}
	if exs, _ := f.exRepo.GetByProgramID(ctx, f.program.ID); len(exs) != 0 {
		t.Errorf("exercises survived the replace: %d", len(exs))
	}
	if cells, _ := f.cellRepo.GetByProgramID(ctx, f.program.ID); len(cells) != 0 {
		t.Errorf("cells survived the replace: %d", len(cells))
	}
}

func TestReplaceDaysEmptyName(t *testing.T) {
	f := newProgramFixture(t)

	_, err := f.svc.ReplaceDays(context.Background(), f.coachID, f.program.ID, []string{"Push", ""})
	vErr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if vErr.Path != "days[1]" {
		t.Errorf("path = %q, want days[1]", vErr.Path)
	}
}

func TestAddExercisePositions(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()

	days, err := f.svc.ReplaceDays(ctx, f.coachID, f.program.ID, []string{"Push"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	a := f.addExercise(t, days[0].ID, "Bench press")
	b := f.addExercise(t, days[0].ID, "Incline dumbbell press")
	c := f.addExercise(t, days[0].ID, "Dips")

	for i, e := range []*domain.Exercise{a, b, c} {
		if e.Position != i+1 {
			t.Errorf("exercise %q position = %d, want %d", e.Name, e.Position, i+1)
		}
	}

	if _, err := f.svc.AddExercise(ctx, f.coachID, days[0].ID, ExerciseInput{}); err == nil {
		t.Errorf("empty name accepted")
	}
	if _, err := f.svc.AddExercise(ctx, f.coachID, primitive.NewObjectID(), ExerciseInput{Name: "x"}); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("missing day err = %v, want ErrDayNotFound", err)
	}
}

func TestUpdateExercise(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()

	days, err := f.svc.ReplaceDays(ctx, f.coachID, f.program.ID, []string{"Push"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	e := f.addExercise(t, days[0].ID, "Bench press")

	updated, err := f.svc.UpdateExercise(ctx, f.coachID, e.ID, ExerciseInput{
		Name: "Paused bench press", Sets: "4", Reps: "6", RIR: "2", RestSeconds: 180, Notes: "2s pause",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Paused bench press" || updated.Sets != "4" || updated.RestSeconds != 180 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Position != e.Position {
		t.Errorf("position changed on update: %d -> %d", e.Position, updated.Position)
	}

	if _, err := f.svc.UpdateExercise(ctx, f.coachID, e.ID, ExerciseInput{}); err == nil {
		t.Errorf("empty name accepted")
	}
	if _, err := f.svc.UpdateExercise(ctx, primitive.NewObjectID(), e.ID, ExerciseInput{Name: "x"}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign update err = %v, want ErrAccessDenied", err)
	}
	if _, err := f.svc.UpdateExercise(ctx, f.coachID, primitive.NewObjectID(), ExerciseInput{Name: "x"}); !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("missing exercise err = %v, want ErrExerciseNotFound", err)
	}
}

func TestRemoveExerciseRenumbers(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()

	days, err := f.svc.ReplaceDays(ctx, f.coachID, f.program.ID, []string{"Push"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	a := f.addExercise(t, days[0].ID, "Bench press")
	b := f.addExercise(t, days[0].ID, "Incline dumbbell press")
	c := f.addExercise(t, days[0].ID, "Dips")

	// Seed a cell for the middle exercise; removal must take it along.
	if err := f.cellRepo.Upsert(ctx, &domain.Cell{
		ProgramID: f.program.ID, ExerciseID: b.ID, ColumnID: primitive.NewObjectID(), Week: 2,
	}); err != nil {
		t.Fatalf("seed cell: %v", err)
	}

	if err := f.svc.RemoveExercise(ctx, f.coachID, b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	remaining, _ := f.exRepo.GetByDayID(ctx, days[0].ID)
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d, want 2", len(remaining))
	}
	if remaining[0].ID != a.ID || remaining[0].Position != 1 {
		t.Errorf("remaining[0] = %+v, want %s at position 1", remaining[0], a.ID.Hex())
	}
	if remaining[1].ID != c.ID || remaining[1].Position != 2 {
		t.Errorf("remaining[1] = %+v, want %s at position 2", remaining[1], c.ID.Hex())
	}
	if cells, _ := f.cellRepo.GetByProgramID(ctx, f.program.ID); len(cells) != 0 {
		t.Errorf("cells of the removed exercise survived: %d", len(cells))
	}
}

func TestReorderExercises(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()

	days, err := f.svc.ReplaceDays(ctx, f.coachID, f.program.ID, []string{"Push"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	a := f.addExercise(t, days[0].ID, "Bench press")
	b := f.addExercise(t, days[0].ID, "Incline dumbbell press")
	c := f.addExercise(t, days[0].ID, "Dips")

	if err := f.svc.ReorderExercises(ctx, f.coachID, days[0].ID, []primitive.ObjectID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got, _ := f.exRepo.GetByDayID(ctx, days[0].ID)
	wantOrder := []primitive.ObjectID{c.ID, a.ID, b.ID}
	for i := range got {
		if got[i].ID != wantOrder[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID.Hex(), wantOrder[i].Hex())
		}
		if got[i].Position != i+1 {
			t.Errorf("got[%d].Position = %d, want %d", i, got[i].Position, i+1)
		}
	}

	// A partial or padded id set is rejected.
	if err := f.svc.ReorderExercises(ctx, f.coachID, days[0].ID, []primitive.ObjectID{a.ID, b.ID}); err == nil {
		t.Errorf("short id set accepted")
	}
	// Duplicated ids hide a missing one at the same length.
	if err := f.svc.ReorderExercises(ctx, f.coachID, days[0].ID, []primitive.ObjectID{a.ID, a.ID, b.ID}); err == nil {
		t.Errorf("duplicated id set accepted")
	}
	// A foreign id is rejected even at the right length.
	if err := f.svc.ReorderExercises(ctx, f.coachID, days[0].ID, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()}); err == nil {
		t.Errorf("foreign id accepted")
	}
}

func TestGetStructure(t *testing.T) {
	f := newProgramFixture(t)
	ctx := context.Background()

	if _, err := f.svc.BootstrapColumns(ctx, f.coachID, f.program.ID); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	days, err := f.svc.ReplaceDays(ctx, f.coachID, f.program.ID, []string{"Push", "Pull"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	f.addExercise(t, days[0].ID, "Bench press")
	f.addExercise(t, days[0].ID, "Dips")

	structure, err := f.svc.GetStructure(ctx, f.coachID, f.program.ID)
	if err != nil {
		t.Fatalf("get structure: %v", err)
	}
	if structure.Plan.ID != f.program.ID {
		t.Errorf("plan = %s, want %s", structure.Plan.ID.Hex(), f.program.ID.Hex())
	}
	if len(structure.Columns) != 8 {
		t.Errorf("columns = %d, want 8", len(structure.Columns))
	}
	if len(structure.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(structure.Days))
	}
	if len(structure.Days[0].Exercises) != 2 {
		t.Errorf("day 1 exercises = %d, want 2", len(structure.Days[0].Exercises))
	}
	// A day without exercises carries an empty list, not nil.
	if structure.Days[1].Exercises == nil {
		t.Errorf("day 2 exercises is nil")
	}

	otherCoach := primitive.NewObjectID()
	if _, err := f.svc.GetStructure(ctx, otherCoach, f.program.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign structure err = %v, want ErrAccessDenied", err)
	}
}
