package service

import (
	"context"
	"sort"
	"time"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the service tests. They mirror the
// ordering guarantees of the Mongo implementations (position ascending for
// structural entities, effective-from descending for plans, date then
// creation time for sessions).

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- plans ---

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.plans[id] = &stored
	return id, nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, plan *domain.Plan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *plan
	stored.UpdatedAt = time.Now()
	r.plans[plan.ID] = &stored
	return nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) GetByClientAndType(ctx context.Context, clientID primitive.ObjectID, planType domain.PlanType) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, p := range r.plans {
		if p.ClientID == clientID && p.Type == planType {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveFrom.After(out[j].EffectiveFrom)
	})
	return out, nil
}

func (r *fakePlanRepo) ArchiveActive(ctx context.Context, clientID primitive.ObjectID, planType domain.PlanType, excludeID primitive.ObjectID) error {
	for _, p := range r.plans {
		if p.ClientID == clientID && p.Type == planType && p.Status == domain.PlanStatusActive && p.ID != excludeID {
			p.Status = domain.PlanStatusArchived
		}
	}
	return nil
}

// activeFor counts active plans for one (client, type) pair.
func (r *fakePlanRepo) activeFor(clientID primitive.ObjectID, planType domain.PlanType) []domain.Plan {
	var out []domain.Plan
	for _, p := range r.plans {
		if p.ClientID == clientID && p.Type == planType && p.Status == domain.PlanStatusActive {
			out = append(out, *p)
		}
	}
	return out
}

// --- program days ---

type fakeDayRepo struct {
	days map[primitive.ObjectID]*domain.Day
}

func newFakeDayRepo() *fakeDayRepo {
	return &fakeDayRepo{days: make(map[primitive.ObjectID]*domain.Day)}
}

func (r *fakeDayRepo) InsertMany(ctx context.Context, days []domain.Day) error {
	for _, d := range days {
		cp := d
		r.days[d.ID] = &cp
	}
	return nil
}

func (r *fakeDayRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Day, error) {
	day, ok := r.days[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *day
	return &cp, nil
}

func (r *fakeDayRepo) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Day, error) {
	var out []domain.Day
	for _, d := range r.days {
		if d.ProgramID == programID {
			out = append(out, *d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeDayRepo) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	for id, d := range r.days {
		if d.ProgramID == programID {
			delete(r.days, id)
		}
	}
	return nil
}

// --- program columns ---

type fakeColumnRepo struct {
	columns map[primitive.ObjectID]*domain.Column
}

func newFakeColumnRepo() *fakeColumnRepo {
	return &fakeColumnRepo{columns: make(map[primitive.ObjectID]*domain.Column)}
}

func (r *fakeColumnRepo) InsertMany(ctx context.Context, columns []domain.Column) error {
	for _, c := range columns {
		cp := c
		r.columns[c.ID] = &cp
	}
	return nil
}

func (r *fakeColumnRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Column, error) {
	column, ok := r.columns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *column
	return &cp, nil
}

func (r *fakeColumnRepo) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Column, error) {
	var out []domain.Column
	for _, c := range r.columns {
		if c.ProgramID == programID {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeColumnRepo) CountByProgramID(ctx context.Context, programID primitive.ObjectID) (int64, error) {
	var n int64
	for _, c := range r.columns {
		if c.ProgramID == programID {
			n++
		}
	}
	return n, nil
}

func (r *fakeColumnRepo) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	for id, c := range r.columns {
		if c.ProgramID == programID {
			delete(r.columns, id)
		}
	}
	return nil
}

// --- program exercises ---

type fakeExerciseRepo struct {
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	id := exercise.ID
	if id == primitive.NilObjectID {
		id = primitive.NewObjectID()
	}
	cp := *exercise
	cp.ID = id
	r.exercises[id] = &cp
	return id, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *exercise
	return &cp, nil
}

func (r *fakeExerciseRepo) GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, e := range r.exercises {
		if e.DayID == dayID {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeExerciseRepo) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, e := range r.exercises {
		if e.ProgramID == programID {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *exercise
	r.exercises[exercise.ID] = &cp
	return nil
}

func (r *fakeExerciseRepo) UpdatePosition(ctx context.Context, id primitive.ObjectID, position int) error {
	exercise, ok := r.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	exercise.Position = position
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func (r *fakeExerciseRepo) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	for id, e := range r.exercises {
		if e.ProgramID == programID {
			delete(r.exercises, id)
		}
	}
	return nil
}

// --- matrix cells ---

type cellCoord struct {
	exerciseID primitive.ObjectID
	columnID   primitive.ObjectID
	week       int
}

type fakeCellRepo struct {
	cells map[cellCoord]*domain.Cell
}

func newFakeCellRepo() *fakeCellRepo {
	return &fakeCellRepo{cells: make(map[cellCoord]*domain.Cell)}
}

func (r *fakeCellRepo) Upsert(ctx context.Context, cell *domain.Cell) error {
	coord := cellCoord{cell.ExerciseID, cell.ColumnID, cell.Week}
	cp := *cell
	if existing, ok := r.cells[coord]; ok {
		cp.ID = existing.ID
	} else if cp.ID == primitive.NilObjectID {
		cp.ID = primitive.NewObjectID()
	}
	cp.UpdatedAt = time.Now()
	r.cells[coord] = &cp
	cell.ID = cp.ID
	cell.UpdatedAt = cp.UpdatedAt
	return nil
}

func (r *fakeCellRepo) Get(ctx context.Context, exerciseID, columnID primitive.ObjectID, week int) (*domain.Cell, error) {
	cell, ok := r.cells[cellCoord{exerciseID, columnID, week}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *cell
	return &cp, nil
}

func (r *fakeCellRepo) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Cell, error) {
	var out []domain.Cell
	for _, c := range r.cells {
		if c.ProgramID == programID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCellRepo) InsertMany(ctx context.Context, cells []domain.Cell) error {
	for _, c := range cells {
		if c.ID == primitive.NilObjectID {
			c.ID = primitive.NewObjectID()
		}
		cp := c
		r.cells[cellCoord{c.ExerciseID, c.ColumnID, c.Week}] = &cp
	}
	return nil
}

func (r *fakeCellRepo) DeleteByExerciseIDs(ctx context.Context, exerciseIDs []primitive.ObjectID) error {
	drop := make(map[primitive.ObjectID]bool, len(exerciseIDs))
	for _, id := range exerciseIDs {
		drop[id] = true
	}
	for coord := range r.cells {
		if drop[coord.exerciseID] {
			delete(r.cells, coord)
		}
	}
	return nil
}

func (r *fakeCellRepo) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) error {
	for coord, c := range r.cells {
		if c.ProgramID == programID {
			delete(r.cells, coord)
		}
	}
	return nil
}

// --- diet structures ---

type fakeDietRepo struct {
	structures map[primitive.ObjectID]*domain.DietStructure
}

func newFakeDietRepo() *fakeDietRepo {
	return &fakeDietRepo{structures: make(map[primitive.ObjectID]*domain.DietStructure)}
}

func (r *fakeDietRepo) ReplaceForPlan(ctx context.Context, structure *domain.DietStructure) error {
	cp := *structure
	r.structures[structure.PlanID] = &cp
	return nil
}

func (r *fakeDietRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) (*domain.DietStructure, error) {
	structure, ok := r.structures[planID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *structure
	return &cp, nil
}

func (r *fakeDietRepo) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	delete(r.structures, planID)
	return nil
}

// --- sessions ---

type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.Session
	seq      int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	r.seq++
	cp := *session
	cp.ID = id
	// Strictly increasing creation times give a deterministic within-date
	// tiebreak, like the real clock would.
	cp.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	cp.UpdatedAt = cp.CreatedAt
	r.sessions[id] = &cp
	session.ID = id
	session.CreatedAt = cp.CreatedAt
	return id, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *domain.Session) error {
	stored, ok := r.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *session
	cp.CreatedAt = stored.CreatedAt
	cp.UpdatedAt = time.Now()
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) GetByClientAndDateRange(ctx context.Context, clientID primitive.ObjectID, start, end time.Time) ([]domain.Session, error) {
	var out []domain.Session
	for _, s := range r.sessions {
		if s.ClientID != clientID {
			continue
		}
		if s.Date.Before(start) || s.Date.After(end) {
			continue
		}
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// --- users ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *user
	cp.ID = id
	cp.CreatedAt = time.Now()
	r.users[id] = &cp
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error {
	coach, ok := r.users[coachID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range coach.ClientIDs {
		if id == clientID {
			return nil
		}
	}
	coach.ClientIDs = append(coach.ClientIDs, clientID)
	return nil
}

func (r *fakeUserRepo) GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, *u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *fakeUserRepo) SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error {
	client, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	client.CoachID = &coachID
	return nil
}

// --- attachments ---

type fakeAttachmentRepo struct {
	attachments map[primitive.ObjectID]*domain.Attachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[primitive.ObjectID]*domain.Attachment)}
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *attachment
	cp.ID = id
	r.attachments[id] = &cp
	return id, nil
}

func (r *fakeAttachmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Attachment, error) {
	attachment, ok := r.attachments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *attachment
	return &cp, nil
}

func (r *fakeAttachmentRepo) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range r.attachments {
		if a.SessionID == sessionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// --- storage ---

type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}
