package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
)

// passthroughTx satisfies TxRunner without a database; the in-memory fakes
// ignore the executor entirely.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]*models.Tournament

	// afterGet mutates stored state between a read and the following CAS,
	// for exercising the stale-state path.
	afterGet func()
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{nextID: 1, rows: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	copied := *t
	r.rows[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	row, ok := r.rows[id]
	var copied models.Tournament
	if ok {
		copied = *row
	}
	r.mu.Unlock()
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	if r.afterGet != nil {
		r.afterGet()
	}
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Tournament, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateDetails(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	row.Name = t.Name
	row.Description = t.Description
	row.StartDate = t.StartDate
	row.EndDate = t.EndDate
	row.Location = t.Location
	row.FormatConfigJSON = t.FormatConfigJSON
	row.RewardPolicyJSON = t.RewardPolicyJSON
	return nil
}

func (r *fakeTournamentRepo) UpdateStatusCAS(ctx context.Context, exec repositories.SQLExecutor, id int, expected, next models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.Status != expected {
		return repositories.ErrTournamentStaleState
	}
	row.Status = next
	return nil
}

func (r *fakeTournamentRepo) SetInstructor(ctx context.Context, exec repositories.SQLExecutor, id int, instructorID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	row.InstructorID = instructorID
	return nil
}

func (r *fakeTournamentRepo) SetEnrollmentSnapshot(ctx context.Context, exec repositories.SQLExecutor, id int, snapshotJSON string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.EnrollmentSnapshotJSON != nil {
		return repositories.ErrSnapshotAlreadySet
	}
	row.EnrollmentSnapshotJSON = &snapshotJSON
	return nil
}

func (r *fakeTournamentRepo) setStatus(id int, status models.TournamentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[id].Status = status
}

type fakeTransitionRepo struct {
	mu     sync.Mutex
	nextID int
	rows   []models.StatusTransitionRecord
}

func newFakeTransitionRepo() *fakeTransitionRepo {
	return &fakeTransitionRepo{nextID: 1}
}

func (r *fakeTransitionRepo) Append(ctx context.Context, exec repositories.SQLExecutor, record *models.StatusTransitionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.nextID
	r.nextID++
	r.rows = append(r.rows, *record)
	return nil
}

func (r *fakeTransitionRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.StatusTransitionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.StatusTransitionRecord, 0)
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].TournamentID == tournamentID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *fakeTransitionRepo) Latest(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.StatusTransitionRecord, error) {
	records, _ := r.ListByTournament(ctx, tournamentID)
	if len(records) == 0 {
		return nil, repositories.ErrTransitionRecordNotFound
	}
	return &records[0], nil
}

type fakeSessionRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{nextID: 1, rows: make(map[int]*models.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	copied := *s
	r.rows[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Session, 0)
	for _, s := range r.rows {
		if s.TournamentID == tournamentID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSessionRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.rows {
		if s.TournamentID == tournamentID && s.Status != models.SessionCancelled {
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) SetInstructor(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, instructorID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.TournamentID == tournamentID && s.Status == models.SessionScheduled {
			id := instructorID
			s.InstructorID = &id
		}
	}
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeEnrollmentRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]*models.Enrollment
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{nextID: 1, rows: make(map[int]*models.Enrollment)}
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, e *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	maxSeed := 0
	for _, row := range r.rows {
		if row.TournamentID == e.TournamentID {
			if row.UserID == e.UserID {
				return repositories.ErrEnrollmentConflict
			}
			if row.Seed > maxSeed {
				maxSeed = row.Seed
			}
		}
	}
	e.ID = r.nextID
	r.nextID++
	e.Seed = maxSeed + 1
	copied := *e
	r.rows[e.ID] = &copied
	return nil
}

func (r *fakeEnrollmentRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, status *models.EnrollmentStatus) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Enrollment, 0)
	for _, e := range r.rows {
		if e.TournamentID != tournamentID {
			continue
		}
		if status != nil && e.Status != *status {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

func (r *fakeEnrollmentRepo) CountConfirmed(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	confirmed := models.EnrollmentConfirmed
	rows, _ := r.ListByTournament(ctx, exec, tournamentID, &confirmed)
	return len(rows), nil
}

func (r *fakeEnrollmentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.EnrollmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrEnrollmentNotFound
	}
	row.Status = status
	return nil
}

func (r *fakeEnrollmentRepo) SetGroupIndex(ctx context.Context, exec repositories.SQLExecutor, id int, groupIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrEnrollmentNotFound
	}
	gi := groupIndex
	row.GroupIndex = &gi
	return nil
}

type fakeMatchRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, rows: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	copied := *m
	r.rows[m.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, phase *models.MatchPhase) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range r.rows {
		if m.TournamentID != tournamentID {
			continue
		}
		if phase != nil && m.Phase != *phase {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Phase != b.Phase {
			return a.Phase < b.Phase
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.OrderInRound < b.OrderInRound
	})
	return out, nil
}

func (r *fakeMatchRepo) SetParticipants(ctx context.Context, exec repositories.SQLExecutor, id int, p1, p2 *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	row.Participant1ID = p1
	row.Participant2ID = p2
	return nil
}

func (r *fakeMatchRepo) SetParticipantSlot(ctx context.Context, exec repositories.SQLExecutor, id int, slot int, participantID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	pid := participantID
	switch slot {
	case 1:
		row.Participant1ID = &pid
	case 2:
		row.Participant2ID = &pid
	default:
		return fmt.Errorf("invalid participant slot %d", slot)
	}
	return nil
}

func (r *fakeMatchRepo) SetNextMatchInfo(ctx context.Context, exec repositories.SQLExecutor, id int, nextMatchID, nextSlot *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	row.NextMatchID = nextMatchID
	row.NextSlot = nextSlot
	return nil
}

func (r *fakeMatchRepo) SetResult(ctx context.Context, exec repositories.SQLExecutor, id int, resultJSON string, winnerID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	raw := resultJSON
	row.ResultRaw = &raw
	row.WinnerID = winnerID
	row.Status = models.MatchCompleted
	return nil
}

type fakeRankingRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Ranking
}

func newFakeRankingRepo() *fakeRankingRepo {
	return &fakeRankingRepo{rows: make(map[string]*models.Ranking)}
}

func rankingKey(tournamentID, participantID int) string {
	return fmt.Sprintf("%d/%d", tournamentID, participantID)
}

func (r *fakeRankingRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, ranking *models.Ranking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *ranking
	r.rows[rankingKey(ranking.TournamentID, ranking.ParticipantID)] = &copied
	return nil
}

func (r *fakeRankingRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Ranking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Ranking, 0)
	for _, rk := range r.rows {
		if rk.TournamentID == tournamentID {
			out = append(out, *rk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (r *fakeRankingRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, rk := range r.rows {
		if rk.TournamentID == tournamentID {
			delete(r.rows, key)
		}
	}
	return nil
}

type fakeLedgerRepo struct {
	mu     sync.Mutex
	nextID int
	byKey  map[string]*models.RewardLedgerEntry

	// hideFromCount makes CountByTournament report zero while keys stay in
	// place, so tests can drive the unique-index collision path directly.
	hideFromCount bool
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{nextID: 1, byKey: make(map[string]*models.RewardLedgerEntry)}
}

func (r *fakeLedgerRepo) InsertBatch(ctx context.Context, exec repositories.SQLExecutor, entries []models.RewardLedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staged := make(map[string]*models.RewardLedgerEntry, len(entries))
	for i := range entries {
		e := entries[i]
		if _, dup := r.byKey[e.IdempotencyKey]; dup {
			return fmt.Errorf("%w: %s", repositories.ErrRewardAlreadyGranted, e.IdempotencyKey)
		}
		if _, dup := staged[e.IdempotencyKey]; dup {
			return fmt.Errorf("%w: %s", repositories.ErrRewardAlreadyGranted, e.IdempotencyKey)
		}
		e.ID = r.nextID
		r.nextID++
		staged[e.IdempotencyKey] = &e
	}
	for key, e := range staged {
		r.byKey[key] = e
	}
	return nil
}

func (r *fakeLedgerRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideFromCount {
		return 0, nil
	}
	count := 0
	for _, e := range r.byKey {
		if e.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLedgerRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.RewardLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.RewardLedgerEntry, 0)
	for _, e := range r.byKey {
		if e.TournamentID == tournamentID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IdempotencyKey < out[j].IdempotencyKey })
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, rows: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.rows[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}
