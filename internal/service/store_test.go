package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/happy2help/h2h-api/internal/domain"
)

var errInjected = errors.New("injected failure")

type txKey struct{}

// fakeStore keeps every entity in memory. Transactions are serialized and
// roll back to a snapshot when fn fails.
type fakeStore struct {
	txMu sync.Mutex

	mu             sync.Mutex
	nextID         uint
	users          map[uint]domain.User
	orgs           map[uint]domain.Organisation
	members        map[uint][]uint
	events         map[uint]domain.Event
	locations      map[uint]domain.Location
	jobs           map[uint]domain.Job
	skills         map[string]domain.Skill
	participations map[uint]domain.Participation
	fail           map[string]error
	calls          []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:          map[uint]domain.User{},
		orgs:           map[uint]domain.Organisation{},
		members:        map[uint][]uint{},
		events:         map[uint]domain.Event{},
		locations:      map[uint]domain.Location{},
		jobs:           map[uint]domain.Job{},
		skills:         map[string]domain.Skill{},
		participations: map[uint]domain.Participation{},
		fail:           map[string]error{},
	}
}

type snapshot struct {
	nextID         uint
	users          map[uint]domain.User
	events         map[uint]domain.Event
	locations      map[uint]domain.Location
	jobs           map[uint]domain.Job
	skills         map[string]domain.Skill
	participations map[uint]domain.Participation
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

func (s *fakeStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return snapshot{
		nextID:         s.nextID,
		users:          cloneMap(s.users),
		events:         cloneMap(s.events),
		locations:      cloneMap(s.locations),
		jobs:           cloneMap(s.jobs),
		skills:         cloneMap(s.skills),
		participations: cloneMap(s.participations),
	}
}

func (s *fakeStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = snap.nextID
	s.users = snap.users
	s.events = snap.events
	s.locations = snap.locations
	s.jobs = snap.jobs
	s.skills = snap.skills
	s.participations = snap.participations
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// failOn makes the named operation return err until cleared.
func (s *fakeStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail[op] = err
}

// calledOps returns the operations run so far, in order.
func (s *fakeStore) calledOps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

// opIndex returns the position of the first call to op, or -1.
func opIndex(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func (s *fakeStore) resetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = nil
}

// lock takes the data mutex, records op and reports any failure injected
// for it.
func (s *fakeStore) lock(op string) error {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	if err := s.fail[op]; err != nil {
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addUser(credit int) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.users[id] = domain.User{ID: id, Name: "user", CreditPoints: credit}
	return id
}

func (s *fakeStore) addOrganisation(admin uint, members ...uint) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.orgs[id] = domain.Organisation{ID: id, Name: "org", AdminID: admin}
	for _, u := range append([]uint{admin}, members...) {
		s.members[u] = append(s.members[u], id)
	}
	return id
}

func (s *fakeStore) user(id uint) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.users[id]
}

func (s *fakeStore) job(id uint) (domain.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	return j, ok
}

func (s *fakeStore) participation(id uint) domain.Participation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.participations[id]
}

func (s *fakeStore) counts() (events, locations, jobs, participations int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.events), len(s.locations), len(s.jobs), len(s.participations)
}

type fakeUsers struct{ *fakeStore }

func (f fakeUsers) FindByID(_ context.Context, id uint) (domain.User, error) {
	if err := f.lock("users.FindByID"); err != nil {
		return domain.User{}, err
	}
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError("user", id)
	}
	return u, nil
}

func (f fakeUsers) FindByIDForUpdate(ctx context.Context, id uint) (domain.User, error) {
	return f.FindByID(ctx, id)
}

func (f fakeUsers) AddCredit(_ context.Context, id uint, delta int) (domain.User, error) {
	if err := f.lock("users.AddCredit"); err != nil {
		return domain.User{}, err
	}
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError("user", id)
	}
	u.CreditPoints += delta
	f.users[id] = u
	return u, nil
}

type fakeOrgs struct{ *fakeStore }

func (f fakeOrgs) FindByID(_ context.Context, id uint) (domain.Organisation, error) {
	if err := f.lock("orgs.FindByID"); err != nil {
		return domain.Organisation{}, err
	}
	defer f.mu.Unlock()

	o, ok := f.orgs[id]
	if !ok {
		return domain.Organisation{}, domain.NotFoundError("organisation", id)
	}
	return o, nil
}

func (f fakeOrgs) MemberOrganisationIDs(_ context.Context, userID uint) ([]uint, error) {
	if err := f.lock("orgs.MemberOrganisationIDs"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	return append([]uint(nil), f.members[userID]...), nil
}

type fakeEvents struct{ *fakeStore }

func (f fakeEvents) Create(_ context.Context, e domain.Event) (domain.Event, error) {
	if err := f.lock("events.Create"); err != nil {
		return domain.Event{}, err
	}
	defer f.mu.Unlock()

	if e.LocationID != nil {
		for _, other := range f.events {
			if other.LocationID != nil && *other.LocationID == *e.LocationID {
				return domain.Event{}, domain.ErrLocationInUse
			}
		}
	}
	e.ID = f.id()
	f.events[e.ID] = e
	return e, nil
}

func (f fakeEvents) FindByID(_ context.Context, id uint) (domain.Event, error) {
	if err := f.lock("events.FindByID"); err != nil {
		return domain.Event{}, err
	}
	defer f.mu.Unlock()

	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, domain.NotFoundError("event", id)
	}
	return e, nil
}

func (f fakeEvents) FindByIDForUpdate(_ context.Context, id uint) (domain.Event, error) {
	if err := f.lock("events.FindByIDForUpdate"); err != nil {
		return domain.Event{}, err
	}
	defer f.mu.Unlock()

	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, domain.NotFoundError("event", id)
	}
	return e, nil
}

func (f fakeEvents) Update(_ context.Context, e domain.Event) (domain.Event, error) {
	if err := f.lock("events.Update"); err != nil {
		return domain.Event{}, err
	}
	defer f.mu.Unlock()

	if _, ok := f.events[e.ID]; !ok {
		return domain.Event{}, domain.NotFoundError("event", e.ID)
	}
	f.events[e.ID] = e
	return e, nil
}

func (f fakeEvents) Delete(_ context.Context, id uint) error {
	if err := f.lock("events.Delete"); err != nil {
		return err
	}
	defer f.mu.Unlock()

	if _, ok := f.events[id]; !ok {
		return domain.NotFoundError("event", id)
	}
	delete(f.events, id)
	return nil
}

func (f fakeEvents) LocationOwned(_ context.Context, locationID uint) (bool, error) {
	if err := f.lock("events.LocationOwned"); err != nil {
		return false, err
	}
	defer f.mu.Unlock()

	for _, e := range f.events {
		if e.LocationID != nil && *e.LocationID == locationID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeEvents) CreateLocation(_ context.Context, spec domain.LocationSpec) (domain.Location, error) {
	if err := f.lock("events.CreateLocation"); err != nil {
		return domain.Location{}, err
	}
	defer f.mu.Unlock()

	l := domain.Location{ID: f.id(), Name: spec.Name, Latitude: spec.Latitude, Longitude: spec.Longitude}
	f.locations[l.ID] = l
	return l, nil
}

func (f fakeEvents) FindLocationByID(_ context.Context, id uint) (domain.Location, error) {
	if err := f.lock("events.FindLocationByID"); err != nil {
		return domain.Location{}, err
	}
	defer f.mu.Unlock()

	l, ok := f.locations[id]
	if !ok {
		return domain.Location{}, domain.NotFoundError("location", id)
	}
	return l, nil
}

func (f fakeEvents) DeleteLocation(_ context.Context, id uint) error {
	if err := f.lock("events.DeleteLocation"); err != nil {
		return err
	}
	defer f.mu.Unlock()

	delete(f.locations, id)
	return nil
}

func (f fakeEvents) addLocation(name string) uint {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.id()
	f.locations[id] = domain.Location{ID: id, Name: name}
	return id
}

type fakeJobs struct{ *fakeStore }

func (f fakeJobs) Create(_ context.Context, j domain.Job) (domain.Job, error) {
	if err := f.lock("jobs.Create"); err != nil {
		return domain.Job{}, err
	}
	defer f.mu.Unlock()

	for _, other := range f.jobs {
		if other.EventID == j.EventID && other.Name == j.Name && !other.IsDeleted() {
			return domain.Job{}, domain.ErrJobNameTaken
		}
	}
	j.ID = f.id()
	f.jobs[j.ID] = j
	return j, nil
}

func (f fakeJobs) FindByID(_ context.Context, id uint) (domain.Job, error) {
	return f.find("jobs.FindByID", id)
}

func (f fakeJobs) FindByIDForUpdate(_ context.Context, id uint) (domain.Job, error) {
	return f.find("jobs.FindByIDForUpdate", id)
}

func (f fakeJobs) FindByIDForShare(_ context.Context, id uint) (domain.Job, error) {
	return f.find("jobs.FindByIDForShare", id)
}

func (f fakeJobs) find(op string, id uint) (domain.Job, error) {
	if err := f.lock(op); err != nil {
		return domain.Job{}, err
	}
	defer f.mu.Unlock()

	j, ok := f.jobs[id]
	if !ok {
		return domain.Job{}, domain.NotFoundError("job", id)
	}
	return j, nil
}

func (f fakeJobs) FindByEventID(_ context.Context, eventID uint, includeDeleted bool) ([]domain.Job, error) {
	if err := f.lock("jobs.FindByEventID"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	var out []domain.Job
	for _, j := range f.jobs {
		if j.EventID == eventID && (includeDeleted || !j.IsDeleted()) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (f fakeJobs) CountActive(_ context.Context, eventID uint) (int, error) {
	if err := f.lock("jobs.CountActive"); err != nil {
		return 0, err
	}
	defer f.mu.Unlock()

	n := 0
	for _, j := range f.jobs {
		if j.EventID == eventID && !j.IsDeleted() {
			n++
		}
	}
	return n, nil
}

func (f fakeJobs) NameTaken(_ context.Context, eventID uint, name string, exceptID uint) (bool, error) {
	if err := f.lock("jobs.NameTaken"); err != nil {
		return false, err
	}
	defer f.mu.Unlock()

	for _, j := range f.jobs {
		if j.EventID == eventID && j.Name == name && j.ID != exceptID && !j.IsDeleted() {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeJobs) Update(_ context.Context, j domain.Job) (domain.Job, error) {
	if err := f.lock("jobs.Update"); err != nil {
		return domain.Job{}, err
	}
	defer f.mu.Unlock()

	old, ok := f.jobs[j.ID]
	if !ok {
		return domain.Job{}, domain.NotFoundError("job", j.ID)
	}
	j.RequiredSkills = old.RequiredSkills
	f.jobs[j.ID] = j
	return j, nil
}

func (f fakeJobs) Delete(_ context.Context, id uint) error {
	if err := f.lock("jobs.Delete"); err != nil {
		return err
	}
	defer f.mu.Unlock()

	if _, ok := f.jobs[id]; !ok {
		return domain.NotFoundError("job", id)
	}
	delete(f.jobs, id)
	return nil
}

func (f fakeJobs) AttachSkills(_ context.Context, jobID uint, names []string) ([]domain.Skill, error) {
	if err := f.lock("jobs.AttachSkills"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	j, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.NotFoundError("job", jobID)
	}
	skills := make([]domain.Skill, 0, len(names))
	for _, name := range names {
		sk, ok := f.skills[name]
		if !ok {
			sk = domain.Skill{ID: f.id(), Name: name}
			f.skills[name] = sk
		}
		skills = append(skills, sk)
	}
	j.RequiredSkills = skills
	f.jobs[jobID] = j
	return skills, nil
}

type fakeParticipations struct{ *fakeStore }

func (f fakeParticipations) Create(_ context.Context, p domain.Participation) (domain.Participation, error) {
	if err := f.lock("participations.Create"); err != nil {
		return domain.Participation{}, err
	}
	defer f.mu.Unlock()

	for _, other := range f.participations {
		if other.JobID == p.JobID && other.UserID == p.UserID {
			return domain.Participation{}, domain.ErrDuplicateApplication
		}
	}
	p.ID = f.id()
	f.participations[p.ID] = p
	return p, nil
}

func (f fakeParticipations) FindByID(_ context.Context, id uint) (domain.Participation, error) {
	return f.find("participations.FindByID", id)
}

func (f fakeParticipations) FindByIDForUpdate(_ context.Context, id uint) (domain.Participation, error) {
	return f.find("participations.FindByIDForUpdate", id)
}

func (f fakeParticipations) find(op string, id uint) (domain.Participation, error) {
	if err := f.lock(op); err != nil {
		return domain.Participation{}, err
	}
	defer f.mu.Unlock()

	p, ok := f.participations[id]
	if !ok {
		return domain.Participation{}, domain.NotFoundError("participation", id)
	}
	return p, nil
}

func (f fakeParticipations) FindByJobAndUser(_ context.Context, jobID, userID uint) (domain.Participation, error) {
	if err := f.lock("participations.FindByJobAndUser"); err != nil {
		return domain.Participation{}, err
	}
	defer f.mu.Unlock()

	for _, p := range f.participations {
		if p.JobID == jobID && p.UserID == userID {
			return p, nil
		}
	}
	return domain.Participation{}, domain.NotFoundError("participation", jobID)
}

func (f fakeParticipations) FindByJobID(_ context.Context, jobID uint) ([]domain.Participation, error) {
	if err := f.lock("participations.FindByJobID"); err != nil {
		return nil, err
	}
	defer f.mu.Unlock()

	var out []domain.Participation
	for _, p := range f.participations {
		if p.JobID == jobID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (f fakeParticipations) UpdateState(_ context.Context, p domain.Participation) (domain.Participation, error) {
	if err := f.lock("participations.UpdateState"); err != nil {
		return domain.Participation{}, err
	}
	defer f.mu.Unlock()

	stored, ok := f.participations[p.ID]
	if !ok {
		return domain.Participation{}, domain.NotFoundError("participation", p.ID)
	}
	stored.State = p.State
	stored.UpdatedAt = p.UpdatedAt
	f.participations[p.ID] = stored
	return stored, nil
}

func (f fakeParticipations) Count(_ context.Context, jobID uint, states ...domain.ParticipationState) (int, error) {
	if err := f.lock("participations.Count"); err != nil {
		return 0, err
	}
	defer f.mu.Unlock()

	n := 0
	for _, p := range f.participations {
		if p.JobID == jobID && (len(states) == 0 || hasState(states, p.State)) {
			n++
		}
	}
	return n, nil
}

func (f fakeParticipations) TransitionAll(
	_ context.Context,
	jobID uint,
	from []domain.ParticipationState,
	to domain.ParticipationState,
	at time.Time,
) (int, error) {
	if err := f.lock("participations.TransitionAll"); err != nil {
		return 0, err
	}
	defer f.mu.Unlock()

	n := 0
	for id, p := range f.participations {
		if p.JobID == jobID && hasState(from, p.State) {
			p.State = to
			p.UpdatedAt = at
			f.participations[id] = p
			n++
		}
	}
	return n, nil
}

func hasState(states []domain.ParticipationState, s domain.ParticipationState) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}
