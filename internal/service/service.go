package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/happy2help/h2h-api/internal/domain"
)

var (
	ErrUnauthorized         = domain.ErrUnauthorized
	ErrInvalidTransition    = domain.ErrInvalidTransition
	ErrJobUnavailable       = domain.ErrJobUnavailable
	ErrDuplicateApplication = domain.ErrDuplicateApplication
	ErrCapacityViolation    = domain.ErrCapacityViolation
	ErrLastJobViolation     = domain.ErrLastJobViolation
	ErrInsufficientCredit   = domain.ErrInsufficientCredit
	ErrNotFound             = domain.ErrNotFound
	ErrInvalidTimeRange     = domain.ErrInvalidTimeRange
	ErrInvalidInput         = domain.ErrInvalidInput
	ErrJobNameTaken         = domain.ErrJobNameTaken
	ErrLocationInUse        = domain.ErrLocationInUse
)

// Transactor runs fn atomically. Repository calls made with the ctx passed
// to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindByIDForUpdate(ctx context.Context, id uint) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
	LocationOwned(ctx context.Context, locationID uint) (bool, error)
	CreateLocation(ctx context.Context, spec domain.LocationSpec) (domain.Location, error)
	FindLocationByID(ctx context.Context, id uint) (domain.Location, error)
	DeleteLocation(ctx context.Context, id uint) error
}

type JobRepository interface {
	Create(ctx context.Context, job domain.Job) (domain.Job, error)
	FindByID(ctx context.Context, id uint) (domain.Job, error)
	FindByIDForUpdate(ctx context.Context, id uint) (domain.Job, error)
	FindByIDForShare(ctx context.Context, id uint) (domain.Job, error)
	FindByEventID(ctx context.Context, eventID uint, includeDeleted bool) ([]domain.Job, error)
	CountActive(ctx context.Context, eventID uint) (int, error)
	NameTaken(ctx context.Context, eventID uint, name string, exceptID uint) (bool, error)
	Update(ctx context.Context, job domain.Job) (domain.Job, error)
	Delete(ctx context.Context, id uint) error
	AttachSkills(ctx context.Context, jobID uint, names []string) ([]domain.Skill, error)
}

type ParticipationRepository interface {
	Create(ctx context.Context, p domain.Participation) (domain.Participation, error)
	FindByID(ctx context.Context, id uint) (domain.Participation, error)
	FindByIDForUpdate(ctx context.Context, id uint) (domain.Participation, error)
	FindByJobAndUser(ctx context.Context, jobID, userID uint) (domain.Participation, error)
	FindByJobID(ctx context.Context, jobID uint) ([]domain.Participation, error)
	UpdateState(ctx context.Context, p domain.Participation) (domain.Participation, error)
	Count(ctx context.Context, jobID uint, states ...domain.ParticipationState) (int, error)
	TransitionAll(ctx context.Context, jobID uint, from []domain.ParticipationState, to domain.ParticipationState, at time.Time) (int, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByIDForUpdate(ctx context.Context, id uint) (domain.User, error)
	AddCredit(ctx context.Context, id uint, delta int) (domain.User, error)
}

type OrganisationRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Organisation, error)
	MemberOrganisationIDs(ctx context.Context, userID uint) ([]uint, error)
}

// Policies holds the rules in force. Config reloads swap them atomically;
// each operation reads one consistent snapshot.
type Policies struct {
	current atomic.Pointer[domain.Policy]
}

func NewPolicies(p domain.Policy) *Policies {
	h := &Policies{}
	h.Store(p)

	return h
}

func (h *Policies) Load() domain.Policy {
	return *h.current.Load()
}

func (h *Policies) Store(p domain.Policy) {
	h.current.Store(&p)
}
