package domain

import (
	"fmt"
	"strings"
	"time"
)

// ParticipationState is the workflow state of an application. The numeric
// values are part of the public API and must not change.
type ParticipationState int

const (
	StateParticipated ParticipationState = 1
	StateApplied      ParticipationState = 2
	StateDeclined     ParticipationState = 3
	StateAccepted     ParticipationState = 4
	StateCanceled     ParticipationState = 5
)

var stateNames = map[ParticipationState]string{
	StateParticipated: "participated",
	StateApplied:      "applied",
	StateDeclined:     "declined",
	StateAccepted:     "accepted",
	StateCanceled:     "canceled",
}

func (s ParticipationState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Valid reports whether s is a known state.
func (s ParticipationState) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// Terminal reports whether no transition may leave s.
func (s ParticipationState) Terminal() bool {
	return s == StateParticipated
}

// ParseParticipationState accepts a state name, case-insensitively.
func ParseParticipationState(name string) (ParticipationState, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, InvalidInputError("state", fmt.Sprintf("unknown participation state %q", name))
}

// Participation is a user's application to a job.
type Participation struct {
	ID        uint               `json:"id"`
	JobID     uint               `json:"job_id"`
	UserID    uint               `json:"user_id"`
	State     ParticipationState `json:"state"`
	RatingID  *uint              `json:"rating_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Holds reports whether the participation occupies or waits for a slot.
func (p Participation) Holds() bool {
	return p.State == StateApplied || p.State == StateAccepted
}

// TransitionRules carries the configurable parts of the state machine.
type TransitionRules struct {
	// AllowReapplyAfterDecline lets a declined participant apply again.
	AllowReapplyAfterDecline bool
}

func DefaultTransitionRules() TransitionRules {
	return TransitionRules{AllowReapplyAfterDecline: true}
}

// Allowed reports whether from -> to is in the transition table.
func (r TransitionRules) Allowed(from, to ParticipationState) bool {
	switch from {
	case StateApplied:
		return to == StateAccepted || to == StateDeclined || to == StateCanceled
	case StateAccepted:
		return to == StateDeclined || to == StateCanceled || to == StateParticipated
	case StateCanceled:
		return to == StateApplied
	case StateDeclined:
		return to == StateApplied && r.AllowReapplyAfterDecline
	}
	return false
}

// ActionFor returns the action a transition into target amounts to.
func ActionFor(target ParticipationState) (Action, error) {
	switch target {
	case StateApplied:
		return ActionApply, nil
	case StateCanceled:
		return ActionCancelParticipation, nil
	case StateAccepted, StateDeclined:
		return ActionReviewParticipation, nil
	case StateParticipated:
		return ActionConfirmParticipation, nil
	}
	return "", InvalidInputError("state", fmt.Sprintf("unknown participation state %d", int(target)))
}

// Transition moves p to target. changed is false when p already sits in a
// non-terminal target, which is a successful no-op.
func (r TransitionRules) Transition(p Participation, target ParticipationState, now time.Time) (updated Participation, changed bool, err error) {
	if !target.Valid() {
		return Participation{}, false, InvalidInputError("state", fmt.Sprintf("unknown participation state %d", int(target)))
	}
	if p.State == target && !target.Terminal() {
		return p, false, nil
	}
	if !r.Allowed(p.State, target) {
		return Participation{}, false, InvalidTransition(p.State, target)
	}
	p.State = target
	p.UpdatedAt = now.UTC()
	return p, true, nil
}

// InvalidTransition names the rejected state change.
func InvalidTransition(from, to ParticipationState) *Error {
	return WithMetadata(CodeInvalidTransition,
		fmt.Sprintf("participation cannot move from %s to %s", from, to),
		map[string]string{"from": from.String(), "to": to.String()},
	)
}
