package domain

import "fmt"

// Action is an operation subject to authorization.
type Action string

const (
	ActionCreateEvent          Action = "event.create"
	ActionUpdateEvent          Action = "event.update"
	ActionDeleteEvent          Action = "event.delete"
	ActionCreateJob            Action = "job.create"
	ActionUpdateJob            Action = "job.update"
	ActionDeleteJob            Action = "job.delete"
	ActionApply                Action = "participation.apply"
	ActionCancelParticipation  Action = "participation.cancel"
	ActionReviewParticipation  Action = "participation.review"
	ActionConfirmParticipation Action = "participation.confirm"
)

// Role names the capacity in which an actor must act.
type Role string

const (
	RoleAnyUser            Role = "user"
	RoleParticipant        Role = "participant"
	RoleEventCreator       Role = "event_creator"
	RoleOrganisationMember Role = "organisation_member"
)

// OrganizerRule selects who counts as organizer of an event.
type OrganizerRule string

const (
	RuleCreatorOnly         OrganizerRule = "creator"
	RuleOrganisationMembers OrganizerRule = "organisation"
)

// CreatorOnly grants organizer rights to the event creator alone.
func CreatorOnly(actor Actor, event Event) bool {
	return actor.UserID == event.CreatorID
}

// OrganisationMembers grants organizer rights to every member of the event's
// organisation, or to the creator when the event has none.
func OrganisationMembers(actor Actor, event Event) bool {
	if event.OrganisationID == nil {
		return CreatorOnly(actor, event)
	}
	return actor.MemberOf(*event.OrganisationID)
}

// Allows applies the rule.
func (r OrganizerRule) Allows(actor Actor, event Event) bool {
	if r == RuleOrganisationMembers {
		return OrganisationMembers(actor, event)
	}
	return CreatorOnly(actor, event)
}

// Role reports the role the rule demands for event.
func (r OrganizerRule) Role(event Event) Role {
	if r == RuleOrganisationMembers && event.OrganisationID != nil {
		return RoleOrganisationMember
	}
	return RoleEventCreator
}

// ParseOrganizerRule maps configuration values to a rule.
func ParseOrganizerRule(s string) (OrganizerRule, error) {
	switch OrganizerRule(s) {
	case RuleCreatorOnly, RuleOrganisationMembers:
		return OrganizerRule(s), nil
	}
	return "", fmt.Errorf("unknown organizer rule %q", s)
}

// AuthorizationPolicy picks the organizer rule per entity type.
type AuthorizationPolicy struct {
	Event         OrganizerRule
	Job           OrganizerRule
	Participation OrganizerRule
}

// DefaultAuthorizationPolicy: organisation members manage events, only the
// event creator manages jobs and reviews participations.
func DefaultAuthorizationPolicy() AuthorizationPolicy {
	return AuthorizationPolicy{
		Event:         RuleOrganisationMembers,
		Job:           RuleCreatorOnly,
		Participation: RuleCreatorOnly,
	}
}

// Resource is the entity an action targets. Participant is set for
// participation actions.
type Resource struct {
	Event       Event
	Participant uint
}

// Authorize decides whether actor may perform action on res. It never
// reads state beyond its arguments.
func (p AuthorizationPolicy) Authorize(actor Actor, action Action, res Resource) error {
	var (
		allowed bool
		role    Role
	)
	switch action {
	case ActionCreateEvent:
		role = RoleAnyUser
		allowed = true
		if res.Event.OrganisationID != nil {
			role = RoleOrganisationMember
			allowed = actor.MemberOf(*res.Event.OrganisationID)
		}
	case ActionUpdateEvent, ActionDeleteEvent:
		role = p.Event.Role(res.Event)
		allowed = p.Event.Allows(actor, res.Event)
	case ActionCreateJob, ActionUpdateJob, ActionDeleteJob:
		role = p.Job.Role(res.Event)
		allowed = p.Job.Allows(actor, res.Event)
	case ActionApply, ActionCancelParticipation:
		role = RoleParticipant
		allowed = actor.UserID == res.Participant
	case ActionReviewParticipation, ActionConfirmParticipation:
		role = p.Participation.Role(res.Event)
		allowed = p.Participation.Allows(actor, res.Event)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if !allowed {
		return Unauthorized(action, role)
	}
	return nil
}

// Unauthorized builds the denial for action, naming the required role.
func Unauthorized(action Action, role Role) *Error {
	return WithMetadata(CodeUnauthorized,
		fmt.Sprintf("%s requires role %s", action, role),
		map[string]string{"action": string(action), "role": string(role)},
	)
}
