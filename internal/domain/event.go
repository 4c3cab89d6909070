package domain

import (
	"strings"
	"time"
)

// Event is a scheduled help activity, optionally sponsored by an Organisation.
type Event struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	OrganisationID *uint     `json:"organisation_id,omitempty"`
	CreatorID      uint      `json:"creator_id"`
	LocationID     *uint     `json:"location_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasOrganisation reports whether the event is sponsored by an organisation.
func (e Event) HasOrganisation() bool {
	return e.OrganisationID != nil
}

// Location is exclusively owned by the event that references it.
type Location struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EventDetails is an event together with its location and live jobs.
type EventDetails struct {
	Event    Event     `json:"event"`
	Location *Location `json:"location,omitempty"`
	Jobs     []Job     `json:"jobs"`
}

// LocationSpec describes a location created together with its event.
type LocationSpec struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// JobSpec describes a job created together with its event.
type JobSpec struct {
	Name           string
	Description    string
	TotalPositions *int
	RequiredSkills []string
}

// CreateEventInput carries everything CreateEvent needs. Exactly one of
// LocationID and Location may be set; both nil means no location.
type CreateEventInput struct {
	Name           string
	Description    string
	Start          time.Time
	End            time.Time
	OrganisationID *uint
	LocationID     *uint
	Location       *LocationSpec
	Jobs           []JobSpec
}

// EventPatch lists the mutable event fields; nil leaves a field untouched.
type EventPatch struct {
	Name        *string
	Description *string
	Start       *time.Time
	End         *time.Time
}

// ValidateTimeRange enforces end >= start.
func ValidateTimeRange(start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidTimeRange
	}
	return nil
}

// NormalizeCreateEventInput trims and validates event input.
func NormalizeCreateEventInput(in CreateEventInput) (CreateEventInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return CreateEventInput{}, InvalidInputError("name", "must not be empty")
	}
	if in.LocationID != nil && in.Location != nil {
		return CreateEventInput{}, InvalidInputError("location", "give either a reference or a spec")
	}
	if err := ValidateTimeRange(in.Start, in.End); err != nil {
		return CreateEventInput{}, err
	}
	in.Jobs = append([]JobSpec(nil), in.Jobs...)
	for i := range in.Jobs {
		in.Jobs[i].Name = strings.TrimSpace(in.Jobs[i].Name)
		if in.Jobs[i].Name == "" {
			return CreateEventInput{}, InvalidInputError("jobs.name", "must not be empty")
		}
		if err := ValidateTotalPositions(in.Jobs[i].TotalPositions); err != nil {
			return CreateEventInput{}, err
		}
	}
	return in, nil
}

// DefaultJob is the job every event gets when no explicit job list is given.
func DefaultJob(name, description string) JobSpec {
	return JobSpec{Name: name, Description: description}
}

// ApplyPatch returns the event with the patch applied, re-validating the time range.
func (e Event) ApplyPatch(p EventPatch, now time.Time) (Event, error) {
	updated := e
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return Event{}, InvalidInputError("name", "must not be empty")
		}
		updated.Name = name
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}
	if p.Start != nil {
		updated.Start = *p.Start
	}
	if p.End != nil {
		updated.End = *p.End
	}
	if err := ValidateTimeRange(updated.Start, updated.End); err != nil {
		return Event{}, err
	}
	updated.UpdatedAt = now.UTC()
	return updated, nil
}
