package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/happy2help/h2h-api/internal/domain"
)

var errLocationAmbiguous = errors.New("give either location_id or location, not both")

type LocationRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r LocationRequest) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

type CreateEventRequest struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Start          time.Time        `json:"start" format:"date-time"`
	End            time.Time        `json:"end" format:"date-time"`
	OrganisationID *uint            `json:"organisation_id,omitempty"`
	LocationID     *uint            `json:"location_id,omitempty"`
	Location       *LocationRequest `json:"location,omitempty"`
	Jobs           []JobRequest     `json:"jobs,omitempty"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Start, validation.Required),
		validation.Field(&req.End, validation.Required),
		validation.Field(&req.LocationID, validation.NilOrNotEmpty),
		validation.Field(&req.Location),
		validation.Field(&req.Jobs),
	)
	if err != nil {
		return err
	}

	if req.LocationID != nil && req.Location != nil {
		return errLocationAmbiguous
	}

	return nil
}

func (req *CreateEventRequest) ToInput() domain.CreateEventInput {
	in := domain.CreateEventInput{
		Name:           req.Name,
		Description:    req.Description,
		Start:          req.Start,
		End:            req.End,
		OrganisationID: req.OrganisationID,
		LocationID:     req.LocationID,
	}
	if req.Location != nil {
		in.Location = &domain.LocationSpec{
			Name:      req.Location.Name,
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		}
	}
	for _, j := range req.Jobs {
		in.Jobs = append(in.Jobs, j.ToSpec())
	}

	return in
}

type UpdateEventRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Start       *time.Time `json:"start,omitempty" format:"date-time"`
	End         *time.Time `json:"end,omitempty" format:"date-time"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Start, validation.NilOrNotEmpty),
		validation.Field(&req.End, validation.NilOrNotEmpty),
	)
}

func (req *UpdateEventRequest) ToPatch() domain.EventPatch {
	return domain.EventPatch{
		Name:        req.Name,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
	}
}
