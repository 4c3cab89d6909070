package request

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/happy2help/h2h-api/internal/domain"
)

// State accepts either the numeric wire value or the state name.
type State domain.ParticipationState

func (s *State) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = State(n)
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("state must be a number or a name")
	}

	parsed, err := domain.ParseParticipationState(name)
	if err != nil {
		return err
	}
	*s = State(parsed)

	return nil
}

type UpdateParticipationRequest struct {
	State State `json:"state" swaggertype:"integer" enums:"1,2,3,4,5"`
}

func (req *UpdateParticipationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.State, validation.Required, validation.By(func(value interface{}) error {
			s, _ := value.(State)
			if !domain.ParticipationState(s).Valid() {
				return fmt.Errorf("unknown participation state %d", int(s))
			}
			return nil
		})),
	)
}
