package request

import (
	"fmt"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/happy2help/h2h-api/internal/domain"
)

// Skill names are 1-50 characters without leading or trailing blanks.
const skillNamePattern = `^(?=\S)[\p{L}\p{N} .,'&+#/()-]{1,50}(?<=\S)$`

var skillNameExp = regexp2.MustCompile(skillNamePattern, regexp2.None)

func validateSkillNames(value interface{}) error {
	names, ok := value.([]string)
	if !ok {
		return fmt.Errorf("required_skills must be a list of names")
	}

	for _, name := range names {
		match, err := skillNameExp.MatchString(name)
		if err != nil {
			return err
		}
		if !match {
			return fmt.Errorf("invalid skill name %q", name)
		}
	}

	return nil
}

type JobRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	TotalPositions *int     `json:"total_positions,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
}

func (r JobRequest) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.TotalPositions, validation.Min(0)),
		validation.Field(&r.RequiredSkills, validation.By(validateSkillNames)),
	)
}

func (r JobRequest) ToSpec() domain.JobSpec {
	return domain.JobSpec{
		Name:           r.Name,
		Description:    r.Description,
		TotalPositions: r.TotalPositions,
		RequiredSkills: r.RequiredSkills,
	}
}

type UpdateJobRequest struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	TotalPositions *int    `json:"total_positions,omitempty"`
}

func (req *UpdateJobRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.TotalPositions, validation.Min(0)),
	)
}

func (req *UpdateJobRequest) ToPatch() domain.JobPatch {
	return domain.JobPatch{
		Name:           req.Name,
		Description:    req.Description,
		TotalPositions: req.TotalPositions,
	}
}
