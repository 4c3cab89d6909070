package repository

import (
	"errors"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/repository/dao"
)

var notFoundEntities = []struct {
	err    error
	entity string
}{
	{dao.ErrUserNotFound, "user"},
	{dao.ErrOrganisationNotFound, "organisation"},
	{dao.ErrEventNotFound, "event"},
	{dao.ErrLocationNotFound, "location"},
	{dao.ErrJobNotFound, "job"},
	{dao.ErrParticipationNotFound, "participation"},
}

// translate turns dao sentinels into domain errors. id names the looked-up row.
func translate(err error, id uint) error {
	for _, nf := range notFoundEntities {
		if errors.Is(err, nf.err) {
			return domain.NotFoundError(nf.entity, id)
		}
	}

	switch {
	case errors.Is(err, dao.ErrJobNameExists):
		return domain.ErrJobNameTaken
	case errors.Is(err, dao.ErrLocationTaken):
		return domain.ErrLocationInUse
	case errors.Is(err, dao.ErrParticipationDuplicate):
		return domain.ErrDuplicateApplication
	case errors.Is(err, dao.ErrUserEmailExists), errors.Is(err, dao.ErrOrganisationNameExists):
		return domain.InvalidInputError("name", err.Error())
	}

	return err
}
