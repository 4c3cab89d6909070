package dao

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Names of the unique indexes whose violations carry domain meaning.
const (
	uniqueUserEmail        = "idx_users_email"
	uniqueOrganisationName = "idx_organisations_name"
	uniqueEventLocation    = "idx_events_location_id"
	uniqueJobEventName     = "idx_jobs_event_name"
	uniqueSkillName        = "idx_skills_name"
	uniqueParticipation    = "idx_participations_job_user"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}
