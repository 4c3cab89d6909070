package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy2help/h2h-api/internal/domain"
)

const sample = `
api:
  environment: test
  port: "8080"
  jwt_signing_key: secret
gin:
  mode: test
postgres:
  host: db
  port: "5432"
  user: u
  password: p
  db: h2h
credit:
  event_creation_cost: 7
  participation_reward: 3
  allow_negative_balance: true
participation:
  allow_reapply_after_decline: false
authorization:
  participation_organizer: organisation
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "test", conf.API.Environment)
	assert.Equal(t, "8080", conf.API.Port)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=h2h sslmode=disable", conf.Postgres.DSN())
	assert.False(t, conf.Redis.Enabled())

	p, err := conf.Policy()
	require.NoError(t, err)
	assert.Equal(t, domain.CreditPolicy{EventCreationCost: 7, ParticipationReward: 3, AllowNegativeBalance: true}, p.Credit)
	assert.False(t, p.Transitions.AllowReapplyAfterDecline)
	assert.Equal(t, domain.RuleOrganisationMembers, p.Authorization.Participation)
	assert.Equal(t, domain.RuleOrganisationMembers, p.Authorization.Event)
	assert.Equal(t, domain.RuleCreatorOnly, p.Authorization.Job)
}

func TestLoadDefaults(t *testing.T) {
	conf, err := Load(writeConfig(t, "api:\n  port: \"1\"\n"))
	require.NoError(t, err)

	p, err := conf.Policy()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPolicy(), p)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("H2H_CREDIT_EVENT_CREATION_COST", "25")

	conf, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, 25, conf.Credit.EventCreationCost)
}

func TestLoadRejectsUnknownOrganizerRule(t *testing.T) {
	_, err := Load(writeConfig(t, "authorization:\n  job_organizer: everyone\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestWatchReloadsPolicy(t *testing.T) {
	path := writeConfig(t, sample)

	l := NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)

	reloaded := make(chan *AppConfig, 16)
	l.Watch(func(conf *AppConfig) {
		select {
		case reloaded <- conf:
		default:
		}
	})

	updated := []byte("credit:\n  event_creation_cost: 42\n")
	require.NoError(t, os.WriteFile(path, updated, 0o600))

	// A write may surface as several events; wait for the final content.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case conf := <-reloaded:
			if conf.Credit.EventCreationCost == 42 {
				return
			}
		case <-timeout:
			t.Skip("no file system notification received")
		}
	}
}
