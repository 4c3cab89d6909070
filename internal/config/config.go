package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/happy2help/h2h-api/internal/domain"
)

const envPrefix = "H2H"

type AppConfig struct {
	API           *APIConfig           `mapstructure:"api"`
	Gin           *GinConfig           `mapstructure:"gin"`
	Postgres      *PostgresConfig      `mapstructure:"postgres"`
	Redis         *RedisConfig         `mapstructure:"redis"`
	Credit        *CreditConfig        `mapstructure:"credit"`
	Participation *ParticipationConfig `mapstructure:"participation"`
	Authorization *AuthorizationConfig `mapstructure:"authorization"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the connection string understood by the pgx driver.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

// RedisConfig enables the distributed job lock when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	LockTTL  string `mapstructure:"lock_ttl"`
}

func (c *RedisConfig) Enabled() bool {
	return c != nil && c.Addr != ""
}

type CreditConfig struct {
	EventCreationCost    int  `mapstructure:"event_creation_cost"`
	ParticipationReward  int  `mapstructure:"participation_reward"`
	AllowNegativeBalance bool `mapstructure:"allow_negative_balance"`
}

type ParticipationConfig struct {
	AllowReapplyAfterDecline bool `mapstructure:"allow_reapply_after_decline"`
}

type AuthorizationConfig struct {
	Event                string `mapstructure:"event_organizer"`
	Job                  string `mapstructure:"job_organizer"`
	ParticipationManager string `mapstructure:"participation_organizer"`
}

// Loader keeps the viper instance so the file can be watched after loading.
type Loader struct {
	v *viper.Viper
}

// Load reads the YAML file at path, applying H2H_* environment overrides.
func Load(path string) (*AppConfig, error) {
	l := NewLoader(path)
	return l.Load()
}

func NewLoader(path string) *Loader {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Loader{v: v}
}

func (l *Loader) Load() (*AppConfig, error) {
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return l.decode()
}

// Watch re-decodes the file on every change and hands the result to onChange.
// Decoding failures are logged and the previous configuration stays active.
func (l *Loader) Watch(onChange func(*AppConfig)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		conf, err := l.decode()
		if err != nil {
			zap.L().Error("failed to reload config", zap.String("file", e.Name), zap.Error(err))
			return
		}

		zap.L().Info("config reloaded", zap.String("file", e.Name), zap.Stringer("op", e.Op))
		onChange(conf)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*AppConfig, error) {
	var conf AppConfig
	if err := l.v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if _, err := conf.Policy(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "4000")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("redis.lock_ttl", "5s")

	def := domain.DefaultPolicy()
	v.SetDefault("credit.event_creation_cost", def.Credit.EventCreationCost)
	v.SetDefault("credit.participation_reward", def.Credit.ParticipationReward)
	v.SetDefault("credit.allow_negative_balance", def.Credit.AllowNegativeBalance)
	v.SetDefault("participation.allow_reapply_after_decline", def.Transitions.AllowReapplyAfterDecline)
	v.SetDefault("authorization.event_organizer", string(def.Authorization.Event))
	v.SetDefault("authorization.job_organizer", string(def.Authorization.Job))
	v.SetDefault("authorization.participation_organizer", string(def.Authorization.Participation))
}

// Policy converts the domain sections into the rules the services consult.
func (c *AppConfig) Policy() (domain.Policy, error) {
	p := domain.DefaultPolicy()

	if c.Credit != nil {
		if c.Credit.EventCreationCost < 0 || c.Credit.ParticipationReward < 0 {
			return domain.Policy{}, fmt.Errorf("credit amounts must not be negative")
		}
		p.Credit = domain.CreditPolicy{
			EventCreationCost:    c.Credit.EventCreationCost,
			ParticipationReward:  c.Credit.ParticipationReward,
			AllowNegativeBalance: c.Credit.AllowNegativeBalance,
		}
	}

	if c.Participation != nil {
		p.Transitions.AllowReapplyAfterDecline = c.Participation.AllowReapplyAfterDecline
	}

	if c.Authorization != nil {
		rules := []struct {
			raw string
			dst *domain.OrganizerRule
		}{
			{c.Authorization.Event, &p.Authorization.Event},
			{c.Authorization.Job, &p.Authorization.Job},
			{c.Authorization.ParticipationManager, &p.Authorization.Participation},
		}
		for _, r := range rules {
			if r.raw == "" {
				continue
			}
			rule, err := domain.ParseOrganizerRule(r.raw)
			if err != nil {
				return domain.Policy{}, fmt.Errorf("authorization -> %w", err)
			}
			*r.dst = rule
		}
	}

	return p, nil
}
