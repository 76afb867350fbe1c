package app

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Issuer string `env:"AUTH_ISSUER" envDefault:"bartab-chat"`

	// JWTSecret wins over JWTSecretFile. Outside dev one of them is required.
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTSecretFile string        `env:"JWT_SECRET_FILE"`
	JWTAlgorithm  string        `env:"JWT_ALGO" envDefault:"HS256"`
	AccessTTL     time.Duration `env:"JWT_TTL" envDefault:"60m"`
	RefreshWindow time.Duration `env:"JWT_REFRESH_TTL" envDefault:"20160m"`

	InvitationTTL        time.Duration `env:"INVITATION_TTL" envDefault:"168h"`
	InvitationMaxPending int           `env:"INVITATION_MAX_PENDING" envDefault:"50"`
	TeamMaxMembers       int           `env:"TEAM_MAX_MEMBERS" envDefault:"100"`

	DatabaseDriver string `env:"AUTH_DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseFile   string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	DatabaseURL    string `env:"AUTH_DATABASE_URL"`
	PepperFile     string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`

	RevocationBackend    string `env:"REVOCATION_BACKEND" envDefault:"database"`
	RevocationFailClosed bool   `env:"REVOCATION_FAIL_CLOSED" envDefault:"false"`

	ActivityLogEnabled   bool          `env:"ACTIVITY_LOG_ENABLED" envDefault:"true"`
	ActivityLogBuffer    int           `env:"ACTIVITY_LOG_BUFFER" envDefault:"256"`
	ActivityLogRetention time.Duration `env:"ACTIVITY_LOG_RETENTION" envDefault:"8760h"`

	// MQTTBrokerURL empty disables activity publishing.
	MQTTBrokerURL   string `env:"MQTT_BROKER_URL"`
	MQTTClientID    string `env:"MQTT_CLIENT_ID" envDefault:"bartab-auth"`
	MQTTTopicPrefix string `env:"MQTT_TOPIC_PREFIX" envDefault:"bartab/activity"`

	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	RevocationDatabase = "database"
	RevocationMemory   = "memory"
)

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return ParseConfig(env.Options{})
}

// ParseConfig parses the environment selected by opts. Tests pass
// Environment to avoid touching the real process env.
func ParseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if opts.FuncMap == nil {
		opts.FuncMap = map[reflect.Type]env.ParserFunc{}
	}
	opts.FuncMap[reflect.TypeOf(time.Duration(0))] = parseDuration

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the application cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.RevocationBackend {
	case RevocationDatabase, RevocationMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown REVOCATION_BACKEND %q", c.RevocationBackend))
	}

	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RefreshWindow < c.AccessTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must not be shorter than JWT_TTL"))
	}
	if c.InvitationTTL <= 0 {
		errs = append(errs, errors.New("INVITATION_TTL must be positive"))
	}
	if c.InvitationMaxPending <= 0 {
		errs = append(errs, errors.New("INVITATION_MAX_PENDING must be positive"))
	}
	if c.TeamMaxMembers <= 0 {
		errs = append(errs, errors.New("TEAM_MAX_MEMBERS must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev")
}

// parseDuration accepts Go durations ("90s", "1h") and bare integers, which
// are read as minutes.
func parseDuration(v string) (any, error) {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	minutes, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q", v)
	}
	return time.Duration(minutes) * time.Minute, nil
}
