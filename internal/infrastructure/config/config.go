package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const prefix = "HUESITE"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Server holds configuration for the HTTP site.
type Server struct {
	Addr            string        `envconfig:"ADDR" default:":8080" validate:"required"`
	Env             string        `envconfig:"ENV" default:"development" validate:"oneof=development production"`
	SiteURL         string        `envconfig:"SITE_URL" default:"http://localhost:8080" validate:"required,url"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s" validate:"gt=0"`
	StoreURL        string        `envconfig:"STORE_URL"`
	StoreAuthToken  string        `envconfig:"STORE_AUTH_TOKEN"`

	// Embedded so their variables keep the bare HUESITE_ prefix.
	Theme
	Log
	OTel
}

// Theme holds hue defaults.
type Theme struct {
	DefaultHue  int `envconfig:"DEFAULT_HUE" default:"233" validate:"min=0,max=359"`
	PresetCount int `envconfig:"PRESET_COUNT" default:"5" validate:"min=1,max=36,odd"`
	PresetStep  int `envconfig:"PRESET_STEP" default:"30" validate:"min=1,max=180"`
}

type Log struct {
	Level string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	Human bool   `envconfig:"LOG_HUMAN"`
}

// OTel holds the metrics exporter settings.
type OTel struct {
	Enabled  bool   `envconfig:"OTEL_ENABLED"`
	Endpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4317" validate:"required_if=Enabled true"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"true"`
}

func (s *Server) Production() bool {
	return s.Env == EnvProduction
}

// LoadServer loads server configuration from environment variables.
func LoadServer() (*Server, error) {
	var cfg Server
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Store holds configuration for the CLI commands that only touch the
// stylesheet store.
type Store struct {
	URL       string `envconfig:"STORE_URL" validate:"required"`
	AuthToken string `envconfig:"STORE_AUTH_TOKEN"`
}

// LoadStore loads store configuration. A non-empty override wins over the
// environment.
func LoadStore(override string) (*Store, error) {
	var cfg Store
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if override != "" {
		cfg.URL = override
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 != 0
	})
	return v
}

// Validate checks cfg and reports the first failing field.
func Validate(cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		fe := ves[0]
		return fmt.Errorf("invalid config: %s failed validation for tag '%s'", fieldName(fe), fe.Tag())
	}
	return fmt.Errorf("invalid config: %w", err)
}

func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}
