// Package config loads the CLI configuration from YAML with FORMKIT_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Draft backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Remote   Remote `yaml:"remote"`
	Draft    Draft  `yaml:"draft"`
	Log      Log    `yaml:"log"`
	Language string `yaml:"language" validate:"omitempty,oneof=en fa"`
}

type Remote struct {
	URL       string        `yaml:"url" validate:"required,url"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	RateLimit float64       `yaml:"rate_limit" validate:"gte=0"`
	Burst     int           `yaml:"burst" validate:"gte=0"`
}

type Draft struct {
	Backend string        `yaml:"backend" validate:"oneof=memory file badger sqlite postgres"`
	Path    string        `yaml:"path" validate:"draftpath"`
	DSN     string        `yaml:"dsn" validate:"required_if=Backend postgres"`
	Window  time.Duration `yaml:"window" validate:"gte=0"`
}

type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("draftpath", validateDraftPath)
}

// validateDraftPath requires a path for the backends that write to disk.
func validateDraftPath(fl validator.FieldLevel) bool {
	backend := fl.Parent().FieldByName("Backend").String()
	switch backend {
	case BackendFile, BackendBadger, BackendSQLite:
		return fl.Field().String() != ""
	}
	return true
}

// Default returns the configuration used when no file is given.
func Default() Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return Config{
		Remote: Remote{URL: "http://localhost:8000/api/", Timeout: 30 * time.Second},
		Draft:  Draft{Backend: BackendFile, Path: filepath.Join(dir, "formkit", "drafts"), Window: 700 * time.Millisecond},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Load reads path (when non-empty) over Default, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read the config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"FORMKIT_REMOTE_URL":    &c.Remote.URL,
		"FORMKIT_REMOTE_TOKEN":  &c.Remote.Token,
		"FORMKIT_DRAFT_BACKEND": &c.Draft.Backend,
		"FORMKIT_DRAFT_PATH":    &c.Draft.Path,
		"FORMKIT_DRAFT_DSN":     &c.Draft.DSN,
		"FORMKIT_LOG_LEVEL":     &c.Log.Level,
		"FORMKIT_LOG_FORMAT":    &c.Log.Format,
		"FORMKIT_LANGUAGE":      &c.Language,
	}
	for k, dst := range str {
		if v, ok := lookup(k); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup("FORMKIT_DRAFT_WINDOW"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FORMKIT_DRAFT_WINDOW: %w", err)
		}
		c.Draft.Window = d
	}
	if v, ok := lookup("FORMKIT_REMOTE_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FORMKIT_REMOTE_RATE_LIMIT: %w", err)
		}
		c.Remote.RateLimit = f
	}
	return nil
}

// Validate checks the struct tags and returns one error per failed field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
