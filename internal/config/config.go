package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the client configuration. Sources are applied in order
// defaults, JSON file, command-line flags, environment; later ones win.
type Config struct {
	APIBaseURL     string        `json:"api_base_url" envconfig:"API_BASE_URL" validate:"required,url"`
	ServerAddress  string        `json:"server_address" envconfig:"SERVER_ADDRESS" validate:"required"`
	Language       string        `json:"language" envconfig:"UI_LANG" validate:"oneof=es en"`
	PageTemplate   string        `json:"page_template" envconfig:"PAGE_TEMPLATE" validate:"omitempty,file"`
	RequestTimeout time.Duration `json:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gte=0"`
	LogLevel       string        `json:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=trace debug info warn error disabled"`
	Output         string        `json:"output" envconfig:"OUTPUT_FORMAT" validate:"oneof=text html"`
	AssumeYes      bool          `json:"assume_yes" envconfig:"ASSUME_YES"`
	SentryDSN      string        `json:"sentry_dsn" envconfig:"SENTRY_DSN" validate:"omitempty,url"`
	ConfigPath     string        `json:"-" envconfig:"CONFIG"`

	// Args are the positional arguments left after the flags.
	Args []string `json:"-" ignored:"true"`
}

// fileConfig mirrors Config for the JSON file. Pointers tell absent keys apart.
type fileConfig struct {
	APIBaseURL     *string `json:"api_base_url"`
	ServerAddress  *string `json:"server_address"`
	Language       *string `json:"language"`
	PageTemplate   *string `json:"page_template"`
	RequestTimeout *string `json:"request_timeout"`
	LogLevel       *string `json:"log_level"`
	Output         *string `json:"output"`
	AssumeYes      *bool   `json:"assume_yes"`
	SentryDSN      *string `json:"sentry_dsn"`
}

// DotEnvPath is the optional file loaded into the environment before it is read.
var DotEnvPath = ".env"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:    "http://localhost:5000",
		ServerAddress: ":8081",
		Language:      "es",
		LogLevel:      "info",
		Output:        "text",
	}
}

// NewConfig builds the configuration from args (without the program name)
// and the environment.
func NewConfig(name string, args []string, output io.Writer) (*Config, error) {
	if err := godotenv.Load(DotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvPath, err)
	}

	cfg := Default()
	flags := *cfg

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fset.SetOutput(output)
	}

	fset.StringVar(&flags.APIBaseURL, "u", cfg.APIBaseURL, "Backend API base URL (e.g. http://localhost:5000)")
	fset.StringVar(&flags.ServerAddress, "a", cfg.ServerAddress, "Web front end address (e.g. localhost:8081)")
	fset.StringVar(&flags.Language, "l", cfg.Language, "Interface language (es, en)")
	fset.StringVar(&flags.PageTemplate, "p", cfg.PageTemplate, "Path to a page template replacing the embedded one")
	fset.DurationVar(&flags.RequestTimeout, "t", cfg.RequestTimeout, "Timeout for each backend request (0 disables it)")
	fset.StringVar(&flags.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fset.StringVar(&flags.Output, "o", cfg.Output, "Terminal output format (text, html)")
	fset.BoolVar(&flags.AssumeYes, "y", cfg.AssumeYes, "Answer yes to confirmations")
	fset.StringVar(&flags.SentryDSN, "sentry-dsn", cfg.SentryDSN, "Sentry DSN for error reporting")
	fset.StringVar(&flags.ConfigPath, "c", cfg.ConfigPath, "Path to a JSON configuration file")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	cfg.ConfigPath = flags.ConfigPath
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = os.Getenv("CONFIG")
	}
	if cfg.ConfigPath != "" {
		if err := cfg.loadFile(cfg.ConfigPath); err != nil {
			return nil, err
		}
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "u":
			cfg.APIBaseURL = flags.APIBaseURL
		case "a":
			cfg.ServerAddress = flags.ServerAddress
		case "l":
			cfg.Language = flags.Language
		case "p":
			cfg.PageTemplate = flags.PageTemplate
		case "t":
			cfg.RequestTimeout = flags.RequestTimeout
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "o":
			cfg.Output = flags.Output
		case "y":
			cfg.AssumeYes = flags.AssumeYes
		case "sentry-dsn":
			cfg.SentryDSN = flags.SentryDSN
		}
	})

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.Args = fset.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.APIBaseURL, fc.APIBaseURL)
	setString(&c.ServerAddress, fc.ServerAddress)
	setString(&c.Language, fc.Language)
	setString(&c.PageTemplate, fc.PageTemplate)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.Output, fc.Output)
	setString(&c.SentryDSN, fc.SentryDSN)
	if fc.AssumeYes != nil {
		c.AssumeYes = *fc.AssumeYes
	}
	if fc.RequestTimeout != nil {
		d, err := time.ParseDuration(*fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("parse config file %s: request_timeout: %w", path, err)
		}
		c.RequestTimeout = d
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, verr := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", verr.Field(), verr.Tag(), verr.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
