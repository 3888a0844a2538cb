// Package config loads the application configuration from command-line
// flags, environment variables, an optional JSON config file and a
// `.env` file. Source priority is CLI > ENV > JSON > defaults.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"db_connection_timeout"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR" json:"migrations_dir"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" json:"token_ttl" validate:"required"`

	// JWTSigningSecretKey signs every session token. It has no default
	// on purpose: starting without one is a deployment error, not a
	// condition to paper over with a known value.
	JWTSigningSecretKey string `env:"JWT_SECRET" json:"jwt_secret" validate:"required"`

	ConfigFilePath string `env:"CONFIG" json:"-"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	DBFileName:          "",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "cmd/authsvc/migrations",
	TokenTTL:            time.Hour,
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption configures the New constructor.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing.
// It is used in tests where os.Args is not under the package's control.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func applyDefaults(values *Config, defaults Config) {
	overlay(values, *values, defaults)
}

// overlay fills dst from primary, falling back to secondary for fields
// primary leaves at the zero value.
func overlay(dst *Config, primary, secondary Config) {
	pick := func(first, second string) string {
		if first != "" {
			return first
		}
		return second
	}
	pickDuration := func(first, second time.Duration) time.Duration {
		if first != 0 {
			return first
		}
		return second
	}

	dst.RunAddr = pick(primary.RunAddr, secondary.RunAddr)
	dst.LogLevel = pick(primary.LogLevel, secondary.LogLevel)
	dst.DBFileName = pick(primary.DBFileName, secondary.DBFileName)
	dst.DatabaseDSN = pick(primary.DatabaseDSN, secondary.DatabaseDSN)
	dst.MigrationsDir = pick(primary.MigrationsDir, secondary.MigrationsDir)
	dst.JWTSigningSecretKey = pick(primary.JWTSigningSecretKey, secondary.JWTSigningSecretKey)
	dst.DBConnectionTimeout = pickDuration(primary.DBConnectionTimeout, secondary.DBConnectionTimeout)
	dst.TokenTTL = pickDuration(primary.TokenTTL, secondary.TokenTTL)
}

func readJSONConfig(path string, values *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, values)
}

// New assembles the configuration from all sources and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	flagValues := Config{}
	var configFilePath string
	if !options.disableFlagsParsing {
		flags := flag.NewFlagSet("authsvc", flag.ContinueOnError)
		flags.StringVar(&flagValues.RunAddr, "a", "", "address and port to run server")
		flags.StringVar(&flagValues.LogLevel, "l", "", "logger level")
		flags.StringVar(&flagValues.DatabaseDSN, "d", "", "a string with the database connection details")
		flags.StringVar(&flagValues.DBFileName, "f", "", "JSON file name with database")
		flags.StringVar(&flagValues.MigrationsDir, "m", "", "directory with goose migrations")
		flags.StringVar(&flagValues.JWTSigningSecretKey, "s", "", "secret key used to sign session tokens")
		flags.DurationVar(&flagValues.TokenTTL, "t", 0, "session token time to live")
		flags.StringVar(&configFilePath, "c", "", "path to a JSON config file")
		if err := flags.Parse(os.Args[1:]); err != nil {
			return nil, err
		}
	}

	envValues := Config{}
	if err := env.Parse(&envValues); err != nil {
		return nil, err
	}

	if configFilePath == "" {
		configFilePath = envValues.ConfigFilePath
	}

	values := Config{}
	if configFilePath != "" {
		if err := readJSONConfig(configFilePath, &values); err != nil {
			return nil, err
		}
	}

	applyDefaults(&values, defaultConfig)
	overlay(&values, envValues, values)
	overlay(&values, flagValues, values)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}
