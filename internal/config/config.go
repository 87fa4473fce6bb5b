// Package config loads the service configuration.
//
// Values are layered in increasing priority: built-in defaults, an optional
// JSON file (CONFIG / -c), environment variables (a .env file is loaded
// first when present) and command-line flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the service.
type Config struct {
	RunAddr         string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"loglevel"`
	TrustedSubnet   string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	ConfigFile      string        `env:"CONFIG"`
}

var defaultConfig = Config{
	RunAddr:         ":8080",
	LogLevel:        "info",
	TrustedSubnet:   "",
	ShutdownTimeout: 10 * time.Second,
}

// jsonConfig mirrors Config for the JSON file, where durations are strings like "5s".
type jsonConfig struct {
	RunAddr         string `json:"server_address"`
	LogLevel        string `json:"log_level"`
	TrustedSubnet   string `json:"trusted_subnet"`
	ShutdownTimeout string `json:"shutdown_timeout"`
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":  true,
		"info":   true,
		"warn":   true,
		"error":  true,
		"dpanic": true,
		"panic":  true,
		"fatal":  true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command-line flags entirely.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// applyDefaults fills zero fields of values from defaults. A non-positive
// shutdown timeout counts as unset.
func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.TrustedSubnet == "" {
		values.TrustedSubnet = defaults.TrustedSubnet
	}
	if values.ShutdownTimeout <= 0 {
		values.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// override copies the non-zero fields of src over dst.
func override(dst *Config, src Config) {
	if src.RunAddr != "" {
		dst.RunAddr = src.RunAddr
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.TrustedSubnet != "" {
		dst.TrustedSubnet = src.TrustedSubnet
	}
	if src.ShutdownTimeout != 0 {
		dst.ShutdownTimeout = src.ShutdownTimeout
	}
}

func loadJSONFile(fileName string) (Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, fmt.Errorf("in internal/config/config.go/loadJSONFile(): error while `os.ReadFile()` calling: %w", err)
	}

	var raw jsonConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("in internal/config/config.go/loadJSONFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	result := Config{
		RunAddr:       raw.RunAddr,
		LogLevel:      raw.LogLevel,
		TrustedSubnet: raw.TrustedSubnet,
	}
	if raw.ShutdownTimeout != "" {
		result.ShutdownTimeout, err = time.ParseDuration(raw.ShutdownTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("in internal/config/config.go/loadJSONFile(): bad shutdown_timeout: %w", err)
		}
	}

	return result, nil
}

func parseFlags(args []string) (Config, string, error) {
	var values Config
	var configFile string

	flags := flag.NewFlagSet("socialgood", flag.ContinueOnError)
	flags.StringVar(&values.RunAddr, "a", "", "address and port to run server")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.TrustedSubnet, "t", "", "trusted subnet (CIDR) for internal endpoints")
	flags.DurationVar(&values.ShutdownTimeout, "s", 0, "graceful shutdown timeout")
	flags.StringVar(&configFile, "c", "", "JSON configuration file")

	if err := flags.Parse(args); err != nil {
		return Config{}, "", err
	}

	return values, configFile, nil
}

// New builds a validated Config from all sources.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}
	if options.args == nil && len(os.Args) > 1 {
		options.args = os.Args[1:]
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	var valuesFromFlags Config
	var configFileFromFlags string
	if !options.disableFlagsParsing {
		valuesFromFlags, configFileFromFlags, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	result := &Config{}

	configFile := valuesFromEnv.ConfigFile
	if configFileFromFlags != "" {
		configFile = configFileFromFlags
	}
	if configFile != "" {
		valuesFromFile, err := loadJSONFile(configFile)
		if err != nil {
			return nil, err
		}
		override(result, valuesFromFile)
		result.ConfigFile = configFile
	}

	override(result, valuesFromEnv)
	override(result, valuesFromFlags)
	applyDefaults(result, defaultConfig)

	if err := result.validate(); err != nil {
		return nil, err
	}

	return result, nil
}
