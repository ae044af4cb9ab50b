package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	configDirName   = "fileassist"
	envPrefix       = "FILEASSIST"
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

// Keys shared with cmd for flag binding.
const (
	KeyProvider       = "llm.provider"
	KeyBaseURL        = "llm.base_url"
	KeyModel          = "llm.model"
	KeyAPIKey         = "llm.api_key"
	KeyRequestTimeout = "llm.request_timeout"
	KeyCheckTimeout   = "llm.check_timeout"
	KeyActivityLog    = "paths.activity_log"
	KeySessionContext = "paths.session_context"
	KeyMaxBytes       = "activity.max_bytes"
	KeyLookupWindow   = "activity.lookup_window"
	KeyLogLevel       = "log.level"
)

type Config struct {
	LLM      LLMConfig      `mapstructure:"llm" toml:"llm" validate:"required"`
	Paths    PathsConfig    `mapstructure:"paths" toml:"paths" validate:"required"`
	Activity ActivityConfig `mapstructure:"activity" toml:"activity" validate:"required"`
	Log      LogConfig      `mapstructure:"log" toml:"log" validate:"required"`
}

type LLMConfig struct {
	Provider       string        `mapstructure:"provider" toml:"provider" validate:"oneof=ollama openai"`
	BaseURL        string        `mapstructure:"base_url" toml:"base_url" validate:"required,url"`
	Model          string        `mapstructure:"model" toml:"model" validate:"required"`
	APIKey         string        `mapstructure:"api_key" toml:"api_key,omitempty"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" toml:"request_timeout" validate:"gt=0"`
	CheckTimeout   time.Duration `mapstructure:"check_timeout" toml:"check_timeout" validate:"gt=0"`
}

type PathsConfig struct {
	ActivityLog    string `mapstructure:"activity_log" toml:"activity_log" validate:"required"`
	SessionContext string `mapstructure:"session_context" toml:"session_context" validate:"required"`
}

type ActivityConfig struct {
	MaxBytes     int64 `mapstructure:"max_bytes" toml:"max_bytes" validate:"gt=0"`
	LookupWindow int   `mapstructure:"lookup_window" toml:"lookup_window" validate:"gt=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" toml:"level" validate:"oneof=debug info warn error"`
}

func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:       "ollama",
			BaseURL:        "http://localhost:11434",
			Model:          "llama3",
			RequestTimeout: 300 * time.Second,
			CheckTimeout:   10 * time.Second,
		},
		Paths: PathsConfig{
			ActivityLog:    "activity_log.jsonl",
			SessionContext: "session_context.json",
		},
		Activity: ActivityConfig{
			MaxBytes:     5 * 1024 * 1024,
			LookupWindow: 50,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// DefaultPath is where Load looks when no explicit file is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, configDirName, configName+"."+configType), nil
}

// Load layers defaults, the config file, FILEASSIST_* env vars and any flags
// already bound on v. A missing config file is not an error.
func Load(v *viper.Viper, explicitPath string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	applyDefaults(v, Default())

	v.SetConfigType(configType)
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName(configName)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configDirName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) && !(explicitPath != "" && errors.Is(err, os.ErrNotExist)) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.LLM.BaseURL), "/")
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, fieldErr := range validationErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration as TOML, replacing path
// atomically. An existing file is left alone unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(toFileSchema(Default()))
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}

func applyDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault(KeyProvider, cfg.LLM.Provider)
	v.SetDefault(KeyBaseURL, cfg.LLM.BaseURL)
	v.SetDefault(KeyModel, cfg.LLM.Model)
	v.SetDefault(KeyAPIKey, cfg.LLM.APIKey)
	v.SetDefault(KeyRequestTimeout, cfg.LLM.RequestTimeout)
	v.SetDefault(KeyCheckTimeout, cfg.LLM.CheckTimeout)
	v.SetDefault(KeyActivityLog, cfg.Paths.ActivityLog)
	v.SetDefault(KeySessionContext, cfg.Paths.SessionContext)
	v.SetDefault(KeyMaxBytes, cfg.Activity.MaxBytes)
	v.SetDefault(KeyLookupWindow, cfg.Activity.LookupWindow)
	v.SetDefault(KeyLogLevel, cfg.Log.Level)
}

// fileSchema mirrors Config with durations spelled as strings, which is what
// viper's decode hooks read back.
type fileSchema struct {
	LLM struct {
		Provider       string `toml:"provider"`
		BaseURL        string `toml:"base_url"`
		Model          string `toml:"model"`
		RequestTimeout string `toml:"request_timeout"`
		CheckTimeout   string `toml:"check_timeout"`
	} `toml:"llm"`
	Paths    PathsConfig    `toml:"paths"`
	Activity ActivityConfig `toml:"activity"`
	Log      LogConfig      `toml:"log"`
}

func toFileSchema(cfg Config) fileSchema {
	var file fileSchema
	file.LLM.Provider = cfg.LLM.Provider
	file.LLM.BaseURL = cfg.LLM.BaseURL
	file.LLM.Model = cfg.LLM.Model
	file.LLM.RequestTimeout = cfg.LLM.RequestTimeout.String()
	file.LLM.CheckTimeout = cfg.LLM.CheckTimeout.String()
	file.Paths = cfg.Paths
	file.Activity = cfg.Activity
	file.Log = cfg.Log
	return file
}
