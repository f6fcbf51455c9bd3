package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreSQLite   = "sqlite"
	StoreSupabase = "supabase"
)

type Settings struct {
	Port         int    `mapstructure:"port"`
	Store        string `mapstructure:"store"`
	DatabasePath string `mapstructure:"database_path"`

	SupabaseURL       string `mapstructure:"supabase_url"`
	SupabaseKey       string `mapstructure:"supabase_key"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	SupabaseJWTSecret string `mapstructure:"supabase_jwt_secret"`
	// InsecureSkipVerify trusts bearer tokens without checking signatures.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`

	AIProvider   string `mapstructure:"ai_provider"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	Timezone string `mapstructure:"timezone"`
	LogLevel string `mapstructure:"log_level"`
}

var settingKeys = []string{
	"port", "store", "database_path",
	"supabase_url", "supabase_key", "jwt_secret", "supabase_jwt_secret", "insecure_skip_verify",
	"ai_provider", "openai_api_key", "openai_model", "gemini_api_key", "gemini_model",
	"timezone", "log_level",
}

// LoadSettings reads focusflow.yaml (optional) and the environment.
// Environment variables win over the file.
func LoadSettings(configFile string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("store", StoreSQLite)
	v.SetDefault("database_path", "focusflow.db")
	v.SetDefault("ai_provider", "openai")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("insecure_skip_verify", false)
	for _, key := range []string{"supabase_url", "supabase_key", "jwt_secret", "supabase_jwt_secret", "openai_api_key", "gemini_api_key"} {
		v.SetDefault(key, "")
	}

	for _, key := range settingKeys {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("focusflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return s, s.validate()
}

func (s *Settings) validate() error {
	switch s.Store {
	case StoreSQLite:
		if s.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite store")
		}
	case StoreSupabase:
		if s.SupabaseURL == "" || s.SupabaseKey == "" {
			return errors.New("SUPABASE_URL or SUPABASE_KEY is missing")
		}
	default:
		return fmt.Errorf("unknown STORE %q (supported: %s, %s)", s.Store, StoreSQLite, StoreSupabase)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}

// TokenSecret is the HMAC secret used to verify bearer tokens.
func (s *Settings) TokenSecret() string {
	if s.JWTSecret != "" {
		return s.JWTSecret
	}
	return s.SupabaseJWTSecret
}

// RequireTokenSecret fails unless bearer tokens can be verified or
// verification was explicitly disabled.
func (s *Settings) RequireTokenSecret() error {
	if s.TokenSecret() == "" && !s.InsecureSkipVerify {
		return errors.New("JWT_SECRET (or SUPABASE_JWT_SECRET) is required to verify bearer tokens; set INSECURE_SKIP_VERIFY=true or pass --insecure-skip-verify for local development only")
	}
	return nil
}

func (s *Settings) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func envName(key string) string {
	return strings.ToUpper(key)
}
