package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars  `json:"env"`
	Prompts *Prompts `json:"-"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	DatabaseUrl        string        `env:"DATABASE_URL"`
	JwtSecretKey       string        `env:"JWT_SECRET_KEY"`
	AWSRegion          string        `env:"AWS_REGION"`
	AWSAccessKeyID     string        `env:"AWS_ACCESS_KEY_ID" optional:"true"`
	AWSSecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY" optional:"true"`
	S3Bucket           string        `env:"S3_BUCKET"`
	AnthropicAPIKey    string        `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY" optional:"true"`
	GoogleSearchKey    string        `env:"GOOGLE_SEARCH_KEY" optional:"true"`
	GoogleSearchCX     string        `env:"GOOGLE_SEARCH_CX" optional:"true"`
	BraveSearchKey     string        `env:"BRAVE_SEARCH_KEY" optional:"true"`
	InstagramToken     string        `env:"INSTAGRAM_ACCESS_TOKEN" optional:"true"`
	RedisURL           string        `env:"REDIS_URL" optional:"true"`
	CacheMaxEntries    int           `env:"CACHE_MAX_ENTRIES" envDefault:"1000"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	CORSOrigins        string        `env:"CORS_ORIGINS" optional:"true"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// AllowedOrigins splits CORS_ORIGINS into a list, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.EnvVars.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	return checkFieldsRecursive(reflect.ValueOf(c.EnvVars))
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if isZeroValue(field) {
			return fmt.Errorf("$%s must be set", fieldType.Tag.Get("env"))
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}

func isZeroValue(v reflect.Value) bool {
	return v.IsZero()
}
