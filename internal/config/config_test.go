package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ParsesCacheSettings(t *testing.T) {
	t.Setenv("CACHE_MAX_ENTRIES", "50")
	t.Setenv("CACHE_TTL", "2h")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.EnvVars.CacheMaxEntries != 50 {
		t.Errorf("CacheMaxEntries = %d, want 50", cfg.EnvVars.CacheMaxEntries)
	}
	if cfg.EnvVars.CacheTTL != 2*time.Hour {
		t.Errorf("CacheTTL = %v, want 2h", cfg.EnvVars.CacheTTL)
	}
}

func TestCheckConfigEnvFields_MissingRequired(t *testing.T) {
	cfg := &Config{EnvVars: EnvVars{Port: "8080"}}
	err := cfg.CheckConfigEnvFields()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error = %q, want it to name DATABASE_URL", err)
	}
}

func TestCheckConfigEnvFields_OptionalSkipped(t *testing.T) {
	cfg := &Config{EnvVars: EnvVars{
		Port:            "8080",
		DatabaseUrl:     "postgres://localhost/forkful",
		JwtSecretKey:    "secret",
		AWSRegion:       "us-east-1",
		S3Bucket:        "bucket",
		AnthropicAPIKey: "key",
		CacheMaxEntries: 10,
		CacheTTL:        time.Minute,
	}}
	if err := cfg.CheckConfigEnvFields(); err != nil {
		t.Errorf("CheckConfigEnvFields: %v", err)
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{EnvVars: EnvVars{CORSOrigins: "https://a.example, ,https://b.example"}}
	got := cfg.AllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", got)
	}
}

func TestRenderPrompt(t *testing.T) {
	got, err := RenderPrompt("  Make {{.Prompt}}  ", map[string]interface{}{"Prompt": "soup"})
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	if got != "Make soup" {
		t.Errorf("RenderPrompt = %q", got)
	}
}

func TestRenderPrompt_MissingKey(t *testing.T) {
	if _, err := RenderPrompt("{{.Nope}}", map[string]interface{}{}); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestParsePrompts(t *testing.T) {
	yml := `
recipe:
  generate:
    system: gen
    user: "{{.Prompt}}"
  extract:
    system: ext
    user: "{{.Text}}"
image:
  generate: "photo of {{.Title}}"
`
	p, err := ParsePrompts([]byte(yml))
	if err != nil {
		t.Fatalf("ParsePrompts: %v", err)
	}
	if p.Recipe.Extract.System != "ext" || p.Image.Generate == "" {
		t.Errorf("ParsePrompts = %+v", p)
	}
	if _, err := ParsePrompts([]byte("recipe: {}")); err == nil {
		t.Error("expected error for missing system prompts")
	}
}
