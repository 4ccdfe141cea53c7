package config

import "testing"

const defaultMaxUploadSize int64 = 200 * 1024 * 1024

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MAX_UPLOAD_SIZE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_API_BASE", "")
	t.Setenv("LLM_MODEL", "")

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxUploadSize() != defaultMaxUploadSize {
		t.Fatalf("expected default max upload size %d, got %d", defaultMaxUploadSize, cfg.GetMaxUploadSize())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetDataDir() != "./data" {
		t.Fatalf("expected default data dir ./data, got %s", cfg.GetDataDir())
	}
	provider := cfg.GetProviderConfig()
	if provider.Provider != "openai" {
		t.Fatalf("expected default provider openai, got %s", provider.Provider)
	}
	if provider.Model != "gpt-4o" {
		t.Fatalf("expected default model gpt-4o, got %s", provider.Model)
	}
	if provider.BaseURL != "" {
		t.Fatalf("expected empty default base URL, got %s", provider.BaseURL)
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("MAX_UPLOAD_SIZE", "12345")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("LLM_API_BASE", "")
	t.Setenv("LLM_MODEL", "anthropic/claude-sonnet")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxUploadSize() != 12345 {
		t.Fatalf("expected max upload size 12345, got %d", cfg.GetMaxUploadSize())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetSupabaseURL() != "http://localhost:54321" {
		t.Fatalf("expected supabase url http://localhost:54321, got %s", cfg.GetSupabaseURL())
	}

	provider := cfg.GetProviderConfig()
	if provider.BaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("expected openrouter base URL to be filled in, got %s", provider.BaseURL)
	}
	if provider.Model != "anthropic/claude-sonnet" {
		t.Fatalf("expected model override, got %s", provider.Model)
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_UPLOAD_SIZE", "not-a-number")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxUploadSize() != defaultMaxUploadSize {
		t.Fatalf("expected default max upload size %d, got %d", defaultMaxUploadSize, cfg.GetMaxUploadSize())
	}
}
