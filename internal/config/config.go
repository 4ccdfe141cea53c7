package config

import (
	"os"
	"strconv"

	"manga-translator/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort    string
	DataDir       string
	FontsDir      string
	MaxUploadSize int64
	LogLevel      string

	SupabaseURL string
	SupabaseKey string

	// LLM provider for translation and vision OCR. Resolved once here and
	// reused for the whole process lifetime.
	Provider        string
	ProviderAPIKey  string
	ProviderModel   string
	ProviderBaseURL string

	DetectorModelPath string
	InpaintServiceURL string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:    getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		DataDir:       getEnvOrDefault("DATA_DIR", "./data"),
		FontsDir:      getEnvOrDefault("FONTS_DIR", "./fonts"),
		MaxUploadSize: getEnvInt64OrDefault("MAX_UPLOAD_SIZE", 200*1024*1024), // 200MB default
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		SupabaseURL:   getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:   getEnvOrDefault("SUPABASE_ANON_KEY", ""),

		Provider:        getEnvOrDefault("LLM_PROVIDER", "openai"),
		ProviderAPIKey:  getEnvOrDefault("LLM_API_KEY", ""),
		ProviderModel:   getEnvOrDefault("LLM_MODEL", "gpt-4o"),
		ProviderBaseURL: getEnvOrDefault("LLM_API_BASE", ""),

		DetectorModelPath: getEnvOrDefault("DETECTOR_MODEL_PATH", "./models/comic-text-detector.onnx"),
		InpaintServiceURL: getEnvOrDefault("INPAINT_SERVICE_URL", ""),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetDataDir returns the root directory for project images and exports
func (c *AppConfig) GetDataDir() string {
	return c.DataDir
}

// GetFontsDir returns the directory searched for TrueType fonts
func (c *AppConfig) GetFontsDir() string {
	return c.FontsDir
}

// GetMaxUploadSize returns the maximum allowed archive upload size
func (c *AppConfig) GetMaxUploadSize() int64 {
	return c.MaxUploadSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetProviderConfig returns the resolved LLM provider configuration.
// OpenRouter is just the OpenAI wire protocol on a different base URL.
func (c *AppConfig) GetProviderConfig() domain.ProviderConfig {
	baseURL := c.ProviderBaseURL
	if baseURL == "" && c.Provider == "openrouter" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return domain.ProviderConfig{
		Provider: c.Provider,
		APIKey:   c.ProviderAPIKey,
		Model:    c.ProviderModel,
		BaseURL:  baseURL,
	}
}

// GetDetectorModelPath returns the path to the ONNX text detection model
func (c *AppConfig) GetDetectorModelPath() string {
	return c.DetectorModelPath
}

// GetInpaintServiceURL returns the URL of the LaMa inpainting service, empty
// when only the local fallback should be used
func (c *AppConfig) GetInpaintServiceURL() string {
	return c.InpaintServiceURL
}

// GetOCRLanguages maps source language codes to Tesseract language packs
func (c *AppConfig) GetOCRLanguages() map[string]string {
	return map[string]string{
		"ja": getEnvOrDefault("OCR_LANG_JA", "jpn+jpn_vert"),
		"ko": getEnvOrDefault("OCR_LANG_KO", "kor"),
		"zh": getEnvOrDefault("OCR_LANG_ZH", "chi_sim"),
		"en": getEnvOrDefault("OCR_LANG_EN", "eng"),
	}
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
