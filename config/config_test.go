package config

import (
	"os"
	"reflect"
	"testing"
)

func TestGetStringSliceEnv(t *testing.T) {
	testCases := []struct {
		name     string
		envValue string
		expected []string
	}{
		{
			name:     "Simple comma-separated values",
			envValue: "image/jpeg,image/png",
			expected: []string{"image/jpeg", "image/png"},
		},
		{
			name:     "Values with spaces",
			envValue: " https://a.example , https://b.example ",
			expected: []string{"https://a.example", "https://b.example"},
		},
		{
			name:     "Empty parts",
			envValue: "a,,b",
			expected: []string{"a", "b"},
		},
		{
			name:     "Unset",
			envValue: "",
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Setenv("TEST_STRING_SLICE", tc.envValue)
			defer os.Unsetenv("TEST_STRING_SLICE")

			result := getStringSliceEnv("TEST_STRING_SLICE", "")
			if !reflect.DeepEqual(result, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "AUTH_MODE", "MAX_UPLOAD_BYTES", "ALLOWED_IMAGE_TYPES", "CORS_ALLOWED_ORIGINS", "OCR_BACKEND", "LLM_BACKEND"} {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.StoreBackend != StoreDynamoDB {
		t.Errorf("Expected store backend %q, got %q", StoreDynamoDB, cfg.StoreBackend)
	}
	if cfg.MaxUploadBytes != 5*1024*1024 {
		t.Errorf("Expected 5 MiB upload ceiling, got %d", cfg.MaxUploadBytes)
	}
	if !reflect.DeepEqual(cfg.AllowedImageTypes, []string{"image/jpeg", "image/png", "image/webp"}) {
		t.Errorf("Unexpected allowed image types %v", cfg.AllowedImageTypes)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("Expected empty CORS allow-list, got %v", cfg.AllowedOrigins)
	}
	if cfg.OCRBackend != BackendAWS || cfg.LLMBackend != BackendAWS {
		t.Errorf("Expected aws backends, got ocr=%q llm=%q", cfg.OCRBackend, cfg.LLMBackend)
	}
}

func TestLoadStubBackends(t *testing.T) {
	os.Setenv("OCR_BACKEND", "STUB")
	os.Setenv("LLM_BACKEND", "stub")
	defer os.Unsetenv("OCR_BACKEND")
	defer os.Unsetenv("LLM_BACKEND")

	cfg := Load()
	if cfg.OCRBackend != BackendStub || cfg.LLMBackend != BackendStub {
		t.Errorf("Expected stub backends, got ocr=%q llm=%q", cfg.OCRBackend, cfg.LLMBackend)
	}
}

func TestLoadBackendNames(t *testing.T) {
	testCases := []struct {
		envValue string
		expected string
	}{
		{envValue: "textract", expected: BackendAWS},
		{envValue: "AWS", expected: BackendAWS},
		{envValue: "Stub", expected: BackendStub},
		{envValue: "stubb", expected: "stubb"},
	}

	for _, tc := range testCases {
		t.Run(tc.envValue, func(t *testing.T) {
			os.Setenv("OCR_BACKEND", tc.envValue)
			defer os.Unsetenv("OCR_BACKEND")

			cfg := Load()
			if cfg.OCRBackend != tc.expected {
				t.Errorf("Expected ocr backend %q, got %q", tc.expected, cfg.OCRBackend)
			}
		})
	}

	os.Setenv("OCR_BACKEND", "stubb")
	defer os.Unsetenv("OCR_BACKEND")
	cfg := Load()
	cfg.AuthMode, cfg.JWTSecret, cfg.StoreBackend = AuthJWT, "secret", StoreMemory
	if err := cfg.Validate(); err == nil {
		t.Error("Expected Validate to reject OCR_BACKEND=stubb")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			StoreBackend:      StoreMemory,
			AuthMode:          AuthJWT,
			JWTSecret:         "secret",
			MaxUploadBytes:    1024,
			ProductsTableName: "Products",
			OCRBackend:        BackendAWS,
			LLMBackend:        BackendStub,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.StoreBackend = "redis" }, wantErr: true},
		{name: "dynamodb without table", mutate: func(c *Config) { c.StoreBackend = StoreDynamoDB; c.ProductsTableName = "" }, wantErr: true},
		{name: "cognito without client id", mutate: func(c *Config) { c.AuthMode = AuthCognito }, wantErr: true},
		{name: "jwt without secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "receipts without bucket", mutate: func(c *Config) { c.StoreReceipts = true }, wantErr: true},
		{name: "zero upload ceiling", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: true},
		{name: "upload ceiling at limit", mutate: func(c *Config) { c.MaxUploadBytes = MaxUploadCeiling }},
		{name: "upload ceiling above limit", mutate: func(c *Config) { c.MaxUploadBytes = 1 << 62 }, wantErr: true},
		{name: "unknown ocr backend", mutate: func(c *Config) { c.OCRBackend = "stubb" }, wantErr: true},
		{name: "empty llm backend", mutate: func(c *Config) { c.LLMBackend = "" }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
