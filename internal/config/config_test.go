package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("GEMINI_MODEL_NAME", "test-model")
		t.Setenv("LOCAL_DATA_DIR", "testdata-dir")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.GeminiModelName != "test-model" {
			t.Errorf("Expected GeminiModelName to be 'test-model', got '%s'", cfg.GeminiModelName)
		}
		if cfg.DataDir != "testdata-dir" {
			t.Errorf("Expected DataDir to be 'testdata-dir', got '%s'", cfg.DataDir)
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("GEMINI_MODEL_NAME")
		os.Unsetenv("LOCAL_DATA_DIR")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiModelName != defaultModelName {
			t.Errorf("Expected default model name, got '%s'", cfg.GeminiModelName)
		}
		if cfg.DBPath() != filepath.Join("data", "recipes.db") {
			t.Errorf("Unexpected DBPath: %s", cfg.DBPath())
		}
		if cfg.ImagesDir() != filepath.Join("data", "images") {
			t.Errorf("Unexpected ImagesDir: %s", cfg.ImagesDir())
		}
	})

	t.Run("ValidateSync", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("GDRIVE_FOLDER_ID", "folder123")

		credsFile := filepath.Join(t.TempDir(), "sa.json")
		if err := os.WriteFile(credsFile, []byte("{}"), 0644); err != nil {
			t.Fatalf("Failed to write creds file: %v", err)
		}
		t.Setenv("GDRIVE_SERVICE_ACCOUNT_FILE", credsFile)

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if err := cfg.ValidateSync(); err != nil {
			t.Errorf("Expected sync config to validate, got %v", err)
		}

		cfg.DriveFolderID = ""
		if err := cfg.ValidateSync(); err == nil {
			t.Error("Expected an error for missing folder ID, got nil")
		}
	})
}
