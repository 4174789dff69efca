package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey    string
	GeminiModelName string

	// Google Drive sync
	DriveFolderID        string
	DriveCredentialsFile string

	// Local paths
	DataDir string

	// Telegram Config (optional for CLI, required for bot)
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
}

const defaultModelName = "gemini-2.5-flash"

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first if present.
func NewFromEnv() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = defaultModelName
	}

	dataDir := os.Getenv("LOCAL_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	var telegramAllowUserID int64
	if s := os.Getenv("TELEGRAM_ALLOW_USER_ID"); s != "" {
		fmt.Sscanf(s, "%d", &telegramAllowUserID)
	}

	return &Config{
		GeminiAPIKey:         geminiAPIKey,
		GeminiModelName:      modelName,
		DriveFolderID:        os.Getenv("GDRIVE_FOLDER_ID"),
		DriveCredentialsFile: os.Getenv("GDRIVE_SERVICE_ACCOUNT_FILE"),
		DataDir:              dataDir,
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:   os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowUserID:  telegramAllowUserID,
	}, nil
}

// ValidateSync checks the additional configuration required by the Drive sync
// commands. The core commands only need the Gemini key.
func (c *Config) ValidateSync() error {
	if c.DriveFolderID == "" {
		return fmt.Errorf("GDRIVE_FOLDER_ID environment variable not set")
	}
	if c.DriveCredentialsFile == "" {
		return fmt.Errorf("GDRIVE_SERVICE_ACCOUNT_FILE environment variable not set")
	}
	if _, err := os.Stat(c.DriveCredentialsFile); err != nil {
		return fmt.Errorf("service account file not found: %s", c.DriveCredentialsFile)
	}
	return nil
}

// ImagesDir is where synced page images are stored.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.DataDir, "images")
}

// DBPath is the SQLite database file path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "recipes.db")
}
