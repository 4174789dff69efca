package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB provides a centralized database connection.
type DB struct {
	SQL *sqlx.DB
}

// NewDB opens the SQLite database and ensures the schema exists.
func NewDB(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{SQL: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.SQL.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title_jp TEXT NOT NULL,
	title_en TEXT NOT NULL,
	summary_en TEXT,
	servings INTEGER DEFAULT 2,
	tags_json TEXT,
	source_file TEXT,
	drive_file_id TEXT,
	page_number INTEGER,
	recipe_index INTEGER DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ingredients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recipe_id INTEGER NOT NULL,
	name_jp TEXT NOT NULL,
	name_en TEXT NOT NULL,
	quantity TEXT,
	unit TEXT,
	category TEXT,
	sauce_reference TEXT,
	FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS instructions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recipe_id INTEGER NOT NULL,
	step_number INTEGER NOT NULL,
	text_jp TEXT NOT NULL,
	text_en TEXT NOT NULL,
	FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sync_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	drive_file_id TEXT UNIQUE NOT NULL,
	local_path TEXT NOT NULL,
	last_modified TEXT NOT NULL,
	sync_status TEXT NOT NULL,
	file_type TEXT NOT NULL,
	error_message TEXT,
	synced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS dinner_plan_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	num_days INTEGER NOT NULL,
	servings INTEGER NOT NULL,
	preferences TEXT,
	chosen_option INTEGER,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS dinner_plan_options (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id INTEGER NOT NULL,
	option_index INTEGER NOT NULL,
	plan_json TEXT NOT NULL,
	reasoning TEXT,
	FOREIGN KEY (request_id) REFERENCES dinner_plan_requests (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS execution_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	operation TEXT NOT NULL,
	model TEXT,
	prompt_tokens INTEGER DEFAULT 0,
	completion_tokens INTEGER DEFAULT 0,
	latency_ms INTEGER DEFAULT 0,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recipes_title_en ON recipes(title_en);
CREATE INDEX IF NOT EXISTS idx_recipes_source ON recipes(source_file, page_number, recipe_index);
CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON ingredients(recipe_id);
CREATE INDEX IF NOT EXISTS idx_instructions_recipe ON instructions(recipe_id);
CREATE INDEX IF NOT EXISTS idx_sync_files_drive_id ON sync_files(drive_file_id);
CREATE INDEX IF NOT EXISTS idx_plan_requests_user ON dinner_plan_requests(user_id);
`
