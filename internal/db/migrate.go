package db

import "database/sql"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		idx INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		safety_flag INTEGER NOT NULL DEFAULT 0,
		safety_answer TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS answers (
		session_id TEXT NOT NULL,
		question_id INTEGER NOT NULL,
		raw_value INTEGER NOT NULL,
		submitted_at TEXT NOT NULL,
		PRIMARY KEY (session_id, question_id)
	);`,
	`CREATE TABLE IF NOT EXISTS screenings (
		session_id TEXT PRIMARY KEY,
		total_score INTEGER NOT NULL,
		stress INTEGER NOT NULL,
		mood INTEGER NOT NULL,
		cognitive_control INTEGER NOT NULL,
		band TEXT NOT NULL,
		effective_band TEXT NOT NULL,
		safety_alert INTEGER NOT NULL DEFAULT 0,
		priority TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		triage_type TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		total_score INTEGER NOT NULL,
		stress INTEGER NOT NULL,
		mood INTEGER NOT NULL,
		cognitive_control INTEGER NOT NULL,
		result_label TEXT NOT NULL DEFAULT '',
		safety_answer TEXT NOT NULL DEFAULT '',
		submitted_at TIMESTAMP NOT NULL,
		delivered INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		pass_hash BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_screenings_created ON screenings(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);`,
}

func migrate(conn *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
