package store

// migrations are applied in order; schema_version records the last applied
// index + 1. Never edit an entry after release — append a new one.
var migrations = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		google_access_token TEXT NOT NULL DEFAULT '',
		google_refresh_token TEXT NOT NULL DEFAULT '',
		google_token_expiry TEXT NOT NULL DEFAULT '',
		watch_channel_id TEXT NOT NULL DEFAULT '',
		watch_resource_id TEXT NOT NULL DEFAULT '',
		watch_expires_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE TABLE tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'todo',
		scheduled_time TEXT,
		google_event_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX idx_tasks_user_created ON tasks(user_id, created_at DESC);
	CREATE INDEX idx_tasks_user_scheduled ON tasks(user_id, scheduled_time);
	CREATE TABLE sessions (
		token_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`,
	`CREATE INDEX idx_tasks_user_event ON tasks(user_id, google_event_id);
	CREATE INDEX idx_users_watch_resource ON users(watch_resource_id);`,
}
