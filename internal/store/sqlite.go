package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Fixed width at millisecond precision: the stored strings sort lexically
// (ORDER BY relies on it) and scheduling conflicts compare on the exact
// timestamp, not a calendar date.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, zero CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and runs migrations.
// The database file is created with 0600 permissions and its parent directory with 0700.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return nil, fmt.Errorf("creating database file: %w", err)
			}
			_ = f.Close()
		}
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		slog.Info("applying migration", "version", i+1)
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Users ---

const userColumns = `id, name, email, password_hash,
	google_access_token, google_refresh_token, google_token_expiry,
	watch_channel_id, watch_resource_id, watch_expires_at, created_at`

func (s *SQLiteStore) CreateUser(u *UserRecord) error {
	var link CalendarLink
	if u.Calendar != nil {
		link = *u.Calendar
	}
	var watch WatchChannel
	if u.Watch != nil {
		watch = *u.Watch
	}

	_, err := s.db.Exec(`INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash,
		link.AccessToken, link.RefreshToken, formatTime(link.Expiry),
		watch.ID, watch.ResourceID, formatTime(watch.ExpiresAt),
		formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(id string) (*UserRecord, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByEmail(email string) (*UserRecord, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByResourceID(resourceID string) (*UserRecord, error) {
	if resourceID == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE watch_resource_id = ?`, resourceID)
	return scanUser(row)
}

// SetCalendarLink stores (or clears, with nil) the user's Google grant.
func (s *SQLiteStore) SetCalendarLink(userID string, link *CalendarLink) error {
	var l CalendarLink
	if link != nil {
		l = *link
	}
	res, err := s.db.Exec(`UPDATE users SET
		google_access_token = ?, google_refresh_token = ?, google_token_expiry = ?
		WHERE id = ?`,
		l.AccessToken, l.RefreshToken, formatTime(l.Expiry), userID)
	if err != nil {
		return fmt.Errorf("updating calendar link: %w", err)
	}
	return requireRow(res)
}

// SetWatchChannel stores (or clears, with nil) the user's push subscription.
// All three columns change in one statement so the record never holds a
// partial channel.
func (s *SQLiteStore) SetWatchChannel(userID string, ch *WatchChannel) error {
	var c WatchChannel
	if ch != nil {
		c = *ch
	}
	res, err := s.db.Exec(`UPDATE users SET
		watch_channel_id = ?, watch_resource_id = ?, watch_expires_at = ?
		WHERE id = ?`,
		c.ID, c.ResourceID, formatTime(c.ExpiresAt), userID)
	if err != nil {
		return fmt.Errorf("updating watch channel: %w", err)
	}
	return requireRow(res)
}

// --- Tasks ---

const taskColumns = `id, user_id, title, description, status,
	scheduled_time, google_event_id, created_at, updated_at`

func (s *SQLiteStore) CreateTask(t *TaskRecord) error {
	_, err := s.db.Exec(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, t.Status,
		formatNullTime(t.ScheduledTime), t.GoogleEventID,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTask(userID, id string) (*TaskRecord, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	return scanTask(row)
}

func (s *SQLiteStore) GetTaskByEventID(userID, eventID string) (*TaskRecord, error) {
	if eventID == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND google_event_id = ?`, userID, eventID)
	return scanTask(row)
}

func (s *SQLiteStore) UpdateTask(t *TaskRecord) error {
	res, err := s.db.Exec(`UPDATE tasks SET
		title = ?, description = ?, status = ?, scheduled_time = ?,
		google_event_id = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, t.Status, formatNullTime(t.ScheduledTime),
		t.GoogleEventID, formatTime(t.UpdatedAt),
		t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteTask(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireRow(res)
}

// ListTasks returns the user's tasks, newest-created first.
func (s *SQLiteStore) ListTasks(userID string) ([]TaskRecord, error) {
	rows, err := s.db.Query(`SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []TaskRecord
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// FindScheduledAt returns the non-blocked task occupying the exact timestamp
// for this user, skipping excludeID. Returns ErrNotFound when the slot is free.
func (s *SQLiteStore) FindScheduledAt(userID string, at time.Time, excludeID string) (*TaskRecord, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND scheduled_time = ? AND status != 'blocked' AND id != ?`,
		userID, formatTime(at), excludeID)
	return scanTask(row)
}

// --- Sessions ---

func (s *SQLiteStore) StoreSession(sess *SessionRecord) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sessions (token_hash, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		sess.TokenHash, sess.UserID, formatTime(sess.ExpiresAt), formatTime(sess.CreatedAt))
	if err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(tokenHash string) (*SessionRecord, error) {
	var sess SessionRecord
	var expiresAt, createdAt string

	err := s.db.QueryRow(`SELECT token_hash, user_id, expires_at, created_at
		FROM sessions WHERE token_hash = ?`, tokenHash).
		Scan(&sess.TokenHash, &sess.UserID, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	sess.ExpiresAt = parseTime(expiresAt)
	sess.CreatedAt = parseTime(createdAt)

	if time.Now().After(sess.ExpiresAt) {
		return nil, ErrNotFound
	}

	return &sess, nil
}

func (s *SQLiteStore) DeleteExpiredSessions() error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE expires_at < ?", formatTime(time.Now())); err != nil {
		return fmt.Errorf("cleaning sessions: %w", err)
	}
	return nil
}

// --- Helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*UserRecord, error) {
	var u UserRecord
	var link CalendarLink
	var watch WatchChannel
	var tokenExpiry, watchExpires, createdAt string

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&link.AccessToken, &link.RefreshToken, &tokenExpiry,
		&watch.ID, &watch.ResourceID, &watchExpires, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.CreatedAt = parseTime(createdAt)
	if link.AccessToken != "" {
		link.Expiry = parseTime(tokenExpiry)
		u.Calendar = &link
	}
	if watch.ID != "" {
		watch.ExpiresAt = parseTime(watchExpires)
		u.Watch = &watch
	}

	return &u, nil
}

func scanTask(row *sql.Row) (*TaskRecord, error) {
	return scanTaskRow(row)
}

func scanTaskRow(row rowScanner) (*TaskRecord, error) {
	var t TaskRecord
	var scheduled sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
		&scheduled, &t.GoogleEventID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	if scheduled.Valid && scheduled.String != "" {
		at := parseTime(scheduled.String)
		t.ScheduledTime = &at
	}

	return &t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// RFC3339Nano accepts any fractional width on read.
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
