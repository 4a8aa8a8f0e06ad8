package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist or is not owned by
// the requesting user.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface for Vocalboard.
// Defined at the consumer side per Go conventions.
type Store interface {
	// Users
	CreateUser(u *UserRecord) error
	GetUser(id string) (*UserRecord, error)
	GetUserByEmail(email string) (*UserRecord, error)
	GetUserByResourceID(resourceID string) (*UserRecord, error)
	SetCalendarLink(userID string, link *CalendarLink) error
	SetWatchChannel(userID string, ch *WatchChannel) error

	// Tasks
	CreateTask(t *TaskRecord) error
	GetTask(userID, id string) (*TaskRecord, error)
	GetTaskByEventID(userID, eventID string) (*TaskRecord, error)
	UpdateTask(t *TaskRecord) error
	DeleteTask(userID, id string) error
	ListTasks(userID string) ([]TaskRecord, error)
	FindScheduledAt(userID string, at time.Time, excludeID string) (*TaskRecord, error)

	// Bearer sessions
	StoreSession(s *SessionRecord) error
	GetSession(tokenHash string) (*SessionRecord, error)
	DeleteExpiredSessions() error

	Close() error
}

// UserRecord represents a persisted account.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Calendar     *CalendarLink
	Watch        *WatchChannel
	CreatedAt    time.Time
}

// CalendarLink is the Google authorization grant. Nil means the user has
// not connected a calendar.
type CalendarLink struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// WatchChannel is an active push subscription on the user's calendar.
// The three fields are set together or not at all.
type WatchChannel struct {
	ID         string
	ResourceID string
	ExpiresAt  time.Time
}

// TaskRecord represents a persisted task.
type TaskRecord struct {
	ID            string
	UserID        string
	Title         string
	Description   string
	Status        string
	ScheduledTime *time.Time
	GoogleEventID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionRecord is a hashed bearer token. The raw token is returned to the
// client once at login and never stored.
type SessionRecord struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
