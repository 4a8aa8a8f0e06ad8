package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kolapsis/vocalboard/internal/store"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	// One error for both cases so responses don't leak which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for a missing, unknown or expired bearer token.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrEmailTaken is returned when registering an address that already has an account.
	ErrEmailTaken = errors.New("user already exists")

	// ErrMissingFields is returned when a registration field is empty.
	ErrMissingFields = errors.New("name, email and password are required")
)

// Service issues and validates bearer sessions. Raw tokens are handed to
// the client once; only their SHA-256 hash is persisted.
type Service struct {
	store      store.Store
	sessionTTL time.Duration
	bcryptCost int
}

// NewService creates an auth Service.
func NewService(st store.Store, sessionTTL time.Duration, bcryptCost int) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if bcryptCost == 0 {
		bcryptCost = 12
	}
	return &Service{store: st, sessionTTL: sessionTTL, bcryptCost: bcryptCost}
}

// Register creates an account and returns it with a fresh bearer token.
func (s *Service) Register(name, email, password string) (*store.UserRecord, string, error) {
	if name == "" || email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	if _, err := s.store.GetUserByEmail(email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user := &store.UserRecord{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by email and password and returns a fresh bearer token.
func (s *Service) Login(email, password string) (*store.UserRecord, string, error) {
	user, err := s.store.GetUserByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueSession(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ValidateToken resolves a raw bearer token to its user.
func (s *Service) ValidateToken(token string) (*store.UserRecord, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	sess, err := s.store.GetSession(hashToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	user, err := s.store.GetUser(sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session user: %w", err)
	}
	return user, nil
}

func (s *Service) issueSession(userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	err = s.store.StoreSession(&store.SessionRecord{
		TokenHash: hashToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
