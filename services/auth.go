// Package services holds the account and grocery-list logic. Services are
// plain structs built once at start-up and shared by all requests.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"liist/common"
	"liist/models"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(digest, plain string) bool
	DummyDigest() string
}

type SessionStore interface {
	Create(userID string) (string, error)
	Resolve(token string) (string, bool, error)
	Touch(token string) error
	Invalidate(token string) error
}

// AuthService registers accounts and turns credentials into sessions.
type AuthService struct {
	users    UserStore
	hasher   PasswordHasher
	sessions SessionStore
	now      func() time.Time
}

func NewAuthService(users UserStore, hasher PasswordHasher, sessions SessionStore) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		now:      time.Now,
	}
}

// Register validates req and creates the account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and opens a new session, returning its token.
// An unknown email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, common.ErrNotFound) {
		s.hasher.Verify(s.hasher.DummyDigest(), req.Password)
		return "", common.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return "", common.ErrInvalidCredentials
	}

	return s.sessions.Create(user.ID)
}

// Logout ends the session behind token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Invalidate(token)
}

// Authenticate resolves token to its user and slides the session window.
// A session whose user has disappeared is invalidated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, ok, err := s.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		if err := s.sessions.Invalidate(token); err != nil {
			return nil, err
		}
		return nil, common.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Touch(token); err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
