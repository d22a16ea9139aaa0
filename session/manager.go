// Package session maps opaque cookie tokens to user ids on top of the
// service cache (in-memory or Redis). Sessions slide: every Touch pushes
// the expiry out by the idle timeout.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"liist/common"
	"liist/models"

	"github.com/umakantv/go-utils/cache"
)

const (
	keyPrefix     = "session:"
	revokedPrefix = "session:revoked:"
	tokenBytes    = 32
)

// errRevoked stops a write that would bring back an invalidated session.
var errRevoked = errors.New("session revoked")

// DefaultIdleTimeout is the idle window after which a session expires.
const DefaultIdleTimeout = 120 * time.Minute

// Manager is safe for concurrent use. Within one process, mu orders Touch
// against Invalidate; across processes sharing Redis, Invalidate leaves a
// revocation marker that save checks before writing.
type Manager struct {
	mu          sync.Mutex
	cache       cache.Cache
	idleTimeout time.Duration
	now         func() time.Time
}

func NewManager(c cache.Cache, idleTimeout time.Duration) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Manager{
		cache:       c,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// IdleTimeout is the sliding window applied on Create and Touch.
func (m *Manager) IdleTimeout() time.Duration {
	return m.idleTimeout
}

// Create starts a session for userID and returns its token.
func (m *Manager) Create(userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	s := models.Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.idleTimeout),
	}
	if err := m.save(token, s); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user id behind token. ok is false for unknown,
// invalidated and expired tokens; expired records are purged on the way out.
func (m *Manager) Resolve(token string) (userID string, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok, err := m.load(token)
	if err != nil || !ok {
		return "", false, err
	}
	return s.UserID, true, nil
}

// Touch extends a live session by the idle timeout. Unknown, expired and
// concurrently invalidated tokens are left alone.
func (m *Manager) Touch(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok, err := m.load(token)
	if err != nil || !ok {
		return err
	}
	s.ExpiresAt = m.now().UTC().Add(m.idleTimeout)
	if err := m.save(token, s); err != nil && !errors.Is(err, errRevoked) {
		return err
	}
	return nil
}

// Invalidate removes the session. Removing an unknown token is not an error.
// Once invalidated, a token never resolves again.
func (m *Manager) Invalidate(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(token)
}

func (m *Manager) remove(token string) error {
	if token == "" {
		return nil
	}
	if m.cache.Exists(keyPrefix + token) {
		// another instance may be mid-Touch on this token
		if err := m.cache.Set(revokedPrefix+token, "1", m.idleTimeout); err != nil {
			return common.StoreError("revoke session", err)
		}
	}
	if err := m.cache.Delete(keyPrefix + token); err != nil && !errors.Is(err, cache.ErrKeyNotFound) {
		return common.StoreError("invalidate session", err)
	}
	return nil
}

// load must be called with mu held.
func (m *Manager) load(token string) (models.Session, bool, error) {
	if token == "" {
		return models.Session{}, false, nil
	}

	raw, err := m.cache.Get(keyPrefix + token)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, common.StoreError("load session", err)
	}

	s, err := decode(raw)
	if err != nil {
		// unreadable records cannot authenticate anyone
		_ = m.remove(token)
		return models.Session{}, false, nil
	}

	if s.Expired(m.now()) {
		if err := m.remove(token); err != nil {
			return models.Session{}, false, err
		}
		return models.Session{}, false, nil
	}
	return s, true, nil
}

func (m *Manager) save(token string, s models.Session) error {
	if m.cache.Exists(revokedPrefix + token) {
		return errRevoked
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	// Stored as a string: the memory cache hands it back as is, and the Redis
	// cache JSON-encodes and decodes it back to the same string.
	if err := m.cache.Set(keyPrefix+token, string(data), m.idleTimeout); err != nil {
		return common.StoreError("save session", err)
	}
	return nil
}

func decode(raw interface{}) (models.Session, error) {
	var s models.Session
	switch v := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			return s, err
		}
	case []byte:
		if err := json.Unmarshal(v, &s); err != nil {
			return s, err
		}
	default:
		return s, fmt.Errorf("unexpected session type %T", raw)
	}
	if s.UserID == "" {
		return s, errors.New("session without user")
	}
	return s, nil
}

// generateToken returns a hex encoded cryptographically secure random token
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
