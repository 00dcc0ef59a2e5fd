// Package session manages authenticated user sessions.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stsysd/nisshi/model"
	"github.com/stsysd/nisshi/store"
)

const (
	cookieName = "nisshi_session"
	sessionTTL = 24 * time.Hour
)

// Session represents an authenticated user session.
type Session struct {
	ID       string
	UserID   uuid.UUID
	Email    string
	Created  time.Time
	LastSeen time.Time
}

// Manager owns the process-wide authentication lifecycle: sign up,
// sign in/out and session lookup. Sessions are kept in memory only.
type Manager struct {
	users        store.UserStore
	sessions     map[string]*Session
	mu           sync.RWMutex
	secureCookie bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a new session manager backed by the given user store.
func NewManager(users store.UserStore, secureCookie bool) *Manager {
	m := &Manager{
		users:        users,
		sessions:     make(map[string]*Session),
		secureCookie: secureCookie,
		stop:         make(chan struct{}),
	}

	// Expired sessions are collected in the background.
	go m.cleanup()

	return m
}

// Close stops the background cleanup goroutine. Safe to call more than once.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// SignUp registers a new user and opens a session for it.
func (m *Manager) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if password == "" {
		return nil, model.NewValidationError("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := model.NewUser(email, string(hash))
	if err != nil {
		return nil, err
	}

	if err := m.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return m.open(user)
}

// SignIn verifies the credentials and opens a session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := m.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrNotAuthenticated
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrNotAuthenticated
	}

	return m.open(user)
}

// SignOut invalidates the session attached to the request, if any.
func (m *Manager) SignOut(r *http.Request) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, cookie.Value)
}

// open creates a session for an authenticated user.
func (m *Manager) open(user *model.User) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:       id,
		UserID:   user.ID,
		Email:    user.Email,
		Created:  now,
		LastSeen: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = sess
	return sess, nil
}

// FromRequest resolves the session attached to the request cookie.
func (m *Manager) FromRequest(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[cookie.Value]
	if !ok {
		return nil, false
	}
	if time.Since(sess.LastSeen) > sessionTTL {
		delete(m.sessions, cookie.Value)
		return nil, false
	}
	sess.LastSeen = time.Now()
	return sess, true
}

// SetCookie attaches the session cookie to the response.
func (m *Manager) SetCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie removes the session cookie from the client.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// cleanup removes expired sessions once an hour until Close is called.
func (m *Manager) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for id, sess := range m.sessions {
				if now.Sub(sess.LastSeen) > sessionTTL {
					delete(m.sessions, id)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// generateSessionID generates a cryptographically secure session ID.
func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
