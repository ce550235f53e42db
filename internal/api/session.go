package api

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session carries the bearer token for one console. It is passed to the
// client explicitly; nothing reads tokens from globals.
//
// Session is safe for concurrent use: requests read it from fetch
// goroutines while the UI may log in or out.
type Session struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

func NewSession(token string) *Session {
	return &Session{token: strings.TrimSpace(token), now: time.Now}
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

func (s *Session) Clear() { s.SetToken("") }

func (s *Session) LoggedIn() bool { return s.Token() != "" }

// ExpiresAt reads the `exp` claim when the token is a JWT. Opaque tokens
// report ok=false. The signature is not checked; the server does that.
func (s *Session) ExpiresAt() (time.Time, bool) {
	tok := s.Token()
	if tok == "" || strings.Count(tok, ".") != 2 {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired is true only when the token says it has expired.
func (s *Session) Expired() bool {
	exp, ok := s.ExpiresAt()
	if !ok {
		return false
	}
	return !s.now().Before(exp)
}
