package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "coordinator_session"

const sessionCookieName = "meraki_session"

const sessionIssuer = "meraki"

// ErrInvalidSession is returned for a missing, tampered or expired session token.
var ErrInvalidSession = errors.New("invalid session")

// Session identifies the signed-in coordinator. It carries identity only; the
// registration aggregate itself lives in the server-side cache.
type Session struct {
	RegistrationID string
	CoordinatorID  string
	ExpiresAt      time.Time
}

type sessionClaims struct {
	CoordinatorID string `json:"cid"`
	jwt.RegisteredClaims
}

// SessionSigner issues and verifies HMAC-signed session tokens.
type SessionSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionSigner creates a signer.
// PRE: key is at least 32 bytes; ttl > 0
func NewSessionSigner(key []byte, ttl time.Duration) *SessionSigner {
	return &SessionSigner{key: key, ttl: ttl, now: time.Now}
}

// Issue signs a token for a registration.
// POST: the token expires after the signer's TTL
func (s *SessionSigner) Issue(registrationID, coordinatorID string) (string, Session, error) {
	now := s.now()
	sess := Session{RegistrationID: registrationID, CoordinatorID: coordinatorID, ExpiresAt: now.Add(s.ttl)}
	claims := sessionClaims{
		CoordinatorID: coordinatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   registrationID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session: %w", err)
	}
	return token, sess, nil
}

// Verify parses a token and returns the session it carries.
// POST: returns ErrInvalidSession for any bad or expired token
func (s *SessionSigner) Verify(token string) (Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject == "" {
		return Session{}, ErrInvalidSession
	}
	return Session{
		RegistrationID: claims.Subject,
		CoordinatorID:  claims.CoordinatorID,
		ExpiresAt:      claims.ExpiresAt.Time,
	}, nil
}

// Auth returns middleware that verifies the session cookie and puts the session in context.
// It does NOT block unauthenticated requests; use RequireCoordinator for that.
func Auth(signer *SessionSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				if sess, err := signer.Verify(cookie.Value); err == nil {
					r = r.WithContext(ContextWithSession(r.Context(), sess))
				} else {
					slog.Debug("auth_event", "event", "session_rejected", "path", r.URL.Path)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCoordinator blocks requests without a session: JSON API calls get 401,
// pages are redirected to /login.
func RequireCoordinator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"not signed in"}`))
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(Session)
	return sess, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, sess Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  sess.ExpiresAt,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
