package stub

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tableside/internal/domain"
)

const (
	sessionCookieName = "SESSION"
	csrfCookieName    = "CSRF-TOKEN"
	csrfHeaderName    = "X-CSRF-TOKEN"
	sessionTTL        = 8 * time.Hour
)

type contextKey string

const userContextKey contextKey = "stub.user"

type sessionClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// sessions mints and verifies the stub's JWT session cookies. The signing
// key is generated per process; restarting the stub logs everyone out, which
// is fine for a dev double.
type sessions struct {
	key []byte
}

func newSessions() *sessions {
	return &sessions{key: []byte(uuid.New().String())}
}

func (s *sessions) issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *sessions) verify(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// requireSession resolves the SESSION cookie into a user and stores it on
// the request context. 401 without a valid session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := s.sessions.verify(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "session expired or invalid")
			return
		}

		user, err := s.store.UserByID(claims.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown session user")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireCSRF enforces the double-submit check on mutating verbs: the
// X-CSRF-TOKEN header must match the CSRF-TOKEN cookie set at login.
func requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			cookie, err := r.Cookie(csrfCookieName)
			if err != nil || cookie.Value == "" || r.Header.Get(csrfHeaderName) != cookie.Value {
				writeError(w, http.StatusForbidden, "missing or invalid CSRF token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func userFrom(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}
