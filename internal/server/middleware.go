package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"waterline/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyAccount contextKey = "account"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth resolves the session cookie to an active account and adds it
// to the request context. Anything less redirects to the login page.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := s.sessionAccount(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyAccount, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStaff gates the administrative surface. Must run after
// RequireAuth.
func (s *Service) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := s.accountFromContext(r.Context())
		if err != nil || !account.IsStaff {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) sessionAccount(r *http.Request) (*types.Account, bool) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return nil, false
	}

	var accountID string
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &accountID); err != nil {
		s.logger.WithError(err).Debug("failed to decode session cookie")
		return nil, false
	}

	account, err := s.accountRepo.Account(r.Context(), accountID)
	if err != nil {
		return nil, false
	}
	if !account.IsActive {
		return nil, false
	}

	return account, true
}

func (s *Service) accountFromContext(ctx context.Context) (*types.Account, error) {
	account, ok := ctx.Value(contextKeyAccount).(*types.Account)
	if !ok || account == nil {
		return nil, types.ErrAccountNotFound
	}
	return account, nil
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
