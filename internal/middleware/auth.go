package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"go.uber.org/zap"
)

// TokenVerifier resolves a bearer token to its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder loads the user a token subject refers to.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate resolves the bearer token to a user and stores it in the request
// context. Missing, malformed, expired or foreign tokens and unknown subjects get
// 401; deactivated accounts get 401 as well, on every request.
func Authenticate(tokens TokenVerifier, users UserFinder, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			subject, err := tokens.Verify(tokenStr)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), subject)
			if errors.Is(err, repo.ErrNotFound) {
				unauthorized(w, "invalid or expired token")
				return
			}
			if err != nil {
				log.Error("resolve token subject", zap.String("user_id", subject), zap.Error(err))
				writeJSONError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if !user.Active {
				unauthorized(w, auth.ErrAccountDisabled.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// Require returns 403 unless the authenticated caller's role may perform op.
// Must run after Authenticate.
func Require(op auth.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := auth.UserFromContext(r.Context())
			switch err := auth.Authorize(user, op); {
			case errors.Is(err, auth.ErrUnauthenticated):
				unauthorized(w, "not authenticated")
				return
			case err != nil:
				writeJSONError(w, err.Error(), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, message, http.StatusUnauthorized)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
