package auth

import (
	"context"

	"github.com/crucial707/vigil/internal/models"
)

type ctxKey string

const userKey ctxKey = "auth_user"

// WithUser attaches the authenticated caller to ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
