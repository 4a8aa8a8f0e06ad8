package auth

import (
	"context"

	"github.com/kolapsis/vocalboard/internal/store"
)

type ctxKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *store.UserRecord) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the authenticated user, or nil when the request
// was not authenticated.
func UserFromContext(ctx context.Context) *store.UserRecord {
	user, _ := ctx.Value(ctxKey{}).(*store.UserRecord)
	return user
}
