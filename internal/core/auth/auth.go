// Package auth carries the resolved caller identity through the
// request. The gateway resolves the bearer token once and injects a
// Context; core operations never reach out to the identity provider
// themselves.
package auth

import (
	"context"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

// Context holds the authenticated user, or nothing for anonymous
// callers. The zero value is the absence marker.
type Context struct {
	user *domain.User
}

func Authenticated(user domain.User) Context {
	return Context{user: &user}
}

func Anonymous() Context {
	return Context{}
}

func (c Context) User() (domain.User, bool) {
	if c.user == nil {
		return domain.User{}, false
	}
	return *c.user, true
}

type contextKey struct{}

// Inject attaches the auth context to a request context.
func Inject(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext returns the injected auth context, or the anonymous
// marker when none was injected.
func FromContext(ctx context.Context) Context {
	if ctx == nil {
		return Anonymous()
	}
	ac, _ := ctx.Value(contextKey{}).(Context)
	return ac
}
