package session

import (
	"context"

	"github.com/kirinyoku/eventease/internal/domain"
)

type ctxKey struct{}

type ctxValue struct {
	sess  domain.Session
	token string
}

// NewContext returns a copy of ctx carrying sess and the token it was
// resolved from.
func NewContext(ctx context.Context, sess domain.Session, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ctxValue{sess: sess, token: token})
}

func FromContext(ctx context.Context) (domain.Session, bool) {
	v, ok := ctx.Value(ctxKey{}).(ctxValue)
	return v.sess, ok
}

// TokenFromContext returns the raw token of the request's session.
func TokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(ctxValue)
	return v.token, ok
}
