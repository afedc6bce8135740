package auth

import "context"

type contextKey struct{}

// AuthContext carries the identity resolved from the presented access key.
type AuthContext struct {
	HouseholdID   int64
	HouseholdName string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// HouseholdID returns the authenticated household id, or 0 when the context
// carries no identity.
func HouseholdID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.HouseholdID
}
