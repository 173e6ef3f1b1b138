// internal/auth/context.go
//
// Identity claims carried through the request context.
//
// Usage
// -----
//     // Attach verified claims to the request context (identity middleware).
//     ctx = auth.WithIdentity(ctx, ident)
//
//     // Downstream code retrieves them.
//     ident, ok := auth.FromContext(ctx)
//
// Notes
// -----
// • The platform never authenticates anyone itself; the transport layer
//   verifies the token and this package only reads the claim set.
// • Oxford commas, two spaces after periods.

package auth

import "context"

// Identity is the verified claim set for the calling user.  Email is the
// federated lookup key; the name parts seed first-login provisioning.
type Identity struct {
	Email      string
	GivenName  string
	FamilyName string
}

// identityKey is unexported to avoid context-key collisions.
type identityKey struct{}

// WithIdentity returns a new context carrying the given claim set.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext extracts the claims from ctx.  The second return is false when
// no identity middleware ran or the token carried no email claim.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.Email != ""
}
