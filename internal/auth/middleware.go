package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/nencyajudiya/blogstream/internal/model"
)

// contextKey is an unexported type for context keys in this package.
// A package-private key type means only this package can read or write the
// identity value — no other package can collide with or shadow it.
type contextKey string

const identityKey contextKey = "identity"

// IdentityStore is the slice of the user store the gate needs: resolve a
// verified token subject to a live account. Defined here (on the consumer
// side) so the gate does not depend on the repository package.
type IdentityStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// The gate is a short state machine with no retries:
//
//	no credential            → 401
//	credential fails Verify  → 401
//	subject not in the store → 401  (account deleted after the token was issued)
//	otherwise                → identity attached to context, request proceeds
//
// The store lookup is deliberate: a token is valid only while the account it
// names still exists, even though the signature alone would still check out.
// The attached identity has its password hash blanked — handlers never see it.
func RequireAuth(tokens *TokenService, users IdentityStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			userID, err := tokens.Verify(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				unauthorized(w)
				return
			}

			identity := *user
			identity.PasswordHash = ""

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), &identity)))
		})
	}
}

// ContextWithIdentity returns a context carrying the authenticated identity.
// Exported so handler tests can simulate an authenticated request without
// running the full middleware chain.
func ContextWithIdentity(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, identityKey, u)
}

// IdentityFromContext retrieves the authenticated identity from the request
// context. Returns (nil, false) if the request did not pass RequireAuth.
func IdentityFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(identityKey).(*model.User)
	return u, ok && u != nil
}

// bearerToken extracts the credential from the Authorization header.
// The header must carry back exactly the token string the service issued:
//
//	Authorization: Bearer <token>
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
}
