package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nencyajudiya/blogstream/internal/apperror"
	"github.com/nencyajudiya/blogstream/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeIdentityStore is an in-memory IdentityStore for gate tests.
type fakeIdentityStore struct {
	users map[string]*model.User
}

func (f *fakeIdentityStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

// gateFixture wires RequireAuth in front of a probe handler that records
// whether the request got through and what identity it carried.
type gateFixture struct {
	tokens  *TokenService
	store   *fakeIdentityStore
	handler http.Handler

	reached  bool
	identity *model.User
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	f := &gateFixture{
		tokens: newTestTokenService(t),
		store:  &fakeIdentityStore{users: make(map[string]*model.User)},
	}

	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.reached = true
		f.identity, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	f.handler = RequireAuth(f.tokens, f.store)(probe)

	return f
}

func (f *gateFixture) request(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

// =========================================================================
// REJECTION TESTS — every failure mode must stop the request with 401
// =========================================================================

func TestRequireAuth_MissingHeader(t *testing.T) {
	f := newGateFixture(t)

	rr := f.request("")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if f.reached {
		t.Error("handler should not run without a credential")
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	f := newGateFixture(t)

	cases := []struct {
		name   string
		header string
	}{
		{"no scheme", "just-a-token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"scheme only", "Bearer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.reached = false
			rr := f.request(tc.header)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if f.reached {
				t.Error("handler should not run with a malformed header")
			}
		})
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	f := newGateFixture(t)

	rr := f.request("Bearer not-a-real-token")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// A signature that checks out is not enough: the account the token names
// must still exist. A token for a deleted account is rejected.
func TestRequireAuth_DeletedAccount(t *testing.T) {
	f := newGateFixture(t)

	token, err := f.tokens.Issue("ghost-user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	rr := f.request("Bearer " + token)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if f.reached {
		t.Error("handler should not run for a token naming a deleted account")
	}
}

// =========================================================================
// SUCCESS TESTS
// =========================================================================

func TestRequireAuth_ValidRequest(t *testing.T) {
	f := newGateFixture(t)
	f.store.users["user-1"] = &model.User{
		ID:           "user-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$should-never-reach-handlers",
	}

	token, err := f.tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	rr := f.request("Bearer " + token)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !f.reached {
		t.Fatal("handler should run for a valid credential")
	}
	if f.identity == nil {
		t.Fatal("identity missing from request context")
	}
	if f.identity.ID != "user-1" {
		t.Errorf("identity.ID = %q, want %q", f.identity.ID, "user-1")
	}
	// The identity handed to handlers never carries the password hash.
	if f.identity.PasswordHash != "" {
		t.Error("identity.PasswordHash should be blanked before reaching handlers")
	}
}

// The scheme comparison is case-insensitive — "bearer" and "BEARER" are
// both fine, matching how HTTP auth schemes are defined.
func TestRequireAuth_SchemeCaseInsensitive(t *testing.T) {
	f := newGateFixture(t)
	f.store.users["user-1"] = &model.User{ID: "user-1", Name: "Alice"}

	token, _ := f.tokens.Issue("user-1")

	rr := f.request("bearer " + token)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d for lowercase scheme", rr.Code, http.StatusOK)
	}
}

// =========================================================================
// CONTEXT HELPER TESTS
// =========================================================================

func TestIdentityFromContext_Empty(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	if ok {
		t.Error("IdentityFromContext() on an empty context should return ok=false")
	}
}

func TestIdentityFromContext_RoundTrip(t *testing.T) {
	u := &model.User{ID: "user-9", Name: "Bob"}
	ctx := ContextWithIdentity(context.Background(), u)

	got, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("IdentityFromContext() should find the identity")
	}
	if got.ID != "user-9" {
		t.Errorf("ID = %q, want %q", got.ID, "user-9")
	}
}
