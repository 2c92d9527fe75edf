// Package auth provides the token service, password hashing, and the
// request-authentication gate.
//
// AUTHENTICATION FLOW:
// 1. A client registers or logs in (password or GitHub OAuth) and receives
//    a signed JWT access token in the response body.
// 2. On every protected request the client sends the token back verbatim in
//    the Authorization header: "Authorization: Bearer <token>".
// 3. The RequireAuth middleware verifies the token, loads the account it
//    names, and attaches the identity to the request context.
//
// The token is stateless — there is no server-side session or revocation
// list. Everything needed to verify it (subject, expiry, signature) is inside
// the token itself.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenValidity is the fixed lifetime of an issued access token.
// After seven days the client must log in again.
const tokenValidity = 7 * 24 * time.Hour

const issuer = "blogstream"

// TokenService issues and verifies signed identity tokens.
//
// It holds the HMAC secret used to sign and verify. The same secret must be
// used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The registered "sub" claim carries the user ID.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs an access token for the given user ID with the
// fixed seven-day validity window.
//
// Signing algorithm: HS256 (HMAC-SHA256). Symmetric — the same key signs and
// verifies — which is all a single-server deployment needs.
func (s *TokenService) Issue(userID string) (string, error) {
	return s.IssueWithDuration(userID, tokenValidity)
}

// IssueWithDuration creates a token with a custom expiry. Production code
// uses Issue; tests use this to mint already-expired tokens.
func (s *TokenService) IssueWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string and returns the user ID it was
// issued for.
//
// The jwt library checks the signature, the expiry, the pinned issuer, and
// the algorithm. Pinning the algorithm with jwt.WithValidMethods prevents
// algorithm-confusion attacks where a token claims to be signed with "none".
//
// All failure modes (malformed, expired, bad signature) collapse into a
// single error — callers treat them identically, and the distinction is not
// worth leaking.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
