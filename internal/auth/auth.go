// Package auth resolves a bearer access token to a user id. Per spec §6,
// the token is issued by an external auth collaborator; this package only
// verifies the signature and claim shape the core needs — it does not
// manage accounts or issue tokens itself.
//
// Grounded on the JWT verification flow in
// dangdinh2405-cryto-trading-web-backend/internal/middleware/authMiddleware.go
// (HMAC signing-method check, claims map, userId claim), trimmed to the
// core's actual need: a user id, nothing else.
package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// ErrUnauthorized is returned for a missing, malformed, or invalid token.
var ErrUnauthorized = vegaerr.ErrMissingParameter.WithMessage("missing or invalid bearer token")

// userIDClaim is the claim the issuing collaborator is expected to set.
const userIDClaim = "user_id"

// Verifier checks bearer tokens signed with an HMAC secret.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier from the configured JWT secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifyBearer strips an optional "Bearer " prefix and resolves the token
// to a user id.
func (v *Verifier) VerifyBearer(raw string) (string, error) {
	raw = strings.TrimPrefix(raw, "Bearer ")
	if raw == "" {
		return "", ErrUnauthorized
	}
	return v.VerifyToken(raw)
}

// VerifyToken parses and validates tok, returning the user id it carries.
func (v *Verifier) VerifyToken(tok string) (string, error) {
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	userID, ok := claims[userIDClaim].(string)
	if !ok || userID == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}
