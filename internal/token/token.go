// Package token reads identity token claims without checking signatures.
// Verification belongs to the issuer and the backend; nothing here should be
// treated as proof of identity.
package token

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tasktrack/internal/domain"
)

// DefaultName is used when the token carries no name claim.
const DefaultName = "User"

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeUnverified returns the payload claims of a dot-separated token, or nil
// when the token is malformed. It never verifies the signature.
func DecodeUnverified(token string) jwt.MapClaims {
	claims, err := decode(token)
	if err != nil {
		slog.Warn("decode token", "error", err)
		return nil
	}
	return claims
}

func decode(token string) (jwt.MapClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, errors.New("token has no payload segment")
	}
	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, err
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, err
	}
	if claims == nil {
		return nil, errors.New("token payload is null")
	}
	return claims, nil
}

// ExtractUser maps sub, email and name claims onto a user record.
func ExtractUser(token string) *domain.User {
	claims := DecodeUnverified(token)
	if claims == nil {
		return nil
	}
	u := &domain.User{
		UserID: stringClaim(claims, "sub"),
		Email:  stringClaim(claims, "email"),
		Name:   stringClaim(claims, "name"),
	}
	if u.Name == "" {
		u.Name = DefaultName
	}
	return u
}

// IsExpired reports whether the token's exp claim lies in the past.
func IsExpired(token string) bool {
	return IsExpiredAt(token, time.Now())
}

// IsExpiredAt is IsExpired against a supplied clock. Undecodable tokens and
// non-numeric exp claims count as expired; a token without exp does not.
func IsExpiredAt(token string, now time.Time) bool {
	claims := DecodeUnverified(token)
	if claims == nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		slog.Warn("read token expiry", "error", err)
		return true
	}
	if exp == nil {
		return false
	}
	return exp.Before(now)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
