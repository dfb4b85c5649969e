// Package auth verifies the session JWT issued by the dashboard and turns its
// role and tier claims into the caller of an audit.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the token
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type contextKey string

const callerKey contextKey = "caller"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the session token payload
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Tier  string `json:"tier,omitempty"`
}

// Caller converts verified claims into an audit caller. Unknown roles and tiers
// fall back to the least privileged value.
func (c *Claims) Caller() models.Caller {
	caller := models.Caller{
		ID:   c.Subject,
		Role: RoleUser,
		Tier: models.TierFree,
	}
	if c.Role == RoleAdmin {
		caller.Role = RoleAdmin
	}
	switch models.Tier(c.Tier) {
	case models.TierPro, models.TierAgency:
		caller.Tier = models.Tier(c.Tier)
	}
	return caller
}

// ParseToken verifies an HS256 token and returns its claims
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: token verification is not configured", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

// NewToken signs a session token for caller. The dashboard issues tokens in
// production; this is used by the local tooling and tests.
func NewToken(secret []byte, caller models.Caller, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  caller.Role,
		Tier:  string(caller.Tier),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// WithCaller stores the caller in ctx
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the caller stored by the middleware
func CallerFrom(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(models.Caller)
	return caller, ok
}
