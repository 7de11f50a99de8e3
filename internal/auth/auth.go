// Package auth mints development bearer tokens for the infusion platform API
// and keeps the one the console currently holds.
//
// Tokens are HS256 JWTs signed with a shared secret that is a public
// development default. They are not fit for anything but local use: there
// is no rotation, revocation or replay protection.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret = errors.New("signing secret is empty")
	ErrInvalidTTL  = errors.New("token ttl must be positive")
)

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenIssuer signs a token for subject with the given roles.
type TokenIssuer interface {
	Issue(subject string, roles []string, secret string, ttlMinutes int) (string, error)
}

type Issuer struct {
	now func() time.Time
}

func NewIssuer() *Issuer {
	return &Issuer{now: time.Now}
}

// NewIssuerWithClock is NewIssuer with a fixed source of wall-clock time.
func NewIssuerWithClock(now func() time.Time) *Issuer {
	return &Issuer{now: now}
}

// Issue signs {roles, sub, iat, exp} with HS256. iat is the current time in
// whole seconds and exp is iat plus ttlMinutes. The output depends only on
// the inputs and the clock.
func (i *Issuer) Issue(subject string, roles []string, secret string, ttlMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if ttlMinutes <= 0 {
		return "", ErrInvalidTTL
	}
	if roles == nil {
		roles = []string{}
	}
	now := time.Unix(i.now().Unix(), 0).UTC()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlMinutes) * time.Minute)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// ParseToken verifies tokenStr against secret and returns its claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
