package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/juju/errors"
)

// Claims carries the user id in the subject and the user's role codes.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type Token struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken signs an HS256 access token for userID valid for ttl from now.
func IssueToken(secret string, userID uuid.UUID, roles []string, now time.Time, ttl time.Duration) (Token, error) {
	exp := now.UTC().Add(ttl)
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now.UTC()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return Token{}, errors.Trace(err)
	}
	return Token{Token: signed, ExpiresAt: exp}, nil
}

// ParseToken validates raw and returns its claims. Any failure is Unauthorized.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, errors.Unauthorizedf("invalid token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, errors.Unauthorizedf("invalid token subject")
	}
	return claims, nil
}

// UserID returns the subject as a uuid. Callers get claims from ParseToken,
// which has already checked the subject parses.
func (c *Claims) UserID() uuid.UUID {
	id, _ := uuid.Parse(c.Subject)
	return id
}

func (c *Claims) HasRole(roles ...string) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
