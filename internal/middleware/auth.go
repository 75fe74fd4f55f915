package middleware

import (
	"strings"

	"github.com/juju/errors"
	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/auth"
)

const claimsKey = "claims"

// JWTAuth validates the Bearer access token and stores its claims on the
// context for ClaimsFrom.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return errors.Unauthorizedf("missing bearer token")
			}
			claims, err := auth.ParseToken(secret, raw)
			if err != nil {
				return err
			}
			SetClaims(c, claims)
			return next(c)
		}
	}
}

func SetClaims(c echo.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
	c.Set("user_id", claims.UserID())
}

// ClaimsFrom returns the claims stored by JWTAuth, or nil on public routes.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

// RequireRole lets the request through when the caller holds any of roles.
// It must run after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return errors.Unauthorizedf("missing credentials")
			}
			if !claims.HasRole(roles...) {
				return errors.Forbiddenf("requires one of %s", strings.Join(roles, ", "))
			}
			return next(c)
		}
	}
}
