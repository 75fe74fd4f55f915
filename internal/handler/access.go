package handler

import (
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/auth"
	"github.com/fullreservas/reservas-api/internal/middleware"
	"github.com/fullreservas/reservas-api/internal/models"
)

var (
	adminRoles    = []string{string(models.RoleAdmin)}
	staffRoles    = []string{string(models.RoleOperator), string(models.RoleAdmin)}
	merchantRoles = []string{string(models.RoleMerchant), string(models.RoleOperator), string(models.RoleAdmin)}
)

func caller(c echo.Context) (*auth.Claims, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return nil, errors.Unauthorizedf("missing credentials")
	}
	return claims, nil
}

func isStaff(claims *auth.Claims) bool {
	return claims.HasRole(staffRoles...)
}

func requireSelfOrStaff(c echo.Context, userID uuid.UUID) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	if claims.UserID() != userID && !isStaff(claims) {
		return errors.Forbiddenf("user %s", userID)
	}
	return nil
}

// requireShopManager passes for staff and for the merchant owning shop.
func requireShopManager(c echo.Context, shop *models.Shop) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	if isStaff(claims) {
		return nil
	}
	if claims.HasRole(string(models.RoleMerchant)) && shop.OwnerID == claims.UserID() {
		return nil
	}
	return errors.Forbiddenf("shop %s", shop.ID)
}
