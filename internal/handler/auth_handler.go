package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/service"
)

type AuthHandler struct {
	svc service.IdentityService
}

func NewAuthHandler(svc service.IdentityService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
		Merchant: req.Merchant,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToAuthResponse(res.User, res.Token))
}
