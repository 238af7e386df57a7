package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lac-hong-legacy/authguard/dto"
	"github.com/lac-hong-legacy/authguard/middleware"
	"github.com/lac-hong-legacy/authguard/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
	userSvc UserServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface, userSvc UserServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
		userSvc: userSvc,
	}
}

// @Summary Register a new user
// @Description Create a new account with a unique login ID and email
// @Tags auth
// @Accept json
// @Produce json
// @Param signupRequest body dto.SignupRequest true "Registration details"
// @Success 201 {object} shared.Response{data=dto.SignupResponse}
// @Router /api/v1/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.userSvc.Signup(&req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "User registered successfully", resp)
}

// @Summary Login
// @Description Authenticate with login ID and password, returning a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login credentials"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	clientIP := middleware.GetClientIP(c)
	userAgent := c.Get("User-Agent")

	resp, err := h.authSvc.Login(&req, clientIP, userAgent)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", resp)
}

// @Summary Refresh tokens
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshRequest body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} shared.Response{data=dto.TokenPair}
// @Router /api/v1/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "invalid request body")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	clientIP := middleware.GetClientIP(c)
	userAgent := c.Get("User-Agent")

	resp, err := h.authSvc.RefreshTokens(req.RefreshToken, clientIP, userAgent)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Tokens refreshed", resp)
}

// @Summary Logout
// @Description End the caller's active session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response
// @Router /api/v1/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)
	if userID == "" {
		return shared.ResponseUnauthorized(c)
	}

	if err := h.authSvc.Logout(userID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Logged out", nil)
}

// @Summary Check login ID availability
// @Description Report whether a login ID is free to register
// @Tags auth
// @Produce json
// @Param login_id query string true "Login ID to check"
// @Success 200 {object} shared.Response{data=dto.CheckIDResponse}
// @Router /api/v1/check-id [get]
func (h *AuthHandler) CheckID(c *fiber.Ctx) error {
	loginID := c.Query("login_id")
	if loginID == "" {
		return shared.ResponseBadRequest(c, "login_id is required")
	}

	resp, err := h.userSvc.CheckLoginID(loginID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Current user
// @Description Return the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.UserInfo}
// @Router /api/v1/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)
	if userID == "" {
		return shared.ResponseUnauthorized(c)
	}

	resp, err := h.authSvc.Profile(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
