package handlers

import (
	"net/http"
	"time"

	"visionm/internal/models"
	"visionm/internal/repositories"
	"visionm/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	profileRepo repositories.ProfileRepository
}

func NewAuthHandlers(authService services.AuthService, profileRepo repositories.ProfileRepository) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		profileRepo: profileRepo,
	}
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Phone    *string `json:"phone"`
}

// AuthResponse pairs the token response with the profile
type AuthResponse struct {
	models.TokenResponse
	Profile *models.Profile `json:"profile"`
}

// Signup handles account registration. New profiles start without a company;
// membership arrives later through a join request or an invite.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, email, and password are required")
	}

	exists, err := h.profileRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check email")
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict, "Profile already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	profile := &models.Profile{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := h.profileRepo.Create(ctx, profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create profile")
	}

	tokenResponse, err := h.authService.GenerateTokens(ctx, profile.ID, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		TokenResponse: *tokenResponse,
		Profile:       profile,
	})
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	profile, err := h.profileRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if profile.PasswordHash == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Account not properly initialized")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	tokenResponse, err := h.authService.GenerateTokens(ctx, profile.ID, profile.CompanyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusOK, AuthResponse{
		TokenResponse: *tokenResponse,
		Profile:       profile,
	})
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}
	if req.GrantType != "refresh_token" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid grant type")
	}

	tokenResponse, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	return c.JSON(http.StatusOK, tokenResponse)
}

// LogoutRequest represents the logout request payload
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the caller's refresh token
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	if err := h.authService.RevokeToken(ctx, req.RefreshToken); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to revoke token")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}
