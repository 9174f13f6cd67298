package controller

import (
	"errors"
	"net/http"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/service"
	apperrors "github.com/Sahani-Mohottige/SafeOnlineShop/internal/errors"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func userJSON(user *model.User) gin.H {
	return gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
}

// Register handles user registration
// POST /api/v1/users/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, nil)
		return
	}

	user, tokens, err := ctrl.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, log, err, "Register user", map[string]interface{}{
			"email": req.Email,
		})
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userJSON(user),
		"tokens":  tokens,
	})
}

// Login handles user login
// POST /api/v1/users/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, nil)
		return
	}

	user, tokens, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, log, err, "Login", map[string]interface{}{
			"email": req.Email,
		})
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userJSON(user),
		"tokens":  tokens,
	})
}

// RefreshToken handles token refresh
// POST /api/v1/users/refresh
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, nil)
		return
	}

	tokens, err := ctrl.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrExpiredToken) {
			log.Warn("Token refresh failed: token expired", nil)
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Refresh token has expired, please log in again")
			return
		}
		if errors.Is(err, service.ErrInvalidToken) {
			log.Warn("Token refresh failed: invalid token", nil)
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid refresh token, please log in again")
			return
		}
		respondServiceError(c, log, err, "Refresh token", nil)
		return
	}

	log.Info("Token refreshed successfully")
	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"tokens":  tokens,
	})
}

// GetProfile returns the current user
// GET /api/v1/users/profile
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, log, err, "Fetch user", map[string]interface{}{
			"user_id": userID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": userJSON(user),
	})
}

// UpdateProfile updates name, email or password of the current user
// PUT /api/v1/users/profile
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, log, err, map[string]interface{}{"user_id": userID})
		return
	}

	user, err := ctrl.authService.UpdateProfile(c.Request.Context(), userID, req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, log, err, "Update user", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	log.Info("Profile updated", map[string]interface{}{
		"user_id": userID,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    userJSON(user),
	})
}

// IssueGuestID hands out an anonymous cart identity
// POST /api/v1/auth/guest
func (ctrl *AuthController) IssueGuestID(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"guest_id": service.NewGuestID(),
	})
}
