package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/bookshelf/internal/auth"
	"github.com/openshelf/bookshelf/internal/database/users"
)

// AuthController exposes registration, login, token refresh and profile
// endpoints.
type AuthController struct {
	service *auth.Service
}

func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type profileUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (ctl *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, email and password are required")
		return
	}

	_, err := ctl.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		ctl.respondAuthError(c, err, "register")
		return
	}

	respondCreated(c, SuccessResponse{Message: "User registered successfully"})
}

func (ctl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	user, pair, err := ctl.service.Login(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondUnauthorized(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse{Username: user.Username, Email: user.Email},
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

func (ctl *AuthController) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "refresh token is required")
		return
	}

	pair, err := ctl.service.Refresh(req.Refresh)
	if errors.Is(err, auth.ErrInvalidToken) {
		respondUnauthorized(c, "invalid or expired refresh token")
		return
	}
	if err != nil {
		respondInternalError(c, err, "refresh")
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (ctl *AuthController) Profile(c *gin.Context) {
	user, err := ctl.service.GetProfile(GetUserID(c))
	if errors.Is(err, users.ErrNotFound) {
		respondNotFound(c, "user not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "profile")
		return
	}
	c.JSON(http.StatusOK, userResponse{Username: user.Username, Email: user.Email})
}

func (ctl *AuthController) UpdateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := ctl.service.UpdateProfile(GetUserID(c), auth.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		ctl.respondAuthError(c, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    userResponse{Username: user.Username, Email: user.Email},
	})
}

// respondAuthError maps service errors onto the API error taxonomy.
func (ctl *AuthController) respondAuthError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, auth.ErrUsernameExists), errors.Is(err, auth.ErrEmailExists):
		respondConflict(c, err.Error())
	case errors.Is(err, auth.ErrUsernameInvalid),
		errors.Is(err, auth.ErrEmailInvalid),
		errors.Is(err, auth.ErrNoFields),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrPasswordNoUpper),
		errors.Is(err, auth.ErrPasswordNoLower),
		errors.Is(err, auth.ErrPasswordNoDigit),
		errors.Is(err, auth.ErrPasswordNoSymbol):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}
