package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goblog-api/internal/app"
	"goblog-api/internal/model"
	"goblog-api/internal/transport/http/middleware"
	"goblog-api/internal/transport/http/response"
)

type AuthHandler struct {
	authService        *app.AuthService
	revealUnknownEmail bool
}

type RegisterRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email,max=128"`
	Password  string `json:"password" form:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" form:"first_name" binding:"required,max=64"`
	LastName  string `json:"last_name" form:"last_name" binding:"required,max=64"`
}

// LoginRequest accepts the OAuth2 password grant field "username" as an
// alias for email.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UserResponse is the public view of a user; the password hash never leaves
// the service.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAuthHandler(authService *app.AuthService, revealUnknownEmail bool) *AuthHandler {
	return &AuthHandler{authService: authService, revealUnknownEmail: revealUnknownEmail}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	middleware.RecordAuthAttempt("register", err == nil)
	if err != nil {
		writeServiceError(c, err, "register failed")
		return
	}

	response.OK(c, newUserResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	email := req.Email
	if email == "" {
		email = req.Username
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    email,
		Password: req.Password,
	})
	middleware.RecordAuthAttempt("login", err == nil)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUserNotFound) && h.revealUnknownEmail:
			response.Error(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
		case errors.Is(err, app.ErrUserNotFound), errors.Is(err, app.ErrInvalidCredentials):
			response.Unauthorized(c, response.CodeInvalidCredentials, app.ErrInvalidCredentials.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	response.OK(c, newUserResponse(user))
}

func newUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
