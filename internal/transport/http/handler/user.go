package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goblog-api/internal/app"
	"goblog-api/internal/transport/http/response"
)

type UserHandler struct {
	userService *app.UserService
}

type PatchUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=128"`
	FirstName *string `json:"first_name" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name" binding:"omitempty,max=64"`
}

func NewUserHandler(userService *app.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	users, err := h.userService.List(c.Request.Context(), page)
	if err != nil {
		writeServiceError(c, err, "list users failed")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	response.OK(c, out)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "get user failed")
		return
	}
	response.OK(c, newUserResponse(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req PatchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, app.UserPatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, actor)
	if err != nil {
		writeServiceError(c, err, "update user failed")
		return
	}
	response.OK(c, newUserResponse(user))
}
