package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"goblog-api/internal/app"
	"goblog-api/internal/model"
	"goblog-api/internal/transport/http/middleware"
	"goblog-api/internal/transport/http/response"
)

// writeServiceError maps the service error taxonomy onto status codes.
// failMessage is used for anything unexpected.
func writeServiceError(c *gin.Context, err error, failMessage string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrDuplicateEmail):
		response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
	case errors.Is(err, app.ErrUnauthorized):
		response.Unauthorized(c, response.CodeUnauthorized, err.Error())
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrPostNotFound):
		response.Error(c, http.StatusNotFound, response.CodePostNotFound, err.Error())
	case errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, failMessage)
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

type pageQuery struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

func parsePage(c *gin.Context) (app.Page, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "skip and limit must be integers")
		return app.Page{}, false
	}
	return app.Page{Skip: q.Skip, Limit: q.Limit}, true
}

func requireUser(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, response.CodeUnauthorized, "user not found in token")
		return nil, false
	}
	return user, true
}
