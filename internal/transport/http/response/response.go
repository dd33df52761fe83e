package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeEmailExists        = 40002
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeForbidden          = 40300
	CodeUserNotFound       = 40401
	CodePostNotFound       = 40402
	CodeRouteNotFound      = 40404
	CodeInternalServer     = 50000
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// OKMessage is OK with a caller supplied message.
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// Unauthorized writes the single 401 answer used for every authentication
// failure and aborts the chain.
func Unauthorized(c *gin.Context, code int, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, 401, code, message)
	c.Abort()
}
