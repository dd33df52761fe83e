package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"goblog-api/internal/app"
	"goblog-api/internal/model"
	"goblog-api/internal/transport/http/response"
)

const ContextUserKey = "current_user"

// unauthorizedMessage is shared by every token failure so clients cannot
// tell an expired token from a forged one or a deleted account.
const unauthorizedMessage = "could not validate credentials"

func AuthJWT(guard *app.Guard, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			RecordAuthAttempt("authenticate", false)
			response.Unauthorized(c, response.CodeUnauthorized, unauthorizedMessage)
			return
		}

		user, err := guard.Authenticate(c.Request.Context(), token)
		if err != nil {
			if app.IsAuthFailure(err) {
				RecordAuthAttempt("authenticate", false)
				log.Debug().Err(err).Str("path", c.FullPath()).Msg("reject bearer token")
				response.Unauthorized(c, response.CodeUnauthorized, unauthorizedMessage)
				return
			}
			log.Error().Err(err).Msg("authenticate request failed")
			response.Error(c, 500, response.CodeInternalServer, "authenticate request failed")
			c.Abort()
			return
		}

		RecordAuthAttempt("authenticate", true)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by AuthJWT.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
