package middleware

import (
	"net/http"
	"strings"

	"github.com/acadlabs/assessment-engine/internal/dto"
	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/acadlabs/assessment-engine/internal/service"
	"github.com/gin-gonic/gin"
)

const userContextKey = "currentUser"

// TokenAuth resolves "Authorization: Token <key>" headers to a user and
// aborts with 401 when the token is missing or invalid.
func TokenAuth(userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		key := ""
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Token") {
			key = strings.TrimSpace(parts[1])
		}

		user, err := userService.Authenticate(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Authentication required"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireStaff must run after TokenAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Message: "Staff access required"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *model.User {
	if val, ok := c.Get(userContextKey); ok {
		if user, ok := val.(*model.User); ok {
			return user
		}
	}
	return nil
}
