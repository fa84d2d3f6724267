package middleware

import (
	"net/http"
	"strings"

	"parley-chat/internal/services"
	"parley-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is the gin context key holding the authenticated user id.
const ContextUserIDKey = "user_id"

func AuthMiddleware(service *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := service.Authenticate(c.Request.Context(), ExtractBearer(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Request = c.Request.WithContext(services.WithUserContext(c.Request.Context(), userID))
		c.Next()
	}
}

// ExtractBearer returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
