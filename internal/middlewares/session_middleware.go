package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"query-genie/internal/apis/dtos"
	"query-genie/internal/utils"
)

// SessionMiddleware resolves the session token when one is sent. Requests
// without a token continue with no session, which the pipeline reports as
// not connected.
func SessionMiddleware(jwtService utils.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errorMsg := "Invalid authorization format. Use: Bearer <token>"
			c.JSON(http.StatusUnauthorized, dtos.Response{
				Success: false,
				Error:   &errorMsg,
			})
			c.Abort()
			return
		}

		sessionID, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			errorMsg := "Invalid or expired session token"
			c.JSON(http.StatusUnauthorized, dtos.Response{
				Success: false,
				Error:   &errorMsg,
			})
			c.Abort()
			return
		}

		c.Set("sessionID", sessionID)
		c.Next()
	}
}
