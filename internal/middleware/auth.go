package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArtyomSF99/url-shortener/internal/jwt"
	"github.com/ArtyomSF99/url-shortener/internal/models"
)

const (
	UserIDKey = "user_id"
	EmailKey  = "email"
)

// AuthMiddleware requires a valid bearer token and stores the user id and
// email from its claims on the context.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "missing authorization header",
				Code:  models.CodeUnauthenticated,
			})
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: jwt.ErrInvalidToken.Error(),
				Code:  models.CodeUnauthenticated,
			})
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(EmailKey, claims.Email)

		c.Next()
	}
}
