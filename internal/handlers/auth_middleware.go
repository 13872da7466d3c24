package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arteterapia/workshop-service/internal/services"
)

// JWTAuthMiddleware validates bearer tokens and loads the caller's identity
// into the request context.
type JWTAuthMiddleware struct {
	authService services.AuthService
}

func NewJWTAuthMiddleware(authService services.AuthService) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{authService: authService}
}

// AuthMiddleware rejects requests without a valid access token and sets
// user_id and user_roles for downstream handlers.
func (m *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing authorization header",
			})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid authorization header format",
			})
			return
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_roles", claims.Roles)
		c.Next()
	}
}

// RequireRoleMiddleware checks if the user carries one of the required roles.
func (m *JWTAuthMiddleware) RequireRoleMiddleware(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rolesValue, exists := c.Get("user_roles")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		roles, _ := rolesValue.([]string)
		for _, have := range roles {
			for _, want := range requiredRoles {
				if have == want {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient role permissions",
		})
	}
}
