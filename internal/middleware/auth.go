package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healteex/api/internal/config"
	"healteex/api/internal/repository"
	"healteex/api/internal/security"
	"healteex/api/internal/service"
)

func Auth(cfg *config.AppConfig, users *repository.UserRepository, auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, credential, ok := splitAuthHeader(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		switch scheme {
		case "Bearer":
			claims, err := security.ParseToken(credential, cfg.Security.JWTSecret)
			if err != nil || claims.TokenType != security.TokenTypeAccess {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
				return
			}

			user, err := users.GetByID(c.Request.Context(), claims.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
				return
			}

			c.Set("current_user", user)

		case "Token":
			user, err := auth.ResolveLegacyToken(c.Request.Context(), credential)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
				return
			}

			c.Set("current_user", user)

		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		c.Next()
	}
}

func splitAuthHeader(header string) (scheme string, credential string, ok bool) {
	if header == "" {
		return "", "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSpace(parts[1]), true
}
