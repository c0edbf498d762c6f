package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/service"
)

const (
	ctxUserID = "user_id"
	ctxClaims = "claims"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware validates JWT token and adds user info to context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			_ = c.Error(domain.ErrNoToken)
			c.Abort()
			return
		}

		claims, err := authService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present and otherwise
// continues anonymously
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := authService.ValidateAccessToken(c.Request.Context(), token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles admits only the listed roles. Must run after AuthMiddleware.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			_ = c.Error(domain.ErrNoToken)
			c.Abort()
			return
		}

		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}

		_ = c.Error(domain.ErrInsufficientRole)
		c.Abort()
	}
}

// RequireMinRole admits min and every role above it in the hierarchy
func RequireMinRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			_ = c.Error(domain.ErrNoToken)
			c.Abort()
			return
		}

		if !claims.Role.AtLeast(min) {
			_ = c.Error(domain.ErrInsufficientRole)
			c.Abort()
			return
		}

		c.Next()
	}
}

func setClaims(c *gin.Context, claims *domain.TokenClaims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxClaims, claims)
}

func currentClaims(c *gin.Context) (*domain.TokenClaims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.TokenClaims)
	return claims, ok
}
