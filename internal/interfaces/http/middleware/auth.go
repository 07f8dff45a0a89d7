package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/castpass/castpass/internal/infrastructure/auth"
	"github.com/castpass/castpass/internal/shared/constants"
	"github.com/castpass/castpass/internal/shared/logger"
	"github.com/castpass/castpass/internal/shared/utils"
)

// AuthMiddleware binds the caller to a fid taken from a bearer JWT subject.
type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		fid, err := claims.FID()
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "token subject is not a fid")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyFID, fid)

		c.Next()
	}
}
