package middleware

import (
	"errors"
	"questionnaire_backend/internal/session"
	"questionnaire_backend/internal/util"
	"questionnaire_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 解析 token 并加载会话，会话已被清除的 token 视为无效
func AuthMiddleware(secret string, store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		sess, err := store.Get(c.Request.Context(), claims.ID)
		if errors.Is(err, session.ErrNotFound) {
			util.Error(c, 401, util.ErrSessionExpired.Error())
			c.Abort()
			return
		}
		if err != nil {
			util.LogInternalError(c, err)
			c.Abort()
			return
		}
		if sess.UserID != claims.UserID {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

// RoleMiddleware 会话中包含任一角色即放行
func RoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c.Request.Context())
		if sess == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if sess.HasRole(role) {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}
