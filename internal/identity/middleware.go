package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 认证本身由上游网关完成。网关校验会话后，把用户身份
// 以请求头的形式注入到转发给本服务的请求中。

const (
	// UserIDHeader 是网关注入的用户ID请求头
	UserIDHeader = "X-User-Id"
	// RoleHeader 是网关注入的角色请求头
	RoleHeader = "X-User-Role"

	// UserIDKey 是用户ID在Gin上下文中的键
	UserIDKey = "userID"

	// RoleAdmin 是管理员角色的取值
	RoleAdmin = "admin"
)

// LoadUserMiddleware 读取网关注入的用户ID并放入Gin上下文。
// 没有身份时不拦截，由需要身份的处理器自行决定。
func LoadUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, c.GetHeader(UserIDHeader))
		c.Next()
	}
}

// RequireUser 要求请求携带已认证的用户身份
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(UserIDHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未认证的请求"})
			return
		}
		c.Set(UserIDKey, c.GetHeader(UserIDHeader))
		c.Next()
	}
}

// RequireAdmin 要求请求携带管理员身份
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(UserIDHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未认证的请求"})
			return
		}
		if c.GetHeader(RoleHeader) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "需要管理员权限"})
			return
		}
		c.Set(UserIDKey, c.GetHeader(UserIDHeader))
		c.Next()
	}
}

// UserID 从Gin上下文中取出当前用户ID
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
