package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextClaimsKey gin上下文中的JWT载荷键
	ContextClaimsKey = "authClaims"
)

// Authenticate 认证中间件，要求携带有效的Bearer token
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "未登录",
			})
			return
		}

		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "token格式错误",
			})
			return
		}

		claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "token无效或已过期",
			})
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件，token有效则注入身份，无token照常放行
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			if claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret); err == nil {
				c.Set(ContextClaimsKey, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles 角色门禁中间件，角色不在白名单内返回403
func RequireRoles(roles ...Role) gin.HandlerFunc {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "未登录",
			})
			return
		}

		role, err := ParseRole(claims.Role)
		if err != nil || !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "没有访问权限",
			})
			return
		}

		c.Next()
	}
}

// ClaimsFrom 从gin上下文取出JWT载荷，未认证时返回nil
func ClaimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
