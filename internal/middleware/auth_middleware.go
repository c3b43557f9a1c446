package middleware

import (
	"strings"

	"taskforge/internal/policy"
	"taskforge/pkg/jwt"
	"taskforge/pkg/response"
	"taskforge/pkg/revoke"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextPrincipal = "principal"
	ContextClaims    = "claims"
)

// AuthMiddleware 认证中间件 - 把请求凭证解析为主体。
// 凭证验证通过后构造的Principal在本次请求内被下游直接信任。
type AuthMiddleware struct {
	jwtManager  *jwt.JWTManager
	revokeStore *revoke.Store // 未配置Redis时为nil
}

func NewAuthMiddleware(revokeStore *revoke.Store) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
		revokeStore: revokeStore,
	}
}

// RequireLogin 要求携带有效令牌
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		// 提取token
		tokenString := authHeader[7:] // 去掉 "Bearer "

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 检查是否已登出吊销
		if m.revokeStore != nil && claims.ID != "" {
			revoked, err := m.revokeStore.IsRevoked(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, "Token已失效")
				c.Abort()
				return
			}
		}

		// 构造主体并保存到上下文
		principal := policy.Principal{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Role:     claims.Role,
		}
		c.Set(ContextPrincipal, principal)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// GetPrincipal 从上下文取当前主体
func GetPrincipal(c *gin.Context) (policy.Principal, bool) {
	value, exists := c.Get(ContextPrincipal)
	if !exists {
		return policy.Principal{}, false
	}
	principal, ok := value.(policy.Principal)
	return principal, ok
}

// GetClaims 从上下文取令牌声明
func GetClaims(c *gin.Context) (*jwt.JWTClaims, bool) {
	value, exists := c.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*jwt.JWTClaims)
	return claims, ok
}
