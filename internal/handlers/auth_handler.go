package handlers

import (
	"time"

	"taskforge/internal/middleware"
	"taskforge/internal/models"
	"taskforge/internal/services"
	"taskforge/pkg/jwt"
	"taskforge/pkg/logger"
	"taskforge/pkg/response"
	"taskforge/pkg/revoke"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService   *services.UserService
	tenantService *services.TenantService
	jwtManager    *jwt.JWTManager
	revokeStore   *revoke.Store // 未配置Redis时为nil
}

func NewAuthHandler(userService *services.UserService, tenantService *services.TenantService, revokeStore *revoke.Store) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		tenantService: tenantService,
		jwtManager:    jwt.GetJWTManager(), // 使用全局JWT管理器
		revokeStore:   revokeStore,
	}
}

type RegisterTenantRequest struct {
	TenantName    string `json:"tenant_name" binding:"required,min=3"`
	Subdomain     string `json:"subdomain" binding:"required,subdomain"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=8"`
	AdminFullName string `json:"admin_full_name" binding:"required"`
}

// RegisterTenant 租户注册 - 创建租户和管理员账号
func (h *AuthHandler) RegisterTenant(c *gin.Context) {
	var req RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	tenant, admin, err := h.tenantService.Register(services.RegisterTenantInput{
		TenantName:    req.TenantName,
		Subdomain:     req.Subdomain,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
		AdminFullName: req.AdminFullName,
	})
	if err != nil {
		handleError(c, err, "register tenant")
		return
	}

	response.SuccessWithMessage(c, "租户注册成功", gin.H{
		"tenant_id": tenant.ID,
		"subdomain": tenant.Subdomain,
		"admin_user": gin.H{
			"id":        admin.ID,
			"email":     admin.Email,
			"full_name": admin.FullName,
			"role":      admin.Role,
		},
	})
}

type LoginRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	TenantSubdomain string `json:"tenant_subdomain"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	TenantID *uint  `json:"tenant_id"`
}

// Login 用户登录。不带子域名是超级管理员入口，带子域名走租户入口。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, _, err := h.userService.Login(req.Email, req.Password, req.TenantSubdomain)
	if err != nil {
		handleError(c, err, "login")
		return
	}

	// 生成Token
	token, err := h.jwtManager.GenerateToken(user.ID, user.TenantID, user.Role, user.Email)
	if err != nil {
		handleError(c, err, "generate token")
		return
	}

	// 计算过期时间
	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
			TenantID: user.TenantID,
		},
	})
}

// Me 获取当前登录用户的完整信息
func (h *AuthHandler) Me(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	user, err := h.userService.GetByID(principal.UserID)
	if err != nil {
		handleError(c, err, "get current user")
		return
	}

	responseData := gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      user.Role,
		"is_active": user.IsActive,
	}

	// 非超级管理员附带所属租户信息
	if user.TenantID != nil {
		var tenant models.Tenant
		if err := h.tenantService.LoadByID(*user.TenantID, &tenant); err == nil {
			responseData["tenant"] = gin.H{
				"id":                tenant.ID,
				"name":              tenant.Name,
				"subdomain":         tenant.Subdomain,
				"subscription_plan": tenant.SubscriptionPlan,
				"max_users":         tenant.MaxUsers,
				"max_projects":      tenant.MaxProjects,
			}
		}
	}

	response.Success(c, responseData)
}

// Logout 用户登出 - 吊销当前令牌并记录审计
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	// 吊销当前令牌，TTL取令牌剩余有效期
	if claims, ok := middleware.GetClaims(c); ok && h.revokeStore != nil && claims.ID != "" {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := h.revokeStore.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
			// 吊销失败不影响登出，令牌到期自然失效
			logger.GetLogger().WithError(err).Warn("吊销令牌失败")
		}
	}

	if err := h.userService.RecordLogout(principal); err != nil {
		handleError(c, err, "logout")
		return
	}

	response.SuccessWithMessage(c, "登出成功", nil)
}
