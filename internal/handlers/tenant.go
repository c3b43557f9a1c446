package handlers

import (
	"taskforge/internal/middleware"
	"taskforge/internal/services"
	"taskforge/pkg/pagination"
	"taskforge/pkg/response"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// List 租户列表（仅超级管理员）
func (h *TenantHandler) List(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	params := pagination.ParsePageParams(c)
	status := c.Query("status")
	plan := c.Query("subscription_plan")

	tenants, total, err := h.tenantService.List(principal, status, plan, params.Page, params.PageSize)
	if err != nil {
		handleError(c, err, "list tenants")
		return
	}

	response.SuccessWithPage(c, tenants, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetDetails 租户详情及统计
func (h *TenantHandler) GetDetails(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	tenantID, ok := parseIDParam(c, "tenantId")
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetDetails(principal, tenantID)
	if err != nil {
		handleError(c, err, "get tenant details")
		return
	}

	response.Success(c, gin.H{
		"id":                tenant.ID,
		"name":              tenant.Name,
		"subdomain":         tenant.Subdomain,
		"status":            tenant.Status,
		"subscription_plan": tenant.SubscriptionPlan,
		"max_users":         tenant.MaxUsers,
		"max_projects":      tenant.MaxProjects,
		"created_at":        tenant.CreatedAt,
		"stats": gin.H{
			"total_users":    tenant.UserCount,
			"total_projects": tenant.ProjectCount,
			"total_tasks":    tenant.TaskCount,
		},
	})
}

type UpdateTenantRequest struct {
	Name             *string `json:"name"`
	Status           *string `json:"status"`
	SubscriptionPlan *string `json:"subscription_plan"`
	MaxUsers         *int    `json:"max_users"`
	MaxProjects      *int    `json:"max_projects"`
}

// Update 更新租户
func (h *TenantHandler) Update(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	tenantID, ok := parseIDParam(c, "tenantId")
	if !ok {
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	tenant, err := h.tenantService.Update(principal, tenantID, services.UpdateTenantInput{
		Name:             req.Name,
		Status:           req.Status,
		SubscriptionPlan: req.SubscriptionPlan,
		MaxUsers:         req.MaxUsers,
		MaxProjects:      req.MaxProjects,
	})
	if err != nil {
		handleError(c, err, "update tenant")
		return
	}

	response.SuccessWithMessage(c, "租户更新成功", gin.H{
		"id":         tenant.ID,
		"name":       tenant.Name,
		"updated_at": tenant.UpdatedAt,
	})
}
