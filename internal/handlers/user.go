package handlers

import (
	"taskforge/internal/middleware"
	"taskforge/internal/services"
	"taskforge/pkg/pagination"
	"taskforge/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type AddUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=user tenant_admin"`
}

// Add 向租户添加用户（仅租户管理员）
func (h *UserHandler) Add(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	tenantID, ok := parseIDParam(c, "tenantId")
	if !ok {
		return
	}

	var req AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.Add(principal, tenantID, services.AddUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		handleError(c, err, "add user")
		return
	}

	response.SuccessWithMessage(c, "用户创建成功", gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      user.Role,
		"tenant_id": user.TenantID,
		"is_active": user.IsActive,
	})
}

// List 租户用户列表
func (h *UserHandler) List(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	tenantID, ok := parseIDParam(c, "tenantId")
	if !ok {
		return
	}

	params := pagination.ParsePageParams(c)
	filter := services.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
	}

	users, total, err := h.userService.List(principal, tenantID, filter, params.Page, params.PageSize)
	if err != nil {
		handleError(c, err, "list users")
		return
	}

	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Update 更新用户
func (h *UserHandler) Update(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.Update(principal, userID, services.UpdateUserInput{
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		handleError(c, err, "update user")
		return
	}

	response.SuccessWithMessage(c, "用户更新成功", gin.H{
		"id":         user.ID,
		"full_name":  user.FullName,
		"role":       user.Role,
		"is_active":  user.IsActive,
		"updated_at": user.UpdatedAt,
	})
}

// Delete 删除用户
func (h *UserHandler) Delete(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.userService.Delete(principal, userID); err != nil {
		handleError(c, err, "delete user")
		return
	}

	response.SuccessWithMessage(c, "用户删除成功", nil)
}
