package handlers

import (
	"taskforge/internal/middleware"
	"taskforge/internal/services"
	"taskforge/pkg/pagination"
	"taskforge/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,min=3"`
	Description *string `json:"description"`
	Status      string  `json:"status" binding:"omitempty,oneof=active archived completed"`
}

// Create 创建项目
func (h *ProjectHandler) Create(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	project, err := h.projectService.Create(principal, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		handleError(c, err, "create project")
		return
	}

	response.SuccessWithMessage(c, "项目创建成功", project)
}

// List 项目列表
func (h *ProjectHandler) List(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	params := pagination.ParsePageParams(c)
	filter := services.ProjectFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	projects, total, err := h.projectService.List(principal, filter, params.Page, params.PageSize)
	if err != nil {
		handleError(c, err, "list projects")
		return
	}

	response.SuccessWithPage(c, projects, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Update 更新项目
func (h *ProjectHandler) Update(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	project, err := h.projectService.Update(principal, projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		handleError(c, err, "update project")
		return
	}

	response.SuccessWithMessage(c, "项目更新成功", project)
}

// Delete 删除项目（级联删除其任务）
func (h *ProjectHandler) Delete(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	if err := h.projectService.Delete(principal, projectID); err != nil {
		handleError(c, err, "delete project")
		return
	}

	response.SuccessWithMessage(c, "项目删除成功", nil)
}
