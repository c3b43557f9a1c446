package handlers

import (
	"strconv"
	"time"

	"taskforge/internal/middleware"
	"taskforge/internal/services"
	"taskforge/pkg/pagination"
	"taskforge/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=3"`
	Description *string    `json:"description"`
	AssignedTo  *uint      `json:"assigned_to"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

// Create 在项目下创建任务
func (h *TaskHandler) Create(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	task, err := h.taskService.Create(principal, projectID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		handleError(c, err, "create task")
		return
	}

	response.SuccessWithMessage(c, "任务创建成功", task)
}

// List 项目任务列表
func (h *TaskHandler) List(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	params := pagination.ParsePageParams(c)
	filter := services.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("assigned_to"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			assignee := uint(id)
			filter.AssignedTo = &assignee
		}
	}

	tasks, total, err := h.taskService.List(principal, projectID, filter, params.Page, params.PageSize)
	if err != nil {
		handleError(c, err, "list tasks")
		return
	}

	response.SuccessWithPage(c, tasks, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=todo in_progress completed"`
}

// UpdateStatus 更新任务状态
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	taskID, ok := parseIDParam(c, "taskId")
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	task, err := h.taskService.UpdateStatus(principal, taskID, req.Status)
	if err != nil {
		handleError(c, err, "update task status")
		return
	}

	response.Success(c, gin.H{
		"id":         task.ID,
		"status":     task.Status,
		"updated_at": task.UpdatedAt,
	})
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status"`
	Priority      *string    `json:"priority"`
	AssignedTo    *uint      `json:"assigned_to"`
	ClearAssignee bool       `json:"clear_assignee"`
	DueDate       *time.Time `json:"due_date"`
}

// Update 更新任务
func (h *TaskHandler) Update(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	taskID, ok := parseIDParam(c, "taskId")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	task, err := h.taskService.Update(principal, taskID, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssignedTo:    req.AssignedTo,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
	})
	if err != nil {
		handleError(c, err, "update task")
		return
	}

	response.SuccessWithMessage(c, "任务更新成功", task)
}
