package models

import "time"

// Task 任务模型 - tenant_id冗余自所属项目，不可独立设置
type Task struct {
	BaseModel
	ProjectID   uint       `json:"project_id" gorm:"not null;index"`
	TenantID    uint       `json:"tenant_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null;size:200"`
	Description *string    `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"default:'todo';size:20"`
	Priority    string     `json:"priority" gorm:"default:'medium';size:10"`
	AssignedTo  *uint      `json:"assigned_to" gorm:"index"` // 被指派人必须属于任务所在租户
	DueDate     *time.Time `json:"due_date"`
}

// TableName 表名
func (t *Task) TableName() string {
	return "tasks"
}

// 任务状态常量 - 三个状态互相可达，无终态锁定
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// 任务优先级常量
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// IsValidTaskStatus 检查任务状态是否有效
func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidTaskPriority 检查任务优先级是否有效
func IsValidTaskPriority(priority string) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
