package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 审计日志 - 只追加，无更新和删除路径；
// 必须与所描述的变更在同一事务内写入
type AuditLog struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	TenantID   *uint          `json:"tenant_id" gorm:"index"` // 超级管理员登录等全局操作为空
	ActorID    uint           `json:"actor_id" gorm:"not null;index"`
	Action     string         `json:"action" gorm:"not null;size:50;index"`
	EntityType string         `json:"entity_type" gorm:"not null;size:20"`
	EntityID   uint           `json:"entity_id" gorm:"not null"`
	Details    datatypes.JSON `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName 表名
func (a *AuditLog) TableName() string {
	return "audit_logs"
}

// 审计动作常量
const (
	AuditRegisterTenant   = "REGISTER_TENANT"
	AuditLogin            = "LOGIN"
	AuditLogout           = "LOGOUT"
	AuditUpdateTenant     = "UPDATE_TENANT"
	AuditCreateUser       = "CREATE_USER"
	AuditUpdateUser       = "UPDATE_USER"
	AuditDeleteUser       = "DELETE_USER"
	AuditCreateProject    = "CREATE_PROJECT"
	AuditUpdateProject    = "UPDATE_PROJECT"
	AuditDeleteProject    = "DELETE_PROJECT"
	AuditCreateTask       = "CREATE_TASK"
	AuditUpdateTask       = "UPDATE_TASK"
	AuditUpdateTaskStatus = "UPDATE_TASK_STATUS"
)

// 审计实体类型常量
const (
	EntityTenant  = "tenant"
	EntityUser    = "user"
	EntityProject = "project"
	EntityTask    = "task"
)
