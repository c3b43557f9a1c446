package models

// Project 项目模型 - tenant_id创建后不可变，始终等于创建者所属租户
type Project struct {
	BaseModel
	TenantID    uint    `json:"tenant_id" gorm:"not null;index"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`
	Status      string  `json:"status" gorm:"default:'active';size:20"`
	CreatedBy   uint    `json:"created_by" gorm:"not null;index"`
}

// TableName 表名
func (p *Project) TableName() string {
	return "projects"
}

// 项目状态常量
const (
	ProjectStatusActive    = "active"
	ProjectStatusArchived  = "archived"
	ProjectStatusCompleted = "completed"
)

// IsValidProjectStatus 检查项目状态是否有效
func IsValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusActive, ProjectStatusArchived, ProjectStatusCompleted:
		return true
	default:
		return false
	}
}
