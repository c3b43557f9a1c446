package models

// Tenant 租户模型 - 贫血模型，只包含数据结构
type Tenant struct {
	BaseModel
	Name             string `json:"name" gorm:"not null;size:100"`
	Subdomain        string `json:"subdomain" gorm:"unique;not null;size:63;index"` // 全小写
	Status           string `json:"status" gorm:"default:'active';size:20"`
	SubscriptionPlan string `json:"subscription_plan" gorm:"default:'free';size:20"`
	MaxUsers         int    `json:"max_users" gorm:"not null;default:5"`
	MaxProjects      int    `json:"max_projects" gorm:"not null;default:3"`

	// 统计字段，不存储在数据库中
	UserCount    int64 `json:"user_count,omitempty" gorm:"-"`
	ProjectCount int64 `json:"project_count,omitempty" gorm:"-"`
	TaskCount    int64 `json:"task_count,omitempty" gorm:"-"`
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// 租户状态常量
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// 订阅套餐常量
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// 注册默认配额（free套餐）
const (
	DefaultMaxUsers    = 5
	DefaultMaxProjects = 3
)
