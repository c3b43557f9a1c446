package models

import (
	"golang.org/x/crypto/bcrypt"
)

// User 用户模型 - 邮箱在租户内唯一（统一存小写）
type User struct {
	BaseModel
	TenantID     *uint  `json:"tenant_id" gorm:"index;uniqueIndex:idx_users_tenant_email"` // 仅超级管理员为空
	Email        string `json:"email" gorm:"not null;size:100;uniqueIndex:idx_users_tenant_email"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`
	FullName     string `json:"full_name" gorm:"not null;size:100"`
	Role         string `json:"role" gorm:"not null;default:'user';size:20"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 用户角色常量
const (
	RoleSuperAdmin  = "super_admin"
	RoleTenantAdmin = "tenant_admin"
	RoleUser        = "user"
)

// IsValidRole 检查租户内角色是否有效（super_admin不能通过用户管理接口赋予）
func IsValidRole(role string) bool {
	return role == RoleTenantAdmin || role == RoleUser
}

// SetPassword 设置密码 - 数据操作方法
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码 - 数据操作方法
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
