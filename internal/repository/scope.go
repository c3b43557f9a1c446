package repository

import (
	"taskforge/internal/models"
	"taskforge/internal/policy"

	"gorm.io/gorm"
)

// Scope 租户作用域句柄 - 每个请求从解析出的主体构造一次，
// 之后所有数据访问都经由它取得查询起点，租户过滤不再逐条手写。
// 非超级管理员无法绕过租户过滤发起查询。
type Scope struct {
	principal policy.Principal
	global    bool
}

// ForPrincipal 依据主体构造作用域；超级管理员获得全局作用域
func ForPrincipal(p policy.Principal) Scope {
	return Scope{
		principal: p,
		global:    p.IsSuperAdmin(),
	}
}

// IsGlobal 是否全局作用域（仅超级管理员）
func (s Scope) IsGlobal() bool {
	return s.global
}

// Principal 作用域对应的主体
func (s Scope) Principal() policy.Principal {
	return s.principal
}

// TenantID 作用域绑定的租户，全局作用域返回nil
func (s Scope) TenantID() *uint {
	if s.global {
		return nil
	}
	return s.principal.TenantID
}

// scoped 在查询起点上施加租户过滤；
// 无租户且非超级管理员的主体查不到任何行
func (s Scope) scoped(db *gorm.DB, model interface{}) *gorm.DB {
	query := db.Model(model)
	if s.global {
		return query
	}
	if s.principal.TenantID == nil {
		return query.Where("1 = 0")
	}
	return query.Where("tenant_id = ?", *s.principal.TenantID)
}

// Users 租户内用户查询起点
func (s Scope) Users(db *gorm.DB) *gorm.DB {
	return s.scoped(db, &models.User{})
}

// Projects 租户内项目查询起点
func (s Scope) Projects(db *gorm.DB) *gorm.DB {
	return s.scoped(db, &models.Project{})
}

// Tasks 租户内任务查询起点
func (s Scope) Tasks(db *gorm.DB) *gorm.DB {
	return s.scoped(db, &models.Task{})
}

// InTenant 以指定租户为目标的查询起点，仅当作用域可见该租户时有效。
// 用于超级管理员显式指定租户，或校验URL中的租户参数。
func (s Scope) InTenant(db *gorm.DB, model interface{}, tenantID uint) *gorm.DB {
	query := db.Model(model)
	if s.global || s.principal.BelongsTo(tenantID) {
		return query.Where("tenant_id = ?", tenantID)
	}
	return query.Where("1 = 0")
}
