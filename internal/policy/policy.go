package policy

import "taskforge/internal/models"

// Principal 已认证主体 - 由认证中间件从令牌解析得到，请求期间不再变化
type Principal struct {
	UserID   uint
	TenantID *uint // 仅超级管理员为空
	Role     string
}

// IsSuperAdmin 是否平台超级管理员
func (p Principal) IsSuperAdmin() bool {
	return p.Role == models.RoleSuperAdmin
}

// BelongsTo 是否属于指定租户
func (p Principal) BelongsTo(tenantID uint) bool {
	return p.TenantID != nil && *p.TenantID == tenantID
}

// Action 操作标识
type Action string

const (
	ActionTenantView           Action = "tenant.view"
	ActionTenantList           Action = "tenant.list"
	ActionTenantUpdateName     Action = "tenant.update_name"
	ActionTenantUpdateSettings Action = "tenant.update_settings" // status/套餐/配额
	ActionUserCreate           Action = "user.create"
	ActionUserList             Action = "user.list"
	ActionUserUpdateProfile    Action = "user.update_profile"
	ActionUserUpdateRole       Action = "user.update_role" // role/is_active
	ActionUserDelete           Action = "user.delete"
	ActionProjectCreate        Action = "project.create"
	ActionProjectList          Action = "project.list"
	ActionProjectUpdate        Action = "project.update"
	ActionProjectDelete        Action = "project.delete"
	ActionTaskCreate           Action = "task.create"
	ActionTaskList             Action = "task.list"
	ActionTaskUpdate           Action = "task.update"
)

// Facts 目标资源的归属事实，由调用方查出后传入
type Facts struct {
	CreatedBy    uint // 项目创建者
	TargetUserID uint // 用户操作的目标用户
}

// capability 同租户内的放行条件
type capability struct {
	roles    []string // 按角色放行
	owner    bool     // 创建者放行
	self     bool     // 操作自己放行
	denySelf bool     // 禁止操作自己（优先于其他条件）
}

var memberRoles = []string{models.RoleTenantAdmin, models.RoleUser}
var adminOnly = []string{models.RoleTenantAdmin}

// 能力表 - 按(操作, 角色, 归属条件)声明租户内的权限，
// 取代散落在各调用点的条件判断
var capabilities = map[Action]capability{
	ActionTenantView:           {roles: memberRoles},
	ActionTenantList:           {}, // 仅超级管理员（规则1）
	ActionTenantUpdateName:     {roles: adminOnly},
	ActionTenantUpdateSettings: {}, // 仅超级管理员（规则1）
	ActionUserCreate:           {roles: adminOnly},
	ActionUserList:             {roles: memberRoles},
	ActionUserUpdateProfile:    {roles: adminOnly, self: true},
	ActionUserUpdateRole:       {roles: adminOnly},
	ActionUserDelete:           {roles: adminOnly, denySelf: true},
	ActionProjectCreate:        {roles: memberRoles},
	ActionProjectList:          {roles: memberRoles},
	ActionProjectUpdate:        {roles: adminOnly, owner: true},
	ActionProjectDelete:        {roles: adminOnly, owner: true},
	// 任务对租户内所有成员开放读写，沿用既有行为，收紧前需先确认
	ActionTaskCreate: {roles: memberRoles},
	ActionTaskList:   {roles: memberRoles},
	ActionTaskUpdate: {roles: memberRoles},
}

// Can 纯决策函数：相同输入永远得到相同结论，无隐藏状态。
// 规则按优先级评估：
//  1. 超级管理员放行（任意租户）
//  2. 跨租户一律拒绝（targetTenantID为空表示全局操作，同样拒绝）
//  3. 同租户内按能力表评估
func Can(p Principal, action Action, targetTenantID *uint, facts Facts) bool {
	rule, ok := capabilities[action]
	if !ok {
		return false
	}

	// 自删除保护对超级管理员同样生效
	if rule.denySelf && facts.TargetUserID == p.UserID {
		return false
	}

	if p.IsSuperAdmin() {
		return true
	}

	if targetTenantID == nil || !p.BelongsTo(*targetTenantID) {
		return false
	}

	for _, role := range rule.roles {
		if p.Role == role {
			return true
		}
	}
	if rule.owner && facts.CreatedBy == p.UserID {
		return true
	}
	if rule.self && facts.TargetUserID == p.UserID {
		return true
	}

	return false
}
