package policy

import (
	"taskforge/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint {
	return &v
}

func TestCan_SuperAdmin(t *testing.T) {
	super := Principal{UserID: 1, TenantID: nil, Role: models.RoleSuperAdmin}

	// 超级管理员对任意租户的任意操作放行
	actions := []Action{
		ActionTenantView, ActionTenantList, ActionTenantUpdateName, ActionTenantUpdateSettings,
		ActionUserCreate, ActionUserList, ActionUserUpdateProfile, ActionUserUpdateRole,
		ActionProjectCreate, ActionProjectUpdate, ActionProjectDelete,
		ActionTaskCreate, ActionTaskList, ActionTaskUpdate,
	}
	for _, action := range actions {
		assert.True(t, Can(super, action, uintPtr(42), Facts{}), "super_admin denied %s", action)
	}

	// 全局操作同样放行
	assert.True(t, Can(super, ActionTenantList, nil, Facts{}))

	// 自删除保护对超级管理员同样生效
	assert.False(t, Can(super, ActionUserDelete, uintPtr(42), Facts{TargetUserID: 1}))
	assert.True(t, Can(super, ActionUserDelete, uintPtr(42), Facts{TargetUserID: 2}))
}

func TestCan_CrossTenantDenied(t *testing.T) {
	admin := Principal{UserID: 10, TenantID: uintPtr(1), Role: models.RoleTenantAdmin}
	member := Principal{UserID: 11, TenantID: uintPtr(1), Role: models.RoleUser}

	// 跨租户一律拒绝，角色再高也一样
	for _, p := range []Principal{admin, member} {
		assert.False(t, Can(p, ActionTenantView, uintPtr(2), Facts{}))
		assert.False(t, Can(p, ActionProjectUpdate, uintPtr(2), Facts{CreatedBy: p.UserID}))
		assert.False(t, Can(p, ActionTaskUpdate, uintPtr(2), Facts{}))
		assert.False(t, Can(p, ActionUserCreate, uintPtr(2), Facts{}))
	}

	// 全局操作对非超级管理员拒绝
	assert.False(t, Can(admin, ActionTenantList, nil, Facts{}))
	assert.False(t, Can(admin, ActionTenantUpdateSettings, uintPtr(1), Facts{}))
}

func TestCan_TenantRules(t *testing.T) {
	admin := Principal{UserID: 10, TenantID: uintPtr(1), Role: models.RoleTenantAdmin}
	member := Principal{UserID: 11, TenantID: uintPtr(1), Role: models.RoleUser}
	tenant := uintPtr(1)

	tests := []struct {
		name   string
		p      Principal
		action Action
		facts  Facts
		want   bool
	}{
		{"成员可查看租户", member, ActionTenantView, Facts{}, true},
		{"管理员可改租户名称", admin, ActionTenantUpdateName, Facts{}, true},
		{"成员不可改租户名称", member, ActionTenantUpdateName, Facts{}, false},
		{"管理员不可改租户设置", admin, ActionTenantUpdateSettings, Facts{}, false},

		{"管理员可添加用户", admin, ActionUserCreate, Facts{}, true},
		{"成员不可添加用户", member, ActionUserCreate, Facts{}, false},
		{"成员可查看用户列表", member, ActionUserList, Facts{}, true},
		{"本人可改自己资料", member, ActionUserUpdateProfile, Facts{TargetUserID: 11}, true},
		{"本人不可改自己角色", member, ActionUserUpdateRole, Facts{TargetUserID: 11}, false},
		{"管理员可改他人角色", admin, ActionUserUpdateRole, Facts{TargetUserID: 11}, true},
		{"成员不可改他人资料", member, ActionUserUpdateProfile, Facts{TargetUserID: 12}, false},
		{"管理员可删他人", admin, ActionUserDelete, Facts{TargetUserID: 11}, true},
		{"管理员不可删自己", admin, ActionUserDelete, Facts{TargetUserID: 10}, false},
		{"成员不可删用户", member, ActionUserDelete, Facts{TargetUserID: 12}, false},

		{"成员可创建项目", member, ActionProjectCreate, Facts{}, true},
		{"创建者可改项目", member, ActionProjectUpdate, Facts{CreatedBy: 11}, true},
		{"非创建者成员不可改项目", member, ActionProjectUpdate, Facts{CreatedBy: 10}, false},
		{"管理员可改任意项目", admin, ActionProjectUpdate, Facts{CreatedBy: 11}, true},
		{"创建者可删项目", member, ActionProjectDelete, Facts{CreatedBy: 11}, true},
		{"非创建者成员不可删项目", member, ActionProjectDelete, Facts{CreatedBy: 10}, false},

		// 任务对租户内所有成员开放
		{"成员可创建任务", member, ActionTaskCreate, Facts{}, true},
		{"成员可修改任意任务", member, ActionTaskUpdate, Facts{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.p, tt.action, tenant, tt.facts))
		})
	}
}

func TestCan_UnknownAction(t *testing.T) {
	super := Principal{UserID: 1, Role: models.RoleSuperAdmin}
	assert.False(t, Can(super, Action("bogus.action"), uintPtr(1), Facts{}))
}

func TestCan_NoTenantPrincipal(t *testing.T) {
	// 无租户且非超级管理员的主体什么都做不了
	orphan := Principal{UserID: 5, TenantID: nil, Role: models.RoleUser}
	assert.False(t, Can(orphan, ActionProjectCreate, uintPtr(1), Facts{}))
	assert.False(t, Can(orphan, ActionTenantView, nil, Facts{}))
}

func TestCan_IsPure(t *testing.T) {
	// 相同输入永远得到相同结论
	p := Principal{UserID: 7, TenantID: uintPtr(3), Role: models.RoleUser}
	for i := 0; i < 100; i++ {
		assert.True(t, Can(p, ActionTaskCreate, uintPtr(3), Facts{}))
		assert.False(t, Can(p, ActionUserCreate, uintPtr(3), Facts{}))
	}
}
