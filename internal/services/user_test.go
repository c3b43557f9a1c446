package services

import (
	"testing"

	"taskforge/internal/models"
	apperrors "taskforge/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginTenantEntry(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)

	user, got, err := svc.Login("Admin@Acme.com", "password123", tenant.Subdomain)
	require.NoError(t, err)
	assert.Equal(t, "admin@acme.com", user.Email)
	require.NotNil(t, got)
	assert.Equal(t, tenant.ID, got.ID)
	assert.EqualValues(t, 1, auditCount(t, db, models.AuditLogin))
}

func TestLoginBadCredentials(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)

	// 密码错误和账号不存在返回同一错误
	_, _, err := svc.Login("admin@acme.com", "wrong", tenant.Subdomain)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, _, err = svc.Login("nobody@acme.com", "password123", tenant.Subdomain)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	// 失败的登录不写审计
	assert.EqualValues(t, 0, auditCount(t, db, models.AuditLogin))
}

func TestLoginSuspendedTenant(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)
	require.NoError(t, db.Model(tenant).Update("status", models.TenantStatusSuspended).Error)

	_, _, err := svc.Login("admin@acme.com", "password123", tenant.Subdomain)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestLoginInactiveUser(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	user := newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, _, err := svc.Login("admin@acme.com", "password123", tenant.Subdomain)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestLoginSuperAdminEntry(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)
	newUser(t, db, nil, "root@taskforge.com", models.RoleSuperAdmin)

	// 不带子域名是超级管理员专用入口
	user, got, err := svc.Login("root@taskforge.com", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, user.Role)
	assert.Nil(t, got)

	// 租户用户不能从全局入口登录
	_, _, err = svc.Login("admin@acme.com", "password123", "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestLoginUnknownSubdomain(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	_, _, err := svc.Login("admin@acme.com", "password123", "no-such-tenant")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddUser(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	admin := newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)
	member := newUser(t, db, tenant, "member@acme.com", models.RoleUser)

	// 角色缺省为user
	user, err := svc.Add(principalOf(admin), tenant.ID, AddUserInput{
		Email: "New@Acme.com", Password: "secret123", FullName: "新同事",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@acme.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.EqualValues(t, 1, auditCount(t, db, models.AuditCreateUser))

	// 普通成员无权添加
	_, err = svc.Add(principalOf(member), tenant.ID, AddUserInput{
		Email: "x@acme.com", Password: "secret123", FullName: "某人",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// super_admin角色不能通过该接口赋予
	_, err = svc.Add(principalOf(admin), tenant.ID, AddUserInput{
		Email: "evil@acme.com", Password: "secret123", FullName: "越权", Role: models.RoleSuperAdmin,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// 租户内邮箱唯一
	_, err = svc.Add(principalOf(admin), tenant.ID, AddUserInput{
		Email: "new@acme.com", Password: "secret123", FullName: "重复",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAddUserCrossTenantDenied(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenantA := newTenant(t, db, 5, 3)
	tenantB := newTenant(t, db, 5, 3)
	adminA := newUser(t, db, tenantA, "admin@a.com", models.RoleTenantAdmin)

	_, err := svc.Add(principalOf(adminA), tenantB.ID, AddUserInput{
		Email: "x@b.com", Password: "secret123", FullName: "某人",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestListUsersScopedToTenant(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenantA := newTenant(t, db, 5, 3)
	tenantB := newTenant(t, db, 5, 3)
	adminA := newUser(t, db, tenantA, "admin@a.com", models.RoleTenantAdmin)
	newUser(t, db, tenantA, "member@a.com", models.RoleUser)
	newUser(t, db, tenantB, "member@b.com", models.RoleUser)

	users, total, err := svc.List(principalOf(adminA), tenantA.ID, UserFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, u := range users {
		require.NotNil(t, u.TenantID)
		assert.Equal(t, tenantA.ID, *u.TenantID)
	}

	// 他人租户的列表拒绝
	_, _, err = svc.List(principalOf(adminA), tenantB.ID, UserFilter{}, 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateUserRoleBoundary(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	admin := newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)
	member := newUser(t, db, tenant, "member@acme.com", models.RoleUser)

	// 本人可以改自己的资料
	name := "改名后的我"
	got, err := svc.Update(principalOf(member), member.ID, UpdateUserInput{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "改名后的我", got.FullName)

	// 本人不能给自己升角色
	role := models.RoleTenantAdmin
	_, err = svc.Update(principalOf(member), member.ID, UpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// 管理员可以
	got, err = svc.Update(principalOf(admin), member.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTenantAdmin, got.Role)
}

func TestUpdateUserInvisibleIsNotFound(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenantA := newTenant(t, db, 5, 3)
	tenantB := newTenant(t, db, 5, 3)
	adminA := newUser(t, db, tenantA, "admin@a.com", models.RoleTenantAdmin)
	memberB := newUser(t, db, tenantB, "member@b.com", models.RoleUser)

	// 他租户的用户按ID访问时与不存在不作区分
	name := "x"
	_, err := svc.Update(principalOf(adminA), memberB.ID, UpdateUserInput{FullName: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteUserUnassignsTasks(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	admin := newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)
	member := newUser(t, db, tenant, "member@acme.com", models.RoleUser)
	project := newProject(t, db, tenant, admin, "项目一")

	task := newTask(t, db, project, "待办")
	require.NoError(t, db.Model(task).Update("assigned_to", member.ID).Error)

	require.NoError(t, svc.Delete(principalOf(admin), member.ID))

	// 任务保留，指派清空
	var got models.Task
	require.NoError(t, db.First(&got, task.ID).Error)
	assert.Nil(t, got.AssignedTo)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", member.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.EqualValues(t, 1, auditCount(t, db, models.AuditDeleteUser))
}

func TestDeleteUserGuards(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db)

	tenant := newTenant(t, db, 5, 3)
	admin := newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)
	member := newUser(t, db, tenant, "member@acme.com", models.RoleUser)

	// 不能删除自己
	err := svc.Delete(principalOf(admin), admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// 普通成员无权删除
	err = svc.Delete(principalOf(member), admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
