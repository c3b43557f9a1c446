package services

import (
	"testing"

	"taskforge/internal/models"
	apperrors "taskforge/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTenant(t *testing.T) {
	db := testDB(t)
	svc := NewTenantService(db)

	tenant, admin, err := svc.Register(RegisterTenantInput{
		TenantName:    "Acme公司",
		Subdomain:     "ACME",
		AdminEmail:    "Admin@Acme.com",
		AdminPassword: "secret123",
		AdminFullName: "Acme管理员",
	})
	require.NoError(t, err)

	// 子域名和邮箱统一小写存储
	assert.Equal(t, "acme", tenant.Subdomain)
	assert.Equal(t, "admin@acme.com", admin.Email)

	// 注册默认free套餐及其配额
	assert.Equal(t, models.PlanFree, tenant.SubscriptionPlan)
	assert.Equal(t, models.TenantStatusActive, tenant.Status)
	assert.Equal(t, models.DefaultMaxUsers, tenant.MaxUsers)
	assert.Equal(t, models.DefaultMaxProjects, tenant.MaxProjects)

	// 首个用户即租户管理员
	assert.Equal(t, models.RoleTenantAdmin, admin.Role)
	require.NotNil(t, admin.TenantID)
	assert.Equal(t, tenant.ID, *admin.TenantID)
	assert.True(t, admin.CheckPassword("secret123"))

	assert.EqualValues(t, 1, auditCount(t, db, models.AuditRegisterTenant))
}

func TestRegisterTenantSubdomainConflict(t *testing.T) {
	db := testDB(t)
	svc := NewTenantService(db)

	_, _, err := svc.Register(RegisterTenantInput{
		TenantName: "先来的", Subdomain: "taken",
		AdminEmail: "first@example.com", AdminPassword: "secret123", AdminFullName: "一号",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(RegisterTenantInput{
		TenantName: "后到的", Subdomain: "Taken",
		AdminEmail: "second@example.com", AdminPassword: "secret123", AdminFullName: "二号",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// 失败的注册不留任何痕迹
	var tenantCount int64
	require.NoError(t, db.Model(&models.Tenant{}).Count(&tenantCount).Error)
	assert.EqualValues(t, 1, tenantCount)
	assert.EqualValues(t, 1, auditCount(t, db, models.AuditRegisterTenant))
}

func TestRegisterTenantEmailConflictRollsBack(t *testing.T) {
	db := testDB(t)
	svc := NewTenantService(db)

	_, _, err := svc.Register(RegisterTenantInput{
		TenantName: "先来的", Subdomain: "alpha",
		AdminEmail: "shared@example.com", AdminPassword: "secret123", AdminFullName: "一号",
	})
	require.NoError(t, err)

	// 邮箱冲突发生在租户插入之后，整个事务必须回滚
	_, _, err = svc.Register(RegisterTenantInput{
		TenantName: "后到的", Subdomain: "beta",
		AdminEmail: "SHARED@example.com", AdminPassword: "secret123", AdminFullName: "二号",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.Tenant{}).Where("subdomain = ?", "beta").Count(&count).Error)
	assert.EqualValues(t, 0, count, "冲突注册不应留下租户行")
}

func TestGetTenantDetails(t *testing.T) {
	db := testDB(t)
	svc := NewTenantService(db)

	tenantA := newTenant(t, db, 5, 3)
	tenantB := newTenant(t, db, 5, 3)
	adminA := newUser(t, db, tenantA, "admin@a.com", models.RoleTenantAdmin)
	memberA := newUser(t, db, tenantA, "member@a.com", models.RoleUser)
	newProject(t, db, tenantA, adminA, "项目一")

	// 租户成员可以查看本租户并拿到统计
	got, err := svc.GetDetails(principalOf(memberA), tenantA.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.UserCount)
	assert.EqualValues(t, 1, got.ProjectCount)

	// 显式指定他人租户ID，按策略拒绝
	_, err = svc.GetDetails(principalOf(adminA), tenantB.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// 超级管理员可以查看任意租户
	super := newUser(t, db, nil, "root@taskforge.com", models.RoleSuperAdmin)
	_, err = svc.GetDetails(principalOf(super), tenantB.ID)
	assert.NoError(t, err)
}

func TestListTenantsSuperAdminOnly(t *testing.T) {
	db := testDB(t)
	svc := NewTenantService(db)

	newTenant(t, db, 5, 3)
	newTenant(t, db, 5, 3)
	tenantC := newTenant(t, db, 5, 3)
	admin := newUser(t, db, tenantC, "admin@c.com", models.RoleTenantAdmin)
	super := newUser(t, db, nil, "root@taskforge.com", models.RoleSuperAdmin)

	_, _, err := svc.List(principalOf(admin), "", "", 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	tenants, total, err := svc.List(principalOf(super), "", "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, tenants, 3)
}

func TestUpdateTenantFieldBoundary(t *testing.T) {
	db := testDB(t)
	svc := NewTenantService(db)

	tenant := newTenant(t, db, 5, 3)
	admin := newUser(t, db, tenant, "admin@acme.com", models.RoleTenantAdmin)
	super := newUser(t, db, nil, "root@taskforge.com", models.RoleSuperAdmin)

	// 租户管理员只能改显示名称
	name := "新名字"
	got, err := svc.Update(principalOf(admin), tenant.ID, UpdateTenantInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "新名字", got.Name)

	// 套餐、状态和配额对租户管理员拒绝
	plan := models.PlanPro
	_, err = svc.Update(principalOf(admin), tenant.ID, UpdateTenantInput{SubscriptionPlan: &plan})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	suspended := models.TenantStatusSuspended
	_, err = svc.Update(principalOf(admin), tenant.ID, UpdateTenantInput{Status: &suspended})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// 超级管理员可以调整套餐和配额
	maxUsers := 50
	got, err = svc.Update(principalOf(super), tenant.ID, UpdateTenantInput{
		SubscriptionPlan: &plan,
		MaxUsers:         &maxUsers,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, got.SubscriptionPlan)
	assert.Equal(t, 50, got.MaxUsers)

	assert.EqualValues(t, 2, auditCount(t, db, models.AuditUpdateTenant))

	// 审计details记录了改动的字段
	var entry models.AuditLog
	require.NoError(t, db.Where("action = ?", models.AuditUpdateTenant).
		Order("id DESC").First(&entry).Error)
	assert.Contains(t, string(entry.Details), "subscription_plan")
	assert.Contains(t, string(entry.Details), "max_users")
}

func TestUpdateTenantInvalidStatus(t *testing.T) {
	db := testDB(t)
	svc := NewTenantService(db)

	tenant := newTenant(t, db, 5, 3)
	super := newUser(t, db, nil, "root@taskforge.com", models.RoleSuperAdmin)

	bogus := "deleted"
	_, err := svc.Update(principalOf(super), tenant.ID, UpdateTenantInput{Status: &bogus})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
