package services

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"taskforge/internal/models"
	"taskforge/internal/policy"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Uint32

// testDB 连接测试数据库并清空所有表。
// 未设置TEST_DATABASE_DSN时跳过，纯单元测试不依赖数据库。
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN未设置，跳过数据库测试")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Tenant{}, &models.User{}, &models.Project{}, &models.Task{}, &models.AuditLog{},
	))
	require.NoError(t, db.Exec(
		"TRUNCATE audit_logs, tasks, projects, users, tenants RESTART IDENTITY CASCADE",
	).Error)

	return db
}

func newTenant(t *testing.T, db *gorm.DB, maxUsers, maxProjects int) *models.Tenant {
	t.Helper()

	n := seq.Add(1)
	tenant := &models.Tenant{
		Name:             fmt.Sprintf("测试租户%d", n),
		Subdomain:        fmt.Sprintf("tenant%d", n),
		Status:           models.TenantStatusActive,
		SubscriptionPlan: models.PlanFree,
		MaxUsers:         maxUsers,
		MaxProjects:      maxProjects,
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// newUser 创建用户，tenant为nil时创建超级管理员风格的全局用户
func newUser(t *testing.T, db *gorm.DB, tenant *models.Tenant, email, role string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		FullName: "测试用户",
		Role:     role,
		IsActive: true,
	}
	if tenant != nil {
		user.TenantID = &tenant.ID
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func newProject(t *testing.T, db *gorm.DB, tenant *models.Tenant, creator *models.User, name string) *models.Project {
	t.Helper()

	project := &models.Project{
		TenantID:  tenant.ID,
		Name:      name,
		Status:    models.ProjectStatusActive,
		CreatedBy: creator.ID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func newTask(t *testing.T, db *gorm.DB, project *models.Project, title string) *models.Task {
	t.Helper()

	task := &models.Task{
		ProjectID: project.ID,
		TenantID:  project.TenantID,
		Title:     title,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func principalOf(user *models.User) policy.Principal {
	return policy.Principal{UserID: user.ID, TenantID: user.TenantID, Role: user.Role}
}

func auditCount(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}
