package main

import (
	"fmt"
	"strings"

	"taskforge/internal/database"
	"taskforge/internal/models"
	"taskforge/pkg/config"
	"taskforge/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData(cfg *config.Config) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 创建超级管理员账号（唯一的全局登录入口，不属于任何租户）
	if err := createSuperAdmin(db, cfg); err != nil {
		return fmt.Errorf("创建超级管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createSuperAdmin 创建超级管理员，已存在则跳过
func createSuperAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("超级管理员已存在，跳过创建")
		return nil
	}

	admin := &models.User{
		TenantID: nil,
		Email:    strings.ToLower(cfg.Seed.SuperAdminEmail),
		FullName: cfg.Seed.SuperAdminName,
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(cfg.Seed.SuperAdminPassword); err != nil {
		return err
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("超级管理员创建成功")
	return nil
}
