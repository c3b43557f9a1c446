package services

import (
	"taskforge/internal/models"
	apperrors "taskforge/pkg/errors"

	"gorm.io/gorm"
)

// advisory锁类别 - 与租户ID一起构成锁键，不同资源类别互不阻塞
const (
	lockClassUsers    = 1
	lockClassProjects = 2
)

// acquireTenantLock 在当前事务内取租户级advisory锁，事务结束自动释放。
// 同一租户的并发创建由此串行化：计数和插入在锁内完成，配额不会被并发击穿。
// 多实例部署下锁由数据库持有，进程内无共享状态。
func acquireTenantLock(tx *gorm.DB, lockClass int, tenantID uint) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", lockClass, int64(tenantID)).Error
}

// ReserveUserSlot 校验并预留一个用户名额。
// 必须在包含后续插入的事务内调用；配额已满返回QuotaExceeded，调用方回滚。
func ReserveUserSlot(tx *gorm.DB, tenant *models.Tenant) error {
	if err := acquireTenantLock(tx, lockClassUsers, tenant.ID); err != nil {
		return err
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error; err != nil {
		return err
	}
	if count >= int64(tenant.MaxUsers) {
		return apperrors.QuotaExceeded("用户数量已达当前订阅上限")
	}
	return nil
}

// ReserveProjectSlot 校验并预留一个项目名额，约束同ReserveUserSlot
func ReserveProjectSlot(tx *gorm.DB, tenant *models.Tenant) error {
	if err := acquireTenantLock(tx, lockClassProjects, tenant.ID); err != nil {
		return err
	}

	var count int64
	if err := tx.Model(&models.Project{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error; err != nil {
		return err
	}
	if count >= int64(tenant.MaxProjects) {
		return apperrors.QuotaExceeded("项目数量已达当前订阅上限")
	}
	return nil
}
