package services

import (
	"encoding/json"
	"taskforge/internal/models"

	"gorm.io/gorm"
)

// RecordAudit 追加一条审计日志。
// 调用方必须传入所描述变更所在的事务：变更回滚时审计一并回滚，
// 变更提交时审计必然存在。审计表只追加，不存在更新或删除路径。
func RecordAudit(tx *gorm.DB, tenantID *uint, actorID uint, action, entityType string, entityID uint) error {
	entry := &models.AuditLog{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	return tx.Create(entry).Error
}

// RecordAuditDetails 追加带附加信息的审计日志，details序列化为JSONB存储
func RecordAuditDetails(tx *gorm.DB, tenantID *uint, actorID uint, action, entityType string, entityID uint, details map[string]interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	entry := &models.AuditLog{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    raw,
	}
	return tx.Create(entry).Error
}
