package services

import (
	"errors"
	"strings"
	"taskforge/internal/models"
	"taskforge/internal/policy"
	apperrors "taskforge/pkg/errors"

	"gorm.io/gorm"
)

type TenantService struct {
	db *gorm.DB
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{db: db}
}

// RegisterTenantInput 租户注册参数
type RegisterTenantInput struct {
	TenantName    string
	Subdomain     string
	AdminEmail    string
	AdminPassword string
	AdminFullName string
}

// Register 注册租户并创建管理员账号。
// 租户、管理员、审计在同一事务内写入，任何一步失败整体回滚，
// 不会出现只有租户没有管理员的中间状态。
func (s *TenantService) Register(input RegisterTenantInput) (*models.Tenant, *models.User, error) {
	subdomain := strings.ToLower(input.Subdomain)
	email := strings.ToLower(input.AdminEmail)

	tenant := &models.Tenant{
		Name:             input.TenantName,
		Subdomain:        subdomain,
		Status:           models.TenantStatusActive,
		SubscriptionPlan: models.PlanFree,
		MaxUsers:         models.DefaultMaxUsers,
		MaxProjects:      models.DefaultMaxProjects,
	}

	admin := &models.User{
		Email:    email,
		FullName: input.AdminFullName,
		Role:     models.RoleTenantAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(input.AdminPassword); err != nil {
		return nil, nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tenant{}).Where("subdomain = ?", subdomain).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("子域名已被占用")
		}

		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("邮箱已被注册")
		}

		if err := tx.Create(tenant).Error; err != nil {
			return translateDuplicate(err, "子域名已被占用")
		}

		admin.TenantID = &tenant.ID
		if err := tx.Create(admin).Error; err != nil {
			return translateDuplicate(err, "邮箱已被注册")
		}

		return RecordAudit(tx, &tenant.ID, admin.ID, models.AuditRegisterTenant, models.EntityTenant, tenant.ID)
	})
	if err != nil {
		return nil, nil, err
	}

	return tenant, admin, nil
}

// GetDetails 获取租户详情及统计。
// 目标租户ID由调用方显式给出，跨租户访问按策略拒绝而非NotFound。
func (s *TenantService) GetDetails(p policy.Principal, tenantID uint) (*models.Tenant, error) {
	if !policy.Can(p, policy.ActionTenantView, &tenantID, policy.Facts{}) {
		return nil, apperrors.Forbidden("无权访问该租户")
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("租户不存在")
		}
		return nil, err
	}

	if err := s.loadStats(&tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// LoadByID 按ID直接加载租户（展示本人所属租户等内部场景，不做策略检查）
func (s *TenantService) LoadByID(id uint, tenant *models.Tenant) error {
	return s.db.First(tenant, id).Error
}

// GetBySubdomain 按子域名查租户（登录入口使用）
func (s *TenantService) GetBySubdomain(subdomain string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Where("subdomain = ?", strings.ToLower(subdomain)).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("租户不存在")
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// List 分页列出租户，仅超级管理员可用
func (s *TenantService) List(p policy.Principal, status, plan string, page, pageSize int) ([]*models.Tenant, int64, error) {
	if !policy.Can(p, policy.ActionTenantList, nil, policy.Facts{}) {
		return nil, 0, apperrors.Forbidden("仅超级管理员可以查看租户列表")
	}

	var tenants []*models.Tenant
	var total int64

	query := s.db.Model(&models.Tenant{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if plan != "" {
		query = query.Where("subscription_plan = ?", plan)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&tenants).Error; err != nil {
		return nil, 0, err
	}

	// 逐租户统计用户数和项目数
	for i := range tenants {
		s.db.Model(&models.User{}).Where("tenant_id = ?", tenants[i].ID).Count(&tenants[i].UserCount)
		s.db.Model(&models.Project{}).Where("tenant_id = ?", tenants[i].ID).Count(&tenants[i].ProjectCount)
	}

	return tenants, total, nil
}

// UpdateTenantInput 租户更新参数，nil表示不修改
type UpdateTenantInput struct {
	Name             *string
	Status           *string
	SubscriptionPlan *string
	MaxUsers         *int
	MaxProjects      *int
}

// hasRestrictedFields 是否涉及仅超级管理员可改的字段
func (input UpdateTenantInput) hasRestrictedFields() bool {
	return input.Status != nil || input.SubscriptionPlan != nil ||
		input.MaxUsers != nil || input.MaxProjects != nil
}

// Update 更新租户。租户管理员只能改显示名称，
// 状态、套餐和配额仅超级管理员可改。
func (s *TenantService) Update(p policy.Principal, tenantID uint, input UpdateTenantInput) (*models.Tenant, error) {
	action := policy.ActionTenantUpdateName
	if input.hasRestrictedFields() {
		action = policy.ActionTenantUpdateSettings
	}
	if !policy.Can(p, action, &tenantID, policy.Facts{}) {
		return nil, apperrors.Forbidden("无权修改该租户的这些字段")
	}

	if input.Status != nil && *input.Status != models.TenantStatusActive && *input.Status != models.TenantStatusSuspended {
		return nil, apperrors.Validation("无效的租户状态")
	}
	if input.Name == nil && !input.hasRestrictedFields() {
		return nil, apperrors.Validation("没有需要更新的字段")
	}

	var tenant models.Tenant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tenant, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("租户不存在")
			}
			return err
		}

		// 记录改动的字段，写入审计details
		changed := map[string]interface{}{}
		if input.Name != nil {
			tenant.Name = *input.Name
			changed["name"] = *input.Name
		}
		if input.Status != nil {
			tenant.Status = *input.Status
			changed["status"] = *input.Status
		}
		if input.SubscriptionPlan != nil {
			tenant.SubscriptionPlan = *input.SubscriptionPlan
			changed["subscription_plan"] = *input.SubscriptionPlan
		}
		if input.MaxUsers != nil {
			tenant.MaxUsers = *input.MaxUsers
			changed["max_users"] = *input.MaxUsers
		}
		if input.MaxProjects != nil {
			tenant.MaxProjects = *input.MaxProjects
			changed["max_projects"] = *input.MaxProjects
		}

		if err := tx.Save(&tenant).Error; err != nil {
			return err
		}
		return RecordAuditDetails(tx, &tenant.ID, p.UserID, models.AuditUpdateTenant, models.EntityTenant, tenant.ID, changed)
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// IsActive 检查租户是否激活
func (s *TenantService) IsActive(tenant *models.Tenant) bool {
	return tenant.Status == models.TenantStatusActive
}

// loadStats 填充租户统计字段
func (s *TenantService) loadStats(tenant *models.Tenant) error {
	if err := s.db.Model(&models.User{}).Where("tenant_id = ?", tenant.ID).Count(&tenant.UserCount).Error; err != nil {
		return err
	}
	if err := s.db.Model(&models.Project{}).Where("tenant_id = ?", tenant.ID).Count(&tenant.ProjectCount).Error; err != nil {
		return err
	}
	return s.db.Model(&models.Task{}).Where("tenant_id = ?", tenant.ID).Count(&tenant.TaskCount).Error
}

// translateDuplicate 把唯一约束冲突转成对外的Conflict错误
func translateDuplicate(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict(message)
	}
	return err
}
