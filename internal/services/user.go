package services

import (
	"errors"
	"strings"
	"taskforge/internal/models"
	"taskforge/internal/policy"
	"taskforge/internal/repository"
	apperrors "taskforge/pkg/errors"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Login 登录校验。
// 带子域名走租户入口：租户必须存在且激活，按(邮箱, 租户)查用户；
// 不带子域名是唯一的超级管理员入口，永远不做租户过滤。
// 凭证错误和用户不存在返回同一错误，不泄露账号是否存在。
func (s *UserService) Login(email, password, tenantSubdomain string) (*models.User, *models.Tenant, error) {
	email = strings.ToLower(email)

	var tenant *models.Tenant
	query := s.db.Model(&models.User{})
	if tenantSubdomain != "" {
		var t models.Tenant
		err := s.db.Where("subdomain = ?", strings.ToLower(tenantSubdomain)).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("租户不存在")
		}
		if err != nil {
			return nil, nil, err
		}
		if t.Status != models.TenantStatusActive {
			return nil, nil, apperrors.Forbidden("租户已被停用")
		}
		tenant = &t
		query = query.Where("email = ? AND tenant_id = ?", email, t.ID)
	} else {
		query = query.Where("email = ? AND role = ?", email, models.RoleSuperAdmin)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.Unauthenticated("邮箱或密码错误")
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, apperrors.Forbidden("账号已被禁用")
	}
	if !user.CheckPassword(password) {
		return nil, nil, apperrors.Unauthenticated("邮箱或密码错误")
	}

	// 登录不改动业务状态，审计直接写入
	if err := RecordAudit(s.db, user.TenantID, user.ID, models.AuditLogin, models.EntityUser, user.ID); err != nil {
		return nil, nil, err
	}

	return &user, tenant, nil
}

// RecordLogout 登出审计
func (s *UserService) RecordLogout(p policy.Principal) error {
	return RecordAudit(s.db, p.TenantID, p.UserID, models.AuditLogout, models.EntityUser, p.UserID)
}

// GetByID 按ID取用户（认证中间件使用，不做租户过滤）
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("用户不存在")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddUserInput 添加用户参数
type AddUserInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// Add 向租户添加用户。
// 配额校验和插入在同一事务内完成，advisory锁保证并发添加不会超限。
func (s *UserService) Add(p policy.Principal, tenantID uint, input AddUserInput) (*models.User, error) {
	if !policy.Can(p, policy.ActionUserCreate, &tenantID, policy.Facts{}) {
		return nil, apperrors.Forbidden("仅租户管理员可以添加用户")
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, apperrors.Validation("无效的用户角色")
	}

	email := strings.ToLower(input.Email)
	user := &models.User{
		TenantID: &tenantID,
		Email:    email,
		FullName: input.FullName,
		Role:     role,
		IsActive: true,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := tx.First(&tenant, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("租户不存在")
			}
			return err
		}

		if err := ReserveUserSlot(tx, &tenant); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.User{}).Where("tenant_id = ? AND email = ?", tenantID, email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("该邮箱在租户内已存在")
		}

		if err := tx.Create(user).Error; err != nil {
			return translateDuplicate(err, "该邮箱在租户内已存在")
		}

		return RecordAudit(tx, &tenantID, p.UserID, models.AuditCreateUser, models.EntityUser, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UserFilter 用户列表过滤条件
type UserFilter struct {
	Search string
	Role   string
}

// List 分页列出租户用户
func (s *UserService) List(p policy.Principal, tenantID uint, filter UserFilter, page, pageSize int) ([]*models.User, int64, error) {
	if !policy.Can(p, policy.ActionUserList, &tenantID, policy.Facts{}) {
		return nil, 0, apperrors.Forbidden("无权查看该租户的用户")
	}

	scope := repository.ForPrincipal(p)
	query := scope.InTenant(s.db, &models.User{}, tenantID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("email ILIKE ? OR full_name ILIKE ?", pattern, pattern)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdateUserInput 用户更新参数，nil表示不修改
type UpdateUserInput struct {
	FullName *string
	Role     *string
	IsActive *bool
}

// Update 更新用户。本人可改自己的资料字段，
// 角色和启用状态只有租户管理员能改。
func (s *UserService) Update(p policy.Principal, userID uint, input UpdateUserInput) (*models.User, error) {
	scope := repository.ForPrincipal(p)

	var user models.User
	if err := scope.Users(s.db).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分不存在和不可见
			return nil, apperrors.NotFound("用户不存在")
		}
		return nil, err
	}

	action := policy.ActionUserUpdateProfile
	if input.Role != nil || input.IsActive != nil {
		action = policy.ActionUserUpdateRole
	}
	if !policy.Can(p, action, user.TenantID, policy.Facts{TargetUserID: user.ID}) {
		return nil, apperrors.Forbidden("无权修改该用户的这些字段")
	}

	if input.Role != nil && !models.IsValidRole(*input.Role) {
		return nil, apperrors.Validation("无效的用户角色")
	}
	if input.FullName == nil && input.Role == nil && input.IsActive == nil {
		return nil, apperrors.Validation("没有需要更新的字段")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.FullName != nil {
			user.FullName = *input.FullName
		}
		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}

		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return RecordAudit(tx, user.TenantID, p.UserID, models.AuditUpdateUser, models.EntityUser, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete 删除用户。被删用户名下的任务改为未指派，任务本身保留。
func (s *UserService) Delete(p policy.Principal, userID uint) error {
	if userID == p.UserID {
		return apperrors.Forbidden("不能删除自己的账号")
	}

	scope := repository.ForPrincipal(p)

	var user models.User
	if err := scope.Users(s.db).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("用户不存在")
		}
		return err
	}

	if !policy.Can(p, policy.ActionUserDelete, user.TenantID, policy.Facts{TargetUserID: user.ID}) {
		return apperrors.Forbidden("仅租户管理员可以删除用户")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("assigned_to = ?", user.ID).Update("assigned_to", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, user.ID).Error; err != nil {
			return err
		}
		return RecordAudit(tx, user.TenantID, p.UserID, models.AuditDeleteUser, models.EntityUser, user.ID)
	})
}
