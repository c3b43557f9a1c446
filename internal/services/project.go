package services

import (
	"errors"
	"taskforge/internal/models"
	"taskforge/internal/policy"
	"taskforge/internal/repository"
	apperrors "taskforge/pkg/errors"

	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

// CreateProjectInput 创建项目参数
type CreateProjectInput struct {
	Name        string
	Description *string
	Status      string
}

// Create 创建项目。项目归属创建者所在租户，
// 配额校验与插入同一事务，并发创建不会超限。
func (s *ProjectService) Create(p policy.Principal, input CreateProjectInput) (*models.Project, error) {
	if p.TenantID == nil {
		return nil, apperrors.NotFound("租户不存在")
	}
	tenantID := *p.TenantID

	if !policy.Can(p, policy.ActionProjectCreate, &tenantID, policy.Facts{}) {
		return nil, apperrors.Forbidden("无权在该租户下创建项目")
	}

	status := input.Status
	if status == "" {
		status = models.ProjectStatusActive
	}
	if !models.IsValidProjectStatus(status) {
		return nil, apperrors.Validation("无效的项目状态")
	}

	project := &models.Project{
		TenantID:    tenantID,
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		CreatedBy:   p.UserID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := tx.First(&tenant, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("租户不存在")
			}
			return err
		}

		if err := ReserveProjectSlot(tx, &tenant); err != nil {
			return err
		}

		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return RecordAudit(tx, &tenantID, p.UserID, models.AuditCreateProject, models.EntityProject, project.ID)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ProjectFilter 项目列表过滤条件
type ProjectFilter struct {
	Status string
	Search string
}

// List 分页列出当前作用域可见的项目
func (s *ProjectService) List(p policy.Principal, filter ProjectFilter, page, pageSize int) ([]*models.Project, int64, error) {
	scope := repository.ForPrincipal(p)
	query := scope.Projects(s.db)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []*models.Project
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// getVisible 在调用方作用域内查项目，查不到一律NotFound
func (s *ProjectService) getVisible(scope repository.Scope, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := scope.Projects(s.db).Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分不存在和不可见
			return nil, apperrors.NotFound("项目不存在")
		}
		return nil, err
	}
	return &project, nil
}

// UpdateProjectInput 项目更新参数，nil表示不修改
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *string
}

// Update 更新项目，创建者或租户管理员可操作
func (s *ProjectService) Update(p policy.Principal, projectID uint, input UpdateProjectInput) (*models.Project, error) {
	scope := repository.ForPrincipal(p)
	project, err := s.getVisible(scope, projectID)
	if err != nil {
		return nil, err
	}

	if !policy.Can(p, policy.ActionProjectUpdate, &project.TenantID, policy.Facts{CreatedBy: project.CreatedBy}) {
		return nil, apperrors.Forbidden("仅项目创建者或租户管理员可以修改项目")
	}

	if input.Status != nil && !models.IsValidProjectStatus(*input.Status) {
		return nil, apperrors.Validation("无效的项目状态")
	}
	if input.Name == nil && input.Description == nil && input.Status == nil {
		return nil, apperrors.Validation("没有需要更新的字段")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if input.Name != nil {
			project.Name = *input.Name
		}
		if input.Description != nil {
			project.Description = input.Description
		}
		if input.Status != nil {
			project.Status = *input.Status
		}

		if err := tx.Save(project).Error; err != nil {
			return err
		}
		return RecordAudit(tx, &project.TenantID, p.UserID, models.AuditUpdateProject, models.EntityProject, project.ID)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Delete 删除项目并级联删除其任务
func (s *ProjectService) Delete(p policy.Principal, projectID uint) error {
	scope := repository.ForPrincipal(p)
	project, err := s.getVisible(scope, projectID)
	if err != nil {
		return err
	}

	if !policy.Can(p, policy.ActionProjectDelete, &project.TenantID, policy.Facts{CreatedBy: project.CreatedBy}) {
		return apperrors.Forbidden("仅项目创建者或租户管理员可以删除项目")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Project{}, project.ID).Error; err != nil {
			return err
		}
		return RecordAudit(tx, &project.TenantID, p.UserID, models.AuditDeleteProject, models.EntityProject, project.ID)
	})
}
