package services

import (
	"errors"
	"time"

	"taskforge/internal/models"
	"taskforge/internal/policy"
	"taskforge/internal/repository"
	apperrors "taskforge/pkg/errors"

	"gorm.io/gorm"
)

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

// CreateTaskInput 创建任务参数
type CreateTaskInput struct {
	Title       string
	Description *string
	AssignedTo  *uint
	Priority    string
	DueDate     *time.Time
}

// Create 在项目下创建任务。
// 任务的tenant_id一律取自所属项目，不接受外部输入；
// 被指派人必须属于项目所在租户。
func (s *TaskService) Create(p policy.Principal, projectID uint, input CreateTaskInput) (*models.Task, error) {
	scope := repository.ForPrincipal(p)

	var project models.Project
	if err := scope.Projects(s.db).Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("项目不存在")
		}
		return nil, err
	}

	if !policy.Can(p, policy.ActionTaskCreate, &project.TenantID, policy.Facts{}) {
		return nil, apperrors.Forbidden("无权在该项目下创建任务")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.IsValidTaskPriority(priority) {
		return nil, apperrors.Validation("无效的任务优先级")
	}

	if input.AssignedTo != nil {
		if err := s.checkAssignee(*input.AssignedTo, project.TenantID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ProjectID:   project.ID,
		TenantID:    project.TenantID,
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		AssignedTo:  input.AssignedTo,
		DueDate:     input.DueDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		return RecordAudit(tx, &task.TenantID, p.UserID, models.AuditCreateTask, models.EntityTask, task.ID)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// TaskFilter 任务列表过滤条件
type TaskFilter struct {
	Status     string
	Priority   string
	AssignedTo *uint
	Search     string
}

// List 分页列出项目下的任务
func (s *TaskService) List(p policy.Principal, projectID uint, filter TaskFilter, page, pageSize int) ([]*models.Task, int64, error) {
	scope := repository.ForPrincipal(p)

	var project models.Project
	if err := scope.Projects(s.db).Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.NotFound("项目不存在")
		}
		return nil, 0, err
	}

	query := scope.Tasks(s.db).Where("project_id = ?", project.ID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []*models.Task
	offset := (page - 1) * pageSize
	err := query.Order("due_date ASC NULLS LAST").Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// getVisible 在调用方作用域内查任务，查不到一律NotFound
func (s *TaskService) getVisible(scope repository.Scope, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := scope.Tasks(s.db).Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分不存在和不可见
			return nil, apperrors.NotFound("任务不存在")
		}
		return nil, err
	}
	return &task, nil
}

// UpdateStatus 更新任务状态。
// todo/in_progress/completed三个状态互相可达，没有终态锁定。
func (s *TaskService) UpdateStatus(p policy.Principal, taskID uint, status string) (*models.Task, error) {
	scope := repository.ForPrincipal(p)
	task, err := s.getVisible(scope, taskID)
	if err != nil {
		return nil, err
	}

	if !policy.Can(p, policy.ActionTaskUpdate, &task.TenantID, policy.Facts{}) {
		return nil, apperrors.Forbidden("无权修改该任务")
	}

	if !models.IsValidTaskStatus(status) {
		return nil, apperrors.Validation("无效的任务状态")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		task.Status = status
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		return RecordAudit(tx, &task.TenantID, p.UserID, models.AuditUpdateTaskStatus, models.EntityTask, task.ID)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskInput 任务更新参数，nil表示不修改。
// ClearAssignee为true时取消指派。
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssignedTo    *uint
	ClearAssignee bool
	DueDate       *time.Time
}

// Update 更新任务字段
func (s *TaskService) Update(p policy.Principal, taskID uint, input UpdateTaskInput) (*models.Task, error) {
	scope := repository.ForPrincipal(p)
	task, err := s.getVisible(scope, taskID)
	if err != nil {
		return nil, err
	}

	if !policy.Can(p, policy.ActionTaskUpdate, &task.TenantID, policy.Facts{}) {
		return nil, apperrors.Forbidden("无权修改该任务")
	}

	if input.Status != nil && !models.IsValidTaskStatus(*input.Status) {
		return nil, apperrors.Validation("无效的任务状态")
	}
	if input.Priority != nil && !models.IsValidTaskPriority(*input.Priority) {
		return nil, apperrors.Validation("无效的任务优先级")
	}
	if input.Title == nil && input.Description == nil && input.Status == nil &&
		input.Priority == nil && input.AssignedTo == nil && !input.ClearAssignee && input.DueDate == nil {
		return nil, apperrors.Validation("没有需要更新的字段")
	}

	if input.AssignedTo != nil {
		if err := s.checkAssignee(*input.AssignedTo, task.TenantID); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if input.Title != nil {
			task.Title = *input.Title
		}
		if input.Description != nil {
			task.Description = input.Description
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.Priority != nil {
			task.Priority = *input.Priority
		}
		if input.AssignedTo != nil {
			task.AssignedTo = input.AssignedTo
		} else if input.ClearAssignee {
			task.AssignedTo = nil
		}
		if input.DueDate != nil {
			task.DueDate = input.DueDate
		}

		if err := tx.Save(task).Error; err != nil {
			return err
		}
		return RecordAudit(tx, &task.TenantID, p.UserID, models.AuditUpdateTask, models.EntityTask, task.ID)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// checkAssignee 校验被指派人属于任务所在租户
func (s *TaskService) checkAssignee(userID, tenantID uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ? AND tenant_id = ?", userID, tenantID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.Validation("被指派用户不属于该租户")
	}
	return nil
}
