package repos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nkashyap/taskhub-backend/internal/logger"
	"github.com/nkashyap/taskhub-backend/internal/types"
)

// TaskFilter composes conjunctively; zero-valued fields are ignored.
// Search matches title OR description, case-insensitively.
type TaskFilter struct {
	Search   string
	Priority string
	Status   string
	DueFrom  *time.Time
	DueTo    *time.Time
}

type TaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.Task, error)
	List(ctx context.Context, tx *gorm.DB, filter TaskFilter) ([]*types.Task, error)
	Save(ctx context.Context, tx *gorm.DB, task *types.Task) (*types.Task, error)
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (tr *taskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(tasks) == 0 {
		return []*types.Task{}, nil
	}

	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (tr *taskRepo) GetByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Task
	if len(taskIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", taskIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) List(ctx context.Context, tx *gorm.DB, filter TaskFilter) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.Task{}).
		Preload("Assignee").
		Preload("AssignedToUser")

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DueFrom != nil && filter.DueTo != nil {
		query = query.Where("due_date >= ? AND due_date <= ?", filter.DueFrom, filter.DueTo)
	}

	var results []*types.Task
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *taskRepo) Save(ctx context.Context, tx *gorm.DB, task *types.Task) (*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if err := transaction.WithContext(ctx).Omit(clause.Associations).Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (tr *taskRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, taskIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(taskIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", taskIDs).
		Delete(&types.Task{}).Error
}
