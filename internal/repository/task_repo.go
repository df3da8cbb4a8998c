package repository

import (
	"context"

	"propertydesk/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.TaskOpen
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Update saves status and completion fields.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	tx := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ?", t.ID).
		Select("status", "completed_at", "completed_by", "description", "updated_at").
		Updates(t)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a task. Only used to compensate a failed checkout.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Task{}).Error
}

func (r *TaskRepository) ListOpen(ctx context.Context, roomID int64) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).Where("status = ?", domain.TaskOpen)
	if roomID > 0 {
		q = q.Where("room_id = ?", roomID)
	}
	var out []domain.Task
	if err := q.Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
