package repository

import (
	"aru_academy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 同一(user, resource)只保留一条记录，唯一索引冲突时原地更新
func (r *ProgressRepository) Upsert(p *model.Progress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "resource_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "completion_percentage", "last_accessed_at", "updated_at",
		}),
	}).Create(p).Error
}

func (r *ProgressRepository) FindByUserAndResource(userID, resourceID uint) (*model.Progress, error) {
	var p model.Progress
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&p).Error
	return &p, err
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.Progress, error) {
	var ps []model.Progress
	err := r.DB.Where("user_id = ?", userID).Order("updated_at desc").Find(&ps).Error
	return ps, err
}

func (r *ProgressRepository) ListByUserAndCourse(userID, courseID uint) ([]model.Progress, error) {
	var ps []model.Progress
	err := r.DB.Joins("JOIN resources ON resources.id = progress.resource_id").
		Where("progress.user_id = ? AND resources.course_id = ?", userID, courseID).
		Find(&ps).Error
	return ps, err
}

func (r *ProgressRepository) CountCompletedByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Progress{}).
		Where("user_id = ? AND status = ?", userID, model.ProgressCompleted).
		Count(&count).Error
	return count, err
}
