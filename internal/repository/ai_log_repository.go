package repository

import (
	"aru_academy_backend/internal/model"

	"gorm.io/gorm"
)

type AiLogRepository struct {
	DB *gorm.DB
}

func NewAiLogRepository(db *gorm.DB) *AiLogRepository {
	return &AiLogRepository{DB: db}
}

func (r *AiLogRepository) Create(l *model.AiCallLog) error {
	return r.DB.Create(l).Error
}

func (r *AiLogRepository) List(endpoint string, page, limit int) ([]model.AiCallLog, int64, error) {
	var logs []model.AiCallLog
	var total int64
	query := r.DB.Model(&model.AiCallLog{})
	if endpoint != "" {
		query = query.Where("endpoint = ?", endpoint)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, total, err
}

func (r *AiLogRepository) CountByOutcome() (success int64, failure int64, err error) {
	if err = r.DB.Model(&model.AiCallLog{}).Where("success = ?", true).Count(&success).Error; err != nil {
		return
	}
	err = r.DB.Model(&model.AiCallLog{}).Where("success = ?", false).Count(&failure).Error
	return
}
