package repository

import (
	"aru_academy_backend/internal/model"

	"gorm.io/gorm"
)

type ApprovedUserRepository struct {
	DB *gorm.DB
}

func NewApprovedUserRepository(db *gorm.DB) *ApprovedUserRepository {
	return &ApprovedUserRepository{DB: db}
}

func (r *ApprovedUserRepository) Create(au *model.ApprovedUser) error {
	return r.DB.Create(au).Error
}

func (r *ApprovedUserRepository) FindByID(id uint) (*model.ApprovedUser, error) {
	var au model.ApprovedUser
	err := r.DB.Preload("Department").First(&au, id).Error
	return &au, err
}

func (r *ApprovedUserRepository) FindByEmail(email string) (*model.ApprovedUser, error) {
	var au model.ApprovedUser
	err := r.DB.Where("email = ?", email).First(&au).Error
	return &au, err
}

func (r *ApprovedUserRepository) List(page, limit int) ([]model.ApprovedUser, int64, error) {
	var aus []model.ApprovedUser
	var total int64
	query := r.DB.Model(&model.ApprovedUser{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Department").Order("created_at desc").Offset(offset).Limit(limit).Find(&aus).Error
	return aus, total, err
}

// ListPendingEmails 返回尚未完成注册的已批准邮箱
func (r *ApprovedUserRepository) ListPending() ([]model.ApprovedUser, error) {
	var aus []model.ApprovedUser
	err := r.DB.Preload("Department").
		Where("email NOT IN (?)", r.DB.Model(&model.User{}).Select("email")).
		Order("created_at desc").
		Find(&aus).Error
	return aus, err
}

func (r *ApprovedUserRepository) Delete(id uint) error {
	return r.DB.Delete(&model.ApprovedUser{}, id).Error
}

func (r *ApprovedUserRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.ApprovedUser{}).Count(&count).Error
	return count, err
}
