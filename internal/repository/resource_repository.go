package repository

import (
	"aru_academy_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) Create(resource *model.Resource) error {
	return r.DB.Create(resource).Error
}

func (r *ResourceRepository) FindByID(id uint) (*model.Resource, error) {
	var resource model.Resource
	err := r.DB.Preload("Course").First(&resource, id).Error
	return &resource, err
}

func (r *ResourceRepository) ListByCourse(courseID uint) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.DB.Where("course_id = ?", courseID).Order("created_at desc").Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) Update(resource *model.Resource) error {
	return r.DB.Save(resource).Error
}

func (r *ResourceRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Resource{}, id).Error
}

func (r *ResourceRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Resource{}).Count(&count).Error
	return count, err
}
