package repository

import (
	"aru_academy_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Department").Preload("Creator").First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindByIDWithResources(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Department").Preload("Creator").
		Preload("Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("resources.created_at desc")
		}).
		Preload("Quizzes").
		First(&course, id).Error
	return &course, err
}

// ListByDepartment departmentID为0时返回全部课程（管理员视角）
func (r *CourseRepository) ListByDepartment(departmentID uint, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64
	query := r.DB.Model(&model.Course{})
	if departmentID > 0 {
		query = query.Where("department_id = ?", departmentID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Department").Preload("Creator").
		Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) ListByCreator(creatorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Department").Where("created_by = ?", creatorID).
		Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Count(&count).Error
	return count, err
}
