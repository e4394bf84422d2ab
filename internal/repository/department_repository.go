package repository

import (
	"aru_academy_backend/internal/model"

	"gorm.io/gorm"
)

type DepartmentRepository struct {
	DB *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{DB: db}
}

func (r *DepartmentRepository) Create(d *model.Department) error {
	return r.DB.Create(d).Error
}

func (r *DepartmentRepository) FindByID(id uint) (*model.Department, error) {
	var d model.Department
	err := r.DB.First(&d, id).Error
	return &d, err
}

func (r *DepartmentRepository) FindByName(name string) (*model.Department, error) {
	var d model.Department
	err := r.DB.Where("name = ?", name).First(&d).Error
	return &d, err
}

func (r *DepartmentRepository) ListAll() ([]model.Department, error) {
	var ds []model.Department
	err := r.DB.Order("name asc").Find(&ds).Error
	return ds, err
}

func (r *DepartmentRepository) Update(d *model.Department) error {
	return r.DB.Save(d).Error
}

func (r *DepartmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Department{}, id).Error
}

// CountMembers 统计院系下仍存在的用户与课程，删除前校验用
func (r *DepartmentRepository) CountMembers(id uint) (users int64, courses int64, err error) {
	if err = r.DB.Model(&model.User{}).Where("department_id = ?", id).Count(&users).Error; err != nil {
		return
	}
	err = r.DB.Model(&model.Course{}).Where("department_id = ?", id).Count(&courses).Error
	return
}

func (r *DepartmentRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Department{}).Count(&count).Error
	return count, err
}
