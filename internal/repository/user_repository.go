package repository

import (
	"aru_academy_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Department").First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastLogin(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_login", time.Now()).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_seen", time.Now()).Error
}

func (r *UserRepository) Delete(id uint) error {
	return r.DB.Delete(&model.User{}, id).Error
}

// List 按名称/邮箱模糊搜索，支持角色/院系/状态过滤，全部为空时返回所有用户
func (r *UserRepository) List(search, role string, departmentID uint, status string, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64
	query := r.DB.Model(&model.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if departmentID > 0 {
		query = query.Where("department_id = ?", departmentID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Department").Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) ListAll() ([]model.User, error) {
	var users []model.User
	err := r.DB.Preload("Department").Order("created_at desc").Find(&users).Error
	return users, err
}

func (r *UserRepository) CountByRole(role model.UserRole) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *UserRepository) CountByStatus(status model.UserStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *UserRepository) CountActiveSince(since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("last_seen >= ?", since).Count(&count).Error
	return count, err
}
