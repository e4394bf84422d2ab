package service

import (
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/util"
	"strings"
)

type CourseService struct {
	CourseRepo     *repository.CourseRepository
	DepartmentRepo *repository.DepartmentRepository
}

func NewCourseService(courseRepo *repository.CourseRepository, departmentRepo *repository.DepartmentRepository) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		DepartmentRepo: departmentRepo,
	}
}

// GetCoursesForUser 管理员看全部，教师看自建，学生看本院系
func (s *CourseService) GetCoursesForUser(user *model.User) ([]model.Course, error) {
	switch user.Role {
	case model.Admin:
		courses, _, err := s.CourseRepo.ListByDepartment(0, 1, 1000)
		return courses, err
	case model.Instructor:
		return s.CourseRepo.ListByCreator(user.ID)
	default:
		courses, _, err := s.CourseRepo.ListByDepartment(user.DepartmentID, 1, 1000)
		return courses, err
	}
}

// ListDepartments 注册页下拉框使用，无需登录
func (s *CourseService) ListDepartments() ([]model.Department, error) {
	return s.DepartmentRepo.ListAll()
}

func (s *CourseService) GetCourseByID(user *model.User, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByIDWithResources(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if user.Role == model.Student && course.DepartmentID != user.DepartmentID {
		return nil, util.AccessDeniedError("access denied to this course")
	}
	return course, nil
}

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Department  string `json:"department" binding:"required"`
}

// CreateCourse 教师只能在本院系建课
func (s *CourseService) CreateCourse(user *model.User, req *CreateCourseRequest) (*model.Course, error) {
	if user.Role != model.Instructor && user.Role != model.Admin {
		return nil, util.AccessDeniedError("insufficient permissions")
	}

	department, err := s.DepartmentRepo.FindByName(req.Department)
	if err != nil {
		return nil, util.ValidationError("invalid department")
	}

	if user.Role == model.Instructor && user.DepartmentID != department.ID {
		return nil, util.AccessDeniedError("you can only create courses in your department")
	}

	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		DepartmentID: department.ID,
		CreatedBy:    user.ID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

type UpdateCourseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *CourseService) UpdateCourse(user *model.User, courseID uint, req *UpdateCourseRequest) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	if user.Role == model.Student {
		return nil, util.AccessDeniedError("students cannot modify courses")
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return nil, util.ErrAccessDenied
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(user *model.User, courseID uint) error {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return util.ErrCourseNotFound
	}

	if user.Role == model.Student {
		return util.AccessDeniedError("students cannot delete courses")
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return util.ErrAccessDenied
	}

	return s.CourseRepo.Delete(courseID)
}

func (s *CourseService) GetCoursesByDepartment(user *model.User, departmentID uint) ([]model.Course, error) {
	if user.Role == model.Student && user.DepartmentID != departmentID {
		return nil, util.ErrAccessDenied
	}
	courses, _, err := s.CourseRepo.ListByDepartment(departmentID, 1, 1000)
	return courses, err
}

// SearchCourses 在用户可见范围内按标题/描述匹配
func (s *CourseService) SearchCourses(user *model.User, searchTerm string) ([]model.Course, error) {
	courses, err := s.GetCoursesForUser(user)
	if err != nil {
		return nil, err
	}
	if searchTerm == "" {
		return courses, nil
	}

	searchTerm = strings.ToLower(searchTerm)
	filtered := make([]model.Course, 0, len(courses))
	for _, course := range courses {
		if strings.Contains(strings.ToLower(course.Title), searchTerm) ||
			strings.Contains(strings.ToLower(course.Description), searchTerm) {
			filtered = append(filtered, course)
		}
	}
	return filtered, nil
}
