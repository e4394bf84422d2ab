package service

import (
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/util"
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 批准注册后发放的初始密码，用户首次登录后应自行修改
const defaultApprovedPassword = "Welcome@123"

type AdminService struct {
	UserRepo       *repository.UserRepository
	ApprovedRepo   *repository.ApprovedUserRepository
	DepartmentRepo *repository.DepartmentRepository
	CourseRepo     *repository.CourseRepository
	ResourceRepo   *repository.ResourceRepository
	QuizRepo       *repository.QuizRepository
	AiLogRepo      *repository.AiLogRepository
	Tutor          *TutorService
}

func NewAdminService(
	userRepo *repository.UserRepository,
	approvedRepo *repository.ApprovedUserRepository,
	departmentRepo *repository.DepartmentRepository,
	courseRepo *repository.CourseRepository,
	resourceRepo *repository.ResourceRepository,
	quizRepo *repository.QuizRepository,
	aiLogRepo *repository.AiLogRepository,
	tutor *TutorService,
) *AdminService {
	return &AdminService{
		UserRepo:       userRepo,
		ApprovedRepo:   approvedRepo,
		DepartmentRepo: departmentRepo,
		CourseRepo:     courseRepo,
		ResourceRepo:   resourceRepo,
		QuizRepo:       quizRepo,
		AiLogRepo:      aiLogRepo,
		Tutor:          tutor,
	}
}

type DashboardStats struct {
	TotalUsers      int64   `json:"totalUsers"`
	PendingUsers    int64   `json:"pendingUsers"`
	TotalCourses    int64   `json:"totalCourses"`
	TotalResources  int64   `json:"totalResources"`
	TotalQuizzes    int64   `json:"totalQuizzes"`
	ActiveUsers     int64   `json:"activeUsers"`
	RecentCourses   int64   `json:"recentCourses"`
	RecentResources int64   `json:"recentResources"`
	TotalAICalls    int64   `json:"totalAiCalls"`
	AISuccessRate   float64 `json:"aiSuccessRate"`
	Students        int64   `json:"students"`
	Instructors     int64   `json:"instructors"`
	Admins          int64   `json:"admins"`
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.UserRepo.DB

	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	var err error
	if stats.PendingUsers, err = s.UserRepo.CountByStatus(model.StatusPending); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = s.UserRepo.CountByStatus(model.StatusActive); err != nil {
		return nil, err
	}
	if stats.Students, err = s.UserRepo.CountByRole(model.Student); err != nil {
		return nil, err
	}
	if stats.Instructors, err = s.UserRepo.CountByRole(model.Instructor); err != nil {
		return nil, err
	}
	if stats.Admins, err = s.UserRepo.CountByRole(model.Admin); err != nil {
		return nil, err
	}

	db.Model(&model.Course{}).Count(&stats.TotalCourses)
	db.Model(&model.Resource{}).Count(&stats.TotalResources)
	if stats.TotalQuizzes, err = s.QuizRepo.Count(); err != nil {
		return nil, err
	}

	thirtyDaysAgo := time.Now().UTC().AddDate(0, 0, -30)
	db.Model(&model.Course{}).Where("created_at >= ?", thirtyDaysAgo).Count(&stats.RecentCourses)
	db.Model(&model.Resource{}).Where("created_at >= ?", thirtyDaysAgo).Count(&stats.RecentResources)

	success, failure, err := s.AiLogRepo.CountByOutcome()
	if err != nil {
		return nil, err
	}
	stats.TotalAICalls = success + failure
	if stats.TotalAICalls > 0 {
		stats.AISuccessRate = float64(success) / float64(stats.TotalAICalls) * 100
	}

	return stats, nil
}

// GetUsers 按名称/邮箱模糊搜索，支持角色、院系、状态过滤
func (s *AdminService) GetUsers(search, role string, departmentID uint, status string, page, limit int) ([]model.User, int64, error) {
	if role == "all" {
		role = ""
	}
	if status == "all" {
		status = ""
	}
	return s.UserRepo.List(search, role, departmentID, status, page, limit)
}

func (s *AdminService) UpdateUserStatus(userID uint, status string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	switch model.UserStatus(status) {
	case model.StatusActive, model.StatusSuspended, model.StatusPending:
	default:
		return nil, util.ValidationErrorf("invalid status: %s", status)
	}

	user.Status = model.UserStatus(status)
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) UpdateUserRole(userID uint, role string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	switch model.UserRole(role) {
	case model.Student, model.Instructor, model.Admin:
	default:
		return nil, util.ValidationErrorf("invalid role: %s", role)
	}

	user.Role = model.UserRole(role)
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser 管理员账户不允许删除
func (s *AdminService) DeleteUser(userID uint) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	if user.Role == model.Admin {
		return util.ValidationError("cannot delete admin users")
	}
	return s.UserRepo.Delete(userID)
}

func (s *AdminService) GetPendingApprovals() ([]model.ApprovedUser, error) {
	return s.ApprovedRepo.ListPending()
}

type AddApprovedUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department" binding:"required"`
}

// AddApprovedUser 将邮箱加入注册白名单
func (s *AdminService) AddApprovedUser(adminID uint, req *AddApprovedUserRequest) (*model.ApprovedUser, error) {
	if req.Role != string(model.Student) && req.Role != string(model.Instructor) {
		return nil, util.ValidationErrorf("invalid role: %s", req.Role)
	}

	department, err := s.DepartmentRepo.FindByName(req.Department)
	if err != nil {
		return nil, util.ValidationError("invalid department")
	}

	if _, err := s.ApprovedRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrAlreadyApproved
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	approved := &model.ApprovedUser{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		DepartmentID: department.ID,
		ApprovedBy:   &adminID,
		ApprovedAt:   &now,
	}
	if err := s.ApprovedRepo.Create(approved); err != nil {
		return nil, err
	}
	return approved, nil
}

// ApproveUser 直接创建账号并从白名单移除，密码为初始密码
func (s *AdminService) ApproveUser(approvalID uint, role, departmentName string) (*model.User, error) {
	approved, err := s.ApprovedRepo.FindByID(approvalID)
	if err != nil {
		return nil, util.ErrApprovalNotFound
	}

	department, err := s.DepartmentRepo.FindByName(departmentName)
	if err != nil {
		return nil, util.ValidationError("invalid department")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(defaultApprovedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         approved.Name,
		Email:        approved.Email,
		Password:     string(hashedPassword),
		Role:         model.UserRole(role),
		DepartmentID: department.ID,
		Status:       model.StatusActive,
	}

	err = s.UserRepo.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ApprovedUser{}, approvalID).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) DenyUser(approvalID uint) error {
	if _, err := s.ApprovedRepo.FindByID(approvalID); err != nil {
		return util.ErrApprovalNotFound
	}
	return s.ApprovedRepo.Delete(approvalID)
}

type ApproveAllResult struct {
	ApprovedCount int      `json:"approvedCount"`
	Errors        []string `json:"errors"`
}

// ApproveAllUsers 批量放行，统一学生角色和白名单记录的院系
func (s *AdminService) ApproveAllUsers() (*ApproveAllResult, error) {
	pending, err := s.ApprovedRepo.ListPending()
	if err != nil {
		return nil, err
	}

	result := &ApproveAllResult{Errors: []string{}}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(defaultApprovedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for _, approved := range pending {
		user := &model.User{
			Name:         approved.Name,
			Email:        approved.Email,
			Password:     string(hashedPassword),
			Role:         model.Student,
			DepartmentID: approved.DepartmentID,
			Status:       model.StatusActive,
		}
		txErr := s.UserRepo.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			return tx.Delete(&model.ApprovedUser{}, approved.ID).Error
		})
		if txErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("error approving %s: %v", approved.Email, txErr))
			continue
		}
		result.ApprovedCount++
	}

	return result, nil
}

type DepartmentSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UserCount   int64     `json:"userCount"`
	CourseCount int64     `json:"courseCount"`
}

func (s *AdminService) GetDepartments() ([]DepartmentSummary, error) {
	departments, err := s.DepartmentRepo.ListAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]DepartmentSummary, 0, len(departments))
	for _, dept := range departments {
		users, courses, err := s.DepartmentRepo.CountMembers(dept.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, DepartmentSummary{
			ID:          dept.ID,
			Name:        dept.Name,
			Description: dept.Description,
			CreatedAt:   dept.CreatedAt,
			UserCount:   users,
			CourseCount: courses,
		})
	}
	return summaries, nil
}

func (s *AdminService) CreateDepartment(name, description string) (*model.Department, error) {
	if _, err := s.DepartmentRepo.FindByName(name); err == nil {
		return nil, util.ValidationError("department already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	department := &model.Department{Name: name, Description: description}
	if err := s.DepartmentRepo.Create(department); err != nil {
		return nil, err
	}
	return department, nil
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *AdminService) UpdateDepartment(deptID uint, req *UpdateDepartmentRequest) (*model.Department, error) {
	department, err := s.DepartmentRepo.FindByID(deptID)
	if err != nil {
		return nil, util.ErrDepartmentNotFound
	}

	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Description != nil {
		department.Description = *req.Description
	}

	if err := s.DepartmentRepo.Update(department); err != nil {
		return nil, err
	}
	return department, nil
}

// DeleteDepartment 仍有用户或课程时拒绝删除
func (s *AdminService) DeleteDepartment(deptID uint) error {
	if _, err := s.DepartmentRepo.FindByID(deptID); err != nil {
		return util.ErrDepartmentNotFound
	}

	users, courses, err := s.DepartmentRepo.CountMembers(deptID)
	if err != nil {
		return err
	}
	if users > 0 || courses > 0 {
		return util.ErrDepartmentInUse
	}

	return s.DepartmentRepo.Delete(deptID)
}

type MetricPoint struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

type Analytics struct {
	UserActivity    []MetricPoint `json:"userActivity"`
	ResourceUsage   []MetricPoint `json:"resourceUsage"`
	AIUsage         []MetricPoint `json:"aiUsage"`
	QuizPerformance []MetricPoint `json:"quizPerformance"`
	PeriodDays      int           `json:"periodDays"`
	GeneratedAt     time.Time     `json:"generatedAt"`
}

func (s *AdminService) GetAnalytics(periodDays int) (*Analytics, error) {
	if periodDays <= 0 {
		periodDays = 30
	}
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -periodDays)
	db := s.UserRepo.DB

	students, err := s.UserRepo.CountByRole(model.Student)
	if err != nil {
		return nil, err
	}
	instructors, err := s.UserRepo.CountByRole(model.Instructor)
	if err != nil {
		return nil, err
	}
	admins, err := s.UserRepo.CountByRole(model.Admin)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.UserRepo.CountByStatus(model.StatusActive)
	if err != nil {
		return nil, err
	}
	pendingUsers, err := s.UserRepo.CountByStatus(model.StatusPending)
	if err != nil {
		return nil, err
	}
	// 周期内有过访问的用户，按last_seen计算
	seenRecently, err := s.UserRepo.CountActiveSince(startDate)
	if err != nil {
		return nil, err
	}

	var totalResources, recentResources, totalCourses int64
	db.Model(&model.Resource{}).Count(&totalResources)
	db.Model(&model.Resource{}).Where("created_at >= ?", startDate).Count(&recentResources)
	db.Model(&model.Course{}).Count(&totalCourses)
	if totalCourses == 0 {
		totalCourses = 1
	}

	successAI, failureAI, err := s.AiLogRepo.CountByOutcome()
	if err != nil {
		return nil, err
	}
	totalAI := successAI + failureAI
	var recentAI int64
	db.Model(&model.AiCallLog{}).Where("created_at >= ?", startDate).Count(&recentAI)
	aiDenominator := totalAI
	if aiDenominator == 0 {
		aiDenominator = 1
	}

	totalQuizzes, err := s.QuizRepo.Count()
	if err != nil {
		return nil, err
	}
	totalSubmissions, err := s.QuizRepo.CountSubmissions()
	if err != nil {
		return nil, err
	}
	var recentSubmissions int64
	db.Model(&model.QuizSubmission{}).Where("submitted_at >= ?", startDate).Count(&recentSubmissions)

	avgScore, err := s.QuizRepo.AverageScorePercent()
	if err != nil {
		return nil, err
	}

	recentLabel := fmt.Sprintf("Last %d days", periodDays)

	return &Analytics{
		UserActivity: []MetricPoint{
			{Label: "Students", Value: students},
			{Label: "Instructors", Value: instructors},
			{Label: "Admins", Value: admins},
			{Label: "Active Users", Value: activeUsers},
			{Label: "Pending Users", Value: pendingUsers},
			{Label: fmt.Sprintf("Seen in last %d days", periodDays), Value: seenRecently},
		},
		ResourceUsage: []MetricPoint{
			{Label: "Total Resources", Value: totalResources},
			{Label: recentLabel, Value: recentResources},
			{Label: "Resources per Course", Value: fmt.Sprintf("%.1f", float64(totalResources)/float64(totalCourses))},
		},
		AIUsage: []MetricPoint{
			{Label: "Total AI Calls", Value: totalAI},
			{Label: "Successful Calls", Value: successAI},
			{Label: recentLabel, Value: recentAI},
			{Label: "Success Rate", Value: fmt.Sprintf("%.1f%%", float64(successAI)/float64(aiDenominator)*100)},
		},
		QuizPerformance: []MetricPoint{
			{Label: "Total Quizzes", Value: totalQuizzes},
			{Label: "Total Submissions", Value: totalSubmissions},
			{Label: recentLabel, Value: recentSubmissions},
			{Label: "Average Score", Value: fmt.Sprintf("%.1f%%", avgScore)},
		},
		PeriodDays:  periodDays,
		GeneratedAt: endDate,
	}, nil
}

func (s *AdminService) GetAiLogs(endpoint string, page, limit int) ([]model.AiCallLog, int64, error) {
	return s.AiLogRepo.List(endpoint, page, limit)
}

// ExportUsersXLSX 导出全部用户为xlsx表格
func (s *AdminService) ExportUsersXLSX() (*bytes.Buffer, error) {
	users, err := s.UserRepo.ListAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Users"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "Role", "Department", "Status", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, user := range users {
		departmentName := "N/A"
		if user.Department != nil {
			departmentName = user.Department.Name
		}
		values := []interface{}{
			user.ID,
			user.Name,
			user.Email,
			string(user.Role),
			departmentName,
			string(user.Status),
			user.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f.WriteToBuffer()
}

type SystemHealth struct {
	Database  string    `json:"database"`
	AIService string    `json:"aiService"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *AdminService) GetSystemHealth(ctx context.Context) *SystemHealth {
	health := &SystemHealth{
		Database:  "healthy",
		AIService: "healthy",
		Timestamp: time.Now().UTC(),
	}

	sqlDB, err := s.UserRepo.DB.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		health.Database = "unhealthy"
	}

	if s.Tutor != nil {
		if status := s.Tutor.Status(ctx); status.Status == "error" {
			health.AIService = "unhealthy"
		}
	}

	return health
}
