package service

import (
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo     *repository.UserRepository
	ApprovedRepo *repository.ApprovedUserRepository
	Cfg          *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, approvedRepo *repository.ApprovedUserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:     userRepo,
		ApprovedRepo: approvedRepo,
		Cfg:          cfg,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register 自助注册，仅限管理员预先批准的邮箱
// 角色与院系取自批准记录，调用方无法自选
func (s *AuthService) Register(req *RegisterRequest) (*model.User, error) {
	exists, err := s.UserRepo.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrEmailRegistered
	}

	approval, err := s.ApprovedRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotApproved
		}
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		Password:     string(hashedPassword),
		Role:         model.UserRole(approval.Role),
		DepartmentID: approval.DepartmentID,
		Status:       model.StatusActive,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *AuthService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	if user.Status == model.StatusSuspended {
		return nil, util.AccessDeniedError("account suspended")
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	s.UserRepo.UpdateLastLogin(user.ID)

	return &LoginResponse{Token: token, User: user}, nil
}

func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return util.ValidationError("current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Update(user)
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}
