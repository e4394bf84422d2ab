package controller

import (
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/service"
	"aru_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Service *service.AuthService
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Service: svc}
}

// currentUser 从JWT声明加载完整用户记录
func currentUser(ctx *gin.Context, userRepo *repository.UserRepository) (*model.User, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	user, err := userRepo.FindByID(claims.UserID)
	if err != nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return user, true
}

// @Summary 注册账号
// @Description 仅限管理员预先批准的邮箱注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.RegisterRequest true "注册信息"
// @Success 201 {object} util.Response
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.Service.Register(&req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Created(ctx, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body loginRequest true "登录信息"
// @Success 200 {object} util.Response
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Service.Login(req.Email, req.Password)
	if err != nil {
		// 登录失败统一返回401，不暴露具体原因
		if util.KindOf(err) == util.KindValidation {
			util.Error(ctx, 401, err.Error())
			return
		}
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user := c.Service.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// @Summary 修改密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body changePasswordRequest true "新旧密码"
// @Success 200 {object} util.Response
// @Router /api/auth/change-password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req changePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.ChangePassword(claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "password updated"})
}
