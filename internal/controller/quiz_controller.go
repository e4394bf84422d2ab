package controller

import (
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/service"
	"aru_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service  *service.QuizService
	UserRepo *repository.UserRepository
}

func NewQuizController(svc *service.QuizService, userRepo *repository.UserRepository) *QuizController {
	return &QuizController{Service: svc, UserRepo: userRepo}
}

// @Summary 获取测验列表
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "课程ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes [get]
func (c *QuizController) List(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	if courseID := util.MustParseUint(ctx.Query("courseId")); courseID > 0 {
		quizzes, err := c.Service.GetQuizzesByCourse(user, courseID)
		if err != nil {
			util.FromError(ctx, err)
			return
		}
		util.Success(ctx, quizzes)
		return
	}

	quizzes, err := c.Service.GetQuizzesForUser(user)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// @Summary 获取测验详情
// @Description 学生视角不返回题目答案和解析
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	quiz, err := c.Service.GetQuizByID(user, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	// 学生提交前不能看到正确答案
	if user.Role == model.Student {
		util.Success(ctx, service.StudentQuizView(quiz))
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 创建测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateQuizServiceRequest true "测验信息"
// @Success 201 {object} util.Response
// @Router /api/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req service.CreateQuizServiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.CreateQuiz(user, &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary 更新测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param body body service.UpdateQuizRequest true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req service.UpdateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.UpdateQuiz(user, util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 删除测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	if err := c.Service.DeleteQuiz(user, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "quiz deleted"})
}

type submitQuizRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// @Summary 提交测验答案
// @Description 每个测验只允许提交一次，重复提交被拒绝
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param body body submitQuizRequest true "题目ID到答案的映射"
// @Success 201 {object} util.Response
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req submitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.Service.SubmitQuiz(user, util.MustParseUint(ctx.Param("id")), req.Answers)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"submission": submission,
		"percentage": submission.Percentage(),
	})
}

// @Summary 获取我的测验历史
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quizzes/history [get]
func (c *QuizController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	history, err := c.Service.GetUserQuizHistory(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// @Summary 获取测验全部提交
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/results [get]
func (c *QuizController) Results(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	results, err := c.Service.GetQuizResults(user, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// @Summary 获取测验统计
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/statistics [get]
func (c *QuizController) Statistics(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	stats, err := c.Service.GetQuizStatistics(user, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
