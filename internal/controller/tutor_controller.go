package controller

import (
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/service"
	"aru_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	Service  *service.TutorService
	UserRepo *repository.UserRepository
}

func NewTutorController(svc *service.TutorService, userRepo *repository.UserRepository) *TutorController {
	return &TutorController{Service: svc, UserRepo: userRepo}
}

// @Summary AI问答
// @Description 向AI助教提问，可携带资源上下文；AI不可用时返回内置回复
// @Tags AI助教
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AskRequest true "问题"
// @Success 200 {object} util.Response
// @Router /api/ai/ask [post]
func (c *TutorController) Ask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Service.Ask(ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// @Summary AI生成测验题目
// @Tags AI助教
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GenerateQuestionsRequest true "主题和数量"
// @Success 200 {object} util.Response
// @Router /api/ai/generate-questions [post]
func (c *TutorController) GenerateQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GenerateQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Service.GenerateQuestions(ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// @Summary 由AI题目创建测验
// @Tags AI助教
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateQuizRequest true "测验信息和题目"
// @Success 201 {object} util.Response
// @Router /api/ai/create-quiz [post]
func (c *TutorController) CreateQuiz(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req service.CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.CreateQuizFromAI(user, &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary AI评估简答题
// @Tags AI助教
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.EvaluateAnswerRequest true "题目、学生答案和标准答案"
// @Success 200 {object} util.Response
// @Router /api/ai/evaluate-answer [post]
func (c *TutorController) EvaluateAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.EvaluateAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Service.EvaluateAnswer(ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// @Summary AI服务状态
// @Tags AI助教
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/ai/status [get]
func (c *TutorController) Status(ctx *gin.Context) {
	util.Success(ctx, c.Service.Status(ctx.Request.Context()))
}
