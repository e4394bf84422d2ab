package controller

import (
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/service"
	"aru_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResourceController struct {
	Service  *service.ResourceService
	UserRepo *repository.UserRepository
}

func NewResourceController(svc *service.ResourceService, userRepo *repository.UserRepository) *ResourceController {
	return &ResourceController{Service: svc, UserRepo: userRepo}
}

// @Summary 获取资源列表
// @Tags 学习资源
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "课程ID"
// @Success 200 {object} util.Response
// @Router /api/resources [get]
func (c *ResourceController) List(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	if courseID := util.MustParseUint(ctx.Query("courseId")); courseID > 0 {
		resources, err := c.Service.GetResourcesByCourse(user, courseID)
		if err != nil {
			util.FromError(ctx, err)
			return
		}
		util.Success(ctx, resources)
		return
	}

	resources, err := c.Service.GetResourcesForUser(user)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, resources)
}

// @Summary 获取资源详情
// @Tags 学习资源
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{id} [get]
func (c *ResourceController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	resource, err := c.Service.GetResourceByID(user, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, resource)
}

// @Summary 创建资源（文本或外链）
// @Tags 学习资源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateResourceRequest true "资源信息"
// @Success 201 {object} util.Response
// @Router /api/resources [post]
func (c *ResourceController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req service.CreateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.Service.CreateResource(user, &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, resource)
}

// @Summary 上传资源文件
// @Description 表单上传PDF或视频文件
// @Tags 学习资源
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "文件"
// @Param title formData string true "标题"
// @Param type formData string true "资源类型"
// @Param courseId formData int true "课程ID"
// @Success 201 {object} util.Response
// @Router /api/resources/upload [post]
func (c *ResourceController) Upload(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	req := service.CreateResourceRequest{
		Title:       ctx.PostForm("title"),
		Type:        ctx.PostForm("type"),
		CourseID:    util.MustParseUint(ctx.PostForm("courseId")),
		Description: ctx.PostForm("description"),
	}
	if req.Title == "" || req.Type == "" || req.CourseID == 0 {
		util.BadRequest(ctx, "title, type and courseId are required")
		return
	}

	resource, err := c.Service.UploadResourceFile(ctx.Request.Context(), user, &req, fileHeader)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, resource)
}

// @Summary 更新资源
// @Tags 学习资源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Param body body service.UpdateResourceRequest true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/resources/{id} [put]
func (c *ResourceController) Update(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req service.UpdateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.Service.UpdateResource(user, util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, resource)
}

// @Summary 删除资源
// @Tags 学习资源
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{id} [delete]
func (c *ResourceController) Delete(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	if err := c.Service.DeleteResource(ctx.Request.Context(), user, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "resource deleted"})
}

// @Summary 更新学习进度
// @Tags 学习资源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Param body body service.UpdateProgressRequest true "进度信息"
// @Success 200 {object} util.Response
// @Router /api/resources/{id}/progress [post]
func (c *ResourceController) UpdateProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req service.UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.Service.UpdateProgress(user, util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 获取我的学习进度
// @Tags 学习资源
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ResourceController) MyProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.Service.GetUserProgress(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 获取资源的全员进度
// @Tags 学习资源
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{id}/progress [get]
func (c *ResourceController) ResourceProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	progress, err := c.Service.GetResourceProgress(user, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
