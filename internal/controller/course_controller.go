package controller

import (
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/service"
	"aru_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	Service  *service.CourseService
	UserRepo *repository.UserRepository
}

func NewCourseController(svc *service.CourseService, userRepo *repository.UserRepository) *CourseController {
	return &CourseController{Service: svc, UserRepo: userRepo}
}

// @Summary 获取课程列表
// @Description 按角色返回可见课程，支持关键词搜索
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param search query string false "搜索关键词"
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	courses, err := c.Service.SearchCourses(user, ctx.Query("search"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 获取院系列表
// @Description 注册页下拉框使用，无需登录
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/departments [get]
func (c *CourseController) Departments(ctx *gin.Context) {
	departments, err := c.Service.ListDepartments()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, departments)
}

// @Summary 获取课程详情
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	course, err := c.Service.GetCourseByID(user, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateCourseRequest true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req service.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.Service.CreateCourse(user, &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param body body service.UpdateCourseRequest true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	var req service.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.Service.UpdateCourse(user, util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 删除课程
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	if err := c.Service.DeleteCourse(user, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "course deleted"})
}

// @Summary 按院系获取课程
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "院系ID"
// @Success 200 {object} util.Response
// @Router /api/departments/{id}/courses [get]
func (c *CourseController) ListByDepartment(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.UserRepo)
	if !ok {
		return
	}

	courses, err := c.Service.GetCoursesByDepartment(user, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
