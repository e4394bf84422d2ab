package controller

import (
	"aru_academy_backend/internal/service"
	"aru_academy_backend/internal/util"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Service *service.AdminService
}

func NewAdminController(svc *service.AdminService) *AdminController {
	return &AdminController{Service: svc}
}

// @Summary 仪表盘统计
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.Service.GetDashboardStats()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 用户列表
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param search query string false "按名称或邮箱搜索"
// @Param role query string false "角色过滤"
// @Param departmentId query int false "院系过滤"
// @Param status query string false "状态过滤"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (c *AdminController) Users(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	users, total, err := c.Service.GetUsers(
		ctx.Query("search"),
		ctx.Query("role"),
		util.MustParseUint(ctx.Query("departmentId")),
		ctx.Query("status"),
		page, limit,
	)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  users,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary 更新用户状态
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param body body updateStatusRequest true "新状态"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/status [put]
func (c *AdminController) UpdateUserStatus(ctx *gin.Context) {
	var req updateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.Service.UpdateUserStatus(util.MustParseUint(ctx.Param("id")), req.Status)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// @Summary 更新用户角色
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param body body updateRoleRequest true "新角色"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/role [put]
func (c *AdminController) UpdateUserRole(ctx *gin.Context) {
	var req updateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.Service.UpdateUserRole(util.MustParseUint(ctx.Param("id")), req.Role)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// @Summary 删除用户
// @Description 管理员账户不允许删除
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	if err := c.Service.DeleteUser(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "user deleted"})
}

// @Summary 待审批注册列表
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/approvals [get]
func (c *AdminController) PendingApprovals(ctx *gin.Context) {
	approvals, err := c.Service.GetPendingApprovals()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, approvals)
}

// @Summary 添加注册白名单
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AddApprovedUserRequest true "批准信息"
// @Success 201 {object} util.Response
// @Router /api/admin/approvals [post]
func (c *AdminController) AddApprovedUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AddApprovedUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	approved, err := c.Service.AddApprovedUser(claims.UserID, &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, approved)
}

type approveUserRequest struct {
	Role       string `json:"role" binding:"required"`
	Department string `json:"department" binding:"required"`
}

// @Summary 批准注册
// @Description 直接创建账号并发放初始密码
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "审批记录ID"
// @Param body body approveUserRequest true "角色和院系"
// @Success 200 {object} util.Response
// @Router /api/admin/approvals/{id}/approve [post]
func (c *AdminController) ApproveUser(ctx *gin.Context) {
	var req approveUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.Service.ApproveUser(util.MustParseUint(ctx.Param("id")), req.Role, req.Department)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// @Summary 拒绝注册
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param id path int true "审批记录ID"
// @Success 200 {object} util.Response
// @Router /api/admin/approvals/{id}/deny [post]
func (c *AdminController) DenyUser(ctx *gin.Context) {
	if err := c.Service.DenyUser(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "registration denied"})
}

// @Summary 批准全部待审批注册
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/approvals/approve-all [post]
func (c *AdminController) ApproveAll(ctx *gin.Context) {
	result, err := c.Service.ApproveAllUsers()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 院系列表（含用户和课程数量）
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/departments [get]
func (c *AdminController) Departments(ctx *gin.Context) {
	departments, err := c.Service.GetDepartments()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, departments)
}

type createDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// @Summary 创建院系
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createDepartmentRequest true "院系信息"
// @Success 201 {object} util.Response
// @Router /api/admin/departments [post]
func (c *AdminController) CreateDepartment(ctx *gin.Context) {
	var req createDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	department, err := c.Service.CreateDepartment(req.Name, req.Description)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, department)
}

// @Summary 更新院系
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "院系ID"
// @Param body body service.UpdateDepartmentRequest true "更新字段"
// @Success 200 {object} util.Response
// @Router /api/admin/departments/{id} [put]
func (c *AdminController) UpdateDepartment(ctx *gin.Context) {
	var req service.UpdateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	department, err := c.Service.UpdateDepartment(util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, department)
}

// @Summary 删除院系
// @Description 仍有用户或课程的院系不允许删除
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param id path int true "院系ID"
// @Success 200 {object} util.Response
// @Router /api/admin/departments/{id} [delete]
func (c *AdminController) DeleteDepartment(ctx *gin.Context) {
	if err := c.Service.DeleteDepartment(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "department deleted"})
}

// @Summary 平台分析数据
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param period query int false "统计周期（天），默认30"
// @Success 200 {object} util.Response
// @Router /api/admin/analytics [get]
func (c *AdminController) Analytics(ctx *gin.Context) {
	periodDays, _ := strconv.Atoi(ctx.DefaultQuery("period", "30"))

	analytics, err := c.Service.GetAnalytics(periodDays)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, analytics)
}

// @Summary AI调用日志
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param endpoint query string false "按端点过滤"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/admin/ai-logs [get]
func (c *AdminController) AiLogs(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.Query("page"), ctx.Query("limit"))

	logs, total, err := c.Service.GetAiLogs(ctx.Query("endpoint"), page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  logs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 导出用户表格
// @Description 导出全部用户为xlsx文件
// @Tags 管理后台
// @Produce application/octet-stream
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /api/admin/users/export [get]
func (c *AdminController) ExportUsers(ctx *gin.Context) {
	buf, err := c.Service.ExportUsersXLSX()
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	filename := "users_" + time.Now().Format("20060102_150405") + ".xlsx"
	ctx.Header("Content-Disposition", "attachment; filename="+filename)
	ctx.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// @Summary 系统健康状态
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/health [get]
func (c *AdminController) SystemHealth(ctx *gin.Context) {
	util.Success(ctx, c.Service.GetSystemHealth(ctx.Request.Context()))
}
