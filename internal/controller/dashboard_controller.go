package controller

import (
	"pyland_backend/internal/model"
	"pyland_backend/internal/service"
	"pyland_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	handlers         map[model.UserRole]gin.HandlerFunc
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	c := &DashboardController{DashboardService: dashboardService}
	// 角色到概览视图的分发表，新角色在这里挂新视图
	c.handlers = map[model.UserRole]gin.HandlerFunc{
		model.Student:  c.studentDashboard,
		model.Mentor:   c.reviewerDashboard,
		model.Reviewer: c.reviewerDashboard,
		model.Manager:  c.adminDashboard,
		model.Admin:    c.adminDashboard,
	}
	return c
}

// GetDashboard godoc
// @Summary 首页概览
// @Description 按登录角色返回对应的概览视图
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	handler, ok := c.handlers[user.Role]
	if !ok {
		handler = c.studentDashboard
	}
	handler(ctx)
}

func (c *DashboardController) studentDashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	dash, err := c.DashboardService.StudentOverview(user.UserID, lang(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dash)
}

func (c *DashboardController) reviewerDashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	dash, err := c.DashboardService.ReviewerOverview(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dash)
}

func (c *DashboardController) adminDashboard(ctx *gin.Context) {
	dash, err := c.DashboardService.AdminOverview()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dash)
}
