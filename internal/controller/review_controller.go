package controller

import (
	"pyland_backend/internal/service"
	"pyland_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	ReviewService *service.ReviewService
	Hub           *service.ReviewHub
}

func NewReviewController(reviewService *service.ReviewService, hub *service.ReviewHub) *ReviewController {
	return &ReviewController{
		ReviewService: reviewService,
		Hub:           hub,
	}
}

// Queue godoc
// @Summary 审核队列
// @Description pending 提交按提交时间从早到晚排列
// @Tags 审核
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "最多返回条数"
// @Success 200 {object} util.Response{data=[]model.LessonSubmission}
// @Router /api/review/queue [get]
func (c *ReviewController) Queue(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	subs, err := c.ReviewService.Queue(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// GetSubmission godoc
// @Summary 提交详情（审核端）
// @Description 含全部历史轮次的审核与改进项
// @Tags 审核
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "提交 ID"
// @Success 200 {object} util.Response{data=model.LessonSubmission}
// @Failure 404 {object} util.Response
// @Router /api/review/submissions/{id} [get]
func (c *ReviewController) GetSubmission(ctx *gin.Context) {
	sub, err := c.ReviewService.GetSubmission(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// Review godoc
// @Summary 出具审核结论
// @Description approved / changes_requested / rejected；changes_requested 必须附带改进项，评语不少于最小长度
// @Tags 审核
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "提交 ID"
// @Param   body body service.ReviewRequest true "审核结论"
// @Success 200 {object} util.Response{data=model.LessonSubmission}
// @Failure 400 {object} util.Response "评语过短或改进项不合法"
// @Failure 409 {object} util.Response "提交已不在待审状态"
// @Router /api/review/submissions/{id} [post]
func (c *ReviewController) Review(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.ReviewService.Review(claims.UserID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// QueueFeed godoc
// @Summary 审核队列实时推送
// @Description WebSocket，提交入队/出队时推送事件
// @Tags 审核
// @Security BearerAuth
// @Router /api/review/queue/ws [get]
func (c *ReviewController) QueueFeed(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	c.Hub.ServeQueueFeed(ctx.Writer, ctx.Request, claims.UserID)
}
