package controller

import (
	"pyland_backend/internal/service"
	"pyland_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	ReviewService *service.ReviewService
}

func NewSubmissionController(reviewService *service.ReviewService) *SubmissionController {
	return &SubmissionController{ReviewService: reviewService}
}

type SubmitRequest struct {
	RepoURL string `json:"repoUrl" binding:"required,url"`
}

// Submit godoc
// @Summary 提交作业
// @Description 提交外部仓库链接进入审核队列；同一课时同时只允许一份未关闭的提交
// @Tags 作业
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   lessonSlug path string true "课时 slug"
// @Param   body body SubmitRequest true "仓库链接"
// @Success 201 {object} util.Response{data=model.LessonSubmission}
// @Failure 409 {object} util.Response "已有未关闭的提交"
// @Router /api/courses/{slug}/lessons/{lessonSlug}/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.ReviewService.Submit(claims.UserID, ctx.Param("slug"), ctx.Param("lessonSlug"), req.RepoURL)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// Resubmit godoc
// @Summary 重新提交
// @Description 所有改进项完成后把 changes_requested 的提交推回审核队列，轮次加一
// @Tags 作业
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   lessonSlug path string true "课时 slug"
// @Success 200 {object} util.Response{data=model.LessonSubmission}
// @Failure 409 {object} util.Response "改进项未全部完成"
// @Router /api/courses/{slug}/lessons/{lessonSlug}/submissions/resubmit [post]
func (c *SubmissionController) Resubmit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sub, err := c.ReviewService.Resubmit(claims.UserID, ctx.Param("slug"), ctx.Param("lessonSlug"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// ToggleImprovement godoc
// @Summary 勾选/取消改进项
// @Description 幂等翻转，仅在 changes_requested 状态下可操作
// @Tags 作业
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "改进项 ID"
// @Success 200 {object} util.Response{data=model.Improvement}
// @Failure 409 {object} util.Response "当前状态不允许修改"
// @Router /api/improvements/{id}/toggle [post]
func (c *SubmissionController) ToggleImprovement(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	imp, err := c.ReviewService.ToggleImprovement(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, imp)
}

// MySubmissions godoc
// @Summary 我的提交历史
// @Description 含每一轮的审核结论和改进项
// @Tags 作业
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.LessonSubmission}
// @Router /api/submissions [get]
func (c *SubmissionController) MySubmissions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	subs, err := c.ReviewService.ListMine(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}
