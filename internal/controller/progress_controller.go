package controller

import (
	"pyland_backend/internal/service"
	"pyland_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ToggleStep godoc
// @Summary 勾选/取消步骤完成
// @Description 幂等翻转，响应附带课时和课程的最新进度
// @Tags 学习进度
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   lessonSlug path string true "课时 slug"
// @Param   stepId path string true "步骤 ID"
// @Success 200 {object} util.Response{data=service.ToggleResult}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/lessons/{lessonSlug}/steps/{stepId}/toggle [post]
func (c *ProgressController) ToggleStep(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.ProgressService.ToggleStep(claims.UserID,
		ctx.Param("slug"), ctx.Param("lessonSlug"), ctx.Param("stepId"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type AdvanceRequest struct {
	SelfCheckConfirmed bool `json:"selfCheckConfirmed"`
}

// AdvanceStep godoc
// @Summary 完成当前步骤并取下一步
// @Description 记录自检确认，返回课时内的下一步；走到课时末尾时 nextStepId 为空
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   lessonSlug path string true "课时 slug"
// @Param   stepId path string true "步骤 ID"
// @Param   body body AdvanceRequest false "自检确认"
// @Success 200 {object} util.Response{data=service.AdvanceResult}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/lessons/{lessonSlug}/steps/{stepId}/advance [post]
func (c *ProgressController) AdvanceStep(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AdvanceRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.ProgressService.AdvanceStep(claims.UserID,
		ctx.Param("slug"), ctx.Param("lessonSlug"), ctx.Param("stepId"), req.SelfCheckConfirmed)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// LessonProgress godoc
// @Summary 课时进度
// @Tags 学习进度
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   lessonSlug path string true "课时 slug"
// @Success 200 {object} util.Response{data=model.LessonProgress}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/lessons/{lessonSlug}/progress [get]
func (c *ProgressController) LessonProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetLessonProgress(claims.UserID, ctx.Param("slug"), ctx.Param("lessonSlug"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CourseProgress godoc
// @Summary 课程进度
// @Description 完成率按全部课时的步骤总数聚合，round(100*K/N)
// @Tags 学习进度
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/progress [get]
func (c *ProgressController) CourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetCourseProgress(claims.UserID, ctx.Param("slug"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
