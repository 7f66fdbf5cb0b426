package controller

import (
	"errors"
	"net/http"
	"pyland_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondServiceError 业务错误到 HTTP 状态码的映射，兜底 500
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrStepNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrImprovementNotFound),
		errors.Is(err, util.ErrCertificateNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())

	case errors.Is(err, util.ErrSubmissionExists),
		errors.Is(err, util.ErrLessonAlreadyApproved),
		errors.Is(err, util.ErrSubmissionNotPending),
		errors.Is(err, util.ErrSubmissionNotReturned),
		errors.Is(err, util.ErrImprovementLocked),
		errors.Is(err, util.ErrPositionTaken):
		util.Conflict(ctx, err.Error())

	case errors.Is(err, util.ErrStepNotInScope),
		errors.Is(err, util.ErrInvalidRepoURL),
		errors.Is(err, util.ErrCommentTooShort),
		errors.Is(err, util.ErrInvalidDecision),
		errors.Is(err, util.ErrImprovementRequired),
		errors.Is(err, util.ErrImprovementInvalid),
		errors.Is(err, util.ErrImprovementsIncomplete),
		errors.Is(err, util.ErrInvalidVideoExt),
		errors.Is(err, util.ErrInvalidImage):
		util.BadRequest(ctx, err.Error())

	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)

	default:
		util.LogInternalError(ctx, err)
	}
}
