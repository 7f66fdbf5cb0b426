package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")

	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrStepNotFound   = errors.New("step not found")
	ErrStepNotInScope = errors.New("step does not belong to the given lesson or course")
	ErrPositionTaken  = errors.New("position already taken within parent")

	ErrInvalidRepoURL         = errors.New("repository url must be a valid http(s) link")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrSubmissionExists       = errors.New("an open submission already exists for this lesson")
	ErrLessonAlreadyApproved  = errors.New("lesson submission already approved")
	ErrSubmissionNotPending   = errors.New("submission is not pending review")
	ErrSubmissionNotReturned  = errors.New("submission is not in changes_requested state")
	ErrCommentTooShort        = errors.New("review comment is too short")
	ErrInvalidDecision        = errors.New("unknown review decision")
	ErrImprovementRequired    = errors.New("changes_requested review needs at least one improvement")
	ErrImprovementInvalid     = errors.New("improvement needs a title and a sufficient description")
	ErrImprovementNotFound    = errors.New("improvement not found")
	ErrImprovementsIncomplete = errors.New("all improvements must be completed before resubmitting")
	ErrImprovementLocked      = errors.New("improvements can only be updated while changes are requested")

	ErrCertificateNotFound = errors.New("certificate not found")

	ErrInvalidVideoExt = errors.New("不支持的视频格式")
	ErrInvalidImage    = errors.New("非法的图片内容")
)
