package service

import (
	"net/url"
	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"
	"pyland_backend/pkg/logger"
	"pyland_backend/pkg/monitoring"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier 通知投递协作方。审核/发证只负责入队，投递失败不回滚业务状态。
type Notifier interface {
	Notify(userID uint, templateCode string, payload map[string]interface{}, channels []model.NotificationChannel)
}

// CertificateIssuer 发证协作方，在最后一个必修课时审核通过时被调用
type CertificateIssuer interface {
	IssueIfCourseComplete(userID, lessonID uint) (*model.Certificate, error)
}

// QueueEvents 审核队列实时推送（WebSocket hub），可为 nil
type QueueEvents interface {
	SubmissionQueued(sub *model.LessonSubmission)
	SubmissionReviewed(sub *model.LessonSubmission)
}

// ReviewService 作业提交与审核状态机。
// pending -> approved | changes_requested | rejected；
// changes_requested 在全部改进项完成后 resubmit 回 pending。
type ReviewService struct {
	SubmissionRepo *repository.SubmissionRepository
	CourseRepo     *repository.CourseRepository
	LessonRepo     *repository.LessonRepository
	UserRepo       *repository.UserRepository
	Certificates   CertificateIssuer
	Notifications  Notifier
	Events         QueueEvents
	DB             *gorm.DB

	mu            sync.RWMutex
	minCommentLen int
	minImpDescLen int
}

func NewReviewService(
	submissionRepo *repository.SubmissionRepository,
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	userRepo *repository.UserRepository,
	certificates CertificateIssuer,
	notifications Notifier,
	db *gorm.DB,
) *ReviewService {
	return &ReviewService{
		SubmissionRepo: submissionRepo,
		CourseRepo:     courseRepo,
		LessonRepo:     lessonRepo,
		UserRepo:       userRepo,
		Certificates:   certificates,
		Notifications:  notifications,
		DB:             db,
		minCommentLen:  util.DefaultMinReviewComment,
		minImpDescLen:  util.DefaultMinImprovementLen,
	}
}

// SetThresholds 配置热更新入口
func (s *ReviewService) SetThresholds(minComment, minImpDesc int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if minComment > 0 {
		s.minCommentLen = minComment
	}
	if minImpDesc > 0 {
		s.minImpDescLen = minImpDesc
	}
}

func (s *ReviewService) thresholds() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minCommentLen, s.minImpDescLen
}

func (s *ReviewService) resolveLesson(courseSlug, lessonSlug string) (*model.Lesson, error) {
	course, err := s.CourseRepo.FindSlimBySlug(courseSlug)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	lesson, err := s.LessonRepo.FindBySlug(course.ID, lessonSlug)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrLessonNotFound
	}
	return lesson, err
}

// Submit 创建 pending 提交。同一 (student, lesson) 同时只允许一份未关闭的
// 提交；rejected 之后可以重新提交。
func (s *ReviewService) Submit(userID uint, courseSlug, lessonSlug, repoURL string) (*model.LessonSubmission, error) {
	if !validRepoURL(repoURL) {
		return nil, util.ErrInvalidRepoURL
	}

	lesson, err := s.resolveLesson(courseSlug, lessonSlug)
	if err != nil {
		return nil, err
	}

	existing, err := s.SubmissionRepo.FindOpenByUserLesson(userID, lesson.ID)
	if err == nil {
		if existing.Status == model.SubmissionApproved {
			return nil, util.ErrLessonAlreadyApproved
		}
		return nil, util.ErrSubmissionExists
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	sub := &model.LessonSubmission{
		UserID:   userID,
		LessonID: lesson.ID,
		RepoURL:  repoURL,
		Status:   model.SubmissionPending,
		Round:    1,
	}
	sub.MarkOpen()

	// uniq_open_submission 兜底并发双提交：输掉插入的一方拿冲突错误
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(sub)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, util.ErrSubmissionExists
	}

	if s.Events != nil {
		s.Events.SubmissionQueued(sub)
	}
	if s.Notifications != nil {
		s.Notifications.Notify(userID, model.TplSubmissionReceived, map[string]interface{}{
			"lessonId": lesson.ID,
			"lesson":   lesson.Title,
		}, []model.NotificationChannel{model.ChannelEmail})
	}

	return sub, nil
}

type ImprovementInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type ReviewRequest struct {
	Decision     model.ReviewDecision `json:"decision" binding:"required"`
	Comments     string               `json:"comments" binding:"required"`
	Improvements []ImprovementInput   `json:"improvements"`
}

// Review 审核一份 pending 提交。
// comments 不得短于阈值；changes_requested 必须附带至少一条合法改进项。
func (s *ReviewService) Review(reviewerID, submissionID uint, req ReviewRequest) (*model.LessonSubmission, error) {
	minComment, minImpDesc := s.thresholds()

	// 阈值按字符数算，不按字节：中文评语 20 字同样算达标
	if utf8.RuneCountInString(strings.TrimSpace(req.Comments)) < minComment {
		return nil, util.ErrCommentTooShort
	}

	switch req.Decision {
	case model.DecisionApproved, model.DecisionChangesRequested, model.DecisionRejected:
	default:
		return nil, util.ErrInvalidDecision
	}

	if req.Decision == model.DecisionChangesRequested {
		if len(req.Improvements) == 0 {
			return nil, util.ErrImprovementRequired
		}
		for _, imp := range req.Improvements {
			if strings.TrimSpace(imp.Title) == "" ||
				utf8.RuneCountInString(strings.TrimSpace(imp.Description)) < minImpDesc {
				return nil, util.ErrImprovementInvalid
			}
		}
	}

	var sub *model.LessonSubmission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// SELECT FOR UPDATE：REPEATABLE READ 下快照读挡不住并发双审
		var locked model.LessonSubmission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, submissionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return util.ErrSubmissionNotFound
			}
			return err
		}

		// 非 pending 的提交不可审核：并发双审只有一个会赢
		if locked.Status != model.SubmissionPending {
			return util.ErrSubmissionNotPending
		}

		review := &model.Review{
			SubmissionID: locked.ID,
			ReviewerID:   reviewerID,
			Round:        locked.Round,
			Decision:     req.Decision,
			Comments:     req.Comments,
		}
		for _, imp := range req.Improvements {
			review.Improvements = append(review.Improvements, model.Improvement{
				SubmissionID: locked.ID,
				Title:        imp.Title,
				Description:  imp.Description,
			})
		}
		if err := tx.Create(review).Error; err != nil {
			return err
		}

		now := time.Now()
		locked.Status = model.SubmissionStatus(req.Decision)
		locked.ReviewerID = &reviewerID
		locked.ReviewedAt = &now
		if locked.Status == model.SubmissionRejected {
			// rejected 释放占位，学生可重新提交
			locked.Close()
		}
		if err := tx.Save(&locked).Error; err != nil {
			return err
		}

		sub = &locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ReviewDecisionCounter.WithLabelValues(string(req.Decision)).Inc()
	s.afterReview(sub)

	return s.SubmissionRepo.FindByID(sub.ID)
}

// afterReview 事务提交之后的外部副作用：通知 + 发证。
// 这里的任何失败只记日志，已提交的状态变更不回滚。
func (s *ReviewService) afterReview(sub *model.LessonSubmission) {
	if s.Events != nil {
		s.Events.SubmissionReviewed(sub)
	}

	if s.Notifications != nil {
		s.Notifications.Notify(sub.UserID, model.TplSubmissionReviewed, map[string]interface{}{
			"submissionId": sub.ID,
			"status":       string(sub.Status),
			"round":        sub.Round,
		}, []model.NotificationChannel{model.ChannelEmail, model.ChannelTelegram})
	}

	if sub.Status != model.SubmissionApproved || s.Certificates == nil {
		return
	}

	cert, err := s.Certificates.IssueIfCourseComplete(sub.UserID, sub.LessonID)
	if err != nil {
		logger.Log.Error("certificate issuance failed",
			zap.Uint("userId", sub.UserID),
			zap.Uint("lessonId", sub.LessonID),
			zap.Error(err))
		return
	}
	if cert != nil && s.Notifications != nil {
		s.Notifications.Notify(sub.UserID, model.TplCertificateIssued, map[string]interface{}{
			"certificateNumber": cert.Number,
			"verifyCode":        cert.VerifyCode,
			"courseId":          cert.CourseID,
		}, []model.NotificationChannel{model.ChannelEmail, model.ChannelTelegram})
	}
}

// ToggleImprovement 学生勾选/取消改进项，幂等翻转。
// 只允许在 changes_requested 状态下、针对当前轮次操作。
func (s *ReviewService) ToggleImprovement(userID uint, improvementID string) (*model.Improvement, error) {
	imp, err := s.SubmissionRepo.FindImprovement(improvementID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrImprovementNotFound
	}
	if err != nil {
		return nil, err
	}

	sub, err := s.SubmissionRepo.FindByID(imp.SubmissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if sub.Status != model.SubmissionChangesRequested {
		return nil, util.ErrImprovementLocked
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var locked model.Improvement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", improvementID).First(&locked).Error; err != nil {
			return err
		}
		locked.Completed = !locked.Completed
		if locked.Completed {
			now := time.Now()
			locked.CompletedAt = &now
		} else {
			locked.CompletedAt = nil
		}
		imp = &locked
		return tx.Save(&locked).Error
	})
	if err != nil {
		return nil, err
	}
	return imp, nil
}

// Resubmit 改进项全部完成后重新排队。状态回 pending，轮次 +1，
// 历史轮次的审核与改进项原样保留。
func (s *ReviewService) Resubmit(userID uint, courseSlug, lessonSlug string) (*model.LessonSubmission, error) {
	lesson, err := s.resolveLesson(courseSlug, lessonSlug)
	if err != nil {
		return nil, err
	}

	sub, err := s.SubmissionRepo.FindLatestByUserLesson(userID, lesson.ID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	if sub.Status != model.SubmissionChangesRequested {
		return nil, util.ErrSubmissionNotReturned
	}

	imps, err := s.SubmissionRepo.RoundImprovements(sub.ID, sub.Round)
	if err != nil {
		return nil, err
	}
	for _, imp := range imps {
		if !imp.Completed {
			return nil, util.ErrImprovementsIncomplete
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var locked model.LessonSubmission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, sub.ID).Error; err != nil {
			return err
		}
		if locked.Status != model.SubmissionChangesRequested {
			return util.ErrSubmissionNotReturned
		}
		locked.Status = model.SubmissionPending
		locked.Round++
		if err := tx.Save(&locked).Error; err != nil {
			return err
		}
		sub = &locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Events != nil {
		s.Events.SubmissionQueued(sub)
	}

	return sub, nil
}

// Queue 审核队列，最早提交排前
func (s *ReviewService) Queue(limit int) ([]model.LessonSubmission, error) {
	return s.SubmissionRepo.PendingQueue(limit)
}

func (s *ReviewService) GetSubmission(id uint) (*model.LessonSubmission, error) {
	sub, err := s.SubmissionRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSubmissionNotFound
	}
	return sub, err
}

func (s *ReviewService) ListMine(userID uint) ([]model.LessonSubmission, error) {
	return s.SubmissionRepo.ListByUser(userID)
}

func validRepoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
