package service

import (
	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"
)

// DashboardService 按角色聚合概览数据，一个角色一个入口
type DashboardService struct {
	UserRepo       *repository.UserRepository
	CourseRepo     *repository.CourseRepository
	ProgressRepo   *repository.ProgressRepository
	SubmissionRepo *repository.SubmissionRepository
	CertRepo       *repository.CertificateRepository
	NotifRepo      *repository.NotificationRepository
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	submissionRepo *repository.SubmissionRepository,
	certRepo *repository.CertificateRepository,
	notifRepo *repository.NotificationRepository,
) *DashboardService {
	return &DashboardService{
		UserRepo:       userRepo,
		CourseRepo:     courseRepo,
		ProgressRepo:   progressRepo,
		SubmissionRepo: submissionRepo,
		CertRepo:       certRepo,
		NotifRepo:      notifRepo,
	}
}

type CourseProgressEntry struct {
	CourseID uint   `json:"courseId"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	*model.CourseProgress
}

type StudentDashboard struct {
	Courses      []CourseProgressEntry `json:"courses"`
	Submissions  map[string]int64      `json:"submissions"`
	Certificates int                   `json:"certificates"`
}

// StudentOverview 学生端首页：进行中课程的进度 + 提交状态分布 + 证书数
func (s *DashboardService) StudentOverview(userID uint, lang string) (*StudentDashboard, error) {
	courses, err := s.CourseRepo.List([]model.CourseStatus{model.CourseActive}, "")
	if err != nil {
		return nil, err
	}

	dash := &StudentDashboard{
		Courses:     []CourseProgressEntry{},
		Submissions: map[string]int64{},
	}

	for i := range courses {
		course := &courses[i]
		progress, err := s.ProgressRepo.CourseProgress(userID, course.ID)
		if err != nil {
			return nil, err
		}
		if progress.CompletedSteps == 0 {
			continue
		}
		entry := CourseProgressEntry{
			CourseID:       course.ID,
			Slug:           course.Slug,
			CourseProgress: progress,
		}
		if t := course.Localized(lang, util.DefaultLanguage); t != nil {
			entry.Name = t.Name
		}
		dash.Courses = append(dash.Courses, entry)
	}

	for _, status := range []model.SubmissionStatus{
		model.SubmissionPending,
		model.SubmissionApproved,
		model.SubmissionChangesRequested,
		model.SubmissionRejected,
	} {
		count, err := s.SubmissionRepo.CountByUserStatus(userID, status)
		if err != nil {
			return nil, err
		}
		dash.Submissions[string(status)] = count
	}

	certs, err := s.CertRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	dash.Certificates = len(certs)

	return dash, nil
}

type ReviewerDashboard struct {
	QueueSize     int64                    `json:"queueSize"`
	ReviewsGiven  int64                    `json:"reviewsGiven"`
	OldestPending []model.LessonSubmission `json:"oldestPending"`
}

// ReviewerOverview 审核端首页：队列深度 + 本人累计审核数 + 最久未处理的提交
func (s *DashboardService) ReviewerOverview(reviewerID uint) (*ReviewerDashboard, error) {
	queueSize, err := s.SubmissionRepo.CountByStatus(model.SubmissionPending)
	if err != nil {
		return nil, err
	}
	given, err := s.SubmissionRepo.CountReviewsByReviewer(reviewerID)
	if err != nil {
		return nil, err
	}
	oldest, err := s.SubmissionRepo.PendingQueue(5)
	if err != nil {
		return nil, err
	}

	return &ReviewerDashboard{
		QueueSize:     queueSize,
		ReviewsGiven:  given,
		OldestPending: oldest,
	}, nil
}

type AdminDashboard struct {
	Users         map[string]int64 `json:"users"`
	Submissions   map[string]int64 `json:"submissions"`
	Notifications map[string]int64 `json:"notifications"`
}

// AdminOverview 管理端首页：用户/提交/通知的状态分布
func (s *DashboardService) AdminOverview() (*AdminDashboard, error) {
	dash := &AdminDashboard{
		Users:         map[string]int64{},
		Submissions:   map[string]int64{},
		Notifications: map[string]int64{},
	}

	for _, role := range []model.UserRole{model.Student, model.Mentor, model.Reviewer, model.Manager, model.Admin} {
		count, err := s.UserRepo.CountByRole(role)
		if err != nil {
			return nil, err
		}
		dash.Users[string(role)] = count
	}

	for _, status := range []model.SubmissionStatus{
		model.SubmissionPending,
		model.SubmissionApproved,
		model.SubmissionChangesRequested,
		model.SubmissionRejected,
	} {
		count, err := s.SubmissionRepo.CountByStatus(status)
		if err != nil {
			return nil, err
		}
		dash.Submissions[string(status)] = count
	}

	for _, status := range []model.NotificationStatus{
		model.NotificationQueued,
		model.NotificationSent,
		model.NotificationFailed,
	} {
		count, err := s.NotifRepo.CountByStatus(status)
		if err != nil {
			return nil, err
		}
		dash.Notifications[string(status)] = count
	}

	return dash, nil
}
