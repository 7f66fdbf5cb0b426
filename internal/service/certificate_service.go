package service

import (
	"fmt"
	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"
	"pyland_backend/pkg/logger"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CertificateService 结业证书颁发与核验。
// 颁发条件：课程下所有必修课时的作业均已审核通过。
type CertificateService struct {
	CertRepo       *repository.CertificateRepository
	CourseRepo     *repository.CourseRepository
	LessonRepo     *repository.LessonRepository
	SubmissionRepo *repository.SubmissionRepository
	UserRepo       *repository.UserRepository
	DB             *gorm.DB

	mu           sync.RWMutex
	numberPrefix string
}

func NewCertificateService(
	certRepo *repository.CertificateRepository,
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	submissionRepo *repository.SubmissionRepository,
	userRepo *repository.UserRepository,
	numberPrefix string,
	db *gorm.DB,
) *CertificateService {
	if numberPrefix == "" {
		numberPrefix = "PY"
	}
	return &CertificateService{
		CertRepo:       certRepo,
		CourseRepo:     courseRepo,
		LessonRepo:     lessonRepo,
		SubmissionRepo: submissionRepo,
		UserRepo:       userRepo,
		DB:             db,
		numberPrefix:   numberPrefix,
	}
}

// SetNumberPrefix 配置热更新入口，只影响后续颁发的编号
func (s *CertificateService) SetNumberPrefix(prefix string) {
	if prefix == "" {
		return
	}
	s.mu.Lock()
	s.numberPrefix = prefix
	s.mu.Unlock()
}

func (s *CertificateService) prefix() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.numberPrefix
}

// IssueIfCourseComplete 在某课时审核通过后检查整门课程是否已完成，
// 完成则颁发证书。已有证书或课程未完成时返回 (nil, nil)。
// (user, course) 上的唯一索引保证并发审核下至多颁发一张。
func (s *CertificateService) IssueIfCourseComplete(userID, lessonID uint) (*model.Certificate, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, err
	}

	required, err := s.LessonRepo.RequiredByCourse(lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if len(required) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(required))
	for _, l := range required {
		ids = append(ids, l.ID)
	}
	approved, err := s.SubmissionRepo.ApprovedLessonIDs(userID, ids)
	if err != nil {
		return nil, err
	}
	if len(approved) < len(ids) {
		return nil, nil
	}

	if _, err := s.CertRepo.FindByUserCourse(userID, lesson.CourseID); err == nil {
		return nil, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	now := time.Now()
	cert := &model.Certificate{
		UserID:     userID,
		CourseID:   lesson.CourseID,
		Number:     s.buildNumber(lesson.CourseID, userID, now),
		VerifyCode: strings.ReplaceAll(uuid.NewString(), "-", ""),
		IssuedAt:   now,
	}

	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(cert)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// 并发颁发输掉的一方
		return nil, nil
	}

	logger.Log.Info("certificate issued",
		zap.Uint("userId", userID),
		zap.Uint("courseId", lesson.CourseID),
		zap.String("number", cert.Number))

	return cert, nil
}

// buildNumber 证书编号，如 PY-2026-000003-000042
func (s *CertificateService) buildNumber(courseID, userID uint, at time.Time) string {
	return fmt.Sprintf("%s-%d-%06d-%06d", s.prefix(), at.Year(), courseID, userID)
}

// CertificateView 公开核验返回的脱敏视图
type CertificateView struct {
	Number      string    `json:"number"`
	StudentName string    `json:"studentName"`
	CourseTitle string    `json:"courseTitle"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// Verify 公开核验接口，不要求登录
func (s *CertificateService) Verify(code string) (*CertificateView, error) {
	cert, err := s.CertRepo.FindByVerifyCode(code)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCertificateNotFound
	}
	if err != nil {
		return nil, err
	}

	view := &CertificateView{
		Number:   cert.Number,
		IssuedAt: cert.IssuedAt,
	}
	if user, err := s.UserRepo.FindByID(cert.UserID); err == nil {
		view.StudentName = user.Name
	}
	if course, err := s.CourseRepo.FindByID(cert.CourseID); err == nil {
		if t := course.Localized(util.DefaultLanguage, util.DefaultLanguage); t != nil {
			view.CourseTitle = t.Name
		}
	}
	return view, nil
}

func (s *CertificateService) ListMine(userID uint) ([]model.Certificate, error) {
	return s.CertRepo.ListByUser(userID)
}
