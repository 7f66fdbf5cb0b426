package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/pkg/database"
	"pyland_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func init() {
	logger.Log = zap.NewNop()
}

// openTestDB 每个测试一个独立的 sqlite 内存库，复用生产迁移
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:pyland_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	DB       *gorm.DB
	Student  *model.User
	Reviewer *model.User
	Course   *model.Course
	Lessons  []model.Lesson
}

// seedCourse 建一门 active 课程：lessons 个必修课时，每课时 stepsPerLesson 个步骤
func seedCourse(t *testing.T, db *gorm.DB, lessons, stepsPerLesson int) *fixture {
	t.Helper()

	student := &model.User{Name: "Ada", Email: "ada@test.dev", Password: "x", Role: model.Student}
	require.NoError(t, db.Create(student).Error)
	reviewer := &model.User{Name: "Rev", Email: "rev@test.dev", Password: "x", Role: model.Reviewer}
	require.NoError(t, db.Create(reviewer).Error)

	course := &model.Course{
		Slug:   "go-basics",
		Status: model.CourseActive,
		Translations: []model.CourseTranslation{
			{Language: "en", Name: "Go Basics"},
		},
	}
	for l := 1; l <= lessons; l++ {
		lesson := model.Lesson{
			Slug:     fmt.Sprintf("lesson-%d", l),
			Position: l,
			Required: true,
			Title:    fmt.Sprintf("Lesson %d", l),
		}
		for p := 1; p <= stepsPerLesson; p++ {
			lesson.Steps = append(lesson.Steps, model.Step{Position: p})
		}
		course.Lessons = append(course.Lessons, lesson)
	}
	require.NoError(t, db.Create(course).Error)

	var loaded []model.Lesson
	require.NoError(t, db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("course_id = ?", course.ID).Order("position ASC").Find(&loaded).Error)

	return &fixture{DB: db, Student: student, Reviewer: reviewer, Course: course, Lessons: loaded}
}

func newProgressService(db *gorm.DB) *ProgressService {
	return NewProgressService(
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewStepRepository(db),
		repository.NewProgressRepository(db),
		db,
	)
}

func newCertificateService(db *gorm.DB) *CertificateService {
	return NewCertificateService(
		repository.NewCertificateRepository(db),
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewUserRepository(db),
		"PY",
		db,
	)
}

func newReviewService(db *gorm.DB, certs CertificateIssuer, notes Notifier) *ReviewService {
	return NewReviewService(
		repository.NewSubmissionRepository(db),
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewUserRepository(db),
		certs,
		notes,
		db,
	)
}
