package service

import (
	"fmt"
	"testing"
	"time"

	"pyland_backend/internal/model"
	"pyland_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalIssuesCertificateWhenCourseComplete(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 2, 1)
	certs := newCertificateService(db)
	notes := &fakeNotifier{}
	svc := newReviewService(db, certs, notes)

	approve := func(lessonSlug string) {
		sub, err := svc.Submit(fx.Student.ID, "go-basics", lessonSlug, "https://github.com/ada/solution")
		require.NoError(t, err)
		_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
			Decision: model.DecisionApproved,
			Comments: okComment,
		})
		require.NoError(t, err)
	}

	approve("lesson-1")

	// 还有必修课时未通过，不发证
	var count int64
	require.NoError(t, db.Model(&model.Certificate{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	assert.NotContains(t, notes.templates(), model.TplCertificateIssued)

	approve("lesson-2")

	list, err := certs.ListMine(fx.Student.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	cert := list[0]
	assert.Equal(t, fx.Course.ID, cert.CourseID)
	assert.Equal(t, fmt.Sprintf("PY-%d-%06d-%06d", time.Now().Year(), fx.Course.ID, fx.Student.ID), cert.Number)
	assert.Len(t, cert.VerifyCode, 32)
	assert.Contains(t, notes.templates(), model.TplCertificateIssued)
}

func TestOptionalLessonsDoNotBlockCertificate(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	certs := newCertificateService(db)
	svc := newReviewService(db, certs, nil)

	bonus := &model.Lesson{CourseID: fx.Course.ID, Slug: "bonus", Position: 99, Required: false, Title: "Bonus"}
	require.NoError(t, db.Create(bonus).Error)

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)
	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionApproved,
		Comments: okComment,
	})
	require.NoError(t, err)

	list, err := certs.ListMine(fx.Student.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIssueIfCourseCompleteIdempotent(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	certs := newCertificateService(db)

	require.NoError(t, db.Create(&model.LessonSubmission{
		UserID:   fx.Student.ID,
		LessonID: fx.Lessons[0].ID,
		RepoURL:  "https://github.com/ada/solution",
		Status:   model.SubmissionApproved,
	}).Error)

	cert, err := certs.IssueIfCourseComplete(fx.Student.ID, fx.Lessons[0].ID)
	require.NoError(t, err)
	require.NotNil(t, cert)

	// 第二次调用不重复发证
	again, err := certs.IssueIfCourseComplete(fx.Student.ID, fx.Lessons[0].ID)
	require.NoError(t, err)
	assert.Nil(t, again)

	var count int64
	require.NoError(t, db.Model(&model.Certificate{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVerifyCertificate(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	certs := newCertificateService(db)

	require.NoError(t, db.Create(&model.LessonSubmission{
		UserID:   fx.Student.ID,
		LessonID: fx.Lessons[0].ID,
		RepoURL:  "https://github.com/ada/solution",
		Status:   model.SubmissionApproved,
	}).Error)

	cert, err := certs.IssueIfCourseComplete(fx.Student.ID, fx.Lessons[0].ID)
	require.NoError(t, err)
	require.NotNil(t, cert)

	view, err := certs.Verify(cert.VerifyCode)
	require.NoError(t, err)
	assert.Equal(t, cert.Number, view.Number)
	assert.Equal(t, "Ada", view.StudentName)
	assert.Equal(t, "Go Basics", view.CourseTitle)

	_, err = certs.Verify("bogus-code")
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)
}

func TestCertificateNumberPrefixHotReload(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	certs := newCertificateService(db)
	certs.SetNumberPrefix("PYLAND")

	require.NoError(t, db.Create(&model.LessonSubmission{
		UserID:   fx.Student.ID,
		LessonID: fx.Lessons[0].ID,
		RepoURL:  "https://github.com/ada/solution",
		Status:   model.SubmissionApproved,
	}).Error)

	cert, err := certs.IssueIfCourseComplete(fx.Student.ID, fx.Lessons[0].ID)
	require.NoError(t, err)
	require.NotNil(t, cert)
	assert.Contains(t, cert.Number, "PYLAND-")
}
