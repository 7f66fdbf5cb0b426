package service

import (
	"testing"

	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDashboardService(db *gorm.DB) *DashboardService {
	return NewDashboardService(
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
		repository.NewProgressRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewCertificateRepository(db),
		repository.NewNotificationRepository(db),
	)
}

func TestStudentOverview(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 2)
	progress := newProgressService(db)
	review := newReviewService(db, nil, nil)
	dash := newDashboardService(db)

	// 没有任何活动时课程列表为空
	overview, err := dash.StudentOverview(fx.Student.ID, "en")
	require.NoError(t, err)
	assert.Empty(t, overview.Courses)
	assert.Equal(t, 0, overview.Certificates)

	_, err = progress.ToggleStep(fx.Student.ID, "go-basics", "lesson-1", fx.Lessons[0].Steps[0].ID)
	require.NoError(t, err)
	_, err = review.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	overview, err = dash.StudentOverview(fx.Student.ID, "en")
	require.NoError(t, err)
	require.Len(t, overview.Courses, 1)
	assert.Equal(t, "Go Basics", overview.Courses[0].Name)
	assert.Equal(t, 50, overview.Courses[0].CompletionPercentage)
	assert.Equal(t, int64(1), overview.Submissions["pending"])
	assert.Equal(t, int64(0), overview.Submissions["approved"])
}

func TestReviewerOverview(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 2, 1)
	review := newReviewService(db, nil, nil)
	dash := newDashboardService(db)

	first, err := review.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/a")
	require.NoError(t, err)
	_, err = review.Submit(fx.Student.ID, "go-basics", "lesson-2", "https://github.com/ada/b")
	require.NoError(t, err)

	_, err = review.Review(fx.Reviewer.ID, first.ID, ReviewRequest{
		Decision: model.DecisionApproved,
		Comments: okComment,
	})
	require.NoError(t, err)

	overview, err := dash.ReviewerOverview(fx.Reviewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.QueueSize)
	assert.Equal(t, int64(1), overview.ReviewsGiven)
	require.Len(t, overview.OldestPending, 1)
	assert.Equal(t, fx.Lessons[1].ID, overview.OldestPending[0].LessonID)
}

func TestAdminOverview(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	review := newReviewService(db, nil, nil)
	dash := newDashboardService(db)

	_, err := review.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	overview, err := dash.AdminOverview()
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.Users["student"])
	assert.Equal(t, int64(1), overview.Users["reviewer"])
	assert.Equal(t, int64(1), overview.Submissions["pending"])
	assert.Equal(t, int64(0), overview.Notifications["sent"])
}
