package service

import (
	"testing"

	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogService(db *gorm.DB) *CatalogService {
	return NewCatalogService(
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewStepRepository(db),
		repository.NewProgressRepository(db),
		db,
	)
}

func TestListCoursesVisibility(t *testing.T) {
	db := openTestDB(t)
	seedCourse(t, db, 1, 1)
	svc := newCatalogService(db)

	draft := &model.Course{
		Slug:   "wip",
		Status: model.CourseDraft,
		Translations: []model.CourseTranslation{
			{Language: "en", Name: "Work In Progress"},
		},
	}
	require.NoError(t, db.Create(draft).Error)

	// 游客只看 active
	list, err := svc.ListCourses("en", "", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "go-basics", list[0].Slug)
	assert.Equal(t, "Go Basics", list[0].Name)

	// 管理端全量
	list, err = svc.ListCourses("en", "", true)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCourseLocalizationFallback(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newCatalogService(db)

	require.NoError(t, db.Create(&model.CourseTranslation{
		CourseID: fx.Course.ID,
		Language: "ru",
		Name:     "Основы Go",
	}).Error)

	detail, err := svc.GetCourse("go-basics", "ru", 0)
	require.NoError(t, err)
	assert.Equal(t, "Основы Go", detail.Name)

	// 没有对应语言时回退默认语言
	detail, err = svc.GetCourse("go-basics", "de", 0)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", detail.Name)

	_, err = svc.GetCourse("missing", "en", 0)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestGetCourseMarksCompletedSteps(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 2)
	catalog := newCatalogService(db)
	progress := newProgressService(db)

	first := fx.Lessons[0].Steps[0]
	_, err := progress.ToggleStep(fx.Student.ID, "go-basics", "lesson-1", first.ID)
	require.NoError(t, err)

	detail, err := catalog.GetCourse("go-basics", "en", fx.Student.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lessons, 1)
	require.Len(t, detail.Lessons[0].Steps, 2)
	assert.True(t, detail.Lessons[0].Steps[0].Completed)
	assert.False(t, detail.Lessons[0].Steps[1].Completed)
	require.NotNil(t, detail.Progress)
	assert.Equal(t, 50, detail.Progress.CompletionPercentage)

	// 未登录没有进度块
	detail, err = catalog.GetCourse("go-basics", "en", 0)
	require.NoError(t, err)
	assert.Nil(t, detail.Progress)
}

func TestCreateLessonPositionConflict(t *testing.T) {
	db := openTestDB(t)
	seedCourse(t, db, 1, 1)
	svc := newCatalogService(db)

	_, err := svc.CreateLesson("go-basics", LessonCreateRequest{
		Slug: "dup", Title: "Dup", Position: 1,
	})
	assert.ErrorIs(t, err, util.ErrPositionTaken)

	lesson, err := svc.CreateLesson("go-basics", LessonCreateRequest{
		Slug: "next", Title: "Next", Position: 2,
	})
	require.NoError(t, err)
	assert.True(t, lesson.Required)
}

func TestCreateLessonOptionalPersists(t *testing.T) {
	db := openTestDB(t)
	seedCourse(t, db, 1, 1)
	svc := newCatalogService(db)

	optional := false
	lesson, err := svc.CreateLesson("go-basics", LessonCreateRequest{
		Slug: "bonus", Title: "Bonus", Position: 2, Required: &optional,
	})
	require.NoError(t, err)

	// 选修标记必须原样落库，不能被列默认值吞掉
	var loaded model.Lesson
	require.NoError(t, db.First(&loaded, lesson.ID).Error)
	assert.False(t, loaded.Required)
}

func TestUpsertCourseTranslation(t *testing.T) {
	db := openTestDB(t)
	seedCourse(t, db, 1, 1)
	svc := newCatalogService(db)

	require.NoError(t, svc.UpsertCourseTranslation("go-basics", TranslationInput{
		Language: "en", Name: "Go Basics, 2nd Edition",
	}))

	detail, err := svc.GetCourse("go-basics", "en", 0)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics, 2nd Edition", detail.Name)

	err = svc.UpsertCourseTranslation("missing", TranslationInput{Language: "en", Name: "x"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}
