package service

import (
	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"

	"gorm.io/gorm"
)

// CatalogService 课程目录：学生侧的本地化读取 + 管理端的课程内容维护。
// 读取全部返回铺平的 DTO，不向上层泄漏 ORM 关联。
type CatalogService struct {
	CourseRepo   *repository.CourseRepository
	LessonRepo   *repository.LessonRepository
	StepRepo     *repository.StepRepository
	ProgressRepo *repository.ProgressRepository
	DB           *gorm.DB
}

func NewCatalogService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	stepRepo *repository.StepRepository,
	progressRepo *repository.ProgressRepository,
	db *gorm.DB,
) *CatalogService {
	return &CatalogService{
		CourseRepo:   courseRepo,
		LessonRepo:   lessonRepo,
		StepRepo:     stepRepo,
		ProgressRepo: progressRepo,
		DB:           db,
	}
}

type CourseSummary struct {
	ID          uint               `json:"id"`
	Slug        string             `json:"slug"`
	Category    string             `json:"category"`
	PriceCents  int                `json:"priceCents"`
	Currency    string             `json:"currency"`
	Status      model.CourseStatus `json:"status"`
	CoverURL    string             `json:"coverUrl"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
}

type StepView struct {
	ID             string   `json:"id"`
	Position       int      `json:"position"`
	Title          string   `json:"title"`
	Body           string   `json:"body,omitempty"`
	SelfCheckItems []string `json:"selfCheckItems"`
	Tips           []string `json:"tips"`
	ExtraSources   []string `json:"extraSources"`
	VideoURL       string   `json:"videoUrl,omitempty"`
	VideoDuration  float64  `json:"videoDuration,omitempty"`
	Completed      bool     `json:"completed"`
}

type LessonView struct {
	ID       uint       `json:"id"`
	Slug     string     `json:"slug"`
	Title    string     `json:"title"`
	Position int        `json:"position"`
	Required bool       `json:"required"`
	Steps    []StepView `json:"steps"`
}

type CourseDetail struct {
	CourseSummary
	Lessons  []LessonView          `json:"lessons"`
	Progress *model.CourseProgress `json:"progress,omitempty"`
}

func summarize(course *model.Course, lang string) CourseSummary {
	s := CourseSummary{
		ID:         course.ID,
		Slug:       course.Slug,
		Category:   course.Category,
		PriceCents: course.PriceCents,
		Currency:   course.Currency,
		Status:     course.Status,
		CoverURL:   course.CoverURL,
	}
	if t := course.Localized(lang, util.DefaultLanguage); t != nil {
		s.Name = t.Name
		s.Description = t.Description
	}
	return s
}

// ListCourses 学生/游客只看 active，管理端全量
func (s *CatalogService) ListCourses(lang, category string, staff bool) ([]CourseSummary, error) {
	statuses := []model.CourseStatus{model.CourseActive}
	if staff {
		statuses = nil
	}

	courses, err := s.CourseRepo.List(statuses, category)
	if err != nil {
		return nil, err
	}

	out := make([]CourseSummary, len(courses))
	for i := range courses {
		out[i] = summarize(&courses[i], lang)
	}
	return out, nil
}

// GetCourse 课程详情树。userID > 0 时带上该学生的完成标记和课程进度。
func (s *CatalogService) GetCourse(slug, lang string, userID uint) (*CourseDetail, error) {
	course, err := s.CourseRepo.FindBySlug(slug)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{
		CourseSummary: summarize(course, lang),
		Lessons:       make([]LessonView, 0, len(course.Lessons)),
	}

	for li := range course.Lessons {
		lesson := &course.Lessons[li]

		completed := map[string]bool{}
		if userID > 0 {
			ids, err := s.ProgressRepo.CompletedStepIDs(userID, lesson.ID)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				completed[id] = true
			}
		}

		lv := LessonView{
			ID:       lesson.ID,
			Slug:     lesson.Slug,
			Title:    lesson.Title,
			Position: lesson.Position,
			Required: lesson.Required,
			Steps:    make([]StepView, 0, len(lesson.Steps)),
		}

		for si := range lesson.Steps {
			step := &lesson.Steps[si]
			sv := StepView{
				ID:             step.ID,
				Position:       step.Position,
				SelfCheckItems: step.SelfCheckItems,
				Tips:           step.Tips,
				ExtraSources:   step.ExtraSources,
				VideoURL:       step.VideoURL,
				VideoDuration:  step.VideoDuration,
				Completed:      completed[step.ID],
			}
			if t := step.Localized(lang, util.DefaultLanguage); t != nil {
				sv.Title = t.Title
				sv.Body = t.Body
			}
			lv.Steps = append(lv.Steps, sv)
		}

		detail.Lessons = append(detail.Lessons, lv)
	}

	if userID > 0 {
		progress, err := s.ProgressRepo.CourseProgress(userID, course.ID)
		if err != nil {
			return nil, err
		}
		detail.Progress = progress
	}

	return detail, nil
}

type TranslationInput struct {
	Language    string `json:"language" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CourseCreateRequest struct {
	Slug         string             `json:"slug" binding:"required"`
	Category     string             `json:"category"`
	PriceCents   int                `json:"priceCents"`
	Currency     string             `json:"currency"`
	Translations []TranslationInput `json:"translations" binding:"required,min=1"`
}

func (s *CatalogService) CreateCourse(req CourseCreateRequest) (*model.Course, error) {
	course := &model.Course{
		Slug:       req.Slug,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Status:     model.CourseDraft,
	}
	for _, t := range req.Translations {
		course.Translations = append(course.Translations, model.CourseTranslation{
			Language:    t.Language,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

// SetCourseStatus 课程只换状态，不删除
func (s *CatalogService) SetCourseStatus(slug string, status model.CourseStatus) error {
	course, err := s.CourseRepo.FindSlimBySlug(slug)
	if err == gorm.ErrRecordNotFound {
		return util.ErrCourseNotFound
	}
	if err != nil {
		return err
	}
	course.Status = status
	return s.CourseRepo.Update(course)
}

type LessonCreateRequest struct {
	Slug     string `json:"slug" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Position int    `json:"position" binding:"required"`
	Required *bool  `json:"required"`
}

func (s *CatalogService) CreateLesson(courseSlug string, req LessonCreateRequest) (*model.Lesson, error) {
	course, err := s.CourseRepo.FindSlimBySlug(courseSlug)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	taken, err := s.LessonRepo.PositionTaken(course.ID, req.Position, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrPositionTaken
	}

	required := true
	if req.Required != nil {
		required = *req.Required
	}

	lesson := &model.Lesson{
		CourseID: course.ID,
		Slug:     req.Slug,
		Title:    req.Title,
		Position: req.Position,
		Required: required,
	}
	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

type StepCreateRequest struct {
	Position       int                    `json:"position" binding:"required"`
	SelfCheckItems []string               `json:"selfCheckItems"`
	Tips           []string               `json:"tips"`
	ExtraSources   []string               `json:"extraSources"`
	Translations   []StepTranslationInput `json:"translations" binding:"required,min=1"`
}

type StepTranslationInput struct {
	Language string `json:"language" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
}

func (s *CatalogService) CreateStep(courseSlug, lessonSlug string, req StepCreateRequest) (*model.Step, error) {
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
	if err != nil {
		return nil, err
	}

	taken, err := s.StepRepo.PositionTaken(lesson.ID, req.Position, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrPositionTaken
	}

	step := &model.Step{
		LessonID:       lesson.ID,
		Position:       req.Position,
		SelfCheckItems: req.SelfCheckItems,
		Tips:           req.Tips,
		ExtraSources:   req.ExtraSources,
	}
	for _, t := range req.Translations {
		step.Translations = append(step.Translations, model.StepTranslation{
			Language: t.Language,
			Title:    t.Title,
			Body:     t.Body,
		})
	}
	if err := s.StepRepo.Create(step); err != nil {
		return nil, err
	}
	return step, nil
}

// UpsertCourseTranslation 管理端补齐/修订某语言文案
func (s *CatalogService) UpsertCourseTranslation(slug string, in TranslationInput) error {
	course, err := s.CourseRepo.FindSlimBySlug(slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrCourseNotFound
		}
		return err
	}
	return s.CourseRepo.UpsertTranslation(&model.CourseTranslation{
		CourseID:    course.ID,
		Language:    in.Language,
		Name:        in.Name,
		Description: in.Description,
	})
}

func (s *CatalogService) UpsertStepTranslation(stepID string, in StepTranslationInput) error {
	if _, err := s.StepRepo.FindByID(stepID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrStepNotFound
		}
		return err
	}
	return s.StepRepo.UpsertTranslation(&model.StepTranslation{
		StepID:   stepID,
		Language: in.Language,
		Title:    in.Title,
		Body:     in.Body,
	})
}
