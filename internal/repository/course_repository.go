package repository

import (
	"pyland_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Translations").First(&course, id).Error
	return &course, err
}

// FindSlimBySlug 只取课程行本身，供托管路径上的归属校验使用
func (r *CourseRepository) FindSlimBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("slug = ?", slug).First(&course).Error
	return &course, err
}

// FindBySlug 按 slug 取整棵课程树：翻译、课时（按序）、步骤（按序）及步骤翻译
func (r *CourseRepository) FindBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Translations").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Lessons.Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Lessons.Steps.Translations").
		Where("slug = ?", slug).
		First(&course).Error
	return &course, err
}

func (r *CourseRepository) List(statuses []model.CourseStatus, category string) ([]model.Course, error) {
	var courses []model.Course
	q := r.DB.Preload("Translations")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("id ASC").Find(&courses).Error
	return courses, err
}

// UpsertTranslation 同一 (course, language) 只保留一条
func (r *CourseRepository) UpsertTranslation(t *model.CourseTranslation) error {
	var existing model.CourseTranslation
	err := r.DB.Where("course_id = ? AND language = ?", t.CourseID, t.Language).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(t).Error
	}
	if err != nil {
		return err
	}
	existing.Name = t.Name
	existing.Description = t.Description
	return r.DB.Save(&existing).Error
}
