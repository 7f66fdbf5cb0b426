package repository

import (
	"pyland_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&lesson, id).Error
	return &lesson, err
}

func (r *LessonRepository) FindBySlug(courseID uint, slug string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("course_id = ? AND slug = ?", courseID, slug).First(&lesson).Error
	return &lesson, err
}

func (r *LessonRepository) FindByCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).Order("position ASC").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) RequiredByCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ? AND required = ?", courseID, true).
		Order("position ASC").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) PositionTaken(courseID uint, position int, excludeID uint) (bool, error) {
	var count int64
	q := r.DB.Model(&model.Lesson{}).Where("course_id = ? AND position = ?", courseID, position)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}
