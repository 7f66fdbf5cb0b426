package repository

import (
	"pyland_backend/internal/model"

	"gorm.io/gorm"
)

type StepRepository struct {
	DB *gorm.DB
}

func NewStepRepository(db *gorm.DB) *StepRepository {
	return &StepRepository{DB: db}
}

func (r *StepRepository) Create(step *model.Step) error {
	return r.DB.Create(step).Error
}

func (r *StepRepository) Update(step *model.Step) error {
	return r.DB.Save(step).Error
}

func (r *StepRepository) FindByID(id string) (*model.Step, error) {
	var step model.Step
	err := r.DB.Preload("Translations").Where("id = ?", id).First(&step).Error
	return &step, err
}

func (r *StepRepository) FindByLesson(lessonID uint) ([]model.Step, error) {
	var steps []model.Step
	err := r.DB.Preload("Translations").
		Where("lesson_id = ?", lessonID).
		Order("position ASC").
		Find(&steps).Error
	return steps, err
}

// NextInLesson 课时内某步骤之后的下一步，没有则返回 gorm.ErrRecordNotFound
func (r *StepRepository) NextInLesson(lessonID uint, position int) (*model.Step, error) {
	var step model.Step
	err := r.DB.Preload("Translations").
		Where("lesson_id = ? AND position > ?", lessonID, position).
		Order("position ASC").
		First(&step).Error
	return &step, err
}

func (r *StepRepository) CountByLesson(lessonID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Step{}).Where("lesson_id = ?", lessonID).Count(&count).Error
	return count, err
}

func (r *StepRepository) PositionTaken(lessonID uint, position int, excludeID string) (bool, error) {
	var count int64
	q := r.DB.Model(&model.Step{}).Where("lesson_id = ? AND position = ?", lessonID, position)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// UpsertTranslation 同一 (step, language) 只保留一条
func (r *StepRepository) UpsertTranslation(t *model.StepTranslation) error {
	var existing model.StepTranslation
	err := r.DB.Where("step_id = ? AND language = ?", t.StepID, t.Language).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(t).Error
	}
	if err != nil {
		return err
	}
	existing.Title = t.Title
	existing.Body = t.Body
	return r.DB.Save(&existing).Error
}
