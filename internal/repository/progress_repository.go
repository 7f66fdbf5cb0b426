package repository

import (
	"pyland_backend/internal/model"
	"pyland_backend/internal/util"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(userID uint, stepID string) (*model.StepProgress, error) {
	var p model.StepProgress
	err := r.DB.Where("user_id = ? AND step_id = ?", userID, stepID).First(&p).Error
	return &p, err
}

// LessonProgress 课时完成度，全部从 step_progress 行现算
func (r *ProgressRepository) LessonProgress(userID, lessonID uint) (*model.LessonProgress, error) {
	var total int64
	if err := r.DB.Model(&model.Step{}).Where("lesson_id = ?", lessonID).Count(&total).Error; err != nil {
		return nil, err
	}

	var completed int64
	err := r.DB.Model(&model.StepProgress{}).
		Joins("JOIN steps ON steps.id = step_progress.step_id").
		Where("step_progress.user_id = ? AND step_progress.completed = ? AND steps.lesson_id = ?", userID, true, lessonID).
		Count(&completed).Error
	if err != nil {
		return nil, err
	}

	return &model.LessonProgress{
		LessonID:             lessonID,
		CompletedSteps:       int(completed),
		TotalSteps:           int(total),
		CompletionPercentage: util.Percentage(int(completed), int(total)),
	}, nil
}

// CourseProgress 课程完成度，聚合该课程全部课时的步骤
func (r *ProgressRepository) CourseProgress(userID, courseID uint) (*model.CourseProgress, error) {
	var total int64
	err := r.DB.Model(&model.Step{}).
		Joins("JOIN lessons ON lessons.id = steps.lesson_id").
		Where("lessons.course_id = ?", courseID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	var completed int64
	err = r.DB.Model(&model.StepProgress{}).
		Joins("JOIN steps ON steps.id = step_progress.step_id").
		Joins("JOIN lessons ON lessons.id = steps.lesson_id").
		Where("step_progress.user_id = ? AND step_progress.completed = ? AND lessons.course_id = ?", userID, true, courseID).
		Count(&completed).Error
	if err != nil {
		return nil, err
	}

	return &model.CourseProgress{
		CourseID:             courseID,
		CompletedSteps:       int(completed),
		TotalSteps:           int(total),
		CompletionPercentage: util.Percentage(int(completed), int(total)),
	}, nil
}

func (r *ProgressRepository) CompletedStepIDs(userID uint, lessonID uint) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.StepProgress{}).
		Joins("JOIN steps ON steps.id = step_progress.step_id").
		Where("step_progress.user_id = ? AND step_progress.completed = ? AND steps.lesson_id = ?", userID, true, lessonID).
		Pluck("step_progress.step_id", &ids).Error
	return ids, err
}
