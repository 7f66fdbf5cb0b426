package repository

import (
	"pyland_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(sub *model.LessonSubmission) error {
	return r.DB.Create(sub).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.LessonSubmission, error) {
	var sub model.LessonSubmission
	err := r.DB.
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("round ASC")
		}).
		Preload("Reviews.Improvements").
		First(&sub, id).Error
	return &sub, err
}

// FindOpenByUserLesson 学生在该课时是否有未关闭的提交
// （pending / changes_requested / approved 都算占位，rejected 可重新提交）
func (r *SubmissionRepository) FindOpenByUserLesson(userID, lessonID uint) (*model.LessonSubmission, error) {
	var sub model.LessonSubmission
	err := r.DB.Where("user_id = ? AND lesson_id = ? AND status <> ?",
		userID, lessonID, model.SubmissionRejected).
		Order("id DESC").First(&sub).Error
	return &sub, err
}

func (r *SubmissionRepository) FindLatestByUserLesson(userID, lessonID uint) (*model.LessonSubmission, error) {
	var sub model.LessonSubmission
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Order("id DESC").First(&sub).Error
	return &sub, err
}

// PendingQueue 审核队列，最早提交的排前面
func (r *SubmissionRepository) PendingQueue(limit int) ([]model.LessonSubmission, error) {
	var subs []model.LessonSubmission
	q := r.DB.Where("status = ?", model.SubmissionPending).Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&subs).Error
	return subs, err
}

func (r *SubmissionRepository) CountByStatus(status model.SubmissionStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonSubmission{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) CountByUserStatus(userID uint, status model.SubmissionStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonSubmission{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

// CountReviewsByReviewer 审核人累计出过多少轮结论
func (r *SubmissionRepository) CountReviewsByReviewer(reviewerID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Review{}).Where("reviewer_id = ?", reviewerID).Count(&count).Error
	return count, err
}

// ApprovedLessonIDs 学生已审核通过的课时
func (r *SubmissionRepository) ApprovedLessonIDs(userID uint, lessonIDs []uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.LessonSubmission{}).
		Where("user_id = ? AND lesson_id IN ? AND status = ?", userID, lessonIDs, model.SubmissionApproved).
		Pluck("lesson_id", &ids).Error
	return ids, err
}

func (r *SubmissionRepository) FindImprovement(id string) (*model.Improvement, error) {
	var imp model.Improvement
	err := r.DB.Where("id = ?", id).First(&imp).Error
	return &imp, err
}

// RoundImprovements 某一轮审核的全部改进项
func (r *SubmissionRepository) RoundImprovements(submissionID uint, round int) ([]model.Improvement, error) {
	var imps []model.Improvement
	err := r.DB.
		Joins("JOIN reviews ON reviews.id = improvements.review_id").
		Where("improvements.submission_id = ? AND reviews.round = ?", submissionID, round).
		Find(&imps).Error
	return imps, err
}

func (r *SubmissionRepository) ListByUser(userID uint) ([]model.LessonSubmission, error) {
	var subs []model.LessonSubmission
	err := r.DB.
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("round ASC")
		}).
		Preload("Reviews.Improvements").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&subs).Error
	return subs, err
}
