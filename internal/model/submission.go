package model

import "time"

type SubmissionStatus string

const (
	SubmissionPending          SubmissionStatus = "pending"
	SubmissionApproved         SubmissionStatus = "approved"
	SubmissionChangesRequested SubmissionStatus = "changes_requested"
	SubmissionRejected         SubmissionStatus = "rejected"
)

type ReviewDecision string

const (
	DecisionApproved         ReviewDecision = "approved"
	DecisionChangesRequested ReviewDecision = "changes_requested"
	DecisionRejected         ReviewDecision = "rejected"
)

// LessonSubmission 学生对某课时提交的作业（外部仓库链接）。
// 状态机：pending -> approved | changes_requested | rejected，
// changes_requested 在所有改进项完成后可 resubmit 回 pending，Round 递增。
//
// OpenKey 是占位判别列：未关闭的提交恒为 1，rejected 时置 NULL 释放。
// uniq_open_submission 在数据库层面保证同一 (user, lesson)
// 同时至多一份未关闭提交，并发双提交由唯一索引兜底。
type LessonSubmission struct {
	BaseModel
	UserID     uint             `gorm:"uniqueIndex:uniq_open_submission;index:idx_user_lesson;not null" json:"userId"`
	LessonID   uint             `gorm:"uniqueIndex:uniq_open_submission;index:idx_user_lesson;index;not null" json:"lessonId"`
	RepoURL    string           `gorm:"size:255;not null" json:"repoUrl"`
	Status     SubmissionStatus `gorm:"size:20;default:'pending';index" json:"status"`
	Round      int              `gorm:"default:1" json:"round"`
	OpenKey    *uint8           `gorm:"uniqueIndex:uniq_open_submission" json:"-"`
	ReviewerID *uint            `json:"reviewerId,omitempty"`
	ReviewedAt *time.Time       `json:"reviewedAt,omitempty"`
	Reviews    []Review         `gorm:"foreignKey:SubmissionID" json:"reviews,omitempty"`
}

func (LessonSubmission) TableName() string {
	return "lesson_submissions"
}

// MarkOpen 设置占位键，提交进入未关闭状态
func (s *LessonSubmission) MarkOpen() {
	one := uint8(1)
	s.OpenKey = &one
}

// Close 释放占位键，该 (user, lesson) 可重新提交
func (s *LessonSubmission) Close() {
	s.OpenKey = nil
}

// Terminal pending 可被审核，其余状态只能由 resubmit 推回 pending
func (s *LessonSubmission) Terminal() bool {
	return s.Status != SubmissionPending
}

// Review 一轮审核记录。历史轮次在前端以折叠面板展示。
type Review struct {
	BaseModel
	SubmissionID uint           `gorm:"index;not null" json:"submissionId"`
	ReviewerID   uint           `gorm:"index;not null" json:"reviewerId"`
	Round        int            `gorm:"not null" json:"round"`
	Decision     ReviewDecision `gorm:"size:20;not null" json:"decision"`
	Comments     string         `gorm:"type:text;not null" json:"comments"`
	Improvements []Improvement  `gorm:"foreignKey:ReviewID" json:"improvements,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// Improvement 审核人留给学生的改进项。
// 约束：changes_requested 的审核至少带一条；全部完成后才允许 resubmit。
type Improvement struct {
	UUIDBase
	ReviewID     uint       `gorm:"index;not null" json:"reviewId"`
	SubmissionID uint       `gorm:"index;not null" json:"submissionId"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Completed    bool       `gorm:"default:false" json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func (Improvement) TableName() string {
	return "improvements"
}
