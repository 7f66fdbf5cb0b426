package model

import "time"

// StepProgress 学生步骤完成记录。
// 约束：同一 (user, step) 至多一条，toggle 只翻转不重复插入。
type StepProgress struct {
	BaseModel
	UserID             uint       `gorm:"uniqueIndex:uniq_user_step;index;not null" json:"userId"`
	StepID             string     `gorm:"type:varchar(36);uniqueIndex:uniq_user_step;index;not null" json:"stepId"`
	Completed          bool       `gorm:"default:false" json:"completed"`
	SelfCheckConfirmed bool       `gorm:"default:false" json:"selfCheckConfirmed"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

func (StepProgress) TableName() string {
	return "step_progress"
}

// LessonProgress 课时完成度快照（只读计算结果，不落库）
type LessonProgress struct {
	LessonID             uint `json:"lessonId"`
	CompletedSteps       int  `json:"completed_steps"`
	TotalSteps           int  `json:"total_steps"`
	CompletionPercentage int  `json:"completion_percentage"`
}

// CourseProgress 课程完成度快照
type CourseProgress struct {
	CourseID             uint `json:"courseId"`
	CompletedSteps       int  `json:"completed_steps"`
	TotalSteps           int  `json:"total_steps"`
	CompletionPercentage int  `json:"completion_percentage"`
}
