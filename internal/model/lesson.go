package model

// Lesson 课时，属于课程，按 Position 排序。
// Required 课时全部审核通过后才颁发证书。
// Required 不带列默认值：gorm 会跳过带 default 标签的零值字段，
// 选修课时的 false 会被吞掉。默认值由创建入口负责。
type Lesson struct {
	BaseModel
	CourseID uint   `gorm:"uniqueIndex:uniq_course_pos;index;not null" json:"courseId"`
	Slug     string `gorm:"size:100;index;not null" json:"slug"`
	Position int    `gorm:"uniqueIndex:uniq_course_pos;not null" json:"position"`
	Required bool   `json:"required"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Steps    []Step `gorm:"foreignKey:LessonID" json:"steps,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}
