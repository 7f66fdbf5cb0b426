package model

type CourseStatus string

const (
	CourseDraft    CourseStatus = "draft"
	CourseActive   CourseStatus = "active"
	CourseArchived CourseStatus = "archived"
)

// Course 课程。名称/描述走 CourseTranslation，按语言取值。
// 课程从不物理删除，下架走 status 变更。
type Course struct {
	BaseModel
	Slug         string              `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Category     string              `gorm:"size:50;index" json:"category"`
	PriceCents   int                 `gorm:"default:0" json:"priceCents"`
	Currency     string              `gorm:"size:3;default:'EUR'" json:"currency"`
	Status       CourseStatus        `gorm:"size:20;default:'draft';index" json:"status"`
	CoverURL     string              `gorm:"size:255" json:"coverUrl"`
	Translations []CourseTranslation `gorm:"foreignKey:CourseID" json:"translations,omitempty"`
	Lessons      []Lesson            `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseTranslation struct {
	BaseModel
	CourseID    uint   `gorm:"uniqueIndex:uniq_course_lang;not null" json:"courseId"`
	Language    string `gorm:"size:10;uniqueIndex:uniq_course_lang;not null" json:"language"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (CourseTranslation) TableName() string {
	return "course_translations"
}

// Localized 取指定语言的翻译，取不到回退默认语言，再取不到回退第一条
func (c *Course) Localized(lang, fallback string) *CourseTranslation {
	var def *CourseTranslation
	for i := range c.Translations {
		t := &c.Translations[i]
		if t.Language == lang {
			return t
		}
		if t.Language == fallback {
			def = t
		}
	}
	if def == nil && len(c.Translations) > 0 {
		def = &c.Translations[0]
	}
	return def
}
