package model

// Step 课时内的最小学习单元。ID 为 UUID，直接暴露给前端接口。
// 约束：Position 在同一课时内唯一。
type Step struct {
	UUIDBase
	LessonID       uint              `gorm:"uniqueIndex:uniq_lesson_pos;index;not null" json:"lessonId"`
	Position       int               `gorm:"uniqueIndex:uniq_lesson_pos;not null" json:"position"`
	SelfCheckItems []string          `gorm:"serializer:json" json:"selfCheckItems"`
	Tips           []string          `gorm:"serializer:json" json:"tips"`
	ExtraSources   []string          `gorm:"serializer:json" json:"extraSources"`
	VideoURL       string            `gorm:"size:255" json:"videoUrl"`
	VideoDuration  float64           `gorm:"default:0" json:"videoDuration"`
	Translations   []StepTranslation `gorm:"foreignKey:StepID" json:"translations,omitempty"`
}

func (Step) TableName() string {
	return "steps"
}

type StepTranslation struct {
	BaseModel
	StepID   string `gorm:"type:varchar(36);uniqueIndex:uniq_step_lang;not null" json:"stepId"`
	Language string `gorm:"size:10;uniqueIndex:uniq_step_lang;not null" json:"language"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Body     string `gorm:"type:text" json:"body"`
}

func (StepTranslation) TableName() string {
	return "step_translations"
}

func (s *Step) Localized(lang, fallback string) *StepTranslation {
	var def *StepTranslation
	for i := range s.Translations {
		t := &s.Translations[i]
		if t.Language == lang {
			return t
		}
		if t.Language == fallback {
			def = t
		}
	}
	if def == nil && len(s.Translations) > 0 {
		def = &s.Translations[0]
	}
	return def
}
