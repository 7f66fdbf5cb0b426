package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseLocalized(t *testing.T) {
	course := &Course{
		Translations: []CourseTranslation{
			{Language: "en", Name: "Go Basics"},
			{Language: "ru", Name: "Основы Go"},
		},
	}

	assert.Equal(t, "Основы Go", course.Localized("ru", "en").Name)
	// 未知语言回退默认语言
	assert.Equal(t, "Go Basics", course.Localized("de", "en").Name)

	// 连默认语言都没有时取第一条
	course.Translations = course.Translations[1:]
	assert.Equal(t, "Основы Go", course.Localized("de", "en").Name)

	empty := &Course{}
	assert.Nil(t, empty.Localized("en", "en"))
}

func TestSubmissionTerminal(t *testing.T) {
	sub := &LessonSubmission{Status: SubmissionPending}
	assert.False(t, sub.Terminal())

	for _, status := range []SubmissionStatus{SubmissionApproved, SubmissionChangesRequested, SubmissionRejected} {
		sub.Status = status
		assert.True(t, sub.Terminal())
	}
}
