package service

import (
	"strings"
	"testing"

	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	to      []string
	subject []string
	fail    bool
}

func (m *fakeMailer) SendMail(to, toName, subject, body string) error {
	if m.fail {
		return assert.AnError
	}
	m.to = append(m.to, to)
	m.subject = append(m.subject, subject)
	return nil
}

func newNotificationService(db *gorm.DB, mailer Mailer) *NotificationService {
	return &NotificationService{
		NotifRepo: repository.NewNotificationRepository(db),
		UserRepo:  repository.NewUserRepository(db),
		Mailer:    mailer,
		enabled:   true,
		queueKey:  "test:notifications",
	}
}

func TestDeliverWritesLogAndSendsMail(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	mailer := &fakeMailer{}
	svc := newNotificationService(db, mailer)

	svc.deliver(notificationJob{
		UserID:       fx.Student.ID,
		TemplateCode: model.TplSubmissionReceived,
		Payload:      map[string]interface{}{"lesson": "Lesson 1"},
		Channels:     []model.NotificationChannel{model.ChannelEmail},
	})

	require.Len(t, mailer.to, 1)
	assert.Equal(t, "ada@test.dev", mailer.to[0])

	logs, total, err := svc.ListLogs(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, model.NotificationSent, logs[0].Status)
	require.NotNil(t, logs[0].SentAt)
}

func TestDeliverMarksFailureWithoutRollback(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newNotificationService(db, &fakeMailer{fail: true})

	svc.deliver(notificationJob{
		UserID:       fx.Student.ID,
		TemplateCode: model.TplSubmissionReviewed,
		Payload:      map[string]interface{}{"status": "approved"},
		// telegram 未配置,email 发送失败,两条都应落 failed
		Channels: []model.NotificationChannel{model.ChannelEmail, model.ChannelTelegram},
	})

	logs, total, err := svc.ListLogs(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, entry := range logs {
		assert.Equal(t, model.NotificationFailed, entry.Status)
		assert.NotEmpty(t, entry.Error)
	}
}

func TestNotifyDisabledIsNoop(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newNotificationService(db, &fakeMailer{})
	svc.enabled = false

	svc.Notify(fx.Student.ID, model.TplSubmissionReceived, nil, []model.NotificationChannel{model.ChannelEmail})

	_, total, err := svc.ListLogs(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRenderTemplate(t *testing.T) {
	subject, body := renderTemplate(model.TplSubmissionReviewed, "Ada", map[string]interface{}{
		"status": "changes_requested",
	})
	assert.Equal(t, "Your submission was reviewed: changes requested", subject)
	assert.Contains(t, body, "asked for changes")

	subject, body = renderTemplate(model.TplCertificateIssued, "Ada", map[string]interface{}{
		"certificateNumber": "PY-2026-000001-000001",
		"verifyCode":        "abc123",
	})
	assert.Equal(t, "Your course certificate is ready", subject)
	assert.True(t, strings.Contains(body, "PY-2026-000001-000001"))
	assert.True(t, strings.Contains(body, "abc123"))

	subject, _ = renderTemplate("unknown_code", "Ada", nil)
	assert.Equal(t, "Pyland notification", subject)
}
