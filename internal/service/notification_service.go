package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"pyland_backend/internal/config"
	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/pkg/logger"
	"pyland_backend/pkg/monitoring"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer 邮件投递抽象，测试里用 fake 替换 SendGrid
type Mailer interface {
	SendMail(to, toName, subject, body string) error
}

// TelegramSender Telegram Bot 消息投递抽象
type TelegramSender interface {
	SendMessage(chatID, text string) error
}

// notificationJob 入队的通知任务，JSON 编码后放进 Redis 列表
type notificationJob struct {
	UserID       uint                        `json:"userId"`
	TemplateCode string                      `json:"templateCode"`
	Payload      map[string]interface{}      `json:"payload"`
	Channels     []model.NotificationChannel `json:"channels"`
}

// NotificationService 通知投递。
// 有 Redis 时走队列（LPUSH + 后台 worker BRPOP），没有时降级为
// 进程内异步投递。每次投递写一条 NotificationLog 流水。
type NotificationService struct {
	NotifRepo *repository.NotificationRepository
	UserRepo  *repository.UserRepository
	Redis     *redis.Client
	Mailer    Mailer
	Telegram  TelegramSender

	enabled  bool
	queueKey string
}

func NewNotificationService(
	notifRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	cfg config.NotificationConfig,
) *NotificationService {
	s := &NotificationService{
		NotifRepo: notifRepo,
		UserRepo:  userRepo,
		Redis:     rdb,
		enabled:   cfg.Enabled,
		queueKey:  cfg.QueueKey,
	}
	if cfg.SendgridAPIKey != "" {
		s.Mailer = &sendgridMailer{
			client:   sendgrid.NewSendClient(cfg.SendgridAPIKey),
			fromName: cfg.FromName,
			fromAddr: cfg.FromEmail,
		}
	}
	if cfg.TelegramBotToken != "" {
		s.Telegram = &telegramBot{
			token:  cfg.TelegramBotToken,
			client: &http.Client{Timeout: 10 * time.Second},
		}
	}
	return s
}

// Notify 入队一条通知。调用方不关心投递结果。
func (s *NotificationService) Notify(userID uint, templateCode string, payload map[string]interface{}, channels []model.NotificationChannel) {
	if !s.enabled {
		return
	}

	job := notificationJob{
		UserID:       userID,
		TemplateCode: templateCode,
		Payload:      payload,
		Channels:     channels,
	}

	if s.Redis != nil {
		data, err := json.Marshal(job)
		if err != nil {
			logger.Log.Error("notification marshal failed", zap.Error(err))
			return
		}
		if err := s.Redis.LPush(context.Background(), s.queueKey, data).Err(); err == nil {
			return
		}
		logger.Log.Warn("notification enqueue failed, delivering inline", zap.String("template", templateCode))
	}

	go s.deliver(job)
}

// Run 后台 worker，BRPOP 消费通知队列直到 ctx 取消
func (s *NotificationService) Run(ctx context.Context) {
	if s.Redis == nil || !s.enabled {
		return
	}
	logger.Log.Info("notification worker started", zap.String("queue", s.queueKey))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("notification worker stopped")
			return
		default:
		}

		res, err := s.Redis.BRPop(ctx, 5*time.Second, s.queueKey).Result()
		if err == redis.Nil || err == context.Canceled {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error("notification dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		// BRPop 返回 [key, value]
		if len(res) < 2 {
			continue
		}

		var job notificationJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			logger.Log.Error("notification payload corrupt", zap.Error(err))
			continue
		}
		s.deliver(job)
	}
}

func (s *NotificationService) deliver(job notificationJob) {
	user, err := s.UserRepo.FindByID(job.UserID)
	if err != nil {
		logger.Log.Error("notification recipient missing",
			zap.Uint("userId", job.UserID), zap.Error(err))
		return
	}

	subject, body := renderTemplate(job.TemplateCode, user.Name, job.Payload)
	payloadJSON, _ := json.Marshal(job.Payload)

	for _, channel := range job.Channels {
		entry := &model.NotificationLog{
			UserID:       job.UserID,
			Channel:      channel,
			TemplateCode: job.TemplateCode,
			Payload:      string(payloadJSON),
			Status:       model.NotificationQueued,
		}
		if err := s.NotifRepo.Create(entry); err != nil {
			logger.Log.Error("notification log create failed", zap.Error(err))
			continue
		}

		sendErr := s.send(channel, user, subject, body)
		if sendErr != nil {
			monitoring.NotificationCounter.WithLabelValues(string(channel), "failed").Inc()
			if err := s.NotifRepo.MarkFailed(entry.ID, sendErr.Error()); err != nil {
				logger.Log.Error("notification log update failed", zap.Error(err))
			}
			logger.Log.Warn("notification delivery failed",
				zap.Uint("userId", job.UserID),
				zap.String("channel", string(channel)),
				zap.Error(sendErr))
			continue
		}

		monitoring.NotificationCounter.WithLabelValues(string(channel), "sent").Inc()
		if err := s.NotifRepo.MarkSent(entry.ID); err != nil {
			logger.Log.Error("notification log update failed", zap.Error(err))
		}
	}
}

func (s *NotificationService) send(channel model.NotificationChannel, user *model.User, subject, body string) error {
	switch channel {
	case model.ChannelEmail:
		if s.Mailer == nil {
			return fmt.Errorf("email channel not configured")
		}
		return s.Mailer.SendMail(user.Email, user.Name, subject, body)
	case model.ChannelTelegram:
		if s.Telegram == nil {
			return fmt.Errorf("telegram channel not configured")
		}
		if user.TelegramID == "" {
			return fmt.Errorf("user has no telegram id")
		}
		return s.Telegram.SendMessage(user.TelegramID, subject+"\n"+body)
	case model.ChannelSMS:
		// 短信通道尚未接入供应商
		return fmt.Errorf("sms channel not configured")
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}

// ListLogs 管理端通知流水
func (s *NotificationService) ListLogs(page, limit int) ([]model.NotificationLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.NotifRepo.List(page, limit)
}

// renderTemplate 按模板编码生成通知文案
func renderTemplate(code, name string, payload map[string]interface{}) (subject, body string) {
	switch code {
	case model.TplSubmissionReceived:
		subject = "Your submission is in the review queue"
		body = fmt.Sprintf("Hi %s, we received your submission for lesson %q. A reviewer will take a look soon.",
			name, str(payload["lesson"]))
	case model.TplSubmissionReviewed:
		status := str(payload["status"])
		subject = fmt.Sprintf("Your submission was reviewed: %s", strings.ReplaceAll(status, "_", " "))
		switch status {
		case string(model.SubmissionApproved):
			body = fmt.Sprintf("Hi %s, your submission was approved. Well done!", name)
		case string(model.SubmissionChangesRequested):
			body = fmt.Sprintf("Hi %s, your reviewer asked for changes. Check the improvement list and resubmit when everything is done.", name)
		default:
			body = fmt.Sprintf("Hi %s, your submission was rejected. You can submit a new attempt.", name)
		}
	case model.TplCertificateIssued:
		subject = "Your course certificate is ready"
		body = fmt.Sprintf("Congratulations %s! Your certificate %s has been issued. Verification code: %s",
			name, str(payload["certificateNumber"]), str(payload["verifyCode"]))
	default:
		subject = "Pyland notification"
		body = fmt.Sprintf("Hi %s, you have a new notification.", name)
	}
	return subject, body
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// sendgridMailer SendGrid 邮件投递
type sendgridMailer struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

func (m *sendgridMailer) SendMail(to, toName, subject, body string) error {
	from := mail.NewEmail(m.fromName, m.fromAddr)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail(toName, to), body, "")
	resp, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// telegramBot Bot API sendMessage,官方没有 Go SDK,直接走 HTTP
type telegramBot struct {
	token  string
	client *http.Client
}

func (t *telegramBot) SendMessage(chatID, text string) error {
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	resp, err := t.client.PostForm(endpoint, url.Values{
		"chat_id": {chatID},
		"text":    {text},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram returned %d", resp.StatusCode)
	}
	return nil
}
