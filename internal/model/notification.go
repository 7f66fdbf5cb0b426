package model

import "time"

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelTelegram NotificationChannel = "telegram"
	ChannelSMS      NotificationChannel = "sms"
)

type NotificationStatus string

const (
	NotificationQueued NotificationStatus = "queued"
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// 通知模板编码
const (
	TplSubmissionReviewed = "submission_reviewed"
	TplSubmissionReceived = "submission_received"
	TplCertificateIssued  = "certificate_issued"
)

// NotificationLog 通知投递流水，只追加。发送失败不重试回滚业务状态。
type NotificationLog struct {
	BaseModel
	UserID       uint                `gorm:"index;not null" json:"userId"`
	Channel      NotificationChannel `gorm:"size:20;not null" json:"channel"`
	TemplateCode string              `gorm:"size:50;index;not null" json:"templateCode"`
	Payload      string              `gorm:"type:text" json:"payload"`
	Status       NotificationStatus  `gorm:"size:20;default:'queued';index" json:"status"`
	Error        string              `gorm:"size:500" json:"error,omitempty"`
	SentAt       *time.Time          `json:"sentAt,omitempty"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
