package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	Student  UserRole = "student"
	Mentor   UserRole = "mentor"
	Reviewer UserRole = "reviewer"
	Manager  UserRole = "manager"
	Admin    UserRole = "admin"
)

// StaffRoles 可管理课程内容的角色
var StaffRoles = []UserRole{Manager, Admin}

// ReviewRoles 可审核学生作业的角色
var ReviewRoles = []UserRole{Reviewer, Mentor}

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"size:20;default:'student';index" json:"role"`
	Language   string    `gorm:"size:10;default:'en'" json:"language"`
	Avatar     string    `gorm:"size:255" json:"avatar"`
	TelegramID string    `gorm:"size:64" json:"telegramId"`
	Disabled   bool      `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time `json:"lastLogin"`
	LastSeen   time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// 活跃时间戳在代码里初始化，不依赖方言相关的列默认值
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}
	if u.LastSeen.IsZero() {
		u.LastSeen = now
	}
	return nil
}

// IsStaff 管理端权限（课程内容维护）
func (u *User) IsStaff() bool {
	return u.Role == Manager || u.Role == Admin
}

func (u *User) CanReview() bool {
	return u.Role == Reviewer || u.Role == Mentor || u.Role == Admin
}
