package model

import "time"

// Certificate 结业证书。颁发后不可变，核验走 VerifyCode。
type Certificate struct {
	BaseModel
	UserID     uint      `gorm:"uniqueIndex:uniq_user_course;not null" json:"userId"`
	CourseID   uint      `gorm:"uniqueIndex:uniq_user_course;not null" json:"courseId"`
	Number     string    `gorm:"size:40;uniqueIndex;not null" json:"number"`
	VerifyCode string    `gorm:"size:64;uniqueIndex;not null" json:"verifyCode"`
	IssuedAt   time.Time `json:"issuedAt"`
	FileURL    string    `gorm:"size:255" json:"fileUrl"`
}

func (Certificate) TableName() string {
	return "certificates"
}
