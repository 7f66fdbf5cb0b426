package database

import (
	"fmt"
	"log"
	"pyland_backend/internal/config"
	"pyland_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaults(db)

	return db, nil
}

// Migrate 建表/改表。测试里用 sqlite 内存库复用同一份迁移。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseTranslation{},
		&model.Lesson{},
		&model.Step{},
		&model.StepTranslation{},
		&model.StepProgress{},
		&model.LessonSubmission{},
		&model.Review{},
		&model.Improvement{},
		&model.Certificate{},
		&model.NotificationLog{},
	)
}

// 默认数据：首个管理员账号占位（密码留空表示禁用直到人工重置）
func seedDefaults(db *gorm.DB) {
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count == 0 {
		admin := &model.User{
			Name:     "Pyland Admin",
			Email:    "admin@pyland.local",
			Password: "!disabled",
			Role:     model.Admin,
			Disabled: true,
		}
		db.Create(admin)
	}
}
