// 课程包导入脚本
//
// 把 YAML 格式的课程包（课程 + 课时 + 步骤 + 多语言文案）整包导入数据库，
// 用于初始化环境或批量上新课程。重复的 slug 会被跳过。
//
// 用法: go run scripts/course_import.go -file course_pack.yaml
package main

import (
	"flag"
	"log"
	"os"
	"pyland_backend/internal/config"
	"pyland_backend/internal/model"
	"pyland_backend/pkg/database"
	"pyland_backend/pkg/logger"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type coursePack struct {
	Courses []packCourse `yaml:"courses"`
}

type packCourse struct {
	Slug         string            `yaml:"slug"`
	Category     string            `yaml:"category"`
	PriceCents   int               `yaml:"price_cents"`
	Currency     string            `yaml:"currency"`
	Status       string            `yaml:"status"`
	Translations []packTranslation `yaml:"translations"`
	Lessons      []packLesson      `yaml:"lessons"`
}

type packTranslation struct {
	Language    string `yaml:"language"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type packLesson struct {
	Slug     string     `yaml:"slug"`
	Title    string     `yaml:"title"`
	Position int        `yaml:"position"`
	Required *bool      `yaml:"required"`
	Steps    []packStep `yaml:"steps"`
}

type packStep struct {
	Position       int               `yaml:"position"`
	SelfCheckItems []string          `yaml:"self_check_items"`
	Tips           []string          `yaml:"tips"`
	ExtraSources   []string          `yaml:"extra_sources"`
	Translations   []packStepContent `yaml:"translations"`
}

type packStepContent struct {
	Language string `yaml:"language"`
	Title    string `yaml:"title"`
	Body     string `yaml:"body"`
}

func main() {
	file := flag.String("file", "course_pack.yaml", "课程包文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("无法读取课程包: %v", err)
	}

	var pack coursePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		log.Fatalf("解析课程包失败: %v", err)
	}

	imported, skipped := 0, 0
	for _, pc := range pack.Courses {
		if pc.Slug == "" || len(pc.Translations) == 0 {
			log.Printf("课程缺少 slug 或文案，跳过")
			skipped++
			continue
		}

		var existing model.Course
		err := db.Where("slug = ?", pc.Slug).First(&existing).Error
		if err == nil {
			log.Printf("课程 %s 已存在，跳过", pc.Slug)
			skipped++
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("查询课程 %s 失败: %v", pc.Slug, err)
		}

		course := buildCourse(pc)
		if err := db.Create(course).Error; err != nil {
			log.Fatalf("导入课程 %s 失败: %v", pc.Slug, err)
		}
		log.Printf("已导入课程 %s（%d 个课时）", pc.Slug, len(course.Lessons))
		imported++
	}

	log.Printf("完成：导入 %d 门，跳过 %d 门", imported, skipped)
}

func buildCourse(pc packCourse) *model.Course {
	status := model.CourseStatus(pc.Status)
	switch status {
	case model.CourseDraft, model.CourseActive, model.CourseArchived:
	default:
		status = model.CourseDraft
	}

	currency := pc.Currency
	if currency == "" {
		currency = "EUR"
	}

	course := &model.Course{
		Slug:       pc.Slug,
		Category:   pc.Category,
		PriceCents: pc.PriceCents,
		Currency:   currency,
		Status:     status,
	}

	for _, t := range pc.Translations {
		course.Translations = append(course.Translations, model.CourseTranslation{
			Language:    t.Language,
			Name:        t.Name,
			Description: t.Description,
		})
	}

	for _, pl := range pc.Lessons {
		required := true
		if pl.Required != nil {
			required = *pl.Required
		}
		lesson := model.Lesson{
			Slug:     pl.Slug,
			Title:    pl.Title,
			Position: pl.Position,
			Required: required,
		}
		for _, ps := range pl.Steps {
			step := model.Step{
				Position:       ps.Position,
				SelfCheckItems: ps.SelfCheckItems,
				Tips:           ps.Tips,
				ExtraSources:   ps.ExtraSources,
			}
			for _, st := range ps.Translations {
				step.Translations = append(step.Translations, model.StepTranslation{
					Language: st.Language,
					Title:    st.Title,
					Body:     st.Body,
				})
			}
			lesson.Steps = append(lesson.Steps, step)
		}
		course.Lessons = append(course.Lessons, lesson)
	}

	return course
}
