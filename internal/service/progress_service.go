package service

import (
	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService 步骤完成状态与进度聚合。
// 并发约束：同一 (user, step) 的写入在单个事务里做 read-modify-write，
// 唯一索引兜底，重复点击不会产生第二条记录。
type ProgressService struct {
	CourseRepo   *repository.CourseRepository
	LessonRepo   *repository.LessonRepository
	StepRepo     *repository.StepRepository
	ProgressRepo *repository.ProgressRepository
	DB           *gorm.DB
}

func NewProgressService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	stepRepo *repository.StepRepository,
	progressRepo *repository.ProgressRepository,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		CourseRepo:   courseRepo,
		LessonRepo:   lessonRepo,
		StepRepo:     stepRepo,
		ProgressRepo: progressRepo,
		DB:           db,
	}
}

// ToggleResult 返回刷新后的课时/课程进度，前端拿到即可更新，不用二次请求
type ToggleResult struct {
	Success        bool                  `json:"success"`
	Completed      bool                  `json:"completed"`
	LessonProgress *model.LessonProgress `json:"lesson_progress"`
	CourseProgress *model.CourseProgress `json:"course_progress"`
}

// resolveStep 校验 course/lesson/step 的归属链
func (s *ProgressService) resolveStep(courseSlug, lessonSlug, stepID string) (*model.Course, *model.Lesson, *model.Step, error) {
	course, err := s.CourseRepo.FindSlimBySlug(courseSlug)
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}

	lesson, err := s.LessonRepo.FindBySlug(course.ID, lessonSlug)
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}

	step, err := s.StepRepo.FindByID(stepID)
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil, util.ErrStepNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}

	if step.LessonID != lesson.ID {
		return nil, nil, nil, util.ErrStepNotInScope
	}

	return course, lesson, step, nil
}

// ToggleStep 翻转完成标记。toggle(toggle(x)) == x。
func (s *ProgressService) ToggleStep(userID uint, courseSlug, lessonSlug, stepID string) (*ToggleResult, error) {
	course, lesson, step, err := s.resolveStep(courseSlug, lessonSlug, stepID)
	if err != nil {
		return nil, err
	}

	var completed bool
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// 不存在则插入，存在则无操作：双击不会产生重复行
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.StepProgress{UserID: userID, StepID: step.ID}).Error; err != nil {
			return err
		}

		// 行锁读取：并发双击不能都读到翻转前的值
		var p model.StepProgress
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND step_id = ?", userID, step.ID).First(&p).Error; err != nil {
			return err
		}

		p.Completed = !p.Completed
		if p.Completed {
			now := time.Now()
			p.CompletedAt = &now
		} else {
			p.CompletedAt = nil
			p.SelfCheckConfirmed = false
		}
		completed = p.Completed
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}

	return s.toggleResult(userID, course.ID, lesson.ID, completed)
}

// AdvanceStep 自检清单走完后的“进入下一步”。当前步骤置为完成（幂等，
// 不翻转），记录客户端的自检声明，返回课时内的下一步。
// 自检项不做服务端校验，只记录客户端的声明。
func (s *ProgressService) AdvanceStep(userID uint, courseSlug, lessonSlug, stepID string, selfCheckConfirmed bool) (*AdvanceResult, error) {
	course, lesson, step, err := s.resolveStep(courseSlug, lessonSlug, stepID)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.StepProgress{UserID: userID, StepID: step.ID}).Error; err != nil {
			return err
		}

		var p model.StepProgress
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND step_id = ?", userID, step.ID).First(&p).Error; err != nil {
			return err
		}

		if !p.Completed {
			now := time.Now()
			p.Completed = true
			p.CompletedAt = &now
		}
		p.SelfCheckConfirmed = selfCheckConfirmed
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}

	result := &AdvanceResult{}

	toggle, err := s.toggleResult(userID, course.ID, lesson.ID, true)
	if err != nil {
		return nil, err
	}
	result.LessonProgress = toggle.LessonProgress
	result.CourseProgress = toggle.CourseProgress
	result.Success = true

	next, err := s.StepRepo.NextInLesson(lesson.ID, step.Position)
	if err == nil {
		result.NextStepID = next.ID
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	// 课时最后一步：NextStepID 留空，前端切到提交作业面板

	return result, nil
}

type AdvanceResult struct {
	Success        bool                  `json:"success"`
	NextStepID     string                `json:"nextStepId,omitempty"`
	LessonProgress *model.LessonProgress `json:"lesson_progress"`
	CourseProgress *model.CourseProgress `json:"course_progress"`
}

func (s *ProgressService) toggleResult(userID, courseID, lessonID uint, completed bool) (*ToggleResult, error) {
	lp, err := s.ProgressRepo.LessonProgress(userID, lessonID)
	if err != nil {
		return nil, err
	}
	cp, err := s.ProgressRepo.CourseProgress(userID, courseID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{
		Success:        true,
		Completed:      completed,
		LessonProgress: lp,
		CourseProgress: cp,
	}, nil
}

// GetLessonProgress 只读接口，直接现算
func (s *ProgressService) GetLessonProgress(userID uint, courseSlug, lessonSlug string) (*model.LessonProgress, error) {
	course, err := s.CourseRepo.FindSlimBySlug(courseSlug)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	lesson, err := s.LessonRepo.FindBySlug(course.ID, lessonSlug)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.ProgressRepo.LessonProgress(userID, lesson.ID)
}

func (s *ProgressService) GetCourseProgress(userID uint, courseSlug string) (*model.CourseProgress, error) {
	course, err := s.CourseRepo.FindSlimBySlug(courseSlug)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.ProgressRepo.CourseProgress(userID, course.ID)
}
