package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"
	"pyland_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentService 课程媒体上传：步骤讲解视频、课程封面、用户头像
type ContentService struct {
	StepRepo   *repository.StepRepository
	CourseRepo *repository.CourseRepository
	UserRepo   *repository.UserRepository
	Storage    *StorageService
	TempDir    string
}

func NewContentService(
	stepRepo *repository.StepRepository,
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	storage *StorageService,
	tempDir string,
) *ContentService {
	return &ContentService{
		StepRepo:   stepRepo,
		CourseRepo: courseRepo,
		UserRepo:   userRepo,
		Storage:    storage,
		TempDir:    tempDir,
	}
}

// UploadStepVideo 上传步骤讲解视频。先落到本地临时文件跑 ffprobe
// 拿时长，再推到对象存储，最后写回步骤记录。
func (s *ContentService) UploadStepVideo(ctx context.Context, stepID string, file *multipart.FileHeader) (*VideoUploadResult, error) {
	step, err := s.StepRepo.FindByID(stepID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrStepNotFound
	}
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	valid := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			valid = true
			break
		}
	}
	if !valid {
		return nil, util.ErrInvalidVideoExt
	}

	tempPath, err := s.spool(file, ext, []string{util.MimeVideo})
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempPath)

	info, err := util.ProbeVideo(tempPath)
	if err != nil {
		// 取不到时长不阻断上传
		logger.Log.Warn("video probe failed", zap.String("stepId", stepID), zap.Error(err))
		info = &util.VideoInfo{}
	}

	key := ObjectKey("videos", file.Filename)
	videoURL, err := s.Storage.SaveFile(ctx, key, tempPath, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	old := step.VideoURL
	step.VideoURL = videoURL
	step.VideoDuration = info.Duration
	if err := s.StepRepo.Update(step); err != nil {
		return nil, err
	}
	if old != "" {
		// 旧视频残留在对象存储里也无妨，尽力清理
		if err := s.Storage.Remove(ctx, strings.TrimPrefix(old, "/uploads/")); err != nil {
			logger.Log.Warn("stale video cleanup failed", zap.String("url", old), zap.Error(err))
		}
	}

	return &VideoUploadResult{
		URL:      videoURL,
		Duration: info.Duration,
		Width:    info.Width,
		Height:   info.Height,
		Format:   info.Format,
		Size:     file.Size,
	}, nil
}

type VideoUploadResult struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	Size     int64   `json:"size"`
}

// UploadCourseCover 上传课程封面图
func (s *ContentService) UploadCourseCover(ctx context.Context, slug string, file *multipart.FileHeader) (string, error) {
	course, err := s.CourseRepo.FindSlimBySlug(slug)
	if err == gorm.ErrRecordNotFound {
		return "", util.ErrCourseNotFound
	}
	if err != nil {
		return "", err
	}

	url, err := s.uploadImage(ctx, "covers", file)
	if err != nil {
		return "", err
	}

	course.CoverURL = url
	return url, s.CourseRepo.Update(course)
}

// UploadAvatar 上传用户头像
func (s *ContentService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", err
	}

	url, err := s.uploadImage(ctx, "avatars", file)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	return url, s.UserRepo.Update(user)
}

func (s *ContentService) uploadImage(ctx context.Context, prefix string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeImage})
	if err != nil {
		return "", util.ErrInvalidImage
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	key := ObjectKey(prefix, file.Filename)
	return s.Storage.Save(ctx, key, src, file.Size, mimeType)
}

// spool 把上传内容落到本地临时文件，顺带做 MIME 深度校验
func (s *ContentService) spool(file *multipart.FileHeader, ext string, allowedTypes []string) (string, error) {
	if err := os.MkdirAll(s.TempDir, 0755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, allowedTypes); err != nil {
		return "", fmt.Errorf("非法的文件内容: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	tempPath := filepath.Join(s.TempDir, fmt.Sprintf("upload_%d%s", time.Now().UnixNano(), ext))
	dst, err := os.Create(tempPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(tempPath)
		return "", err
	}
	return tempPath, nil
}
