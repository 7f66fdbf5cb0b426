package controller

import (
	"pyland_backend/internal/model"
	"pyland_backend/internal/service"
	"pyland_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService *service.CatalogService
	ContentService *service.ContentService
}

func NewCourseController(catalogService *service.CatalogService, contentService *service.ContentService) *CourseController {
	return &CourseController{
		CatalogService: catalogService,
		ContentService: contentService,
	}
}

// lang 界面语言，查询参数优先，缺省 en
func lang(ctx *gin.Context) string {
	if l := ctx.Query("lang"); l != "" {
		return l
	}
	return util.DefaultLanguage
}

// ListCourses godoc
// @Summary 课程目录
// @Description 游客与学生只看到已上架课程，管理端能看到全部状态
// @Tags 课程
// @Produce  json
// @Param   lang query string false "语言" default(en)
// @Param   category query string false "分类"
// @Success 200 {object} util.Response{data=[]service.CourseSummary}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	staff := claims != nil && (claims.Role == model.Manager || claims.Role == model.Admin)

	courses, err := c.CatalogService.ListCourses(lang(ctx), ctx.Query("category"), staff)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情
// @Description 整棵课程树（课时、步骤），登录学生附带个人完成状态
// @Tags 课程
// @Produce  json
// @Param   slug path string true "课程 slug"
// @Param   lang query string false "语言" default(en)
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	detail, err := c.CatalogService.GetCourse(ctx.Param("slug"), lang(ctx), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// CreateCourse godoc
// @Summary 创建课程
// @Description 新课程以 draft 状态创建
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CourseCreateRequest true "课程"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/admin/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CatalogService.CreateCourse(req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

type CourseStatusRequest struct {
	Status model.CourseStatus `json:"status" binding:"required,oneof=draft active archived"`
}

// SetCourseStatus godoc
// @Summary 上架/下架课程
// @Description 课程从不物理删除，归档走 archived 状态
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   body body CourseStatusRequest true "状态"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/courses/{slug}/status [put]
func (c *CourseController) SetCourseStatus(ctx *gin.Context) {
	var req CourseStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CatalogService.SetCourseStatus(ctx.Param("slug"), req.Status); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UpsertCourseTranslation godoc
// @Summary 维护课程多语言文案
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   body body service.TranslationInput true "文案"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{slug}/translations [put]
func (c *CourseController) UpsertCourseTranslation(ctx *gin.Context) {
	var in service.TranslationInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CatalogService.UpsertCourseTranslation(ctx.Param("slug"), in); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadCourseCover godoc
// @Summary 上传课程封面
// @Tags 课程管理
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   cover formData file true "封面图片"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/courses/{slug}/cover [post]
func (c *CourseController) UploadCourseCover(ctx *gin.Context) {
	file, err := ctx.FormFile("cover")
	if err != nil {
		util.BadRequest(ctx, "缺少封面文件")
		return
	}

	url, err := c.ContentService.UploadCourseCover(ctx.Request.Context(), ctx.Param("slug"), file)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"coverUrl": url})
}

// CreateLesson godoc
// @Summary 在课程下创建课时
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   body body service.LessonCreateRequest true "课时"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Failure 409 {object} util.Response "位置已被占用"
// @Router /api/admin/courses/{slug}/lessons [post]
func (c *CourseController) CreateLesson(ctx *gin.Context) {
	var req service.LessonCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.CatalogService.CreateLesson(ctx.Param("slug"), req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// CreateStep godoc
// @Summary 在课时下创建步骤
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   slug path string true "课程 slug"
// @Param   lessonSlug path string true "课时 slug"
// @Param   body body service.StepCreateRequest true "步骤"
// @Success 201 {object} util.Response{data=model.Step}
// @Failure 409 {object} util.Response "位置已被占用"
// @Router /api/admin/courses/{slug}/lessons/{lessonSlug}/steps [post]
func (c *CourseController) CreateStep(ctx *gin.Context) {
	var req service.StepCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	step, err := c.CatalogService.CreateStep(ctx.Param("slug"), ctx.Param("lessonSlug"), req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, step)
}

// UpsertStepTranslation godoc
// @Summary 维护步骤多语言文案
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "步骤 ID"
// @Param   body body service.StepTranslationInput true "文案"
// @Success 200 {object} util.Response
// @Router /api/admin/steps/{id}/translations [put]
func (c *CourseController) UpsertStepTranslation(ctx *gin.Context) {
	var in service.StepTranslationInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CatalogService.UpsertStepTranslation(ctx.Param("id"), in); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadStepVideo godoc
// @Summary 上传步骤讲解视频
// @Description 服务端用 ffprobe 读取时长并写回步骤
// @Tags 课程管理
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "步骤 ID"
// @Param   video formData file true "视频文件"
// @Success 200 {object} util.Response{data=service.VideoUploadResult}
// @Failure 400 {object} util.Response "不支持的视频格式"
// @Router /api/admin/steps/{id}/video [post]
func (c *CourseController) UploadStepVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "缺少视频文件")
		return
	}

	result, err := c.ContentService.UploadStepVideo(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
