package service

import (
	"testing"

	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifyCall struct {
	userID   uint
	template string
	channels []model.NotificationChannel
}

type fakeNotifier struct {
	calls []notifyCall
}

func (f *fakeNotifier) Notify(userID uint, templateCode string, payload map[string]interface{}, channels []model.NotificationChannel) {
	f.calls = append(f.calls, notifyCall{userID: userID, template: templateCode, channels: channels})
}

func (f *fakeNotifier) templates() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.template)
	}
	return out
}

type fakeEvents struct {
	queued   []uint
	reviewed []uint
}

func (f *fakeEvents) SubmissionQueued(sub *model.LessonSubmission) {
	f.queued = append(f.queued, sub.ID)
}

func (f *fakeEvents) SubmissionReviewed(sub *model.LessonSubmission) {
	f.reviewed = append(f.reviewed, sub.ID)
}

const okComment = "Solid work, the solution covers every requirement."

func TestSubmitCreatesPendingSubmission(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	notes := &fakeNotifier{}
	events := &fakeEvents{}
	svc := newReviewService(db, nil, notes)
	svc.Events = events

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPending, sub.Status)
	assert.Equal(t, 1, sub.Round)

	assert.Equal(t, []uint{sub.ID}, events.queued)
	require.Len(t, notes.calls, 1)
	assert.Equal(t, model.TplSubmissionReceived, notes.calls[0].template)
	assert.Equal(t, fx.Student.ID, notes.calls[0].userID)
}

func TestSubmitRejectsBadRepoURL(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	for _, raw := range []string{"", "not a url", "ftp://host/repo", "https://"} {
		_, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", raw)
		assert.ErrorIs(t, err, util.ErrInvalidRepoURL, "url=%q", raw)
	}
}

func TestSubmitDuplicateOpenSubmission(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	_, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	_, err = svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	assert.ErrorIs(t, err, util.ErrSubmissionExists)
}

func TestOpenSubmissionUniqueAtDatabaseLevel(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	first, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/v1")
	require.NoError(t, err)
	require.NotNil(t, first.OpenKey)

	// 绕开服务层的预检查直接插第二条未关闭提交，唯一索引必须拒绝
	dup := &model.LessonSubmission{
		UserID:   fx.Student.ID,
		LessonID: fx.Lessons[0].ID,
		RepoURL:  "https://github.com/ada/v2",
		Status:   model.SubmissionPending,
		Round:    1,
	}
	dup.MarkOpen()
	assert.Error(t, repository.NewSubmissionRepository(db).Create(dup))

	// rejected 释放占位键，新提交可以落库
	_, err = svc.Review(fx.Reviewer.ID, first.ID, ReviewRequest{
		Decision: model.DecisionRejected,
		Comments: okComment,
	})
	require.NoError(t, err)

	var closed model.LessonSubmission
	require.NoError(t, db.First(&closed, first.ID).Error)
	assert.Nil(t, closed.OpenKey)

	_, err = svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/v2")
	require.NoError(t, err)
}

func TestSubmitAfterRejectionAllowed(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/v1")
	require.NoError(t, err)

	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionRejected,
		Comments: okComment,
	})
	require.NoError(t, err)

	// rejected 不占位，可以重新提交，且是一条新记录
	again, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/v2")
	require.NoError(t, err)
	assert.NotEqual(t, sub.ID, again.ID)
	assert.Equal(t, 1, again.Round)
}

func TestSubmitBlockedAfterApproval(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 2, 1)
	svc := newReviewService(db, nil, nil)

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)
	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionApproved,
		Comments: okComment,
	})
	require.NoError(t, err)

	_, err = svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	assert.ErrorIs(t, err, util.ErrLessonAlreadyApproved)
}

func TestReviewValidation(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionApproved,
		Comments: "too short",
	})
	assert.ErrorIs(t, err, util.ErrCommentTooShort)

	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: "maybe",
		Comments: okComment,
	})
	assert.ErrorIs(t, err, util.ErrInvalidDecision)

	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionChangesRequested,
		Comments: okComment,
	})
	assert.ErrorIs(t, err, util.ErrImprovementRequired)

	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionChangesRequested,
		Comments: okComment,
		Improvements: []ImprovementInput{
			{Title: "Error handling", Description: "short"},
		},
	})
	assert.ErrorIs(t, err, util.ErrImprovementInvalid)

	// 校验失败不落审核记录，提交仍是 pending
	reloaded, err := svc.GetSubmission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPending, reloaded.Status)
	assert.Empty(t, reloaded.Reviews)
}

// 长度阈值按字符数算：多字节文本不能靠字节数蒙混过关
func TestReviewThresholdsCountCharacters(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	// 10 个汉字（30 字节）仍低于 20 字符门槛
	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionApproved,
		Comments: "写得不错，继续保持。",
	})
	assert.ErrorIs(t, err, util.ErrCommentTooShort)

	// 改进项描述同理：4 个汉字低于 10 字符门槛
	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionChangesRequested,
		Comments: "这份作业完成得很好，逻辑清晰，测试覆盖也很完整。",
		Improvements: []ImprovementInput{
			{Title: "测试", Description: "补充测试"},
		},
	})
	assert.ErrorIs(t, err, util.ErrImprovementInvalid)

	// 字符数过线即可通过
	res, err := svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionChangesRequested,
		Comments: "这份作业完成得很好，逻辑清晰，测试覆盖也很完整。",
		Improvements: []ImprovementInput{
			{Title: "测试", Description: "为边界条件补充单元测试用例"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionChangesRequested, res.Status)
}

func TestReviewOnlyOnceWhilePending(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionApproved,
		Comments: okComment,
	})
	require.NoError(t, err)

	// 非 pending 的提交不可再次审核
	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionRejected,
		Comments: okComment,
	})
	assert.ErrorIs(t, err, util.ErrSubmissionNotPending)
}

func TestChangesRequestedResubmitFlow(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	events := &fakeEvents{}
	svc := newReviewService(db, nil, nil)
	svc.Events = events

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	reviewed, err := svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionChangesRequested,
		Comments: okComment,
		Improvements: []ImprovementInput{
			{Title: "Error handling", Description: "Wrap errors instead of discarding them."},
			{Title: "Tests", Description: "Cover the unhappy path as well."},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionChangesRequested, reviewed.Status)
	require.Len(t, reviewed.Reviews, 1)
	require.Len(t, reviewed.Reviews[0].Improvements, 2)

	// 改进项未完成前不允许重新提交
	_, err = svc.Resubmit(fx.Student.ID, "go-basics", "lesson-1")
	assert.ErrorIs(t, err, util.ErrImprovementsIncomplete)

	for _, imp := range reviewed.Reviews[0].Improvements {
		toggled, err := svc.ToggleImprovement(fx.Student.ID, imp.ID)
		require.NoError(t, err)
		assert.True(t, toggled.Completed)
		require.NotNil(t, toggled.CompletedAt)
	}

	resub, err := svc.Resubmit(fx.Student.ID, "go-basics", "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPending, resub.Status)
	assert.Equal(t, 2, resub.Round)
	assert.Contains(t, events.queued, resub.ID)

	// 历史轮次的审核记录原样保留
	reloaded, err := svc.GetSubmission(sub.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Reviews, 1)
	assert.Equal(t, 1, reloaded.Reviews[0].Round)
	assert.Equal(t, model.DecisionChangesRequested, reloaded.Reviews[0].Decision)

	// 第二轮审核通过后形成两轮历史
	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionApproved,
		Comments: okComment,
	})
	require.NoError(t, err)

	reloaded, err = svc.GetSubmission(sub.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Reviews, 2)
	assert.Equal(t, 2, reloaded.Reviews[1].Round)
}

func TestResubmitRequiresChangesRequested(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	_, err := svc.Resubmit(fx.Student.ID, "go-basics", "lesson-1")
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)

	_, err = svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	// pending 状态下不能 resubmit
	_, err = svc.Resubmit(fx.Student.ID, "go-basics", "lesson-1")
	assert.ErrorIs(t, err, util.ErrSubmissionNotReturned)
}

func TestToggleImprovementGuards(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	reviewed, err := svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionChangesRequested,
		Comments: okComment,
		Improvements: []ImprovementInput{
			{Title: "Naming", Description: "Rename the exported helpers consistently."},
		},
	})
	require.NoError(t, err)
	imp := reviewed.Reviews[0].Improvements[0]

	_, err = svc.ToggleImprovement(fx.Student.ID, "missing-id")
	assert.ErrorIs(t, err, util.ErrImprovementNotFound)

	// 只有提交人本人可以勾选
	_, err = svc.ToggleImprovement(fx.Reviewer.ID, imp.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// 幂等翻转
	toggled, err := svc.ToggleImprovement(fx.Student.ID, imp.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	toggled, err = svc.ToggleImprovement(fx.Student.ID, imp.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
	assert.Nil(t, toggled.CompletedAt)

	// 重新排队后改进项锁定
	_, err = svc.ToggleImprovement(fx.Student.ID, imp.ID)
	require.NoError(t, err)
	_, err = svc.Resubmit(fx.Student.ID, "go-basics", "lesson-1")
	require.NoError(t, err)
	_, err = svc.ToggleImprovement(fx.Student.ID, imp.ID)
	assert.ErrorIs(t, err, util.ErrImprovementLocked)
}

func TestThresholdsHotReload(t *testing.T) {
	db := openTestDB(t)
	fx := seedCourse(t, db, 1, 1)
	svc := newReviewService(db, nil, nil)

	sub, err := svc.Submit(fx.Student.ID, "go-basics", "lesson-1", "https://github.com/ada/solution")
	require.NoError(t, err)

	svc.SetThresholds(5, 3)

	_, err = svc.Review(fx.Reviewer.ID, sub.ID, ReviewRequest{
		Decision: model.DecisionApproved,
		Comments: "short ok",
	})
	require.NoError(t, err)
}
