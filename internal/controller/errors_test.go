package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"pyland_backend/internal/util"
	"pyland_backend/pkg/logger"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

func respondRecorded(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	respondServiceError(ctx, err)
	return w
}

func TestServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"course not found", util.ErrCourseNotFound, http.StatusNotFound},
		{"duplicate submission", util.ErrSubmissionExists, http.StatusConflict},
		{"already approved", util.ErrLessonAlreadyApproved, http.StatusConflict},
		{"comment too short", util.ErrCommentTooShort, http.StatusBadRequest},
		{"improvements incomplete", util.ErrImprovementsIncomplete, http.StatusBadRequest},
		{"invalid decision", util.ErrInvalidDecision, http.StatusBadRequest},
		{"permission denied", util.ErrPermissionDenied, http.StatusForbidden},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := respondRecorded(t, tc.err)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}
