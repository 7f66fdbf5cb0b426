package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pyland_backend/internal/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialQueueFeed(t *testing.T, hub *ReviewHub, userID uint) (*websocket.Conn, chan struct{}) {
	t.Helper()
	served := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeQueueFeed(w, r, userID)
		close(served)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, served
}

func TestQueueFeedBroadcast(t *testing.T) {
	hub := NewReviewHub(nil)
	go hub.Run()
	defer hub.Stop()

	conn, _ := dialQueueFeed(t, hub, 7)

	hub.SubmissionQueued(&model.LessonSubmission{
		BaseModel: model.BaseModel{ID: 42},
		LessonID:  3,
		Status:    model.SubmissionPending,
		Round:     1,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), "SUBMISSION_QUEUED")
	assert.Contains(t, string(payload), `"submissionId":42`)
}

func TestQueueFeedReturnsAfterHubStop(t *testing.T) {
	hub := NewReviewHub(nil)
	go hub.Run()
	hub.Stop()

	conn, served := dialQueueFeed(t, hub, 9)

	// 停机后的接入不能挂死在注册通道上，连接应立刻关掉
	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("queue feed handler did not return after hub shutdown")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
