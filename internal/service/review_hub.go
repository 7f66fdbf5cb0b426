package service

import (
	"context"
	"encoding/json"
	"net/http"
	"pyland_backend/internal/model"
	"pyland_backend/pkg/logger"
	"pyland_backend/pkg/monitoring"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	hubWriteWait  = 10 * time.Second
	hubPongWait   = 60 * time.Second
	hubPingPeriod = (hubPongWait * 9) / 10
	hubMaxMsgSize = 512
	reviewChannel = "pyland:review_events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// QueueEvent 推给审核端的队列变更
type QueueEvent struct {
	Type         string `json:"type"` // SUBMISSION_QUEUED | SUBMISSION_REVIEWED
	SubmissionID uint   `json:"submissionId"`
	LessonID     uint   `json:"lessonId"`
	Status       string `json:"status"`
	Round        int    `json:"round"`
}

type hubClient struct {
	hub     *ReviewHub
	conn    *websocket.Conn
	send    chan []byte
	userID  uint
	limiter *rate.Limiter
}

func (c *hubClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(hubMaxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(hubPongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(hubPongWait)); return nil })
	for {
		// 审核端是纯订阅方，上行消息读掉即可，保活靠 pong
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("websocket unexpected close", zap.Error(err), zap.Uint("userId", c.userID))
			}
			break
		}
		if !c.limiter.Allow() {
			continue
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(hubPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReviewHub 审核队列实时推送。多实例部署时经 Redis PubSub 扇出，
// 单实例（或无 Redis）时直接本地广播。
type ReviewHub struct {
	mu         sync.RWMutex
	clients    map[uint]*hubClient
	register   chan *hubClient
	unregister chan *hubClient
	Redis      *redis.Client
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewReviewHub(rdb *redis.Client) *ReviewHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReviewHub{
		clients:    make(map[uint]*hubClient),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		Redis:      rdb,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *ReviewHub) Run() {
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(h.ctx, reviewChannel)
		go func() {
			defer pubsub.Close()
			ch := pubsub.Channel()
			for {
				select {
				case <-h.ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					h.broadcastLocal([]byte(msg.Payload))
				}
			}
		}()
	}

	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
			}
			h.clients[client.userID] = client
			h.mu.Unlock()
			monitoring.ReviewerOnlineGauge.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
				monitoring.ReviewerOnlineGauge.Dec()
			}
			h.mu.Unlock()
		}
	}
}

// Stop 关闭全部连接
func (h *ReviewHub) Stop() {
	h.cancel()

	h.mu.Lock()
	n := len(h.clients)
	for userID, client := range h.clients {
		close(client.send)
		delete(h.clients, userID)
	}
	h.mu.Unlock()

	monitoring.ReviewerOnlineGauge.Set(0)
	logger.Log.Info("review hub stopped", zap.Int("closedConnections", n))
}

// SubmissionQueued 新提交（或重新提交）进入队列
func (h *ReviewHub) SubmissionQueued(sub *model.LessonSubmission) {
	h.publish(QueueEvent{
		Type:         "SUBMISSION_QUEUED",
		SubmissionID: sub.ID,
		LessonID:     sub.LessonID,
		Status:       string(sub.Status),
		Round:        sub.Round,
	})
}

// SubmissionReviewed 提交离开队列
func (h *ReviewHub) SubmissionReviewed(sub *model.LessonSubmission) {
	h.publish(QueueEvent{
		Type:         "SUBMISSION_REVIEWED",
		SubmissionID: sub.ID,
		LessonID:     sub.LessonID,
		Status:       string(sub.Status),
		Round:        sub.Round,
	})
}

func (h *ReviewHub) publish(ev QueueEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if h.Redis != nil {
		if err := h.Redis.Publish(h.ctx, reviewChannel, payload).Err(); err == nil {
			return
		}
	}
	h.broadcastLocal(payload)
}

func (h *ReviewHub) broadcastLocal(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// 慢消费者直接丢，队列快照可随时重新拉取
		}
	}
}

// ServeQueueFeed 升级 WebSocket 连接并接入推送
func (h *ReviewHub) ServeQueueFeed(w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("websocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &hubClient{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		userID:  userID,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	// hub 已停机则 Run 不再消费 register，不能无条件阻塞发送
	select {
	case h.register <- client:
	case <-h.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
