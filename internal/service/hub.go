package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"testlab_backend/internal/model"
	"testlab_backend/internal/store"
	"testlab_backend/internal/util"
	"testlab_backend/pkg/logger"
	"testlab_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // 提交里带完整代码，放宽到 64KB
	onlineTTL      = 2 * time.Minute

	// TopicAdmin 管理端主题 所有管理员连接都订阅
	TopicAdmin = "admin"
)

// StudentTopic 每个学生一个主题
func StudentTopic(studentID string) string {
	return "student_" + studentID
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client 一条 WebSocket 连接
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	ID      string // 连接 ID，身份绑定的键
	Limiter *rate.Limiter
}

type inboundEvent struct {
	client   *Client
	envelope model.WSEnvelope
}

// Hub 按主题做广播分发。注册/注销/上行事件全部经过 Run 的
// 单个事件循环，串行处理，主题表不需要额外加锁。
// 投递是 fire-and-forget：客户端缓冲满了直接丢，离线期间的
// 事件不补发，重连后靠登录时的全量快照追平。
type Hub struct {
	clients    map[*Client]bool
	topics     map[string]map[*Client]bool
	membership map[*Client]map[string]bool

	register   chan *Client
	unregister chan *Client
	events     chan inboundEvent
	stopCh     chan struct{}
	doneCh     chan struct{}

	Redis       *redis.Client // 在线状态镜像，可为 nil
	Sessions    *SessionRegistry
	Chat        *ChatService
	Submissions *SubmissionService
	Progression *ProgressionService

	state *store.State
	ctx   context.Context
}

func NewHub(rdb *redis.Client, state *store.State, sessions *SessionRegistry, chat *ChatService, submissions *SubmissionService, progression *ProgressionService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		topics:      make(map[string]map[*Client]bool),
		membership:  make(map[*Client]map[string]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		events:      make(chan inboundEvent, 64),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		Redis:       rdb,
		Sessions:    sessions,
		Chat:        chat,
		Submissions: submissions,
		Progression: progression,
		state:       state,
		ctx:         context.Background(),
	}
}

func (h *Hub) Run() {
	defer close(h.doneCh)

	// 在线状态续期 (Heartbeat)
	heartbeatTicker := time.NewTicker(1 * time.Minute)
	defer heartbeatTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case ev := <-h.events:
			h.dispatch(ev)
		case <-heartbeatTicker.C:
			h.refreshOnlineStatus()
		case <-h.stopCh:
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.clients[client] = true
	monitoring.WSConnections.Inc()
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	if ident, ok := h.Sessions.Lookup(client.ID); ok {
		logger.Log.Info("Client disconnected",
			zap.String("role", string(ident.Role)),
			zap.String("studentId", ident.StudentID))
	}

	h.leaveAllTopics(client)
	h.clearOnlineStatus(client.ID)
	h.Sessions.Unregister(client.ID)
	delete(h.clients, client)
	close(client.Send)
	monitoring.WSConnections.Dec()
}

func (h *Hub) dispatch(ev inboundEvent) {
	monitoring.WSMessageCounter.WithLabelValues(ev.envelope.Type, "in").Inc()

	switch ev.envelope.Type {
	case model.EventLogin:
		h.handleLogin(ev.client, ev.envelope.Data)
	case model.EventSendMessage:
		h.handleSendMessage(ev.client, ev.envelope.Data)
	case model.EventSubmitExercise:
		h.handleSubmitExercise(ev.client, ev.envelope.Data)
	default:
		logger.Log.Debug("Unknown event type", zap.String("type", ev.envelope.Type))
	}
}

// handleLogin 身份绑定 + 登录快照。管理员拿全量数据，
// 学生拿自己的聊天记录和历史提交。重复登录覆盖旧身份。
func (h *Hub) handleLogin(client *Client, data json.RawMessage) {
	var req model.LoginRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.emit(client, model.EventLoginError, model.ErrorPayload{Message: "invalid login data"})
		return
	}

	switch model.Role(req.UserType) {
	case model.RoleAdmin:
		h.Sessions.Register(client.ID, model.RoleAdmin, "")
		h.leaveAllTopics(client)
		h.joinTopic(client, TopicAdmin)

		h.emit(client, model.EventLoginSuccess, map[string]interface{}{"userType": model.RoleAdmin})
		h.emit(client, model.EventAllSubmissions, h.allSubmissions())
		h.emit(client, model.EventAllChats, h.Chat.AllThreads())

		logger.Log.Info("Admin logged in", zap.String("connId", client.ID))

	case model.RoleStudent:
		ident, err := h.Sessions.Register(client.ID, model.RoleStudent, req.StudentID)
		if err != nil {
			h.emit(client, model.EventLoginError, model.ErrorPayload{Message: err.Error()})
			return
		}
		h.leaveAllTopics(client)
		h.joinTopic(client, StudentTopic(ident.StudentID))
		h.markOnline(client.ID, ident.StudentID)

		h.emit(client, model.EventLoginSuccess, map[string]interface{}{
			"userType":  model.RoleStudent,
			"studentId": ident.StudentID,
		})
		h.emit(client, model.EventChatHistory, h.Chat.History(ident.StudentID))
		if subs := h.state.Submissions(ident.StudentID); len(subs) > 0 {
			h.emit(client, model.EventSubmissionHistory, subs)
		}

		logger.Log.Info("Student logged in", zap.String("studentId", ident.StudentID))

	default:
		h.emit(client, model.EventLoginError, model.ErrorPayload{Message: "invalid login data"})
	}
}

// handleSendMessage 学生消息：回显 + 管理端主题。
// 管理员消息（带目标学号）：目标学生主题 + 其他管理员 + 回显。
func (h *Hub) handleSendMessage(client *Client, data json.RawMessage) {
	ident, ok := h.Sessions.Lookup(client.ID)
	if !ok {
		h.emit(client, model.EventLoginError, model.ErrorPayload{Message: util.ErrUnauthenticated.Error()})
		return
	}

	var req model.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Message == "" {
		return
	}

	switch ident.Role {
	case model.RoleStudent:
		msg := h.Chat.AppendStudentMessage(ident.StudentID, req.Message)
		h.emit(client, model.EventNewMessage, msg)
		h.broadcastTopic(TopicAdmin, nil, model.EventNewMessage, msg)

	case model.RoleAdmin:
		if req.TargetStudentID == "" {
			return
		}
		msg := h.Chat.AppendAdminMessage(req.TargetStudentID, req.Message)
		h.broadcastTopic(StudentTopic(req.TargetStudentID), nil, model.EventNewMessage, msg)
		h.broadcastTopic(TopicAdmin, client, model.EventNewMessage, msg)
		h.emit(client, model.EventNewMessage, msg)
	}
}

// handleSubmitExercise 校验通过才入库；被拒绝只回给提交者，
// 不动任何共享状态。成功则回显 + 通知管理端。
func (h *Hub) handleSubmitExercise(client *Client, data json.RawMessage) {
	ident, ok := h.Sessions.Lookup(client.ID)
	if !ok {
		h.emit(client, model.EventSubmissionError, model.ErrorPayload{Message: util.ErrUnauthenticated.Error()})
		return
	}
	if ident.Role != model.RoleStudent {
		h.emit(client, model.EventSubmissionError, model.ErrorPayload{Message: util.ErrStudentsOnly.Error()})
		return
	}

	var req model.SubmitExerciseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.emit(client, model.EventSubmissionError, model.ErrorPayload{Message: "invalid submission data"})
		return
	}

	submission, err := h.Submissions.Submit(ident.StudentID, req.ExerciseID, req.Code, req.TestResults)
	if err != nil {
		monitoring.SubmissionCounter.WithLabelValues("rejected").Inc()
		h.emit(client, model.EventSubmissionError, model.ErrorPayload{Message: err.Error()})
		return
	}

	monitoring.SubmissionCounter.WithLabelValues("accepted").Inc()
	h.emit(client, model.EventSubmissionSuccess, submission)
	h.broadcastTopic(TopicAdmin, nil, model.EventNewSubmission, model.SubmissionRecord{
		StudentID:  ident.StudentID,
		Submission: submission,
	})

	logger.Log.Info("Submission accepted",
		zap.String("studentId", ident.StudentID),
		zap.Int("exerciseId", req.ExerciseID))
}

// allSubmissions 管理端登录快照 按学号和练习序号排序，输出稳定
func (h *Hub) allSubmissions() []model.SubmissionRecord {
	snapshot := h.state.SnapshotSubmissions()
	records := make([]model.SubmissionRecord, 0, len(snapshot))
	for studentID, subs := range snapshot {
		for _, sub := range subs {
			records = append(records, model.SubmissionRecord{
				StudentID:  studentID,
				Submission: sub,
			})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].StudentID != records[j].StudentID {
			return records[i].StudentID < records[j].StudentID
		}
		return records[i].ExerciseID < records[j].ExerciseID
	})
	return records
}

func (h *Hub) joinTopic(client *Client, topic string) {
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][client] = true

	if h.membership[client] == nil {
		h.membership[client] = make(map[string]bool)
	}
	h.membership[client][topic] = true
}

func (h *Hub) leaveAllTopics(client *Client) {
	for topic := range h.membership[client] {
		delete(h.topics[topic], client)
		if len(h.topics[topic]) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(h.membership, client)
}

// emit 单发 缓冲满直接丢弃，不阻塞事件循环
func (h *Hub) emit(client *Client, eventType string, data interface{}) {
	payload, err := json.Marshal(model.WSMessage{Type: eventType, Data: data})
	if err != nil {
		logger.Log.Error("Marshal outbound event failed", zap.Error(err), zap.String("type", eventType))
		return
	}
	monitoring.WSMessageCounter.WithLabelValues(eventType, "out").Inc()
	select {
	case client.Send <- payload:
	default:
	}
}

// broadcastTopic 主题广播 except 不为 nil 时跳过该连接
func (h *Hub) broadcastTopic(topic string, except *Client, eventType string, data interface{}) {
	members := h.topics[topic]
	if len(members) == 0 {
		return
	}
	payload, err := json.Marshal(model.WSMessage{Type: eventType, Data: data})
	if err != nil {
		logger.Log.Error("Marshal outbound event failed", zap.Error(err), zap.String("type", eventType))
		return
	}
	for client := range members {
		if client == except {
			continue
		}
		monitoring.WSMessageCounter.WithLabelValues(eventType, "out").Inc()
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// markOnline 学生上线状态写入 Redis，带 TTL，心跳续期
func (h *Hub) markOnline(connID, studentID string) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf("student:online:%s", studentID)
	if err := h.Redis.Set(h.ctx, key, connID, onlineTTL).Err(); err != nil {
		logger.Log.Error("Redis online status set failed", zap.Error(err))
	}
}

func (h *Hub) clearOnlineStatus(connID string) {
	if h.Redis == nil {
		return
	}
	ident, ok := h.Sessions.Lookup(connID)
	if !ok || ident.Role != model.RoleStudent {
		return
	}
	h.Redis.Del(h.ctx, fmt.Sprintf("student:online:%s", ident.StudentID))
}

// refreshOnlineStatus 为所有在线学生批量续期
func (h *Hub) refreshOnlineStatus() {
	if h.Redis == nil {
		return
	}
	pipe := h.Redis.Pipeline()
	count := 0
	for client := range h.clients {
		ident, ok := h.Sessions.Lookup(client.ID)
		if !ok || ident.Role != model.RoleStudent {
			continue
		}
		pipe.Expire(h.ctx, fmt.Sprintf("student:online:%s", ident.StudentID), onlineTTL)
		count++
	}
	if count > 0 {
		if _, err := pipe.Exec(h.ctx); err != nil {
			logger.Log.Error("Redis pipeline error", zap.Error(err))
		}
	}
}

// Stop 关闭所有连接并清理在线状态
func (h *Hub) Stop() {
	logger.Log.Info("Hub stopping: closing connections and clearing online status...")

	close(h.stopCh)
	<-h.doneCh

	var studentIDs []string
	for client := range h.clients {
		if ident, ok := h.Sessions.Lookup(client.ID); ok && ident.Role == model.RoleStudent {
			studentIDs = append(studentIDs, ident.StudentID)
		}
		h.Sessions.Unregister(client.ID)
		close(client.Send)
		delete(h.clients, client)
	}
	h.topics = make(map[string]map[*Client]bool)
	h.membership = make(map[*Client]map[string]bool)

	if h.Redis != nil && len(studentIDs) > 0 {
		pipe := h.Redis.Pipeline()
		for _, id := range studentIDs {
			pipe.Del(h.ctx, fmt.Sprintf("student:online:%s", id))
		}
		pipe.Exec(h.ctx)
	}

	monitoring.WSConnections.Set(0)
	logger.Log.Info("Hub stopped", zap.Int("closedConnections", len(studentIDs)))
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.String("connId", c.ID))
			}
			break
		}

		if !c.Limiter.Allow() {
			continue
		}

		var envelope model.WSEnvelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			continue
		}

		c.Hub.events <- inboundEvent{client: c, envelope: envelope}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if n := len(c.Send); n > 0 {
				for i := 0; i < n; i++ {
					w.Write(<-c.Send)
				}
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs 升级连接并启动读写泵
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		ID:      uuid.New().String(),
		Limiter: rate.NewLimiter(rate.Limit(10), 20), // 每秒10条，允许突发20条
	}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
