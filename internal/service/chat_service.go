package service

import (
	"time"

	"testlab_backend/internal/model"
	"testlab_backend/internal/store"

	"github.com/google/uuid"
)

// ChatService 聊天消息的构造与追加 每个学生一条只增不删的消息序列
type ChatService struct {
	state *store.State
}

func NewChatService(state *store.State) *ChatService {
	return &ChatService{state: state}
}

// AppendStudentMessage 学生只能写自己的会话
func (s *ChatService) AppendStudentMessage(studentID, text string) model.ChatMessage {
	msg := model.ChatMessage{
		ID:        uuid.New().String(),
		StudentID: studentID,
		Message:   text,
		Sender:    model.RoleStudent,
		Timestamp: time.Now(),
	}
	s.state.AppendChat(studentID, msg)
	return msg
}

// AppendAdminMessage 管理员写任意学生的会话
func (s *ChatService) AppendAdminMessage(targetStudentID, text string) model.ChatMessage {
	msg := model.ChatMessage{
		ID:        uuid.New().String(),
		StudentID: targetStudentID,
		Message:   text,
		Sender:    model.RoleAdmin,
		Timestamp: time.Now(),
	}
	s.state.AppendChat(targetStudentID, msg)
	return msg
}

// History 某学生的完整聊天记录
func (s *ChatService) History(studentID string) []model.ChatMessage {
	return s.state.Chat(studentID)
}

// AllThreads 管理端快照：所有非空会话
func (s *ChatService) AllThreads() []model.ChatThread {
	chats := s.state.SnapshotChats()
	threads := make([]model.ChatThread, 0, len(chats))
	for studentID, msgs := range chats {
		if len(msgs) == 0 {
			continue
		}
		threads = append(threads, model.ChatThread{
			StudentID: studentID,
			Messages:  msgs,
		})
	}
	return threads
}
