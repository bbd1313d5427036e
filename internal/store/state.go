package store

import (
	"sync"

	"testlab_backend/internal/model"
)

// State 提交与聊天两份共享数据的唯一持有者。
// 所有变更都经过这里的一把锁，Hub 的广播读取路径与学生写入路径
// 并发访问同一份数据，不能绕开。
type State struct {
	mu          sync.RWMutex
	submissions map[string][]model.Submission // studentId -> 提交列表（每个练习至多一条）
	chats       map[string][]model.ChatMessage
}

func NewState() *State {
	return &State{
		submissions: make(map[string][]model.Submission),
		chats:       make(map[string][]model.ChatMessage),
	}
}

// LoadFrom 启动时从快照整体恢复
func (s *State) LoadFrom(submissions map[string][]model.Submission, chats map[string][]model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions = make(map[string][]model.Submission, len(submissions))
	for id, subs := range submissions {
		s.submissions[id] = append([]model.Submission(nil), subs...)
	}
	s.chats = make(map[string][]model.ChatMessage, len(chats))
	for id, msgs := range chats {
		s.chats[id] = append([]model.ChatMessage(nil), msgs...)
	}
}

// UpsertSubmission 写入提交 同一 (学生, 练习) 的旧记录被整体替换
func (s *State) UpsertSubmission(studentID string, sub model.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.submissions[studentID]
	for i := range subs {
		if subs[i].ExerciseID == sub.ExerciseID {
			subs[i] = sub
			return
		}
	}
	s.submissions[studentID] = append(subs, sub)
}

// Submission 查询某学生对某练习的最新提交
func (s *State) Submission(studentID string, exerciseID int) (model.Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.submissions[studentID] {
		if sub.ExerciseID == exerciseID {
			return sub, true
		}
	}
	return model.Submission{}, false
}

// Submissions 某学生的全部提交（副本）
func (s *State) Submissions(studentID string) []model.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.Submission(nil), s.submissions[studentID]...)
}

// AppendChat 追加一条聊天消息
func (s *State) AppendChat(studentID string, msg model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats[studentID] = append(s.chats[studentID], msg)
}

// Chat 某学生的完整聊天记录（副本）
func (s *State) Chat(studentID string) []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.ChatMessage(nil), s.chats[studentID]...)
}

// SnapshotSubmissions 全量深拷贝 用于持久化和管理端快照
func (s *State) SnapshotSubmissions() map[string][]model.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]model.Submission, len(s.submissions))
	for id, subs := range s.submissions {
		out[id] = append([]model.Submission(nil), subs...)
	}
	return out
}

// SnapshotChats 全量深拷贝
func (s *State) SnapshotChats() map[string][]model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]model.ChatMessage, len(s.chats))
	for id, msgs := range s.chats {
		out[id] = append([]model.ChatMessage(nil), msgs...)
	}
	return out
}
