package store

import "testlab_backend/internal/model"

// Store 快照持久化 启动时 Load 一次，之后定时 Save，退出前再 Save 一次。
// 持久化是尽力而为的：失败只记日志，等下一个周期重试。
type Store interface {
	Load() (map[string][]model.Submission, map[string][]model.ChatMessage, error)
	Save(submissions map[string][]model.Submission, chats map[string][]model.ChatMessage) error
}
