package model

import "time"

// ChatMessage 聊天消息 按学生维度追加存储
type ChatMessage struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Message   string    `json:"message"`
	Sender    Role      `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatThread 单个学生的完整聊天记录
type ChatThread struct {
	StudentID string        `json:"studentId"`
	Messages  []ChatMessage `json:"messages"`
}
