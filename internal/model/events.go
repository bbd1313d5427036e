package model

import "encoding/json"

// WebSocket 事件名 与前端约定保持一致
const (
	// 上行
	EventLogin          = "login"
	EventSendMessage    = "sendMessage"
	EventSubmitExercise = "submitExercise"

	// 下行
	EventLoginSuccess      = "loginSuccess"
	EventLoginError        = "loginError"
	EventChatHistory       = "chatHistory"
	EventSubmissionHistory = "submissionHistory"
	EventNewMessage        = "newMessage"
	EventSubmissionSuccess = "submissionSuccess"
	EventSubmissionError   = "submissionError"
	EventNewSubmission     = "newSubmission"
	EventAllSubmissions    = "allSubmissions"
	EventAllChats          = "allChats"
)

// WSEnvelope 上行消息信封 Data 延迟解码
type WSEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WSMessage 下行消息
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type LoginRequest struct {
	UserType  string `json:"userType"`
	StudentID string `json:"studentId"`
}

type SendMessageRequest struct {
	Message         string `json:"message"`
	TargetStudentID string `json:"targetStudentId"`
}

type SubmitExerciseRequest struct {
	ExerciseID  int         `json:"exerciseId"`
	Code        string      `json:"code"`
	TestResults TestOutcome `json:"testResults"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
