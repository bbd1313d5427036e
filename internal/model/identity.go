package model

import "regexp"

// Role 连接身份角色
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Identity 与一条活跃连接一一绑定的身份
type Identity struct {
	Role      Role   `json:"role"`
	StudentID string `json:"studentId,omitempty"`
}

// 学号只允许纯数字
var studentIDPattern = regexp.MustCompile(`^[0-9]+$`)

func ValidStudentID(id string) bool {
	return studentIDPattern.MatchString(id)
}
