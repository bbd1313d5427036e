package service

import (
	"sync"

	"testlab_backend/internal/model"
	"testlab_backend/internal/util"
)

// SessionRegistry 连接到身份的绑定 一条连接同一时刻只有一个身份，
// 重复注册直接覆盖，断开时解除绑定。
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]model.Identity // connectionId -> identity
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]model.Identity),
	}
}

func (r *SessionRegistry) Register(connectionID string, role model.Role, studentID string) (model.Identity, error) {
	if role == model.RoleStudent && !model.ValidStudentID(studentID) {
		return model.Identity{}, util.ErrInvalidStudentID
	}

	ident := model.Identity{Role: role}
	if role == model.RoleStudent {
		ident.StudentID = studentID
	}

	r.mu.Lock()
	r.sessions[connectionID] = ident
	r.mu.Unlock()

	return ident, nil
}

func (r *SessionRegistry) Lookup(connectionID string) (model.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.sessions[connectionID]
	return ident, ok
}

func (r *SessionRegistry) Unregister(connectionID string) {
	r.mu.Lock()
	delete(r.sessions, connectionID)
	r.mu.Unlock()
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
