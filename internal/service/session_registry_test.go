package service

import (
	"testing"

	"testlab_backend/internal/model"
	"testlab_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterStudentValidatesID(t *testing.T) {
	tests := []struct {
		name      string
		studentID string
		wantErr   bool
	}{
		{name: "digits only", studentID: "1001", wantErr: false},
		{name: "single digit", studentID: "7", wantErr: false},
		{name: "empty", studentID: "", wantErr: true},
		{name: "letters", studentID: "abc", wantErr: true},
		{name: "mixed", studentID: "10a1", wantErr: true},
		{name: "whitespace", studentID: "10 01", wantErr: true},
		{name: "negative", studentID: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewSessionRegistry()

			ident, err := reg.Register("conn-1", model.RoleStudent, tt.studentID)
			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrInvalidStudentID)
				assert.Equal(t, 0, reg.Count())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.RoleStudent, ident.Role)
			assert.Equal(t, tt.studentID, ident.StudentID)
		})
	}
}

func TestRegisterAdminIgnoresStudentID(t *testing.T) {
	reg := NewSessionRegistry()

	ident, err := reg.Register("conn-1", model.RoleAdmin, "should-not-matter")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, ident.Role)
	assert.Empty(t, ident.StudentID)
}

func TestRegisterOverwritesSameConnection(t *testing.T) {
	reg := NewSessionRegistry()

	_, err := reg.Register("conn-1", model.RoleStudent, "1001")
	require.NoError(t, err)

	// 同一连接重新登录，旧身份被覆盖
	_, err = reg.Register("conn-1", model.RoleAdmin, "")
	require.NoError(t, err)

	ident, ok := reg.Lookup("conn-1")
	require.True(t, ok)
	assert.Equal(t, model.RoleAdmin, ident.Role)
	assert.Equal(t, 1, reg.Count())
}

func TestUnregisterRemovesBinding(t *testing.T) {
	reg := NewSessionRegistry()

	_, err := reg.Register("conn-1", model.RoleStudent, "1001")
	require.NoError(t, err)
	_, err = reg.Register("conn-2", model.RoleStudent, "1002")
	require.NoError(t, err)

	reg.Unregister("conn-1")

	_, ok := reg.Lookup("conn-1")
	assert.False(t, ok)
	_, ok = reg.Lookup("conn-2")
	assert.True(t, ok)
	assert.Equal(t, 1, reg.Count())

	// 重复注销应是幂等的
	reg.Unregister("conn-1")
	assert.Equal(t, 1, reg.Count())
}
