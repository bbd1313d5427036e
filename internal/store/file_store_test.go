package store

import (
	"testing"
	"time"

	"testlab_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundtrip(t *testing.T) {
	dir := t.TempDir()

	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	ts := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	submissions := map[string][]model.Submission{
		"1001": {
			{
				ExerciseID:  1,
				Code:        `console.assert(validateEmail("a@b.pt"), "valid");`,
				TestResults: model.TestOutcome{Executed: 3, Passed: 3, AllPassed: true},
				Completed:   true,
				Timestamp:   ts,
			},
			{
				ExerciseID:  2,
				Code:        "console.assert(false);",
				TestResults: model.TestOutcome{Executed: 3, Passed: 2, Failed: 1},
				Timestamp:   ts,
			},
		},
	}
	chats := map[string][]model.ChatMessage{
		"1001": {
			{ID: "m1", StudentID: "1001", Message: "hello", Sender: model.RoleStudent, Timestamp: ts},
			{ID: "m2", StudentID: "1001", Message: "hi there", Sender: model.RoleAdmin, Timestamp: ts},
		},
	}

	require.NoError(t, fs.Save(submissions, chats))

	// 重新打开，模拟进程重启
	fs2, err := NewFileStore(dir)
	require.NoError(t, err)

	gotSubs, gotChats, err := fs2.Load()
	require.NoError(t, err)
	assert.Equal(t, submissions, gotSubs)
	assert.Equal(t, chats, gotChats)
}

func TestFileStoreLoadEmptyDir(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	subs, chats, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Empty(t, chats)
}

func TestStateUpsertReplacesSubmission(t *testing.T) {
	state := NewState()

	state.UpsertSubmission("1001", model.Submission{ExerciseID: 1, Code: "v1"})
	state.UpsertSubmission("1001", model.Submission{ExerciseID: 1, Code: "v2", Completed: true})
	state.UpsertSubmission("1001", model.Submission{ExerciseID: 2, Code: "other"})

	subs := state.Submissions("1001")
	assert.Len(t, subs, 2)

	got, ok := state.Submission("1001", 1)
	assert.True(t, ok)
	assert.Equal(t, "v2", got.Code)
	assert.True(t, got.Completed)
}

func TestStateSnapshotIsACopy(t *testing.T) {
	state := NewState()
	state.UpsertSubmission("1001", model.Submission{ExerciseID: 1, Code: "v1"})

	snapshot := state.SnapshotSubmissions()
	snapshot["1001"][0].Code = "mutated"

	got, _ := state.Submission("1001", 1)
	assert.Equal(t, "v1", got.Code)
}
