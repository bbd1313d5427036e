package store

import (
	"sync"
	"testing"
	"time"

	"testlab_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	mu    sync.Mutex
	saves int
	last  map[string][]model.Submission
}

func (r *recordingStore) Load() (map[string][]model.Submission, map[string][]model.ChatMessage, error) {
	return nil, nil, nil
}

func (r *recordingStore) Save(subs map[string][]model.Submission, chats map[string][]model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.last = subs
	return nil
}

func (r *recordingStore) snapshot() (int, map[string][]model.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves, r.last
}

func TestAutoSaverPeriodicSave(t *testing.T) {
	rec := &recordingStore{}
	state := NewState()
	state.UpsertSubmission("1001", model.Submission{ExerciseID: 1, Code: "console.assert(true);"})

	saver := NewAutoSaver(rec, state)
	go saver.Run(20 * time.Millisecond)

	assert.Eventually(t, func() bool {
		saves, _ := rec.snapshot()
		return saves >= 2
	}, time.Second, 5*time.Millisecond)

	saver.Stop()

	_, last := rec.snapshot()
	require.Contains(t, last, "1001")
	assert.Len(t, last["1001"], 1)
}

func TestAutoSaverStopFlushesFinalSnapshot(t *testing.T) {
	rec := &recordingStore{}
	state := NewState()

	saver := NewAutoSaver(rec, state)
	// 周期很长，定时器不会自己触发
	go saver.Run(time.Hour)

	state.AppendChat("1001", model.ChatMessage{ID: "m1", StudentID: "1001", Message: "hi"})
	saver.Stop()

	// 关停时必须同步落一次盘
	saves, _ := rec.snapshot()
	assert.Equal(t, 1, saves)
}

func TestAutoSaverSetInterval(t *testing.T) {
	rec := &recordingStore{}
	saver := NewAutoSaver(rec, NewState())
	go saver.Run(time.Hour)

	saver.SetInterval(10 * time.Millisecond)

	assert.Eventually(t, func() bool {
		saves, _ := rec.snapshot()
		return saves >= 1
	}, time.Second, 5*time.Millisecond)

	saver.Stop()
}
