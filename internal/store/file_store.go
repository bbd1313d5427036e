package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"testlab_backend/internal/model"
)

const (
	submissionsFile = "submissions.json"
	chatsFile       = "chats.json"
)

// FileStore JSON 文件快照存储 与旧部署的数据文件格式互通
type FileStore struct {
	dataDir string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dataDir: dataDir}, nil
}

func (f *FileStore) Load() (map[string][]model.Submission, map[string][]model.ChatMessage, error) {
	submissions := make(map[string][]model.Submission)
	chats := make(map[string][]model.ChatMessage)

	// 文件不存在视为空快照，不是错误
	if err := readJSON(filepath.Join(f.dataDir, submissionsFile), &submissions); err != nil {
		return nil, nil, err
	}
	if err := readJSON(filepath.Join(f.dataDir, chatsFile), &chats); err != nil {
		return nil, nil, err
	}

	return submissions, chats, nil
}

func (f *FileStore) Save(submissions map[string][]model.Submission, chats map[string][]model.ChatMessage) error {
	if err := writeJSON(filepath.Join(f.dataDir, submissionsFile), submissions); err != nil {
		return err
	}
	return writeJSON(filepath.Join(f.dataDir, chatsFile), chats)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON 先写临时文件再原子替换，避免保存中途崩溃留下半个快照
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
