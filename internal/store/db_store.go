package store

import (
	"encoding/json"

	"testlab_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionSnapshot 每个学生一行，Payload 为该学生提交列表的 JSON
type SubmissionSnapshot struct {
	StudentID string `gorm:"primaryKey;size:32"`
	Payload   string `gorm:"type:longtext"`
}

func (SubmissionSnapshot) TableName() string {
	return "submission_snapshots"
}

// ChatSnapshot 每个学生一行，Payload 为该学生聊天记录的 JSON
type ChatSnapshot struct {
	StudentID string `gorm:"primaryKey;size:32"`
	Payload   string `gorm:"type:longtext"`
}

func (ChatSnapshot) TableName() string {
	return "chat_snapshots"
}

// DBStore MySQL 快照存储 store.type = mysql 时启用
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&SubmissionSnapshot{}, &ChatSnapshot{}); err != nil {
		return nil, err
	}
	return &DBStore{db: db}, nil
}

func (d *DBStore) Load() (map[string][]model.Submission, map[string][]model.ChatMessage, error) {
	submissions := make(map[string][]model.Submission)
	chats := make(map[string][]model.ChatMessage)

	var subRows []SubmissionSnapshot
	if err := d.db.Find(&subRows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range subRows {
		var subs []model.Submission
		if err := json.Unmarshal([]byte(row.Payload), &subs); err != nil {
			return nil, nil, err
		}
		submissions[row.StudentID] = subs
	}

	var chatRows []ChatSnapshot
	if err := d.db.Find(&chatRows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range chatRows {
		var msgs []model.ChatMessage
		if err := json.Unmarshal([]byte(row.Payload), &msgs); err != nil {
			return nil, nil, err
		}
		chats[row.StudentID] = msgs
	}

	return submissions, chats, nil
}

func (d *DBStore) Save(submissions map[string][]model.Submission, chats map[string][]model.ChatMessage) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		for studentID, subs := range submissions {
			payload, err := json.Marshal(subs)
			if err != nil {
				return err
			}
			row := SubmissionSnapshot{StudentID: studentID, Payload: string(payload)}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		for studentID, msgs := range chats {
			payload, err := json.Marshal(msgs)
			if err != nil {
				return err
			}
			row := ChatSnapshot{StudentID: studentID, Payload: string(payload)}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
