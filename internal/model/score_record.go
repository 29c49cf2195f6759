package model

import (
	"time"
)

// ScoreRecord 每个学生一条，一次性提交后即不可变
type ScoreRecord struct {
	ID          uint              `gorm:"primaryKey;autoIncrement" json:"-"`
	Username    string            `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Submitted   bool              `gorm:"not null;default:false" json:"submitted"`
	Answers     map[string]string `gorm:"type:json;serializer:json" json:"answers"`
	Score       int               `gorm:"not null;default:0" json:"score"`
	SubmittedAt time.Time         `json:"submittedAt"`
	CreatedAt   time.Time         `json:"-"`
	UpdatedAt   time.Time         `json:"-"`
}

func (ScoreRecord) TableName() string {
	return "score_records"
}
