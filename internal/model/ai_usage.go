package model

import (
	"time"
)

// HintExchange 一次成功的提示交互，留作审计
type HintExchange struct {
	Query string `json:"query"`
	Hint  string `json:"hint"`
}

// QuestionUsage 单道题的提示余额与历史。
// 不变量：len(History) == 初始额度 - PromptsLeft
type QuestionUsage struct {
	PromptsLeft int            `json:"promptsLeft"`
	History     []HintExchange `json:"history"`
}

// AIUsageRecord 每个学生一条，记录AI求助配额的消耗情况。
// 不变量：QuestionsUsed == len(Questions)，且 QuestionsUsed 只增不减——
// 某道题提示用尽不会释放题目名额。
type AIUsageRecord struct {
	ID            uint                      `gorm:"primaryKey;autoIncrement" json:"-"`
	Username      string                    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	QuestionsUsed int                       `gorm:"not null;default:0" json:"questionsUsed"`
	Questions     map[string]*QuestionUsage `gorm:"type:json;serializer:json" json:"questions"`
	CreatedAt     time.Time                 `json:"-"`
	UpdatedAt     time.Time                 `json:"-"`
}

func (AIUsageRecord) TableName() string {
	return "ai_usage_records"
}

// QuestionUsageInfo UI轮询用的单题视图
type QuestionUsageInfo struct {
	ID        string `json:"id"`
	HintsLeft int    `json:"hintsLeft"`
}

// UsageSnapshot GetUsage 返回的只读快照；未知用户返回零值而非报错
type UsageSnapshot struct {
	QuestionsUsed int                 `json:"questionsUsed"`
	Questions     []QuestionUsageInfo `json:"questions"`
}
