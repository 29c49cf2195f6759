package repository

import (
	"quiz_admin_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AIUsageRepository struct {
	DB *gorm.DB
}

func NewAIUsageRepository(db *gorm.DB) *AIUsageRepository {
	return &AIUsageRepository{DB: db}
}

func (r *AIUsageRepository) FindByUsername(username string) (*model.AIUsageRecord, error) {
	var record model.AIUsageRecord
	err := r.DB.Where("username = ?", username).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// EnsureRecord 创建零值台账，已存在则不动（重复登录不重置进度）
func (r *AIUsageRepository) EnsureRecord(username string) error {
	record := model.AIUsageRecord{
		Username:      username,
		QuestionsUsed: 0,
		Questions:     map[string]*model.QuestionUsage{},
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&record).Error
}

// Save 整行写回，Questions 字段以JSON序列化落库
func (r *AIUsageRepository) Save(record *model.AIUsageRecord) error {
	return r.DB.Model(&model.AIUsageRecord{}).
		Where("username = ?", record.Username).
		Select("questions_used", "questions").
		Updates(record).Error
}

func (r *AIUsageRepository) FindAll() ([]model.AIUsageRecord, error) {
	var records []model.AIUsageRecord
	err := r.DB.Find(&records).Error
	return records, err
}
