package repository

import (
	"time"

	"quiz_admin_backend/internal/model"
	"quiz_admin_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

func (r *ScoreRepository) FindByUsername(username string) (*model.ScoreRecord, error) {
	var record model.ScoreRecord
	err := r.DB.Where("username = ?", username).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// EnsureRecord 创建未提交的零值成绩记录，已存在则不动
func (r *ScoreRepository) EnsureRecord(username string) error {
	record := model.ScoreRecord{
		Username:  username,
		Submitted: false,
		Answers:   map[string]string{},
		Score:     0,
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&record).Error
}

// SubmitOnce 条件更新：仅当 submitted=false 时写入答案与分数。
// 行未命中说明已提交过，返回 ErrAlreadySubmitted，天然防并发重复提交。
func (r *ScoreRepository) SubmitOnce(username string, answers map[string]string, score int) error {
	result := r.DB.Model(&model.ScoreRecord{}).
		Where("username = ? AND submitted = ?", username, false).
		Select("submitted", "answers", "score", "submitted_at").
		Updates(&model.ScoreRecord{
			Submitted:   true,
			Answers:     answers,
			Score:       score,
			SubmittedAt: time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrAlreadySubmitted
	}
	return nil
}

func (r *ScoreRepository) FindAll() ([]model.ScoreRecord, error) {
	var records []model.ScoreRecord
	err := r.DB.Find(&records).Error
	return records, err
}
