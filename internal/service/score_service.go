package service

import (
	"errors"

	"quiz_admin_backend/internal/repository"
	"quiz_admin_backend/internal/util"

	"gorm.io/gorm"
)

// ScoreService 成绩台账：一次性提交、精确判分。
// 并发安全由 SubmitOnce 的条件更新保证，同一学生并发提交只会有一次成功。
type ScoreService struct {
	scoreRepo *repository.ScoreRepository
	questions *repository.QuestionRepository
}

func NewScoreService(scoreRepo *repository.ScoreRepository, questions *repository.QuestionRepository) *ScoreService {
	return &ScoreService{
		scoreRepo: scoreRepo,
		questions: questions,
	}
}

// Submit 按题库逐题取学生答案（缺失记为 Not Answered），精确字符串比对计分，
// 写入后记录即不可变。重复提交返回 ErrAlreadySubmitted，首次结果保持不变。
func (s *ScoreService) Submit(username string, answers map[string]string) (int, error) {
	record, err := s.scoreRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrStudentNotFound
		}
		return 0, err
	}
	if record.Submitted {
		return 0, util.ErrAlreadySubmitted
	}

	score := 0
	final := make(map[string]string, s.questions.Count())
	for _, q := range s.questions.List() {
		answer, ok := answers[q.ID]
		if !ok || answer == "" {
			answer = util.NotAnswered
		}
		final[q.ID] = answer
		if answer == q.Answer {
			score++
		}
	}

	if err := s.scoreRepo.SubmitOnce(username, final, score); err != nil {
		return 0, err
	}
	return score, nil
}

// GetScore 未知用户或未提交返回0
func (s *ScoreService) GetScore(username string) int {
	record, err := s.scoreRepo.FindByUsername(username)
	if err != nil || !record.Submitted {
		return 0
	}
	return record.Score
}
