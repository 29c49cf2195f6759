package repository

import (
	"encoding/csv"
	"io"
	"strings"

	"quiz_admin_backend/internal/model"
	"quiz_admin_backend/pkg/logger"

	"go.uber.org/zap"
)

// QuestionRepository 题库目录，启动时加载一次，此后只读，无需加锁
type QuestionRepository struct {
	questions []model.Question
	answers   map[string]string
}

func NewQuestionRepository(questions []model.Question) *QuestionRepository {
	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[q.ID] = q.Answer
	}
	return &QuestionRepository{
		questions: questions,
		answers:   answers,
	}
}

// List 按加载顺序返回全部题目
func (r *QuestionRepository) List() []model.Question {
	return r.questions
}

func (r *QuestionRepository) Answer(questionID string) (string, bool) {
	answer, ok := r.answers[questionID]
	return answer, ok
}

func (r *QuestionRepository) Count() int {
	return len(r.questions)
}

// ParseQuestionCSV 解析题库CSV：Id,Question,OptionA,OptionB,OptionC,OptionD,Answer。
// 首行为表头，字段不全的行跳过并告警。
func ParseQuestionCSV(reader io.Reader) ([]model.Question, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var questions []model.Question
	for i, row := range rows {
		if i == 0 {
			continue // 表头
		}
		if len(row) < 7 {
			logger.Log.Warn("skipping malformed question row", zap.Int("line", i+1))
			continue
		}
		q := model.Question{
			ID:       strings.TrimSpace(row[0]),
			Question: strings.TrimSpace(row[1]),
			OptionA:  strings.TrimSpace(row[2]),
			OptionB:  strings.TrimSpace(row[3]),
			OptionC:  strings.TrimSpace(row[4]),
			OptionD:  strings.TrimSpace(row[5]),
			Answer:   strings.TrimSpace(row[6]),
		}
		if q.ID == "" || q.Question == "" || q.Answer == "" {
			logger.Log.Warn("skipping incomplete question row", zap.Int("line", i+1))
			continue
		}
		questions = append(questions, q)
	}

	return questions, nil
}
