package service

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"quiz_admin_backend/internal/model"
	"quiz_admin_backend/internal/repository"
	"quiz_admin_backend/internal/util"
)

// ReportService 导出全量成绩报表：每个登录过的学生 × 每道题一行
type ReportService struct {
	questions  *repository.QuestionRepository
	scoreRepo  *repository.ScoreRepository
	usageRepo  *repository.AIUsageRepository
	maxPrompts int
}

func NewReportService(
	questions *repository.QuestionRepository,
	scoreRepo *repository.ScoreRepository,
	usageRepo *repository.AIUsageRepository,
	maxPrompts int,
) *ReportService {
	return &ReportService{
		questions:  questions,
		scoreRepo:  scoreRepo,
		usageRepo:  usageRepo,
		maxPrompts: maxPrompts,
	}
}

// WriteCSV 生成报表。AI提示用量按题目ID关联，未提交的学生答案全部记为 Not Answered。
func (s *ReportService) WriteCSV(w io.Writer) error {
	scores, err := s.scoreRepo.FindAll()
	if err != nil {
		return err
	}
	usages, err := s.usageRepo.FindAll()
	if err != nil {
		return err
	}

	usageByUser := make(map[string]model.AIUsageRecord, len(usages))
	for _, u := range usages {
		usageByUser[u.Username] = u
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].Username < scores[j].Username
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Username", "Question", "CorrectAnswer", "UserAnswer", "Result", "AI_Hints_Used"}); err != nil {
		return err
	}

	for _, record := range scores {
		usage := usageByUser[record.Username]
		for _, q := range s.questions.List() {
			userAnswer, ok := record.Answers[q.ID]
			if !ok || userAnswer == "" {
				userAnswer = util.NotAnswered
			}

			result := "Wrong"
			if userAnswer == q.Answer {
				result = "Correct"
			}

			hintsUsed := 0
			if qu, ok := usage.Questions[q.ID]; ok {
				hintsUsed = s.maxPrompts - qu.PromptsLeft
			}

			if err := cw.Write([]string{
				record.Username,
				q.Question,
				q.Answer,
				userAnswer,
				result,
				strconv.Itoa(hintsUsed),
			}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
