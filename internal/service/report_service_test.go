package service

import (
	"bytes"
	"encoding/csv"
	"testing"

	"quiz_admin_backend/internal/model"
	"quiz_admin_backend/internal/repository"
	"quiz_admin_backend/internal/util"

	"github.com/stretchr/testify/require"
)

func TestWriteCSVReport(t *testing.T) {
	db := newTestDB(t)
	scoreRepo := repository.NewScoreRepository(db)
	usageRepo := repository.NewAIUsageRepository(db)
	questions := repository.NewQuestionRepository(testQuestions())

	// bob已提交且用过AI，alice登录过但未提交
	require.NoError(t, scoreRepo.EnsureRecord("bob"))
	require.NoError(t, scoreRepo.EnsureRecord("alice"))
	require.NoError(t, usageRepo.EnsureRecord("bob"))
	require.NoError(t, usageRepo.EnsureRecord("alice"))

	require.NoError(t, scoreRepo.SubmitOnce("bob", map[string]string{
		"1": "A", "2": "X", "3": util.NotAnswered, "4": util.NotAnswered, "5": util.NotAnswered,
	}, 1))

	bobUsage, err := usageRepo.FindByUsername("bob")
	require.NoError(t, err)
	bobUsage.QuestionsUsed = 1
	bobUsage.Questions = map[string]*model.QuestionUsage{
		"2": {PromptsLeft: 1, History: []model.HintExchange{{Query: "a", Hint: "h"}, {Query: "b", Hint: "h"}}},
	}
	require.NoError(t, usageRepo.Save(bobUsage))

	svc := NewReportService(questions, scoreRepo, usageRepo, 3)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Equal(t, []string{"Username", "Question", "CorrectAnswer", "UserAnswer", "Result", "AI_Hints_Used"}, rows[0])
	// 2个学生 × 5道题 + 表头
	require.Len(t, rows, 11)

	// 按用户名排序，alice在前且全部 Not Answered
	require.Equal(t, "alice", rows[1][0])
	require.Equal(t, util.NotAnswered, rows[1][3])
	require.Equal(t, "Wrong", rows[1][4])
	require.Equal(t, "0", rows[1][5])

	// bob第1题答对，第2题答错且用了2次提示
	require.Equal(t, "bob", rows[6][0])
	require.Equal(t, "Q1?", rows[6][1])
	require.Equal(t, "A", rows[6][2])
	require.Equal(t, "Correct", rows[6][4])
	require.Equal(t, "0", rows[6][5])

	require.Equal(t, "X", rows[7][3])
	require.Equal(t, "Wrong", rows[7][4])
	require.Equal(t, "2", rows[7][5])
}

func TestWriteCSVEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(
		repository.NewQuestionRepository(testQuestions()),
		repository.NewScoreRepository(db),
		repository.NewAIUsageRepository(db),
		3,
	)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1) // 只有表头
}
