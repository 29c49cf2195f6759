package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleBank = `Id,Question,OptionA,OptionB,OptionC,OptionD,Answer
1,What does CPU stand for?,Central Processing Unit,Computer Personal Unit,Central Process Utility,Core Processing Unit,A
2,Which data structure uses FIFO order?,Stack,Queue,Tree,Graph,B
`

func TestParseQuestionCSV(t *testing.T) {
	questions, err := ParseQuestionCSV(strings.NewReader(sampleBank))
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, "1", questions[0].ID)
	require.Equal(t, "What does CPU stand for?", questions[0].Question)
	require.Equal(t, "A", questions[0].Answer)
	require.Equal(t, "Queue", questions[1].OptionB)
}

func TestParseQuestionCSVSkipsMalformedRows(t *testing.T) {
	bank := `Id,Question,OptionA,OptionB,OptionC,OptionD,Answer
1,Valid question?,a,b,c,d,A
2,too,few,fields
,Missing id,a,b,c,d,B
3,Missing answer,a,b,c,d,
4, Trimmed question? ,a,b,c,d, D
`
	questions, err := ParseQuestionCSV(strings.NewReader(bank))
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, "1", questions[0].ID)
	require.Equal(t, "4", questions[1].ID)
	require.Equal(t, "Trimmed question?", questions[1].Question)
	require.Equal(t, "D", questions[1].Answer)
}

func TestQuestionRepositoryLookup(t *testing.T) {
	questions, err := ParseQuestionCSV(strings.NewReader(sampleBank))
	require.NoError(t, err)

	repo := NewQuestionRepository(questions)
	require.Equal(t, 2, repo.Count())
	require.Len(t, repo.List(), 2)

	answer, ok := repo.Answer("2")
	require.True(t, ok)
	require.Equal(t, "B", answer)

	_, ok = repo.Answer("99")
	require.False(t, ok)
}
