package repository

import (
	"errors"
	"testing"

	"quiz_admin_backend/internal/util"

	"github.com/stretchr/testify/require"
)

func TestSubmitOnce(t *testing.T) {
	repo := NewScoreRepository(newTestDB(t))
	require.NoError(t, repo.EnsureRecord("alice"))

	first := map[string]string{"1": "A", "2": "B"}
	require.NoError(t, repo.SubmitOnce("alice", first, 2))

	record, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	require.True(t, record.Submitted)
	require.Equal(t, 2, record.Score)
	require.Equal(t, first, record.Answers)
	require.False(t, record.SubmittedAt.IsZero())

	// 重复提交被条件更新挡下，首次结果不变
	err = repo.SubmitOnce("alice", map[string]string{"1": "D"}, 0)
	require.True(t, errors.Is(err, util.ErrAlreadySubmitted))

	reloaded, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Score)
	require.Equal(t, first, reloaded.Answers)
}

func TestSubmitOnceZeroScore(t *testing.T) {
	repo := NewScoreRepository(newTestDB(t))
	require.NoError(t, repo.EnsureRecord("bob"))

	// 零分也要完成提交状态翻转
	require.NoError(t, repo.SubmitOnce("bob", map[string]string{"1": "Not Answered"}, 0))

	record, err := repo.FindByUsername("bob")
	require.NoError(t, err)
	require.True(t, record.Submitted)
	require.Equal(t, 0, record.Score)
}

func TestEnsureScoreRecordIdempotent(t *testing.T) {
	repo := NewScoreRepository(newTestDB(t))
	require.NoError(t, repo.EnsureRecord("alice"))
	require.NoError(t, repo.SubmitOnce("alice", map[string]string{"1": "A"}, 1))

	require.NoError(t, repo.EnsureRecord("alice"))

	record, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	require.True(t, record.Submitted)
	require.Equal(t, 1, record.Score)
}
