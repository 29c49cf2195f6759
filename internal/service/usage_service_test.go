package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quiz_admin_backend/internal/model"
	"quiz_admin_backend/internal/util"

	"github.com/stretchr/testify/require"
)

func TestRequestHintGrantsAndPersists(t *testing.T) {
	f := newUsageFixture(t)
	ctx := context.Background()

	hint, err := f.service.RequestHint(ctx, "alice", "1", "how do I start?")
	require.NoError(t, err)
	require.Equal(t, "think about it", hint)

	snapshot, err := f.service.GetUsage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.QuestionsUsed)
	require.Len(t, snapshot.Questions, 1)
	require.Equal(t, "1", snapshot.Questions[0].ID)
	require.Equal(t, 2, snapshot.Questions[0].HintsLeft)

	// 落库确认：重启后配额不回滚
	record, err := f.usageRepo.FindByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, 1, record.QuestionsUsed)
	require.Equal(t, 2, record.Questions["1"].PromptsLeft)
	require.Len(t, record.Questions["1"].History, 1)
	require.Equal(t, "how do I start?", record.Questions["1"].History[0].Query)
}

func TestQuestionQuotaCap(t *testing.T) {
	f := newUsageFixture(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		_, err := f.service.RequestHint(ctx, "alice", id, "hint please")
		require.NoError(t, err)
	}

	// 第4道不同题目触顶
	_, err := f.service.RequestHint(ctx, "alice", "4", "hint please")
	require.True(t, errors.Is(err, util.ErrQuotaExceeded))

	// 触顶后已占名额的题仍可继续求助
	_, err = f.service.RequestHint(ctx, "alice", "1", "more please")
	require.NoError(t, err)

	snapshot, err := f.service.GetUsage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 3, snapshot.QuestionsUsed)
}

func TestPromptExhaustionDoesNotFreeSlot(t *testing.T) {
	f := newUsageFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.service.RequestHint(ctx, "alice", "1", "again")
		require.NoError(t, err)
	}

	_, err := f.service.RequestHint(ctx, "alice", "1", "again")
	require.True(t, errors.Is(err, util.ErrPromptsExhausted))

	// 用尽的题不释放题目名额：还能求助两道新题，第三道新题触顶
	_, err = f.service.RequestHint(ctx, "alice", "2", "hint")
	require.NoError(t, err)
	_, err = f.service.RequestHint(ctx, "alice", "3", "hint")
	require.NoError(t, err)
	_, err = f.service.RequestHint(ctx, "alice", "4", "hint")
	require.True(t, errors.Is(err, util.ErrQuotaExceeded))

	snapshot, err := f.service.GetUsage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 3, snapshot.QuestionsUsed)
	require.Equal(t, 0, snapshot.Questions[0].HintsLeft)
}

func TestProviderFailureConsumesNoQuota(t *testing.T) {
	f := newUsageFixture(t)
	ctx := context.Background()

	f.provider.err = errors.New("upstream 503")
	_, err := f.service.RequestHint(ctx, "alice", "1", "hint")
	require.True(t, errors.Is(err, util.ErrProviderUnavailable))

	// 全新题目上的失败不留任何痕迹
	snapshot, err := f.service.GetUsage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.QuestionsUsed)
	require.Empty(t, snapshot.Questions)

	record, err := f.usageRepo.FindByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, 0, record.QuestionsUsed)
	require.Empty(t, record.Questions)

	// 恢复后额度完整可用
	f.provider.err = nil
	hint, err := f.service.RequestHint(ctx, "alice", "1", "hint")
	require.NoError(t, err)
	require.Equal(t, "think about it", hint)

	// 已占名额题目上的失败只归还提示次数
	f.provider.err = errors.New("upstream 503")
	_, err = f.service.RequestHint(ctx, "alice", "1", "hint")
	require.True(t, errors.Is(err, util.ErrProviderUnavailable))

	snapshot, err = f.service.GetUsage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.QuestionsUsed)
	require.Equal(t, 2, snapshot.Questions[0].HintsLeft)
}

func TestRequestHintUnknownStudent(t *testing.T) {
	f := newUsageFixture(t)

	_, err := f.service.RequestHint(context.Background(), "ghost", "1", "hint")
	require.True(t, errors.Is(err, util.ErrStudentNotFound))
	require.Equal(t, 0, f.provider.callCount())
}

func TestRequestHintUnknownQuestion(t *testing.T) {
	f := newUsageFixture(t)

	_, err := f.service.RequestHint(context.Background(), "alice", "99", "hint")
	require.True(t, errors.Is(err, util.ErrQuestionNotFound))
	require.Equal(t, 0, f.provider.callCount())
}

func TestGetUsageUnknownStudentZeroValue(t *testing.T) {
	f := newUsageFixture(t)

	snapshot, err := f.service.GetUsage(context.Background(), "ghost")
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.QuestionsUsed)
	require.NotNil(t, snapshot.Questions)
	require.Empty(t, snapshot.Questions)
}

func TestGetUsageSortedByQuestionID(t *testing.T) {
	f := newUsageFixture(t)
	ctx := context.Background()

	_, err := f.service.RequestHint(ctx, "alice", "3", "hint")
	require.NoError(t, err)
	_, err = f.service.RequestHint(ctx, "alice", "1", "hint")
	require.NoError(t, err)

	snapshot, err := f.service.GetUsage(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, snapshot.Questions, 2)
	require.Equal(t, "1", snapshot.Questions[0].ID)
	require.Equal(t, "3", snapshot.Questions[1].ID)
}

func TestConcurrentLastPrompt(t *testing.T) {
	f := newUsageFixture(t)
	ctx := context.Background()

	// 先消耗到只剩最后一次提示
	for i := 0; i < 2; i++ {
		_, err := f.service.RequestHint(ctx, "alice", "1", "hint")
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.RequestHint(ctx, "alice", "1", "last one")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// 预扣机制保证最后一次提示恰好发出一条
	var granted, exhausted int
	for err := range results {
		switch {
		case err == nil:
			granted++
		case errors.Is(err, util.ErrPromptsExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, granted)
	require.Equal(t, 1, exhausted)

	record, err := f.usageRepo.FindByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, 0, record.Questions["1"].PromptsLeft)
	require.Len(t, record.Questions["1"].History, 3)
}

// barrierProvider 等两个请求都预扣完成后再一起失败，
// 用于验证并发回滚不会泄漏题目名额
type barrierProvider struct {
	arrived chan struct{}
	release chan struct{}
}

func (p *barrierProvider) Hint(_ context.Context, _ model.Question, _ string) (string, error) {
	p.arrived <- struct{}{}
	<-p.release
	return "", errors.New("upstream down")
}

func TestConcurrentFailureRollsBackSlot(t *testing.T) {
	f := newUsageFixture(t)
	ctx := context.Background()

	provider := &barrierProvider{
		arrived: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	f.service.provider = provider

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.RequestHint(ctx, "alice", "1", "hint")
			errs <- err
		}()
	}

	<-provider.arrived
	<-provider.arrived
	close(provider.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.True(t, errors.Is(err, util.ErrProviderUnavailable))
	}

	snapshot, err := f.service.GetUsage(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.QuestionsUsed)
	require.Empty(t, snapshot.Questions)
}
