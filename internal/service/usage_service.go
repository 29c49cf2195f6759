package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"quiz_admin_backend/internal/model"
	"quiz_admin_backend/internal/repository"
	"quiz_admin_backend/internal/util"
	"quiz_admin_backend/pkg/logger"
	"quiz_admin_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const usageSnapshotTTL = 30 * time.Second

// usageState 单个学生的台账内存态。record 为权威数据，延迟从库加载；
// pending 记录每道题尚未落定的预扣次数，用于失败回滚时判断条目能否撤销。
type usageState struct {
	mu      sync.Mutex
	record  *model.AIUsageRecord
	pending map[string]int
}

// AIUsageService AI求助配额台账。
// 配额是两道独立的乘法上限：最多 maxQuestions 道题、每题 maxPrompts 次提示；
// 某道题提示用尽不释放题目名额。
//
// 并发协议：校验与预扣在用户锁内完成，调用提示服务在锁外进行，
// 结果回来后再加锁提交或回滚——提供方失败绝不消耗配额。
type AIUsageService struct {
	usageRepo *repository.AIUsageRepository
	questions *repository.QuestionRepository
	provider  HintProvider
	rdb       *redis.Client

	maxQuestions int
	maxPrompts   int

	mu     sync.Mutex
	states map[string]*usageState
}

func NewAIUsageService(
	usageRepo *repository.AIUsageRepository,
	questions *repository.QuestionRepository,
	provider HintProvider,
	rdb *redis.Client,
	maxQuestions, maxPrompts int,
) *AIUsageService {
	return &AIUsageService{
		usageRepo:    usageRepo,
		questions:    questions,
		provider:     provider,
		rdb:          rdb,
		maxQuestions: maxQuestions,
		maxPrompts:   maxPrompts,
		states:       make(map[string]*usageState),
	}
}

func (s *AIUsageService) state(username string) *usageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[username]
	if !ok {
		st = &usageState{pending: make(map[string]int)}
		s.states[username] = st
	}
	return st
}

// loadLocked 延迟加载库中台账，调用方必须已持有 st.mu
func (s *AIUsageService) loadLocked(st *usageState, username string) error {
	if st.record != nil {
		return nil
	}
	record, err := s.usageRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrStudentNotFound
		}
		return err
	}
	if record.Questions == nil {
		record.Questions = map[string]*model.QuestionUsage{}
	}
	st.record = record
	return nil
}

// RequestHint 为(username, questionID)请求一条AI提示。
// 错误语义：ErrStudentNotFound 未登录过；ErrQuotaExceeded 已求助满3道题；
// ErrPromptsExhausted 该题提示用尽；ErrProviderUnavailable 提供方失败（不扣配额）。
func (s *AIUsageService) RequestHint(ctx context.Context, username, questionID, userQuery string) (string, error) {
	question, ok := s.lookupQuestion(questionID)
	if !ok {
		return "", util.ErrQuestionNotFound
	}

	st := s.state(username)

	// 阶段一：锁内校验并预扣
	st.mu.Lock()
	if err := s.loadLocked(st, username); err != nil {
		st.mu.Unlock()
		return "", err
	}
	record := st.record
	usage, tracked := record.Questions[questionID]
	if !tracked {
		if record.QuestionsUsed >= s.maxQuestions {
			st.mu.Unlock()
			monitoring.QuotaRejections.WithLabelValues("quota_exceeded").Inc()
			return "", util.ErrQuotaExceeded
		}
		usage = &model.QuestionUsage{
			PromptsLeft: s.maxPrompts,
			History:     []model.HintExchange{},
		}
		record.Questions[questionID] = usage
		record.QuestionsUsed++
	}
	if usage.PromptsLeft == 0 {
		st.mu.Unlock()
		monitoring.QuotaRejections.WithLabelValues("prompts_exhausted").Inc()
		return "", util.ErrPromptsExhausted
	}
	usage.PromptsLeft--
	st.pending[questionID]++
	st.mu.Unlock()

	// 阶段二：锁外调用提示服务，慢调用不得阻塞同学生的其他请求校验
	hint, providerErr := s.provider.Hint(ctx, question, userQuery)

	// 阶段三：锁内提交或回滚
	st.mu.Lock()
	defer st.mu.Unlock()
	st.pending[questionID]--

	if providerErr != nil {
		s.releaseLocked(st, questionID)
		monitoring.ProviderFailures.Inc()
		logger.Log.Warn("hint provider call failed",
			zap.String("username", username),
			zap.String("question", questionID),
			zap.Error(providerErr))
		return "", util.ErrProviderUnavailable
	}

	usage.History = append(usage.History, model.HintExchange{Query: userQuery, Hint: hint})
	if err := s.usageRepo.Save(record); err != nil {
		// 先落库再确认：写库失败则整体回滚，内存态与库保持一致
		usage.History = usage.History[:len(usage.History)-1]
		s.releaseLocked(st, questionID)
		return "", err
	}

	s.invalidateSnapshot(ctx, username)
	monitoring.HintsGranted.Inc()
	return hint, nil
}

// releaseLocked 归还一次预扣。若条目回到原始状态（满额度、无历史、无在途预扣），
// 说明它从未产生过成功提示，连同题目名额一并撤销。
func (s *AIUsageService) releaseLocked(st *usageState, questionID string) {
	usage, ok := st.record.Questions[questionID]
	if !ok {
		return
	}
	usage.PromptsLeft++
	if st.pending[questionID] == 0 && usage.PromptsLeft == s.maxPrompts && len(usage.History) == 0 {
		delete(st.record.Questions, questionID)
		delete(st.pending, questionID)
		st.record.QuestionsUsed--
	}
}

func (s *AIUsageService) lookupQuestion(questionID string) (model.Question, bool) {
	for _, q := range s.questions.List() {
		if q.ID == questionID {
			return q, true
		}
	}
	return model.Question{}, false
}

// GetUsage 只读快照，供前端轮询。未知用户返回零值而非报错。
func (s *AIUsageService) GetUsage(ctx context.Context, username string) (model.UsageSnapshot, error) {
	if snapshot, ok := s.cachedSnapshot(ctx, username); ok {
		return snapshot, nil
	}

	st := s.state(username)
	st.mu.Lock()
	if err := s.loadLocked(st, username); err != nil {
		st.mu.Unlock()
		if errors.Is(err, util.ErrStudentNotFound) {
			return model.UsageSnapshot{Questions: []model.QuestionUsageInfo{}}, nil
		}
		return model.UsageSnapshot{}, err
	}
	snapshot := model.UsageSnapshot{
		QuestionsUsed: st.record.QuestionsUsed,
		Questions:     make([]model.QuestionUsageInfo, 0, len(st.record.Questions)),
	}
	for id, usage := range st.record.Questions {
		snapshot.Questions = append(snapshot.Questions, model.QuestionUsageInfo{
			ID:        id,
			HintsLeft: usage.PromptsLeft,
		})
	}
	st.mu.Unlock()

	sort.Slice(snapshot.Questions, func(i, j int) bool {
		return snapshot.Questions[i].ID < snapshot.Questions[j].ID
	})

	s.cacheSnapshot(ctx, username, snapshot)
	return snapshot, nil
}

func usageSnapshotKey(username string) string {
	return "ai_usage:" + username
}

func (s *AIUsageService) cachedSnapshot(ctx context.Context, username string) (model.UsageSnapshot, bool) {
	if s.rdb == nil {
		return model.UsageSnapshot{}, false
	}
	data, err := s.rdb.Get(ctx, usageSnapshotKey(username)).Bytes()
	if err != nil {
		return model.UsageSnapshot{}, false
	}
	var snapshot model.UsageSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.UsageSnapshot{}, false
	}
	return snapshot, true
}

func (s *AIUsageService) cacheSnapshot(ctx context.Context, username string, snapshot model.UsageSnapshot) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, usageSnapshotKey(username), data, usageSnapshotTTL).Err(); err != nil {
		logger.Log.Warn("failed to cache usage snapshot", zap.Error(err))
	}
}

func (s *AIUsageService) invalidateSnapshot(ctx context.Context, username string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, usageSnapshotKey(username)).Err(); err != nil {
		logger.Log.Warn("failed to invalidate usage snapshot", zap.Error(err))
	}
}
