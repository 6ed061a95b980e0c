package service

import (
	"database/sql"
	"fmt"
	"language_gems_backend/internal/model"
	"language_gems_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.GrammarSession
	nextID   int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.GrammarSession)}
}

func (f *fakeSessionStore) CreateIfAbsent(session *model.GrammarSession) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.sessions {
		if existing.StudentID == session.StudentID &&
			existing.ContentID == session.ContentID &&
			existing.CompletionStatus == model.StatusInProgress {
			return false, nil
		}
	}
	f.nextID++
	session.ID = fmt.Sprintf("session-%d", f.nextID)
	stored := *session
	f.sessions[session.ID] = &stored
	return true, nil
}

func (f *fakeSessionStore) FindActive(studentID, contentID string) (*model.GrammarSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.StudentID == studentID && s.ContentID == contentID &&
			s.CompletionStatus == model.StatusInProgress {
			found := *s
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionStore) FindByID(id string) (*model.GrammarSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *s
	return &found, nil
}

func (f *fakeSessionStore) Save(tx *gorm.DB, session *model.GrammarSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *session
	f.sessions[session.ID] = &stored
	return nil
}

func (f *fakeSessionStore) ListByStudent(studentID string, limit int) ([]model.GrammarSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sessions []model.GrammarSession
	for _, s := range f.sessions {
		if s.StudentID == studentID {
			sessions = append(sessions, *s)
		}
	}
	return sessions, nil
}

type fakeGemEventStore struct {
	mu     sync.Mutex
	events []model.GemEvent
}

func (f *fakeGemEventStore) BulkCreate(tx *gorm.DB, events []model.GemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeGemEventStore) ListBySession(sessionID string) ([]model.GemEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.GemEvent
	for _, e := range f.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeRewardsStore struct {
	gems, xp int
}

func (f *fakeRewardsStore) AddRewards(userID string, gems, xp int) error {
	f.gems += gems
	f.xp += xp
	return nil
}

type fakeProgressUpdater struct {
	calls int
	err   error
}

func (f *fakeProgressUpdater) UpdateAssignmentProgress(session *model.GrammarSession, attempted, correct int) error {
	f.calls++
	return f.err
}

// fakeTxRunner 直接执行回调，事务语义由真实仓储层测试覆盖
type fakeTxRunner struct{}

func (fakeTxRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

func newTestSessionService() (*SessionService, *fakeSessionStore, *fakeGemEventStore, *fakeRewardsStore, *fakeProgressUpdater) {
	sessions := newFakeSessionStore()
	gems := &fakeGemEventStore{}
	rewards := &fakeRewardsStore{}
	progress := &fakeProgressUpdater{}
	svc := &SessionService{
		SessionRepo:  sessions,
		GemEventRepo: gems,
		UserRepo:     rewards,
		Progress:     progress,
		DB:           fakeTxRunner{},
		attempts:     make(map[string][]model.QuestionAttempt),
	}
	return svc, sessions, gems, rewards, progress
}

func startRequest(sessionType model.SessionType, mode model.SessionMode) StartSessionRequest {
	return StartSessionRequest{
		TopicID:        "topic-1",
		ContentID:      "content-1",
		SessionType:    sessionType,
		SessionMode:    mode,
		TotalQuestions: 10,
	}
}

// 同一 (student, content) 重复开始必须返回同一个会话
func TestStartSessionResumesActiveSession(t *testing.T) {
	svc, _, _, _, _ := newTestSessionService()

	first, err := svc.StartSession("stu-1", startRequest(model.SessionPractice, model.ModeFreePlay))
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.StartSession("stu-1", startRequest(model.SessionPractice, model.ModeFreePlay))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// 另一个内容是独立会话
	other := startRequest(model.SessionPractice, model.ModeFreePlay)
	other.ContentID = "content-2"
	third, err := svc.StartSession("stu-1", other)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestEndSessionAwardsGemsAndClearsBuffer(t *testing.T) {
	svc, sessions, gems, rewards, _ := newTestSessionService()

	sessionID, err := svc.StartSession("stu-1", startRequest(model.SessionTest, model.ModeFreePlay))
	require.NoError(t, err)

	require.NoError(t, svc.RecordQuestionAttempt("stu-1", sessionID, model.QuestionAttempt{
		StudentAnswer: "hablo", Correct: true,
	}))

	err = svc.EndSession("stu-1", sessionID, EndSessionRequest{
		QuestionsAttempted: 10,
		QuestionsCorrect:   10,
		AccuracyPercentage: 100,
	})
	require.NoError(t, err)

	session, err := sessions.FindByID(sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, session.CompletionStatus)
	assert.Equal(t, 70, session.GemsEarned)
	assert.Equal(t, 70, session.XPEarned)
	assert.Len(t, session.SessionData.Attempts, 1)

	// 每颗宝石一行事件，XP 均摊
	events, err := gems.ListBySession(sessionID)
	require.NoError(t, err)
	require.Len(t, events, 70)
	for _, e := range events {
		assert.Equal(t, "stu-1", e.StudentID)
		assert.Equal(t, "grammar_test", e.GameType)
		assert.Equal(t, 1, e.XPValue)
	}

	assert.Equal(t, 70, rewards.gems)
	assert.Equal(t, 70, rewards.xp)
	assert.Equal(t, 0, svc.bufferedCount(sessionID))

	// 重复结算被拒绝
	err = svc.EndSession("stu-1", sessionID, EndSessionRequest{})
	assert.ErrorIs(t, err, util.ErrSessionEnded)
}

func TestEndSessionUpdatesAssignmentProgressBestEffort(t *testing.T) {
	svc, _, _, _, progress := newTestSessionService()

	assignmentID := "assignment-1"
	req := startRequest(model.SessionPractice, model.ModeAssignment)
	req.AssignmentID = &assignmentID
	sessionID, err := svc.StartSession("stu-1", req)
	require.NoError(t, err)

	// 进度更新失败不影响结算结果
	progress.err = fmt.Errorf("rollup store down")
	require.NoError(t, svc.EndSession("stu-1", sessionID, EndSessionRequest{
		QuestionsAttempted: 5, QuestionsCorrect: 3, AccuracyPercentage: 60,
	}))
	assert.Equal(t, 1, progress.calls)

	// 无作业的会话不触发进度更新
	free, err := svc.StartSession("stu-2", startRequest(model.SessionPractice, model.ModeFreePlay))
	require.NoError(t, err)
	require.NoError(t, svc.EndSession("stu-2", free, EndSessionRequest{}))
	assert.Equal(t, 1, progress.calls)
}

// 只有会话属主可以记录答题、结算和读取宝石明细
func TestSessionOwnershipEnforced(t *testing.T) {
	svc, sessions, gems, rewards, _ := newTestSessionService()

	sessionID, err := svc.StartSession("stu-1", startRequest(model.SessionTest, model.ModeFreePlay))
	require.NoError(t, err)

	err = svc.RecordQuestionAttempt("stu-2", sessionID, model.QuestionAttempt{Correct: true})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	assert.Equal(t, 0, svc.bufferedCount(sessionID))

	err = svc.EndSession("stu-2", sessionID, EndSessionRequest{
		QuestionsAttempted: 10, QuestionsCorrect: 10, AccuracyPercentage: 100,
	})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	session, err := sessions.FindByID(sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, session.CompletionStatus)
	assert.Empty(t, gems.events)
	assert.Zero(t, rewards.gems)

	_, err = svc.ListSessionGems("stu-2", sessionID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// 属主不受影响
	require.NoError(t, svc.EndSession("stu-1", sessionID, EndSessionRequest{
		QuestionsAttempted: 10, QuestionsCorrect: 10, AccuracyPercentage: 100,
	}))
	owned, err := svc.ListSessionGems("stu-1", sessionID)
	require.NoError(t, err)
	assert.Len(t, owned, 70)
}

// 答题缓冲按会话隔离，并发写入不丢记录
func TestRecordQuestionAttemptBufferedPerSession(t *testing.T) {
	svc, _, _, _, _ := newTestSessionService()

	a, err := svc.StartSession("stu-1", startRequest(model.SessionPractice, model.ModeFreePlay))
	require.NoError(t, err)
	other := startRequest(model.SessionPractice, model.ModeFreePlay)
	other.ContentID = "content-2"
	b, err := svc.StartSession("stu-1", other)
	require.NoError(t, err)

	require.NoError(t, svc.RecordQuestionAttempt("stu-1", a, model.QuestionAttempt{StudentAnswer: "hablo", Correct: true}))
	require.NoError(t, svc.RecordQuestionAttempt("stu-1", a, model.QuestionAttempt{StudentAnswer: "hablas", Correct: false}))
	require.NoError(t, svc.RecordQuestionAttempt("stu-1", b, model.QuestionAttempt{StudentAnswer: "comes", Correct: true}))

	assert.Equal(t, 2, svc.bufferedCount(a))
	assert.Equal(t, 1, svc.bufferedCount(b))
}

func TestRecordQuestionAttemptConcurrent(t *testing.T) {
	svc, _, _, _, _ := newTestSessionService()

	sessionID, err := svc.StartSession("stu-1", startRequest(model.SessionPractice, model.ModeFreePlay))
	require.NoError(t, err)

	const writers = 10
	const perWriter = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = svc.RecordQuestionAttempt("stu-1", sessionID, model.QuestionAttempt{Correct: true})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, svc.bufferedCount(sessionID))
}
