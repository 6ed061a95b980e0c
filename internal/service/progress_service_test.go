package service

import (
	"language_gems_backend/internal/config"
	"language_gems_backend/internal/model"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAssignmentStore struct {
	assignment *model.Assignment
}

func (f *fakeAssignmentStore) FindByID(id string) (*model.Assignment, error) {
	if f.assignment == nil || f.assignment.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	found := *f.assignment
	return &found, nil
}

type fakeProgressStore struct {
	row *model.AssignmentProgress
}

func (f *fakeProgressStore) Find(assignmentID, studentID string) (*model.AssignmentProgress, error) {
	if f.row == nil {
		return nil, gorm.ErrRecordNotFound
	}
	found := *f.row
	return &found, nil
}

func (f *fakeProgressStore) FindForUpdate(tx *gorm.DB, assignmentID, studentID string) (*model.AssignmentProgress, error) {
	return f.Find(assignmentID, studentID)
}

func (f *fakeProgressStore) Create(tx *gorm.DB, progress *model.AssignmentProgress) error {
	stored := *progress
	f.row = &stored
	return nil
}

func (f *fakeProgressStore) Save(tx *gorm.DB, progress *model.AssignmentProgress) error {
	stored := *progress
	f.row = &stored
	return nil
}

func (f *fakeProgressStore) ListByAssignment(assignmentID string) ([]model.AssignmentProgress, error) {
	if f.row == nil {
		return nil, nil
	}
	return []model.AssignmentProgress{*f.row}, nil
}

func (f *fakeProgressStore) MarkCompleted(assignmentID, studentID string) error {
	now := time.Now()
	f.row.Status = model.StatusCompleted
	f.row.CompletedAt = &now
	return nil
}

func (f *fakeProgressStore) CompletionPercentage(assignmentID, studentID string) (float64, error) {
	return 0, nil
}

type fakeCompletedTopics struct {
	topics []string
}

func (f *fakeCompletedTopics) CompletedTopicIDs(assignmentID, studentID string) ([]string, error) {
	return f.topics, nil
}

func newTestProgressService(assignment *model.Assignment) (*ProgressService, *fakeProgressStore, *fakeCompletedTopics) {
	progressStore := &fakeProgressStore{}
	completed := &fakeCompletedTopics{}
	svc := &ProgressService{
		AssignmentRepo: &fakeAssignmentStore{assignment: assignment},
		ProgressRepo:   progressStore,
		SessionRepo:    completed,
		// 缓存失效是尽力而为的，测试里指向一个拒绝连接的地址
		Redis: redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}),
		Cfg:   &config.Config{},
		DB:    fakeTxRunner{},
	}
	return svc, progressStore, completed
}

func assignmentSession(assignmentID, topicID string) *model.GrammarSession {
	session := &model.GrammarSession{
		StudentID:    "stu-1",
		AssignmentID: &assignmentID,
		TopicID:      topicID,
		ContentID:    "content-1",
		SessionType:  model.SessionPractice,
		SessionMode:  model.ModeAssignment,
	}
	session.ID = "session-" + topicID
	return session
}

// 必做主题 {A, B}：只完成 A 保持 in_progress，补上 B 后转为 completed
func TestUpdateAssignmentProgressCompletionTransition(t *testing.T) {
	assignment := &model.Assignment{
		TeacherID:        "teacher-1",
		Title:            "Present tense homework",
		RequiredTopicIDs: model.StringList{"topic-a", "topic-b"},
	}
	assignment.ID = "assignment-1"
	svc, store, completed := newTestProgressService(assignment)

	completed.topics = []string{"topic-a"}
	require.NoError(t, svc.UpdateAssignmentProgress(assignmentSession("assignment-1", "topic-a"), 10, 8))

	require.NotNil(t, store.row)
	assert.Equal(t, 1, store.row.SessionsCompleted)
	assert.Equal(t, 10, store.row.TotalQuestions)
	assert.Equal(t, 8, store.row.CorrectAnswers)
	assert.Equal(t, model.StringList{"topic-a"}, store.row.TopicsPracticed)
	assert.Equal(t, model.StatusInProgress, store.row.Status)
	assert.Nil(t, store.row.CompletedAt)

	completed.topics = []string{"topic-a", "topic-b"}
	require.NoError(t, svc.UpdateAssignmentProgress(assignmentSession("assignment-1", "topic-b"), 6, 6))

	assert.Equal(t, 2, store.row.SessionsCompleted)
	assert.Equal(t, 16, store.row.TotalQuestions)
	assert.Equal(t, 14, store.row.CorrectAnswers)
	assert.Equal(t, model.StringList{"topic-a", "topic-b"}, store.row.TopicsPracticed)
	assert.Equal(t, model.StatusCompleted, store.row.Status)
	assert.NotNil(t, store.row.CompletedAt)
}

// 没有会话记录作业 ID 的更新是空操作
func TestUpdateAssignmentProgressIgnoresFreePlay(t *testing.T) {
	svc, store, _ := newTestProgressService(nil)

	session := &model.GrammarSession{StudentID: "stu-1", TopicID: "topic-a"}
	require.NoError(t, svc.UpdateAssignmentProgress(session, 10, 8))
	assert.Nil(t, store.row)
}

// 必做主题列表为空的作业保持 in_progress，不会被自动标完成
func TestUpdateAssignmentProgressEmptyRequiredTopics(t *testing.T) {
	assignment := &model.Assignment{TeacherID: "teacher-1", Title: "Broken"}
	assignment.ID = "assignment-1"
	svc, store, completed := newTestProgressService(assignment)

	completed.topics = []string{"topic-a"}
	require.NoError(t, svc.UpdateAssignmentProgress(assignmentSession("assignment-1", "topic-a"), 5, 5))
	assert.Equal(t, model.StatusInProgress, store.row.Status)
}

func TestUnionTopics(t *testing.T) {
	got := unionTopics(nil, "topic-a")
	assert.Equal(t, model.StringList{"topic-a"}, got)

	got = unionTopics(got, "topic-b")
	assert.Equal(t, model.StringList{"topic-a", "topic-b"}, got)

	// 重复加入不产生重复元素
	got = unionTopics(got, "topic-a")
	assert.Equal(t, model.StringList{"topic-a", "topic-b"}, got)
}

func TestContainsAll(t *testing.T) {
	required := []string{"topic-a", "topic-b"}

	assert.False(t, containsAll(required, nil))
	assert.False(t, containsAll(required, []string{"topic-a"}))
	assert.True(t, containsAll(required, []string{"topic-a", "topic-b"}))
	// 多余的完成主题不影响判断
	assert.True(t, containsAll(required, []string{"topic-c", "topic-b", "topic-a"}))
	// 空需求集恒为真
	assert.True(t, containsAll(nil, []string{"topic-a"}))
}

func TestCompletionCacheKey(t *testing.T) {
	assert.Equal(t, "assignment:completion:a1:s1", completionCacheKey("a1", "s1"))
}
