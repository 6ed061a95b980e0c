package service

import (
	"context"
	"errors"
	"fmt"
	"language_gems_backend/internal/config"
	"language_gems_backend/internal/model"
	"language_gems_backend/internal/repository"
	"language_gems_backend/pkg/logger"
	"strconv"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type assignmentStore interface {
	FindByID(id string) (*model.Assignment, error)
}

type progressStore interface {
	Find(assignmentID, studentID string) (*model.AssignmentProgress, error)
	FindForUpdate(tx *gorm.DB, assignmentID, studentID string) (*model.AssignmentProgress, error)
	Create(tx *gorm.DB, progress *model.AssignmentProgress) error
	Save(tx *gorm.DB, progress *model.AssignmentProgress) error
	ListByAssignment(assignmentID string) ([]model.AssignmentProgress, error)
	MarkCompleted(assignmentID, studentID string) error
	CompletionPercentage(assignmentID, studentID string) (float64, error)
}

type completedTopicsStore interface {
	CompletedTopicIDs(assignmentID, studentID string) ([]string, error)
}

// ProgressService 维护 (assignment, student) 维度的进度汇总，
// 并在每次会话结算后检查作业是否全部完成。
type ProgressService struct {
	AssignmentRepo assignmentStore
	ProgressRepo   progressStore
	SessionRepo    completedTopicsStore
	Redis          *redis.Client
	Cfg            *config.Config
	DB             txRunner
}

func NewProgressService(
	assignmentRepo *repository.AssignmentRepository,
	progressRepo *repository.ProgressRepository,
	sessionRepo *repository.SessionRepository,
	rdb *redis.Client,
	cfg *config.Config,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		AssignmentRepo: assignmentRepo,
		ProgressRepo:   progressRepo,
		SessionRepo:    sessionRepo,
		Redis:          rdb,
		Cfg:            cfg,
		DB:             db,
	}
}

// UpdateAssignmentProgress 累加计数器并合并主题集合。
// 读改写放在事务里并对进度行加 FOR UPDATE 锁，并发结算不会丢更新。
func (s *ProgressService) UpdateAssignmentProgress(session *model.GrammarSession, attempted, correct int) error {
	if session.AssignmentID == nil {
		return nil
	}
	assignmentID := *session.AssignmentID
	studentID := session.StudentID

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		progress, err := s.ProgressRepo.FindForUpdate(tx, assignmentID, studentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = &model.AssignmentProgress{
				AssignmentID:    assignmentID,
				StudentID:       studentID,
				TopicsPracticed: model.StringList{},
				Status:          model.StatusInProgress,
			}
			if err := s.ProgressRepo.Create(tx, progress); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		progress.SessionsCompleted++
		progress.TotalQuestions += attempted
		progress.CorrectAnswers += correct
		progress.TopicsPracticed = unionTopics(progress.TopicsPracticed, session.TopicID)

		return s.ProgressRepo.Save(tx, progress)
	})
	if err != nil {
		return err
	}

	s.invalidateCompletionCache(assignmentID, studentID)

	return s.checkAssignmentCompletion(assignmentID, studentID)
}

// checkAssignmentCompletion 所有必做主题都有完成会话时，把进度行标记为已完成
func (s *ProgressService) checkAssignmentCompletion(assignmentID, studentID string) error {
	assignment, err := s.AssignmentRepo.FindByID(assignmentID)
	if err != nil {
		return err
	}
	// 空的必做主题列表视为配置错误的作业，保持 in_progress。
	// 创建接口要求至少一个主题，这里只会因旧数据或手改库命中。
	if len(assignment.RequiredTopicIDs) == 0 {
		return nil
	}

	completed, err := s.SessionRepo.CompletedTopicIDs(assignmentID, studentID)
	if err != nil {
		return err
	}

	if !containsAll(assignment.RequiredTopicIDs, completed) {
		return nil
	}

	if err := s.ProgressRepo.MarkCompleted(assignmentID, studentID); err != nil {
		return err
	}
	s.invalidateCompletionCache(assignmentID, studentID)
	logger.Log.Info("assignment completed",
		zap.String("assignmentId", assignmentID),
		zap.String("studentId", studentID))
	return nil
}

// GetProgress 读取单个学生在某作业下的进度行
func (s *ProgressService) GetProgress(assignmentID, studentID string) (*model.AssignmentProgress, error) {
	return s.ProgressRepo.Find(assignmentID, studentID)
}

// ListAssignmentProgress 教师视角：某作业下全部学生的进度
func (s *ProgressService) ListAssignmentProgress(assignmentID string) ([]model.AssignmentProgress, error) {
	return s.ProgressRepo.ListByAssignment(assignmentID)
}

// GetCompletionPercentage 作业完成度，先查 Redis 缓存，
// 未命中时走数据库函数并回填
func (s *ProgressService) GetCompletionPercentage(assignmentID, studentID string) (float64, error) {
	ctx := context.Background()
	key := completionCacheKey(assignmentID, studentID)

	if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
		if pct, err := strconv.ParseFloat(cached, 64); err == nil {
			return pct, nil
		}
	}

	pct, err := s.ProgressRepo.CompletionPercentage(assignmentID, studentID)
	if err != nil {
		return 0, err
	}

	if err := s.Redis.Set(ctx, key, strconv.FormatFloat(pct, 'f', 2, 64), s.Cfg.Rewards.CompletionCacheTTL).Err(); err != nil {
		logger.Log.Warn("failed to cache completion percentage", zap.Error(err))
	}

	return pct, nil
}

func (s *ProgressService) invalidateCompletionCache(assignmentID, studentID string) {
	if err := s.Redis.Del(context.Background(), completionCacheKey(assignmentID, studentID)).Err(); err != nil {
		logger.Log.Warn("failed to invalidate completion cache", zap.Error(err))
	}
}

func completionCacheKey(assignmentID, studentID string) string {
	return fmt.Sprintf("assignment:completion:%s:%s", assignmentID, studentID)
}

// unionTopics 往主题集合里加一个主题，保持去重
func unionTopics(existing []string, topicID string) model.StringList {
	for _, t := range existing {
		if t == topicID {
			return existing
		}
	}
	return append(model.StringList(existing), topicID)
}

// containsAll required 的每个元素都出现在 completed 里时为真
func containsAll(required, completed []string) bool {
	completedSet := make(map[string]bool, len(completed))
	for _, t := range completed {
		completedSet[t] = true
	}
	for _, t := range required {
		if !completedSet[t] {
			return false
		}
	}
	return true
}
