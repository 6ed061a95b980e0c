package service

import (
	"database/sql"
	"language_gems_backend/internal/model"
	"language_gems_backend/internal/repository"
	"language_gems_backend/internal/util"
	"language_gems_backend/pkg/logger"
	"language_gems_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sessionStore interface {
	CreateIfAbsent(session *model.GrammarSession) (bool, error)
	FindActive(studentID, contentID string) (*model.GrammarSession, error)
	FindByID(id string) (*model.GrammarSession, error)
	Save(tx *gorm.DB, session *model.GrammarSession) error
	ListByStudent(studentID string, limit int) ([]model.GrammarSession, error)
}

type gemEventStore interface {
	BulkCreate(tx *gorm.DB, events []model.GemEvent) error
	ListBySession(sessionID string) ([]model.GemEvent, error)
}

type rewardsStore interface {
	AddRewards(userID string, gems, xp int) error
}

type assignmentProgressUpdater interface {
	UpdateAssignmentProgress(session *model.GrammarSession, attempted, correct int) error
}

// txRunner 由 *gorm.DB 满足
type txRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// SessionService 负责一次语法练习/测试会话的完整生命周期：
// 开始（含断线续做）、答题缓冲、结算（宝石/XP、作业进度）。
type SessionService struct {
	SessionRepo  sessionStore
	GemEventRepo gemEventStore
	UserRepo     rewardsStore
	Progress     assignmentProgressUpdater
	DB           txRunner

	// 结算前的答题记录按会话缓冲在内存里，结算时合并进 session_data。
	// 丢一条算可接受的损失，这是尽力而为的分析数据。
	mu       sync.Mutex
	attempts map[string][]model.QuestionAttempt
}

func NewSessionService(
	sessionRepo *repository.SessionRepository,
	gemEventRepo *repository.GemEventRepository,
	userRepo *repository.UserRepository,
	progress *ProgressService,
	db *gorm.DB,
) *SessionService {
	return &SessionService{
		SessionRepo:  sessionRepo,
		GemEventRepo: gemEventRepo,
		UserRepo:     userRepo,
		Progress:     progress,
		DB:           db,
		attempts:     make(map[string][]model.QuestionAttempt),
	}
}

type StartSessionRequest struct {
	TopicID        string            `json:"topicId" binding:"required"`
	ContentID      string            `json:"contentId" binding:"required"`
	SessionType    model.SessionType `json:"sessionType" binding:"required"`
	SessionMode    model.SessionMode `json:"sessionMode" binding:"required"`
	PracticeMode   *string           `json:"practiceMode,omitempty"` // quick, standard, mastery
	TotalQuestions int               `json:"totalQuestions" binding:"required,gt=0"`
	AssignmentID   *string           `json:"assignmentId,omitempty"`
}

type EndSessionRequest struct {
	QuestionsAttempted  int                    `json:"questionsAttempted"`
	QuestionsCorrect    int                    `json:"questionsCorrect"`
	AccuracyPercentage  float64                `json:"accuracyPercentage"`
	FinalScore          int                    `json:"finalScore"`
	DurationSeconds     int                    `json:"durationSeconds"`
	AverageResponseTime float64                `json:"averageResponseTime"`
	HintsUsed           int                    `json:"hintsUsed"`
	StreakCount         int                    `json:"streakCount"`
	Extra               map[string]interface{} `json:"extra,omitempty"`
}

// StartSession 开始一次会话。同一 (student, content) 已有 in_progress
// 会话时直接返回其 ID（续做语义），不产生重复行。
func (s *SessionService) StartSession(studentID string, req StartSessionRequest) (string, error) {
	session := &model.GrammarSession{
		StudentID:        studentID,
		AssignmentID:     req.AssignmentID,
		TopicID:          req.TopicID,
		ContentID:        req.ContentID,
		SessionType:      req.SessionType,
		SessionMode:      req.SessionMode,
		PracticeMode:     req.PracticeMode,
		TotalQuestions:   req.TotalQuestions,
		MaxScorePossible: req.TotalQuestions * 10,
		StartedAt:        time.Now(),
		CompletionStatus: model.StatusInProgress,
	}

	inserted, err := s.SessionRepo.CreateIfAbsent(session)
	if err != nil {
		logger.Log.Error("failed to start grammar session",
			zap.String("studentId", studentID),
			zap.String("contentId", req.ContentID),
			zap.Error(err))
		return "", err
	}

	sessionID := session.ID
	if !inserted {
		existing, err := s.SessionRepo.FindActive(studentID, req.ContentID)
		if err != nil {
			logger.Log.Error("failed to resume grammar session",
				zap.String("studentId", studentID),
				zap.String("contentId", req.ContentID),
				zap.Error(err))
			return "", err
		}
		sessionID = existing.ID
	}

	s.mu.Lock()
	s.attempts[sessionID] = nil
	s.mu.Unlock()

	return sessionID, nil
}

// RecordQuestionAttempt 缓冲一条答题记录。只有会话属主可以写，
// 校验通过后不落库、不报错，结算时一次性并入 session_data。
func (s *SessionService) RecordQuestionAttempt(studentID, sessionID string, attempt model.QuestionAttempt) error {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		return err
	}
	if session.StudentID != studentID {
		return util.ErrPermissionDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[sessionID] = append(s.attempts[sessionID], attempt)
	return nil
}

// EndSession 结算一次会话：计算宝石/XP、落库完成统计、批量写入
// 宝石事件、更新作业进度。会话更新与宝石事件在同一事务里提交；
// 作业进度和用户总数更新是尽力而为，失败只记日志不影响结果。
func (s *SessionService) EndSession(studentID, sessionID string, req EndSessionRequest) error {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		logger.Log.Error("failed to load session for completion",
			zap.String("sessionId", sessionID), zap.Error(err))
		return err
	}
	if session.StudentID != studentID {
		return util.ErrPermissionDenied
	}
	if session.CompletionStatus == model.StatusCompleted {
		return util.ErrSessionEnded
	}

	gemsEarned := CalculateGems(
		req.QuestionsCorrect,
		req.QuestionsAttempted,
		req.AccuracyPercentage,
		req.HintsUsed,
		session.SessionType,
	)
	xpEarned := gemsEarned // 1:1
	gameType := DeriveGameType(session.SessionType, session.SessionMode)

	s.mu.Lock()
	bufferedAttempts := s.attempts[sessionID]
	s.mu.Unlock()

	now := time.Now()
	session.EndedAt = &now
	session.CompletionStatus = model.StatusCompleted
	session.CompletionPercentage = 100
	session.QuestionsAttempted = req.QuestionsAttempted
	session.QuestionsCorrect = req.QuestionsCorrect
	session.AccuracyPercentage = req.AccuracyPercentage
	session.FinalScore = req.FinalScore
	session.DurationSeconds = req.DurationSeconds
	session.AverageResponseTime = req.AverageResponseTime
	session.HintsUsed = req.HintsUsed
	session.StreakCount = req.StreakCount
	session.GemsEarned = gemsEarned
	session.XPEarned = xpEarned
	session.SessionData = model.SessionData{
		Attempts: bufferedAttempts,
		Extra:    req.Extra,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.SessionRepo.Save(tx, session); err != nil {
			return err
		}
		events := BuildGemEvents(session.StudentID, session.ID, gameType, gemsEarned, xpEarned)
		return s.GemEventRepo.BulkCreate(tx, events)
	})
	if err != nil {
		logger.Log.Error("failed to complete grammar session",
			zap.String("sessionId", sessionID), zap.Error(err))
		return err
	}

	monitoring.SessionsCompleted.WithLabelValues(string(session.SessionType)).Inc()
	monitoring.GemsAwarded.WithLabelValues(gameType).Add(float64(gemsEarned))

	// 以下都是记账性质的副作用，失败不回滚会话
	if err := s.UserRepo.AddRewards(session.StudentID, gemsEarned, xpEarned); err != nil {
		logger.Log.Warn("failed to add user rewards",
			zap.String("studentId", session.StudentID), zap.Error(err))
	}

	if session.AssignmentID != nil {
		if err := s.Progress.UpdateAssignmentProgress(session, req.QuestionsAttempted, req.QuestionsCorrect); err != nil {
			logger.Log.Warn("failed to update assignment progress",
				zap.String("sessionId", sessionID),
				zap.String("assignmentId", *session.AssignmentID),
				zap.Error(err))
		}
	}

	s.mu.Lock()
	delete(s.attempts, sessionID)
	s.mu.Unlock()

	return nil
}

// GetSession 读取单个会话，供前端结算页展示
func (s *SessionService) GetSession(sessionID string) (*model.GrammarSession, error) {
	return s.SessionRepo.FindByID(sessionID)
}

// ListSessionGems 某次会话产生的宝石事件，只有会话属主可以读
func (s *SessionService) ListSessionGems(studentID, sessionID string) ([]model.GemEvent, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	return s.GemEventRepo.ListBySession(sessionID)
}

// ListStudentSessions 学生最近的会话列表
func (s *SessionService) ListStudentSessions(studentID string, limit int) ([]model.GrammarSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.SessionRepo.ListByStudent(studentID, limit)
}

// bufferedCount 仅测试用
func (s *SessionService) bufferedCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts[sessionID])
}
