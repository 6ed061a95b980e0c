package repository

import (
	"language_gems_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// CreateIfAbsent 依赖 grammar_sessions 上的部分唯一索引：
// 同一 (student, content) 已有 in_progress 会话时插入静默失败，
// 返回 false，调用方随后用 FindActive 取回已有会话。
func (r *SessionRepository) CreateIfAbsent(session *model.GrammarSession) (bool, error) {
	result := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"},
			{Name: "content_id"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("completion_status = 'in_progress' AND deleted_at IS NULL"),
		}},
		DoNothing: true,
	}).Create(session)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SessionRepository) FindActive(studentID, contentID string) (*model.GrammarSession, error) {
	var session model.GrammarSession
	err := r.DB.Where("student_id = ? AND content_id = ? AND completion_status = ?",
		studentID, contentID, model.StatusInProgress).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) FindByID(id string) (*model.GrammarSession, error) {
	var session model.GrammarSession
	if err := r.DB.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Save 持久化会话的全部字段。tx 由调用方提供，
// 结算时和宝石事件写入共用一个事务。
func (r *SessionRepository) Save(tx *gorm.DB, session *model.GrammarSession) error {
	return tx.Save(session).Error
}

func (r *SessionRepository) ListByStudent(studentID string, limit int) ([]model.GrammarSession, error) {
	var sessions []model.GrammarSession
	err := r.DB.Where("student_id = ?", studentID).
		Order("started_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

// CompletedTopicIDs 返回该学生在该作业下已有完成会话的主题集合
func (r *SessionRepository) CompletedTopicIDs(assignmentID, studentID string) ([]string, error) {
	var topicIDs []string
	err := r.DB.Model(&model.GrammarSession{}).
		Distinct("topic_id").
		Where("assignment_id = ? AND student_id = ? AND completion_status = ?",
			assignmentID, studentID, model.StatusCompleted).
		Pluck("topic_id", &topicIDs).Error
	return topicIDs, err
}

func (r *SessionRepository) CountInProgress() (int64, error) {
	var count int64
	err := r.DB.Model(&model.GrammarSession{}).
		Where("completion_status = ?", model.StatusInProgress).
		Count(&count).Error
	return count, err
}
