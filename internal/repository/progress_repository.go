package repository

import (
	"language_gems_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(assignmentID, studentID string) (*model.AssignmentProgress, error) {
	var progress model.AssignmentProgress
	err := r.DB.Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// FindForUpdate 在事务内加行锁读取进度行，调用方负责提交
func (r *ProgressRepository) FindForUpdate(tx *gorm.DB, assignmentID, studentID string) (*model.AssignmentProgress, error) {
	var progress model.AssignmentProgress
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Create 在调用方事务内建进度行，首次结算时使用
func (r *ProgressRepository) Create(tx *gorm.DB, progress *model.AssignmentProgress) error {
	return tx.Create(progress).Error
}

// Save 在调用方事务内回写累计字段
func (r *ProgressRepository) Save(tx *gorm.DB, progress *model.AssignmentProgress) error {
	return tx.Save(progress).Error
}

func (r *ProgressRepository) ListByAssignment(assignmentID string) ([]model.AssignmentProgress, error) {
	var progress []model.AssignmentProgress
	err := r.DB.Where("assignment_id = ?", assignmentID).
		Order("updated_at DESC").Find(&progress).Error
	return progress, err
}

func (r *ProgressRepository) MarkCompleted(assignmentID, studentID string) error {
	now := time.Now()
	return r.DB.Model(&model.AssignmentProgress{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Updates(map[string]interface{}{
			"status":       model.StatusCompleted,
			"completed_at": now,
		}).Error
}

// CompletionPercentage 走数据库函数计算作业完成度，只读访问
func (r *ProgressRepository) CompletionPercentage(assignmentID, studentID string) (float64, error) {
	var pct float64
	err := r.DB.Raw("SELECT assignment_completion_percentage(?, ?)", assignmentID, studentID).
		Scan(&pct).Error
	return pct, err
}
