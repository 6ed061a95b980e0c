package repository

import (
	"language_gems_backend/internal/model"

	"gorm.io/gorm"
)

type GemEventRepository struct {
	DB *gorm.DB
}

func NewGemEventRepository(db *gorm.DB) *GemEventRepository {
	return &GemEventRepository{DB: db}
}

// BulkCreate 批量写入宝石事件。tx 由调用方提供，
// 结算时和会话更新共用一个事务。
func (r *GemEventRepository) BulkCreate(tx *gorm.DB, events []model.GemEvent) error {
	if len(events) == 0 {
		return nil
	}
	return tx.Create(&events).Error
}

func (r *GemEventRepository) ListBySession(sessionID string) ([]model.GemEvent, error) {
	var events []model.GemEvent
	err := r.DB.Where("session_id = ?", sessionID).Find(&events).Error
	return events, err
}
