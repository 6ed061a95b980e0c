package repository

import (
	"language_gems_backend/internal/model"

	"gorm.io/gorm"
)

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

func (r *TopicRepository) List(language string) ([]model.GrammarTopic, error) {
	var topics []model.GrammarTopic
	q := r.DB.Where("enabled = ?", true)
	if language != "" {
		q = q.Where("language = ?", language)
	}
	err := q.Order("category, name").Find(&topics).Error
	return topics, err
}

func (r *TopicRepository) FindByID(id string) (*model.GrammarTopic, error) {
	var topic model.GrammarTopic
	if err := r.DB.First(&topic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) ListContent(topicID string) ([]model.GrammarContent, error) {
	var content []model.GrammarContent
	err := r.DB.Where("topic_id = ?", topicID).Order("slug").Find(&content).Error
	return content, err
}
