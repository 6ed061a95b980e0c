package service

import (
	"context"
	"encoding/json"
	"language_gems_backend/internal/model"
	"language_gems_backend/internal/repository"
	"language_gems_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const topicCacheTTL = 5 * time.Minute

// ContentService 语法目录的只读访问，主题列表走 Redis 缓存
type ContentService struct {
	TopicRepo *repository.TopicRepository
	Redis     *redis.Client
}

func NewContentService(topicRepo *repository.TopicRepository, rdb *redis.Client) *ContentService {
	return &ContentService{
		TopicRepo: topicRepo,
		Redis:     rdb,
	}
}

func (s *ContentService) ListTopics(language string) ([]model.GrammarTopic, error) {
	ctx := context.Background()
	key := "grammar:topics:" + language

	if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
		var topics []model.GrammarTopic
		if err := json.Unmarshal([]byte(cached), &topics); err == nil {
			return topics, nil
		}
	}

	topics, err := s.TopicRepo.List(language)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(topics); err == nil {
		if err := s.Redis.Set(ctx, key, data, topicCacheTTL).Err(); err != nil {
			logger.Log.Warn("failed to cache grammar topics", zap.Error(err))
		}
	}

	return topics, nil
}

func (s *ContentService) GetTopic(id string) (*model.GrammarTopic, error) {
	return s.TopicRepo.FindByID(id)
}

func (s *ContentService) ListTopicContent(topicID string) ([]model.GrammarContent, error) {
	return s.TopicRepo.ListContent(topicID)
}
