package service

import (
	"language_gems_backend/internal/model"
	"language_gems_backend/internal/repository"
	"language_gems_backend/internal/util"
	"time"
)

type AssignmentService struct {
	AssignmentRepo *repository.AssignmentRepository
	TopicRepo      *repository.TopicRepository
}

func NewAssignmentService(assignmentRepo *repository.AssignmentRepository, topicRepo *repository.TopicRepository) *AssignmentService {
	return &AssignmentService{
		AssignmentRepo: assignmentRepo,
		TopicRepo:      topicRepo,
	}
}

type AssignmentRequest struct {
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	RequiredTopicIDs []string   `json:"requiredTopicIds" binding:"required,min=1"`
	DueAt            *time.Time `json:"dueAt,omitempty"`
}

func (s *AssignmentService) Create(teacherID string, req AssignmentRequest) (*model.Assignment, error) {
	// 主题必须存在，否则完成度检查永远不会满足
	for _, topicID := range req.RequiredTopicIDs {
		if _, err := s.TopicRepo.FindByID(topicID); err != nil {
			return nil, util.ErrTopicNotFound
		}
	}

	assignment := &model.Assignment{
		TeacherID:        teacherID,
		Title:            req.Title,
		Description:      req.Description,
		RequiredTopicIDs: req.RequiredTopicIDs,
		DueAt:            req.DueAt,
	}
	if err := s.AssignmentRepo.Create(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) Get(id string) (*model.Assignment, error) {
	return s.AssignmentRepo.FindByID(id)
}

func (s *AssignmentService) ListByTeacher(teacherID string) ([]model.Assignment, error) {
	return s.AssignmentRepo.ListByTeacher(teacherID)
}

func (s *AssignmentService) Update(teacherID, id string, req AssignmentRequest) (*model.Assignment, error) {
	assignment, err := s.AssignmentRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if assignment.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}

	assignment.Title = req.Title
	assignment.Description = req.Description
	assignment.RequiredTopicIDs = req.RequiredTopicIDs
	assignment.DueAt = req.DueAt

	if err := s.AssignmentRepo.Update(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) Delete(teacherID, id string) error {
	assignment, err := s.AssignmentRepo.FindByID(id)
	if err != nil {
		return err
	}
	if assignment.TeacherID != teacherID {
		return util.ErrPermissionDenied
	}
	return s.AssignmentRepo.Delete(id)
}
