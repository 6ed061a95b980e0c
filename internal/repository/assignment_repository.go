package repository

import (
	"language_gems_backend/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) Create(assignment *model.Assignment) error {
	return r.DB.Create(assignment).Error
}

func (r *AssignmentRepository) FindByID(id string) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.DB.First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) ListByTeacher(teacherID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.DB.Where("teacher_id = ?", teacherID).
		Order("created_at DESC").Find(&assignments).Error
	return assignments, err
}

func (r *AssignmentRepository) Update(assignment *model.Assignment) error {
	return r.DB.Save(assignment).Error
}

func (r *AssignmentRepository) Delete(id string) error {
	return r.DB.Delete(&model.Assignment{}, "id = ?", id).Error
}
