package model

import "time"

// Assignment 教师布置的语法作业，required_topic_ids 是完成度检查的依据
type Assignment struct {
	UUIDBase
	TeacherID        string     `gorm:"type:varchar(36);index;not null" json:"teacherId"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	RequiredTopicIDs StringList `gorm:"type:jsonb;serializer:json" json:"requiredTopicIds"`
	DueAt            *time.Time `json:"dueAt,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// AssignmentProgress (assignment, student) 维度的累计进度
type AssignmentProgress struct {
	BaseModel
	AssignmentID      string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignment_student" json:"assignmentId"`
	StudentID         string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignment_student" json:"studentId"`
	SessionsCompleted int        `gorm:"default:0" json:"sessionsCompleted"`
	TotalQuestions    int        `gorm:"default:0" json:"totalQuestions"`
	CorrectAnswers    int        `gorm:"default:0" json:"correctAnswers"`
	TopicsPracticed   StringList `gorm:"type:jsonb;serializer:json" json:"topicsPracticed"`
	Status            CompletionStatus `gorm:"type:varchar(20);default:'in_progress'" json:"status"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

func (AssignmentProgress) TableName() string {
	return "assignment_progress"
}
