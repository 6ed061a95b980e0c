package model

import "time"

type SessionType string

const (
	SessionPractice SessionType = "practice"
	SessionTest     SessionType = "test"
	SessionLesson   SessionType = "lesson"
)

type SessionMode string

const (
	ModeFreePlay   SessionMode = "free_play"
	ModeAssignment SessionMode = "assignment"
	ModePractice   SessionMode = "practice"
	ModeChallenge  SessionMode = "challenge"
)

type CompletionStatus string

const (
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
)

// QuestionAttempt 单次答题记录，随会话结束写入 session_data
type QuestionAttempt struct {
	QuestionID     *string `json:"questionId,omitempty"`
	QuestionText   string  `json:"questionText"`
	QuestionType   string  `json:"questionType"`
	StudentAnswer  string  `json:"studentAnswer"`
	CorrectAnswer  string  `json:"correctAnswer"`
	Correct        bool    `json:"correct"`
	ResponseTimeMs int     `json:"responseTimeMs"`
	HintUsed       bool    `json:"hintUsed"`
	Difficulty     *string `json:"difficulty,omitempty"`
}

// SessionData 会话的嵌套负载，答题记录作为数组内嵌存储
type SessionData struct {
	Attempts []QuestionAttempt      `json:"attempts"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

// swagger:model GrammarSession
type GrammarSession struct {
	UUIDBase
	StudentID    string  `gorm:"type:varchar(36);index;not null" json:"studentId"`
	AssignmentID *string `gorm:"type:varchar(36);index" json:"assignmentId,omitempty"`
	TopicID      string  `gorm:"type:varchar(36);index;not null" json:"topicId"`
	ContentID    string  `gorm:"type:varchar(36);index;not null" json:"contentId"`

	SessionType  SessionType `gorm:"type:varchar(20);not null" json:"sessionType"`
	SessionMode  SessionMode `gorm:"type:varchar(20);not null" json:"sessionMode"`
	PracticeMode *string     `gorm:"type:varchar(20)" json:"practiceMode,omitempty"` // quick, standard, mastery

	TotalQuestions   int        `gorm:"default:0" json:"totalQuestions"`
	StartedAt        time.Time  `json:"startedAt"`
	EndedAt          *time.Time `json:"endedAt,omitempty"`
	CompletionStatus CompletionStatus `gorm:"type:varchar(20);default:'in_progress'" json:"completionStatus"`

	CompletionPercentage int     `gorm:"default:0" json:"completionPercentage"`
	QuestionsAttempted   int     `gorm:"default:0" json:"questionsAttempted"`
	QuestionsCorrect     int     `gorm:"default:0" json:"questionsCorrect"`
	AccuracyPercentage   float64 `gorm:"default:0" json:"accuracyPercentage"`
	FinalScore           int     `gorm:"default:0" json:"finalScore"`
	MaxScorePossible     int     `gorm:"default:0" json:"maxScorePossible"`
	DurationSeconds      int     `gorm:"default:0" json:"durationSeconds"`
	AverageResponseTime  float64 `gorm:"default:0" json:"averageResponseTime"` // 毫秒
	HintsUsed            int     `gorm:"default:0" json:"hintsUsed"`
	StreakCount          int     `gorm:"default:0" json:"streakCount"`
	GemsEarned           int     `gorm:"default:0" json:"gemsEarned"`
	XPEarned             int     `gorm:"default:0" json:"xpEarned"`

	SessionData SessionData `gorm:"type:jsonb;serializer:json" json:"sessionData"`
}

func (GrammarSession) TableName() string {
	return "grammar_sessions"
}
