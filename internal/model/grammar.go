package model

// GrammarTopic 语法主题（例如 "Spanish present tense"）
type GrammarTopic struct {
	UUIDBase
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Language    string `gorm:"size:10;index;not null" json:"language"`
	Category    string `gorm:"size:100;index" json:"category"`
	Description string `gorm:"type:text" json:"description"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (GrammarTopic) TableName() string {
	return "grammar_topics"
}

// GrammarContent 主题下的一个可练习内容项
type GrammarContent struct {
	UUIDBase
	TopicID         string `gorm:"type:varchar(36);index;not null" json:"topicId"`
	Slug            string `gorm:"size:100;index" json:"slug"`
	Title           string `gorm:"size:200;not null" json:"title"`
	ContentType     string `gorm:"size:20;default:'practice'" json:"contentType"` // practice, quiz, lesson
	DifficultyLevel string `gorm:"size:20" json:"difficultyLevel"`
	QuestionCount   int    `gorm:"default:0" json:"questionCount"`
}

func (GrammarContent) TableName() string {
	return "grammar_content"
}
