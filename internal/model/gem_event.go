package model

// GemEvent 一次会话结算产生的单颗宝石，按颗批量写入，之后不再修改
type GemEvent struct {
	UUIDBase
	StudentID string `gorm:"type:varchar(36);index;not null" json:"studentId"`
	SessionID string `gorm:"type:varchar(36);index;not null" json:"sessionId"`
	GemType   string `gorm:"size:20;default:'grammar'" json:"gemType"`
	Rarity    string `gorm:"size:20;default:'common'" json:"rarity"`
	GameType  string `gorm:"size:50" json:"gameType"` // 由会话类型/模式推导
	XPValue   int    `gorm:"default:0" json:"xpValue"`
}

func (GemEvent) TableName() string {
	return "gem_events"
}
