package model

import "time"

// SlotResult 单个答案槽的判定明细
type SlotResult struct {
	SlotID          int    `json:"slotId"`
	CanonicalAnswer string `json:"canonicalAnswer"`
	UserAnswer      string `json:"userAnswer"`
	IsCorrect       bool   `json:"isCorrect"`
}

// Attempt 一次判分事件。创建后不可变。
// swagger:model Attempt
type Attempt struct {
	BaseModel
	UserID      uint        `gorm:"index:idx_user_submitted;not null" json:"userId"`
	ProblemID   uint        `gorm:"index;not null" json:"problemId"`
	ProblemType ProblemType `gorm:"type:enum('cloze','block','free_code')" json:"problemType"`
	Level       int         `json:"level"`
	Topic       string      `gorm:"size:100" json:"topic"`

	// Answers 用户提交的原始答案（JSON，按题型是映射或数组）
	Answers string `gorm:"type:text" json:"-"`
	// SlotResults 每个槽的判定结果（JSON [{slotId,...}]）
	SlotResults string `gorm:"type:text" json:"-"`

	Score          int       `json:"score"`
	IsCorrect      bool      `json:"isCorrect"`
	CorrectCount   int       `json:"correctCount"`
	TotalCount     int       `json:"totalCount"`
	ResponseTimeMs int       `json:"responseTimeMs"`
	IsFirstAttempt bool      `json:"isFirstAttempt"`
	SubmittedAt    time.Time `gorm:"index:idx_user_submitted" json:"submittedAt"`
}

func (Attempt) TableName() string {
	return "attempts"
}
