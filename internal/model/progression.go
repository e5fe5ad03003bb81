package model

import "time"

type SkillTier string

const (
	TierBeginner     SkillTier = "beginner"
	TierIntermediate SkillTier = "intermediate"
	TierAdvanced     SkillTier = "advanced"
)

// Rank 技能档位的序，用于判断升降
func (t SkillTier) Rank() int {
	switch t {
	case TierBeginner:
		return 1
	case TierIntermediate:
		return 2
	case TierAdvanced:
		return 3
	}
	return 0
}

// UserProgression 每个用户一行，首次提交时惰性创建。
// TotalExperience 只增不减；Level 是曲线的纯函数，存储值仅作缓存，读取时校正。
// swagger:model UserProgression
type UserProgression struct {
	BaseModel
	UserID              uint `gorm:"uniqueIndex;not null" json:"userId"`
	TotalExperience     int  `gorm:"default:0" json:"totalExperience"`
	Level               int  `gorm:"default:1" json:"level"`
	HighestLevelReached int  `gorm:"default:1" json:"highestLevelReached"`

	SkillTier SkillTier `gorm:"size:20" json:"skillTier"`

	// 窗口化经验计数，按日历边界归零
	DailyXP   int       `gorm:"default:0" json:"dailyXp"`
	WeeklyXP  int       `gorm:"default:0" json:"weeklyXp"`
	MonthlyXP int       `gorm:"default:0" json:"monthlyXp"`
	LastXPAt  time.Time `json:"lastXpAt"`

	LastAssessedAt *time.Time `json:"lastAssessedAt"`
}

func (UserProgression) TableName() string {
	return "user_progressions"
}

// LevelAssessment 一次等级评定的落库记录（快照本身不持久化，只存摘要投影）
// swagger:model LevelAssessment
type LevelAssessment struct {
	BaseModel
	UserID        uint      `gorm:"index;not null" json:"userId"`
	AssignedTier  SkillTier `gorm:"size:20" json:"assignedTier"`
	PreviousTier  SkillTier `gorm:"size:20" json:"previousTier"`
	ChangeKind    string    `gorm:"size:20" json:"changeKind"`
	OverallScore  float64   `json:"overallScore"`
	AccuracyRate  float64   `json:"accuracyRate"`
	AttemptsCount int       `json:"attemptsCount"`
}

func (LevelAssessment) TableName() string {
	return "level_assessments"
}
