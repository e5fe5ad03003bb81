package model

// 趋势分类
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// 严重程度 / 优先级
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// WeakArea 一个按难度或主题聚合出的薄弱环节
type WeakArea struct {
	Kind         string  `json:"kind"` // "difficulty" 或 "topic"
	Key          string  `json:"key"`
	AccuracyRate float64 `json:"accuracyRate"`
	AvgTimeMs    float64 `json:"avgTimeMs"`
	Severity     string  `json:"severity"`
	Reason       string  `json:"reason"`
}

// Strength 一个表现突出的环节
type Strength struct {
	Kind         string  `json:"kind"`
	Key          string  `json:"key"`
	AccuracyRate float64 `json:"accuracyRate"`
}

// PerformanceSnapshot 由一段时间窗口内的尝试聚合得出，不落库
// swagger:model PerformanceSnapshot
type PerformanceSnapshot struct {
	AttemptsCount       int        `json:"attemptsCount"`
	AccuracyRate        float64    `json:"accuracyRate"`
	AverageResponseTime float64    `json:"averageResponseTime"`
	ConsistencyScore    float64    `json:"consistencyScore"`
	SpeedScore          float64    `json:"speedScore"`
	OverallScore        float64    `json:"overallScore"`
	Trend               string     `json:"trend"`
	WeakAreas           []WeakArea `json:"weakAreas"`
	Strengths           []Strength `json:"strengths"`
}

// Recommendation 评级反馈中的一条建议
type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// LevelAssignment 等级评定结果
// swagger:model LevelAssignment
type LevelAssignment struct {
	AssignedLevel   SkillTier        `json:"assignedLevel"`
	PreviousLevel   SkillTier        `json:"previousLevel,omitempty"`
	ChangeKind      string           `json:"changeKind"` // initial/promoted/demoted/maintained
	Feedback        string           `json:"feedback"`
	Recommendations []Recommendation `json:"recommendations"`
}

// 等级变动类型
const (
	ChangeInitial    = "initial"
	ChangePromoted   = "promoted"
	ChangeDemoted    = "demoted"
	ChangeMaintained = "maintained"
)
