package model

import "encoding/json"

type ProblemType string

const (
	// Cloze 填空题：按 slotId 提交答案
	Cloze ProblemType = "cloze"
	// Block 积木拼装题：按顺序提交代码块
	Block ProblemType = "block"
	// FreeCode 自由编程题：提交完整代码，用样例输入输出判定
	FreeCode ProblemType = "free_code"
)

// AnswerSlot 一个答案槽：题干中的一个空或一个积木位
type AnswerSlot struct {
	SlotID int    `json:"slotId"`
	Answer string `json:"answer"`
}

// ExamplePair 自由编程题的一组样例输入输出
type ExamplePair struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// swagger:model Problem
type Problem struct {
	BaseModel
	Title       string      `gorm:"size:200;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Topic       string      `gorm:"size:100;index" json:"topic"`
	Level       int         `gorm:"default:1;index" json:"level"`
	ProblemType ProblemType `gorm:"type:enum('cloze','block','free_code');default:'cloze'" json:"problemType"`
	Language    string      `gorm:"size:20;default:'c'" json:"language"`

	// Slots 生成管线产出的有序答案槽，JSON 形如 [{"slotId":1,"answer":"for"}]
	Slots string `gorm:"type:text" json:"-"`
	// AnswerMap 生成管线可能额外给出的权威 slotId->answer 映射，优先于 Slots
	AnswerMap string `gorm:"type:text" json:"-"`
	// Examples 自由编程题样例，JSON 形如 [{"input":"1 2","output":"3"}]
	Examples string `gorm:"type:text" json:"-"`

	CreatorID   uint `gorm:"index" json:"creatorId"`
	IsPublished bool `gorm:"default:false" json:"isPublished"`
}

func (Problem) TableName() string {
	return "problems"
}

// DecodeSlots 解析有序答案槽
func (p *Problem) DecodeSlots() ([]AnswerSlot, error) {
	if p.Slots == "" {
		return nil, nil
	}
	var slots []AnswerSlot
	if err := json.Unmarshal([]byte(p.Slots), &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// DecodeAnswerMap 解析权威答案映射，可能为空
func (p *Problem) DecodeAnswerMap() (map[int]string, error) {
	if p.AnswerMap == "" {
		return nil, nil
	}
	var m map[int]string
	if err := json.Unmarshal([]byte(p.AnswerMap), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeExamples 解析自由编程题样例
func (p *Problem) DecodeExamples() ([]ExamplePair, error) {
	if p.Examples == "" {
		return nil, nil
	}
	var examples []ExamplePair
	if err := json.Unmarshal([]byte(p.Examples), &examples); err != nil {
		return nil, err
	}
	return examples, nil
}
