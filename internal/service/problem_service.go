package service

import (
	"encoding/json"
	"errors"
	"strings"

	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/repository"
	"code_mentor_backend/internal/util"

	"gorm.io/gorm"
)

// ProblemInput 创建/更新题目的请求体
// swagger:model ProblemInput
type ProblemInput struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Topic       string              `json:"topic"`
	Level       int                 `json:"level"`
	ProblemType model.ProblemType   `json:"problemType" binding:"required"`
	Language    string              `json:"language"`
	Slots       []model.AnswerSlot  `json:"slots"`
	AnswerMap   map[int]string      `json:"answerMap"`
	Examples    []model.ExamplePair `json:"examples"`
	IsPublished bool                `json:"isPublished"`
}

// ProblemService 题库管理。创建和更新时校验答案槽结构，
// 保证判分引擎拿到的题目不会在运行期才暴露配置错误。
type ProblemService struct {
	ProblemRepo *repository.ProblemRepository
}

func NewProblemService(problemRepo *repository.ProblemRepository) *ProblemService {
	return &ProblemService{ProblemRepo: problemRepo}
}

func (s *ProblemService) Create(creatorID uint, input *ProblemInput) (*model.Problem, error) {
	if err := validateProblemInput(input); err != nil {
		return nil, err
	}

	problem := &model.Problem{
		Title:       input.Title,
		Description: input.Description,
		Topic:       input.Topic,
		Level:       input.Level,
		ProblemType: input.ProblemType,
		Language:    input.Language,
		CreatorID:   creatorID,
		IsPublished: input.IsPublished,
	}
	if problem.Level <= 0 {
		problem.Level = 1
	}
	if err := encodeProblemPayload(problem, input); err != nil {
		return nil, err
	}

	if err := s.ProblemRepo.Create(problem); err != nil {
		return nil, err
	}
	return problem, nil
}

func (s *ProblemService) Update(id, userID uint, role model.UserRole, input *ProblemInput) (*model.Problem, error) {
	problem, err := s.ProblemRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProblemNotFound
		}
		return nil, err
	}
	if role != model.Admin && problem.CreatorID != userID {
		return nil, util.ErrPermissionDenied
	}

	if err := validateProblemInput(input); err != nil {
		return nil, err
	}

	problem.Title = input.Title
	problem.Description = input.Description
	problem.Topic = input.Topic
	if input.Level > 0 {
		problem.Level = input.Level
	}
	problem.ProblemType = input.ProblemType
	problem.Language = input.Language
	problem.IsPublished = input.IsPublished
	if err := encodeProblemPayload(problem, input); err != nil {
		return nil, err
	}

	if err := s.ProblemRepo.Update(problem); err != nil {
		return nil, err
	}
	return problem, nil
}

func (s *ProblemService) Delete(id, userID uint, role model.UserRole) error {
	problem, err := s.ProblemRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrProblemNotFound
		}
		return err
	}
	if role != model.Admin && problem.CreatorID != userID {
		return util.ErrPermissionDenied
	}
	return s.ProblemRepo.Delete(id)
}

func (s *ProblemService) GetByID(id uint) (*model.Problem, error) {
	problem, err := s.ProblemRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProblemNotFound
		}
		return nil, err
	}
	return problem, nil
}

// ListPublished 分页列出已发布题目
func (s *ProblemService) ListPublished(page, limit int, topic string, problemType model.ProblemType, level int) ([]model.Problem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ProblemRepo.FindPublished(page, limit, topic, problemType, level)
}

// validateProblemInput 上游生成管线的约定：slotId 为题内唯一的正整数，
// 标准答案非空。不满足的题目在入库前就拒绝。
func validateProblemInput(input *ProblemInput) error {
	switch input.ProblemType {
	case model.Cloze, model.Block:
		if len(input.Slots) == 0 {
			return util.ErrValidation
		}
		seen := map[int]bool{}
		for _, slot := range input.Slots {
			if slot.SlotID <= 0 || seen[slot.SlotID] {
				return util.ErrValidation
			}
			seen[slot.SlotID] = true
			// 位置答案可以为空，但必须能从权威映射补上
			if strings.TrimSpace(slot.Answer) == "" && strings.TrimSpace(input.AnswerMap[slot.SlotID]) == "" {
				return util.ErrValidation
			}
		}
		for slotID, answer := range input.AnswerMap {
			if slotID <= 0 || strings.TrimSpace(answer) == "" {
				return util.ErrValidation
			}
		}
	case model.FreeCode:
		if len(input.Examples) == 0 {
			return util.ErrValidation
		}
		for _, ex := range input.Examples {
			if strings.TrimSpace(ex.Output) == "" {
				return util.ErrValidation
			}
		}
		if input.Language == "" {
			return util.ErrValidation
		}
	default:
		return util.ErrValidation
	}
	return nil
}

func encodeProblemPayload(problem *model.Problem, input *ProblemInput) error {
	problem.Slots = ""
	problem.AnswerMap = ""
	problem.Examples = ""

	if len(input.Slots) > 0 {
		raw, err := json.Marshal(input.Slots)
		if err != nil {
			return err
		}
		problem.Slots = string(raw)
	}
	if len(input.AnswerMap) > 0 {
		raw, err := json.Marshal(input.AnswerMap)
		if err != nil {
			return err
		}
		problem.AnswerMap = string(raw)
	}
	if len(input.Examples) > 0 {
		raw, err := json.Marshal(input.Examples)
		if err != nil {
			return err
		}
		problem.Examples = string(raw)
	}
	return nil
}
