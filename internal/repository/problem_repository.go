package repository

import (
	"code_mentor_backend/internal/model"

	"gorm.io/gorm"
)

// ProblemRepository 处理练习题的数据库操作
type ProblemRepository struct {
	DB *gorm.DB
}

func NewProblemRepository(db *gorm.DB) *ProblemRepository {
	return &ProblemRepository{DB: db}
}

func (r *ProblemRepository) Create(problem *model.Problem) error {
	return r.DB.Create(problem).Error
}

func (r *ProblemRepository) FindByID(id uint) (*model.Problem, error) {
	var problem model.Problem
	err := r.DB.First(&problem, id).Error
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

// FindPublished 分页获取已发布题目，可按主题/题型/难度筛选
func (r *ProblemRepository) FindPublished(page, limit int, topic string, problemType model.ProblemType, level int) ([]model.Problem, int64, error) {
	query := r.DB.Model(&model.Problem{}).Where("is_published = ?", true)
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	if problemType != "" {
		query = query.Where("problem_type = ?", problemType)
	}
	if level > 0 {
		query = query.Where("level = ?", level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var problems []model.Problem
	offset := (page - 1) * limit
	err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&problems).Error
	return problems, total, err
}

func (r *ProblemRepository) Update(problem *model.Problem) error {
	return r.DB.Save(problem).Error
}

func (r *ProblemRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Problem{}, id).Error
}
