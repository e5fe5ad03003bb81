package repository

import (
	"errors"

	"code_mentor_backend/internal/model"

	"gorm.io/gorm"
)

// ProgressionRepository 处理用户进阶状态的数据库操作
type ProgressionRepository struct {
	DB *gorm.DB
}

func NewProgressionRepository(db *gorm.DB) *ProgressionRepository {
	return &ProgressionRepository{DB: db}
}

// FindByUser 返回用户进阶行，不存在时返回 (nil, nil)
func (r *ProgressionRepository) FindByUser(userID uint) (*model.UserProgression, error) {
	var p model.UserProgression
	err := r.DB.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProgressionRepository) Create(p *model.UserProgression) error {
	return r.DB.Create(p).Error
}

func (r *ProgressionRepository) Save(p *model.UserProgression) error {
	return r.DB.Save(p).Error
}

// AddExperience 原子累加经验，避免读-改-写竞态丢更新。
// 返回累加后的总经验。
func (r *ProgressionRepository) AddExperience(userID uint, delta int) (int, error) {
	err := r.DB.Model(&model.UserProgression{}).
		Where("user_id = ?", userID).
		Update("total_experience", gorm.Expr("total_experience + ?", delta)).Error
	if err != nil {
		return 0, err
	}

	var p model.UserProgression
	if err := r.DB.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return 0, err
	}
	return p.TotalExperience, nil
}

func (r *ProgressionRepository) SaveAssessment(a *model.LevelAssessment) error {
	return r.DB.Create(a).Error
}

// FindAssessments 用户的评定历史，按时间倒序
func (r *ProgressionRepository) FindAssessments(userID uint, limit int) ([]model.LevelAssessment, error) {
	var list []model.LevelAssessment
	err := r.DB.Where("user_id = ?", userID).
		Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
