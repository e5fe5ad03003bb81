package repository

import (
	"time"

	"code_mentor_backend/internal/model"

	"gorm.io/gorm"
)

// AttemptRepository 处理判分记录的数据库操作。尝试记录只增不改。
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

// CountByUserAndProblem 用户在某题上的历史提交数，用于判定首次提交
func (r *AttemptRepository) CountByUserAndProblem(userID, problemID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Count(&count).Error
	return count, err
}

// FindByUserSince 按提交时间升序返回窗口内的尝试，problemType 为空则不过滤
func (r *AttemptRepository) FindByUserSince(userID uint, since time.Time, problemType model.ProblemType) ([]model.Attempt, error) {
	query := r.DB.Where("user_id = ? AND submitted_at >= ?", userID, since)
	if problemType != "" {
		query = query.Where("problem_type = ?", problemType)
	}
	var attempts []model.Attempt
	err := query.Order("submitted_at ASC").Find(&attempts).Error
	return attempts, err
}

// FindRecentByUser 最近 N 条尝试，按提交时间倒序
func (r *AttemptRepository) FindRecentByUser(userID uint, limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ?", userID).
		Order("submitted_at DESC").Limit(limit).Find(&attempts).Error
	return attempts, err
}
