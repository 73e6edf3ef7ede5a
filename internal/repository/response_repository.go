package repository

import (
	"game-recommender-go/internal/model"

	"gorm.io/gorm"
)

// ResponseRepository 接口定义了问卷作答的持久化操作。
type ResponseRepository interface {
	// CreateBatch 在一个事务中写入一批作答。
	CreateBatch(responses []model.UserResponse) error
	// FindAll 返回全部作答，按会话和题号排序。
	FindAll() ([]model.UserResponse, error)
	SessionExists(sessionID string) (bool, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository 创建一个新的 ResponseRepository 实例。
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) CreateBatch(responses []model.UserResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&responses, 500).Error
	})
}

func (r *responseRepository) FindAll() ([]model.UserResponse, error) {
	var responses []model.UserResponse
	err := r.db.Order("session_id asc").Order("question_id asc").Find(&responses).Error
	return responses, err
}

// SessionExists 判断会话是否已经提交过作答。
func (r *responseRepository) SessionExists(sessionID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.UserResponse{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count > 0, err
}
