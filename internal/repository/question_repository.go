// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"game-recommender-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionRepository 接口定义了问卷题目的持久化操作。
type QuestionRepository interface {
	FindAll() ([]model.Question, error)
	// CreateMissing 插入尚不存在的题目，已存在的题号保持不变，返回新插入的数量。
	CreateMissing(questions []model.Question) (int, error)
}

// questionRepository 是 QuestionRepository 接口的 GORM 实现。
type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建一个新的 QuestionRepository 实例。
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// FindAll 按题号顺序返回全部题目。
func (r *questionRepository) FindAll() ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Order("id asc").Find(&questions).Error
	return questions, err
}

func (r *questionRepository) CreateMissing(questions []model.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&questions)
	return int(res.RowsAffected), res.Error
}
