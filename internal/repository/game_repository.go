package repository

import (
	"game-recommender-go/internal/model"

	"gorm.io/gorm"
)

// GameRepository 接口定义了游戏目录的持久化操作。
type GameRepository interface {
	// FindByGenres 返回类型属于 genres 的全部游戏。
	FindByGenres(genres []string) ([]model.Game, error)
	FindAll() ([]model.Game, error)
	ExistingFreeToGameIDs() (map[int]struct{}, error)
	Create(game *model.Game) error
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository 创建一个新的 GameRepository 实例。
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) FindByGenres(genres []string) ([]model.Game, error) {
	var games []model.Game
	if len(genres) == 0 {
		return games, nil
	}
	err := r.db.Where("genre IN ?", genres).Order("id asc").Find(&games).Error
	return games, err
}

func (r *gameRepository) FindAll() ([]model.Game, error) {
	var games []model.Game
	err := r.db.Order("id asc").Find(&games).Error
	return games, err
}

func (r *gameRepository) ExistingFreeToGameIDs() (map[int]struct{}, error) {
	var ids []int
	if err := r.db.Model(&model.Game{}).Pluck("freetogame_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *gameRepository) Create(game *model.Game) error {
	return r.db.Create(game).Error
}
