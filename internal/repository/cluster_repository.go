package repository

import (
	"game-recommender-go/internal/model"

	"gorm.io/gorm"
)

// ClusterRepository 接口定义了聚类画像的持久化操作。
type ClusterRepository interface {
	FindByID(id uint) (*model.Cluster, error)
	FindAll() ([]model.Cluster, error)
	// ReplaceAll 在单个事务中清空 recommendations 与 clusters，再写入新的聚类。
	ReplaceAll(clusters []model.Cluster) error
	// UpdateDefinition 写入人工定义；记录不存在时返回 gorm.ErrRecordNotFound。
	UpdateDefinition(cluster *model.Cluster) error
}

type clusterRepository struct {
	db *gorm.DB
}

// NewClusterRepository 创建一个新的 ClusterRepository 实例。
func NewClusterRepository(db *gorm.DB) ClusterRepository {
	return &clusterRepository{db: db}
}

func (r *clusterRepository) FindByID(id uint) (*model.Cluster, error) {
	var cluster model.Cluster
	if err := r.db.First(&cluster, id).Error; err != nil {
		return nil, err
	}
	return &cluster, nil
}

func (r *clusterRepository) FindAll() ([]model.Cluster, error) {
	var clusters []model.Cluster
	err := r.db.Order("id asc").Find(&clusters).Error
	return clusters, err
}

func (r *clusterRepository) ReplaceAll(clusters []model.Cluster) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 先删除引用 clusters 的推荐记录，满足外键约束
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&model.Recommendation{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&model.Cluster{}).Error; err != nil {
			return err
		}
		if len(clusters) == 0 {
			return nil
		}
		return tx.Create(&clusters).Error
	})
}

// UpdateDefinition 先确认记录存在再更新。MySQL 默认返回实际改动的行数，
// 重复写入相同定义时 RowsAffected 为 0，不能据此判断记录不存在。
func (r *clusterRepository) UpdateDefinition(cluster *model.Cluster) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Cluster{}).Where("id = ?", cluster.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&model.Cluster{}).Where("id = ?", cluster.ID).Updates(map[string]interface{}{
			"name":        cluster.Name,
			"description": cluster.Description,
			"genres":      cluster.Genres,
			"reason":      cluster.Reason,
		}).Error
	})
}
