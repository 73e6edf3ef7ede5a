package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Cluster 对应于 'clusters' 表。
// 训练任务写入质心，人工整理的定义（名称、描述、类型、推荐理由）由 curation 任务写入，
// 推理时以此表为唯一数据源。
type Cluster struct {
	ID             uint           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name           string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	CentroidValues datatypes.JSON `json:"centroid_values"`
	Genres         datatypes.JSON `json:"genres"`
	Reason         string         `gorm:"type:text" json:"reason"`
}

func (Cluster) TableName() string {
	return "clusters"
}

// Centroid 解析质心向量。
func (c *Cluster) Centroid() ([]float64, error) {
	var centroid []float64
	if len(c.CentroidValues) == 0 {
		return centroid, nil
	}
	err := json.Unmarshal(c.CentroidValues, &centroid)
	return centroid, err
}

// GenreList 解析推荐的游戏类型列表。
func (c *Cluster) GenreList() ([]string, error) {
	var genres []string
	if len(c.Genres) == 0 {
		return genres, nil
	}
	err := json.Unmarshal(c.Genres, &genres)
	return genres, err
}

// Recommendation 对应于 'recommendations' 表，引用 clusters 与 games。
// 重新训练替换聚类前必须先清空此表。
type Recommendation struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ClusterID uint   `gorm:"not null;index" json:"cluster_id"`
	GameID    uint   `gorm:"not null;index" json:"game_id"`
	Reason    string `gorm:"type:text;not null" json:"reason"`

	Cluster Cluster `gorm:"foreignKey:ClusterID" json:"-"`
	Game    Game    `gorm:"foreignKey:GameID" json:"-"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
