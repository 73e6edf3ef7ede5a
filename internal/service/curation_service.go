package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"game-recommender-go/internal/curation"
	"game-recommender-go/internal/model"
	"game-recommender-go/internal/repository"
	"game-recommender-go/pkg/log"

	"gorm.io/gorm"
)

// CurationReport 描述一次定义写入的结果。
type CurationReport struct {
	Updated []uint `json:"updated"`
	// MissingRows 是有定义但 clusters 表中没有对应行的编号。
	MissingRows []uint `json:"missing_rows"`
	// MissingDefinitions 是 clusters 表中存在但没有定义的编号。
	MissingDefinitions []uint `json:"missing_definitions"`
}

// Aligned 判断定义与 clusters 表是否一一对应。
func (r *CurationReport) Aligned() bool {
	return len(r.MissingRows) == 0 && len(r.MissingDefinitions) == 0
}

// CurationService 将人工整理的聚类定义写入 clusters 表。
type CurationService interface {
	// Curate 写入全部定义。编号不一致时仍会更新已匹配的行，并返回 ErrClusterMisaligned。
	// 写入后清空推荐缓存，使新的名称与推荐理由立即生效。
	Curate(ctx context.Context) (*CurationReport, error)
}

type curationService struct {
	clusterRepo repository.ClusterRepository
	cache       repository.RecommendationCache
	definitions func() []curation.Definition
}

// NewCurationService 创建一个新的 CurationService 实例。cache 可以为 nil。
func NewCurationService(clusterRepo repository.ClusterRepository, cache repository.RecommendationCache) CurationService {
	return &curationService{clusterRepo: clusterRepo, cache: cache, definitions: curation.All}
}

func (s *curationService) Curate(ctx context.Context) (*CurationReport, error) {
	report := &CurationReport{}
	defined := make(map[uint]struct{})

	for _, d := range s.definitions() {
		defined[d.ID] = struct{}{}
		genres, err := json.Marshal(d.Genres)
		if err != nil {
			return nil, fmt.Errorf("marshal genres for cluster %d: %w", d.ID, err)
		}
		err = s.clusterRepo.UpdateDefinition(&model.Cluster{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Genres:      genres,
			Reason:      d.Reason,
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("聚类 %d 在数据库中不存在，跳过", d.ID)
			report.MissingRows = append(report.MissingRows, d.ID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update cluster %d: %w", d.ID, err)
		}
		report.Updated = append(report.Updated, d.ID)
	}

	rows, err := s.clusterRepo.FindAll()
	if err != nil {
		return nil, err
	}
	for _, c := range rows {
		if _, ok := defined[c.ID]; !ok {
			report.MissingDefinitions = append(report.MissingDefinitions, c.ID)
		}
	}
	sort.Slice(report.MissingDefinitions, func(i, j int) bool { return report.MissingDefinitions[i] < report.MissingDefinitions[j] })

	if s.cache != nil && len(report.Updated) > 0 {
		if n, err := s.cache.Invalidate(ctx); err != nil {
			log.Warnf("清空推荐缓存失败: %v", err)
		} else {
			log.Infof("已清空 %d 条推荐缓存", n)
		}
	}

	log.Infow("聚类定义写入完成", "updated", len(report.Updated), "missing_rows", report.MissingRows, "missing_definitions", report.MissingDefinitions)
	if !report.Aligned() {
		return report, fmt.Errorf("%w: missing rows %v, missing definitions %v", ErrClusterMisaligned, report.MissingRows, report.MissingDefinitions)
	}
	return report, nil
}
