package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"game-recommender-go/internal/clustering"
	"game-recommender-go/internal/config"
	"game-recommender-go/internal/curation"
	"game-recommender-go/internal/model"
	"game-recommender-go/internal/quiz"
	"game-recommender-go/internal/repository"
	"game-recommender-go/pkg/log"
)

const retrainLockName = "retrain"

// ModelPublisher 将已提交的模型文件发布到共享存储。
type ModelPublisher interface {
	Publish(ctx context.Context, localPath string) error
}

// TrainResult 描述一次训练的结果。
type TrainResult struct {
	Meta     clustering.Metadata
	Sessions int
}

// TrainingService 负责重新训练聚类模型并刷新 clusters 表。
type TrainingService interface {
	Train(ctx context.Context) (*TrainResult, error)
}

type trainingService struct {
	responseRepo repository.ResponseRepository
	clusterRepo  repository.ClusterRepository
	store        *clustering.FileStore
	publisher    ModelPublisher
	locker       repository.JobLocker
	cfg          config.ModelConfig
}

// NewTrainingService 创建一个新的 TrainingService 实例。publisher 与 locker 可以为 nil。
func NewTrainingService(
	responseRepo repository.ResponseRepository,
	clusterRepo repository.ClusterRepository,
	store *clustering.FileStore,
	publisher ModelPublisher,
	locker repository.JobLocker,
	cfg config.ModelConfig,
) TrainingService {
	return &trainingService{
		responseRepo: responseRepo,
		clusterRepo:  clusterRepo,
		store:        store,
		publisher:    publisher,
		locker:       locker,
		cfg:          cfg,
	}
}

// Train 依次执行：读取作答、透视为矩阵、拟合 K-Means、暂存并替换模型文件、
// 在事务中替换 clusters 表、发布到对象存储。
// clusters 表写入失败时恢复之前的模型文件，模型与 clusters 表始终成对更新。
func (s *trainingService) Train(ctx context.Context) (*TrainResult, error) {
	if s.locker != nil {
		token, ok, err := s.locker.Acquire(ctx, retrainLockName, s.cfg.LockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRetrainInProgress
		}
		defer func() {
			if err := s.locker.Release(context.Background(), retrainLockName, token); err != nil {
				log.Error("释放训练锁失败", err)
			}
		}()
	}

	responses, err := s.responseRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	if len(responses) == 0 {
		log.Warnf("数据库中没有作答数据，训练中止")
		return nil, ErrNoTrainingData
	}

	data := PivotResponses(responses)
	log.Infof("[Trainer] 步骤1: 已加载 %d 条作答，共 %d 个会话", len(responses), len(data))

	m, err := clustering.Fit(ctx, data, clustering.Config{
		K:             s.cfg.Clusters,
		Restarts:      s.cfg.Restarts,
		MaxIterations: s.cfg.MaxIterations,
		Tolerance:     s.cfg.Tolerance,
		Seed:          s.cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	log.Infow("[Trainer] 步骤2: 模型训练完成", "k", m.Meta.K, "inertia", m.Meta.Inertia, "iterations", m.Meta.Iterations)

	staged, err := s.store.Stage(m)
	if err != nil {
		return nil, err
	}
	defer staged.Discard()

	clusters, err := clusterRows(m)
	if err != nil {
		return nil, err
	}

	if err := staged.Commit(); err != nil {
		return nil, err
	}
	log.Infof("[Trainer] 步骤3: 模型已保存到 %s (checksum=%s)", s.store.Path, m.Meta.Checksum)

	if err := s.clusterRepo.ReplaceAll(clusters); err != nil {
		if rbErr := staged.Rollback(); rbErr != nil {
			log.Errorf("[Trainer] clusters 表写入失败且无法恢复模型文件 %s，模型与 clusters 表不一致，需要重新训练: %v", s.store.Path, rbErr)
			return nil, errors.Join(fmt.Errorf("replace clusters: %w", err), rbErr)
		}
		return nil, fmt.Errorf("replace clusters: %w", err)
	}
	log.Infof("[Trainer] 步骤4: 已写入 %d 个聚类", len(clusters))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.store.Path); err != nil {
			// 本地模型已生效，发布失败只影响其他实例
			log.Error("发布模型到对象存储失败", err)
		}
	}

	return &TrainResult{Meta: m.Meta, Sessions: len(data)}, nil
}

// PivotResponses 将作答转换为每个会话一行、每题一列的矩阵，未作答的题记为 0。
// 行按会话 ID 排序，保证相同数据得到相同的训练输入。
func PivotResponses(responses []model.UserResponse) [][]float64 {
	bySession := make(map[string][]float64)
	for _, r := range responses {
		row, ok := bySession[r.SessionID]
		if !ok {
			row = make([]float64, quiz.NumQuestions)
			bySession[r.SessionID] = row
		}
		if quiz.ValidQuestionID(int(r.QuestionID)) {
			row[r.QuestionID-1] = float64(r.ResponseValue)
		}
	}

	sessions := make([]string, 0, len(bySession))
	for id := range bySession {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)

	data := make([][]float64, len(sessions))
	for i, id := range sessions {
		data[i] = bySession[id]
	}
	return data
}

// clusterRows 为每个质心生成一行。已有人工定义的编号直接带上名称、类型与推荐理由，
// 保证训练完成后即可推理；没有定义的编号使用通用描述。
func clusterRows(m *clustering.Model) ([]model.Cluster, error) {
	clusters := make([]model.Cluster, len(m.Centroids))
	for i, c := range m.Centroids {
		id := uint(i + 1)
		centroid, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("marshal centroid %d: %w", id, err)
		}
		row := model.Cluster{
			ID:             id,
			Name:           fmt.Sprintf("Cluster %d", id),
			Description:    fmt.Sprintf("This is a generic description for Cluster %d. Please update manually.", id),
			CentroidValues: centroid,
		}
		if d, ok := curation.Lookup(id); ok {
			genres, err := json.Marshal(d.Genres)
			if err != nil {
				return nil, fmt.Errorf("marshal genres for cluster %d: %w", id, err)
			}
			row.Name = d.Name
			row.Description = d.Description
			row.Genres = genres
			row.Reason = d.Reason
		}
		clusters[i] = row
	}
	return clusters, nil
}
