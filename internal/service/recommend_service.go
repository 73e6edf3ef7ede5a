package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"game-recommender-go/internal/clustering"
	"game-recommender-go/internal/config"
	"game-recommender-go/internal/model"
	"game-recommender-go/internal/quiz"
	"game-recommender-go/internal/repository"
	"game-recommender-go/pkg/log"

	"gorm.io/gorm"
)

// ClusterAssigner 将特征向量映射为 1..K 的聚类编号。
type ClusterAssigner interface {
	Assign(vector []float64) (int, error)
	// Fingerprint 标识当前模型，模型替换后缓存自动失效。
	Fingerprint() string
}

// RecommendService 接口定义了推理与推荐相关的业务操作。
type RecommendService interface {
	Recommend(ctx context.Context, req *model.RecommendRequest) (*model.RecommendResult, error)
	ListClusters() ([]model.ClusterProfile, error)
}

// lockedRand 让多个请求安全地共享同一个随机源。
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) shuffle(games []model.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(len(games), func(i, j int) { games[i], games[j] = games[j], games[i] })
}

type recommendService struct {
	assigner    ClusterAssigner
	clusterRepo repository.ClusterRepository
	gameRepo    repository.GameRepository
	cache       repository.RecommendationCache
	cfg         config.RecommendConfig
	rng         *lockedRand
}

// NewRecommendService 创建一个新的 RecommendService 实例。cache 可以为 nil；rng 为 nil 时使用随机种子。
func NewRecommendService(
	assigner ClusterAssigner,
	clusterRepo repository.ClusterRepository,
	gameRepo repository.GameRepository,
	cache repository.RecommendationCache,
	cfg config.RecommendConfig,
	rng *rand.Rand,
) RecommendService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Count <= 0 {
		cfg.Count = 3
	}
	return &recommendService{
		assigner:    assigner,
		clusterRepo: clusterRepo,
		gameRepo:    gameRepo,
		cache:       cache,
		cfg:         cfg,
		rng:         &lockedRand{rng: rng},
	}
}

// Recommend 根据作答计算聚类并挑选推荐游戏。未作答的题目按中立值 3 处理。
func (s *recommendService) Recommend(ctx context.Context, req *model.RecommendRequest) (*model.RecommendResult, error) {
	answers, err := ParseAnswers(req.Responses)
	if err != nil {
		return nil, err
	}
	vector := clustering.BuildVector(answers, quiz.NumQuestions, quiz.NeutralValue)

	cacheKey := ""
	if s.cache != nil && req.SessionID != "" {
		cacheKey = s.cacheKey(req.SessionID, vector)
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			log.Warnf("读取推荐缓存失败: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	clusterID, err := s.assigner.Assign(vector)
	if err != nil {
		return nil, fmt.Errorf("assign cluster: %w", err)
	}

	cluster, err := s.clusterRepo.FindByID(uint(clusterID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cluster %d", ErrClusterNotFound, clusterID)
		}
		return nil, err
	}

	genres, err := cluster.GenreList()
	if err != nil {
		return nil, fmt.Errorf("%w: cluster %d: %v", ErrClusterDefinitionNotFound, clusterID, err)
	}
	if len(genres) == 0 {
		return nil, fmt.Errorf("%w: cluster %d", ErrClusterDefinitionNotFound, clusterID)
	}

	candidates, err := s.gameRepo.FindByGenres(genres)
	if err != nil {
		return nil, err
	}

	centroid, err := cluster.Centroid()
	if err != nil {
		log.Warnf("解析聚类 %d 的质心失败: %v", cluster.ID, err)
	}

	result := &model.RecommendResult{
		Profile: model.ClusterProfile{
			ID:             cluster.ID,
			Name:           cluster.Name,
			Description:    cluster.Description,
			CentroidValues: centroid,
		},
		RecommendedGames:     s.pickGames(candidates),
		RecommendationReason: cluster.Reason,
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, result, s.cfg.CacheTTL); err != nil {
			log.Warnf("写入推荐缓存失败: %v", err)
		}
	}
	return result, nil
}

// pickGames 优先随机选择热门游戏，不足时从剩余游戏中随机补足。
func (s *recommendService) pickGames(candidates []model.Game) []model.Game {
	var popular, others []model.Game
	seen := make(map[uint]struct{}, len(candidates))
	for _, g := range candidates {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		if g.IsPopular {
			popular = append(popular, g)
		} else {
			others = append(others, g)
		}
	}

	picked := make([]model.Game, 0, s.cfg.Count)
	s.rng.shuffle(popular)
	for _, g := range popular {
		if len(picked) == s.cfg.Count {
			return picked
		}
		picked = append(picked, g)
	}
	s.rng.shuffle(others)
	for _, g := range others {
		if len(picked) == s.cfg.Count {
			break
		}
		picked = append(picked, g)
	}
	return picked
}

func (s *recommendService) cacheKey(sessionID string, vector []float64) string {
	var b strings.Builder
	b.WriteString(s.assigner.Fingerprint())
	b.WriteByte(':')
	b.WriteString(sessionID)
	b.WriteByte(':')
	for _, v := range vector {
		b.WriteString(strconv.Itoa(int(v)))
	}
	return b.String()
}

func (s *recommendService) ListClusters() ([]model.ClusterProfile, error) {
	clusters, err := s.clusterRepo.FindAll()
	if err != nil {
		return nil, err
	}
	profiles := make([]model.ClusterProfile, 0, len(clusters))
	for i := range clusters {
		centroid, err := clusters[i].Centroid()
		if err != nil {
			log.Warnf("解析聚类 %d 的质心失败: %v", clusters[i].ID, err)
		}
		profiles = append(profiles, model.ClusterProfile{
			ID:             clusters[i].ID,
			Name:           clusters[i].Name,
			Description:    clusters[i].Description,
			CentroidValues: centroid,
		})
	}
	return profiles, nil
}
