package service

import (
	"context"
	"errors"

	"game-recommender-go/internal/model"
	"game-recommender-go/internal/repository"
	"game-recommender-go/pkg/freetogame"
	"game-recommender-go/pkg/log"
)

// ErrSearchDisabled 表示未启用 Elasticsearch。
var ErrSearchDisabled = errors.New("catalog search is disabled")

// PopularTitles 是导入时标记为热门的游戏标题。
var PopularTitles = map[string]struct{}{
	"Overwatch 2": {}, "PUBG: BATTLEGROUNDS": {}, "League of Legends": {}, "Apex Legends": {},
	"Fortnite": {}, "Valorant": {}, "Destiny 2": {}, "Warframe": {}, "Genshin Impact": {},
	"Lost Ark": {}, "Path of Exile": {}, "Team Fortress 2": {}, "Dota 2": {}, "Rocket League": {},
	"Brawlhalla": {}, "Smite": {}, "Paladins": {}, "World of Tanks": {}, "World of Warships": {},
	"Hearthstone: Heroes of Warcraft": {}, "Fall Guys": {}, "Roblox": {}, "Guild Wars 2": {},
	"Star Wars: The Old Republic": {}, "The Elder Scrolls: Legends": {},
}

// GameIndexer 是游戏目录的全文索引。
type GameIndexer interface {
	IndexGame(ctx context.Context, doc model.GameDocument) error
	SearchGames(ctx context.Context, query string, size int) ([]model.GameDocument, error)
}

// Translator 将游戏简介翻译为目标语言。
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// IngestResult 汇总一次目录导入。
type IngestResult struct {
	Fetched int `json:"fetched"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	// Untranslated 是翻译失败、保留原文简介的游戏数量。
	Untranslated int `json:"untranslated"`
}

// CatalogService 负责游戏目录的导入与检索。
type CatalogService interface {
	Ingest(ctx context.Context) (*IngestResult, error)
	Search(ctx context.Context, query string, size int) ([]model.GameDocument, error)
}

type catalogService struct {
	gameRepo   repository.GameRepository
	client     freetogame.Client
	indexer    GameIndexer
	translator Translator
}

// NewCatalogService 创建一个新的 CatalogService 实例。
// indexer 为 nil 时不写入也不支持检索；translator 为 nil 时保留原文简介。
func NewCatalogService(gameRepo repository.GameRepository, client freetogame.Client, indexer GameIndexer, translator Translator) CatalogService {
	return &catalogService{gameRepo: gameRepo, client: client, indexer: indexer, translator: translator}
}

// Ingest 拉取目录并写入尚不存在的游戏。单个游戏失败只记录日志并跳过。
func (s *catalogService) Ingest(ctx context.Context) (*IngestResult, error) {
	games, err := s.client.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.gameRepo.ExistingFreeToGameIDs()
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Fetched: len(games)}
	for _, g := range games {
		if _, ok := existing[g.ID]; ok {
			result.Skipped++
			continue
		}
		_, popular := PopularTitles[g.Title]
		description := g.ShortDescription
		if s.translator != nil {
			translated, err := s.translator.Translate(ctx, description)
			if err != nil {
				log.Warnf("翻译游戏 '%s' 的简介失败，保留原文: %v", g.Title, err)
				result.Untranslated++
			} else {
				description = translated
			}
		}
		game := &model.Game{
			FreeToGameID:     g.ID,
			Title:            g.Title,
			Thumbnail:        g.Thumbnail,
			ShortDescription: description,
			GameURL:          g.GameURL,
			Genre:            g.Genre,
			Platform:         g.Platform,
			Publisher:        g.Publisher,
			Developer:        g.Developer,
			ReleaseDate:      g.ReleaseDate,
			ProfileURL:       g.ProfileURL,
			IsPopular:        popular,
		}
		if err := s.gameRepo.Create(game); err != nil {
			log.Warnf("写入游戏 '%s' (ID: %d) 失败: %v", g.Title, g.ID, err)
			result.Failed++
			continue
		}
		existing[g.ID] = struct{}{}
		result.Added++

		if s.indexer != nil {
			if err := s.indexer.IndexGame(ctx, model.NewGameDocument(*game)); err != nil {
				log.Warnf("索引游戏 '%s' 失败: %v", g.Title, err)
			}
		}
	}
	log.Infow("游戏目录导入完成", "fetched", result.Fetched, "added", result.Added, "skipped", result.Skipped, "failed", result.Failed, "untranslated", result.Untranslated)
	return result, nil
}

func (s *catalogService) Search(ctx context.Context, query string, size int) ([]model.GameDocument, error) {
	if s.indexer == nil {
		return nil, ErrSearchDisabled
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.indexer.SearchGames(ctx, query, size)
}
