// Package main 提供离线流水线命令：初始化数据、训练模型、写入聚类定义、导入游戏目录。
//
// 用法:
//
//	pipeline seed [--seed N]
//	pipeline train [--curate]
//	pipeline curate
//	pipeline ingest
//	pipeline hash-password --password xxx
package main

import (
	"context"
	"fmt"
	"os"

	"game-recommender-go/internal/clustering"
	"game-recommender-go/internal/config"
	"game-recommender-go/internal/model"
	"game-recommender-go/internal/repository"
	"game-recommender-go/internal/service"
	"game-recommender-go/internal/synthetic"
	"game-recommender-go/pkg/database"
	"game-recommender-go/pkg/es"
	"game-recommender-go/pkg/freetogame"
	"game-recommender-go/pkg/hash"
	"game-recommender-go/pkg/log"
	"game-recommender-go/pkg/storage"
	"game-recommender-go/pkg/translate"

	"github.com/spf13/pflag"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pipeline <seed|train|curate|ingest|hash-password> [flags]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "./configs/config.yaml", "配置文件路径")
	seed := fs.Uint64("seed", 0, "模拟数据随机种子，0 表示随机")
	curate := fs.Bool("curate", true, "训练完成后写入聚类定义")
	password := fs.String("password", "", "需要哈希的管理员密码")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	if cmd == "hash-password" {
		if *password == "" {
			fmt.Fprintln(os.Stderr, "--password is required")
			os.Exit(2)
		}
		h, err := hash.HashPassword(*password)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}

	config.Init(*configPath)
	cfg := config.Conf
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	database.InitDB(cfg.Database)
	database.Migrate(&model.Question{}, &model.UserResponse{}, &model.Game{}, &model.Cluster{}, &model.Recommendation{})

	questionRepo := repository.NewQuestionRepository(database.DB)
	responseRepo := repository.NewResponseRepository(database.DB)
	clusterRepo := repository.NewClusterRepository(database.DB)
	gameRepo := repository.NewGameRepository(database.DB)
	var locker repository.JobLocker
	var recommendCache repository.RecommendationCache
	if cfg.Database.Redis.Addr != "" {
		database.InitRedis(cfg.Database.Redis)
		locker = repository.NewJobLocker(database.RDB)
		recommendCache = repository.NewRecommendationCache(database.RDB)
	}
	curationService := service.NewCurationService(clusterRepo, recommendCache)

	ctx := context.Background()
	switch cmd {
	case "seed":
		seedService := service.NewSeedService(questionRepo, responseRepo)
		res, err := seedService.SeedResponses(synthetic.DefaultArchetypes(), synthetic.NewRand(*seed))
		if err != nil {
			log.Fatal("写入模拟数据失败", err)
		}
		log.Infof("seed 完成: 新增题目 %d, 会话 %d, 作答 %d", res.QuestionsCreated, res.Sessions, res.Responses)

	case "train":
		var publisher service.ModelPublisher
		if cfg.MinIO.Enabled {
			storage.InitMinIO(cfg.MinIO)
			publisher = storage.NewModelObjectStore(storage.MinioClient, cfg.MinIO)
		}
		trainingService := service.NewTrainingService(responseRepo, clusterRepo, clustering.NewFileStore(cfg.Model.Path), publisher, locker, cfg.Model)
		res, err := trainingService.Train(ctx)
		if err != nil {
			log.Fatal("训练失败", err)
		}
		log.Infow("训练完成", "sessions", res.Sessions, "k", res.Meta.K, "inertia", res.Meta.Inertia, "checksum", res.Meta.Checksum)
		if *curate {
			runCurate(ctx, curationService)
		}

	case "curate":
		runCurate(ctx, curationService)

	case "ingest":
		var indexer service.GameIndexer
		if cfg.Elasticsearch.Enabled {
			if err := es.InitES(cfg.Elasticsearch); err != nil {
				log.Fatal("es 初始化失败", err)
			}
			indexer = es.NewGameIndex(es.ESClient, cfg.Elasticsearch.IndexName)
		}
		var translator service.Translator
		if cfg.Translate.Enabled {
			translator = translate.NewClient(cfg.Translate)
		}
		catalogService := service.NewCatalogService(gameRepo, freetogame.NewClient(cfg.FreeToGame), indexer, translator)
		res, err := catalogService.Ingest(ctx)
		if err != nil {
			log.Fatal("导入游戏目录失败", err)
		}
		log.Infof("ingest 完成: 拉取 %d, 新增 %d, 跳过 %d, 失败 %d, 未翻译 %d", res.Fetched, res.Added, res.Skipped, res.Failed, res.Untranslated)

	default:
		usage()
		os.Exit(2)
	}
}

func runCurate(ctx context.Context, curationService service.CurationService) {
	report, err := curationService.Curate(ctx)
	if err != nil {
		// 编号不一致时已匹配的行仍然更新，只提示不退出
		log.Warnf("写入聚类定义: %v", err)
		if report == nil {
			os.Exit(1)
		}
		return
	}
	log.Infof("聚类定义写入完成，共 %d 个", len(report.Updated))
}
