// Package main 是推荐服务的入口点。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game-recommender-go/internal/clustering"
	"game-recommender-go/internal/config"
	"game-recommender-go/internal/handler"
	"game-recommender-go/internal/middleware"
	"game-recommender-go/internal/model"
	"game-recommender-go/internal/pipeline"
	"game-recommender-go/internal/repository"
	"game-recommender-go/internal/service"
	"game-recommender-go/pkg/database"
	"game-recommender-go/pkg/es"
	"game-recommender-go/pkg/freetogame"
	"game-recommender-go/pkg/kafka"
	"game-recommender-go/pkg/log"
	"game-recommender-go/pkg/storage"
	"game-recommender-go/pkg/token"
	"game-recommender-go/pkg/translate"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	// 1. 初始化配置
	config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与可选的外部依赖
	database.InitDB(cfg.Database)
	database.Migrate(&model.Question{}, &model.UserResponse{}, &model.Game{}, &model.Cluster{}, &model.Recommendation{})
	database.InitRedis(cfg.Database.Redis)

	var objectStore *storage.ModelObjectStore
	if cfg.MinIO.Enabled {
		storage.InitMinIO(cfg.MinIO)
		objectStore = storage.NewModelObjectStore(storage.MinioClient, cfg.MinIO)
	}

	var indexer service.GameIndexer
	if cfg.Elasticsearch.Enabled {
		if err := es.InitES(cfg.Elasticsearch); err != nil {
			log.Fatal("es 初始化失败", err)
		}
		indexer = es.NewGameIndex(es.ESClient, cfg.Elasticsearch.IndexName)
	}

	// 4. 加载模型，缺失时服务无法提供推理，直接退出
	fileStore := clustering.NewFileStore(cfg.Model.Path)
	holder := clustering.NewHolder(modelLoader(fileStore, objectStore))
	if err := holder.Load(context.Background()); err != nil {
		log.Fatal("加载聚类模型失败，请先运行 pipeline train", err)
	}
	meta := holder.Current().Meta
	log.Infow("聚类模型加载成功", "k", meta.K, "trained_at", meta.TrainedAt, "checksum", meta.Checksum)

	// 5. 初始化 Repository
	questionRepo := repository.NewQuestionRepository(database.DB)
	responseRepo := repository.NewResponseRepository(database.DB)
	clusterRepo := repository.NewClusterRepository(database.DB)
	gameRepo := repository.NewGameRepository(database.DB)
	recommendCache := repository.NewRecommendationCache(database.RDB)
	jobLocker := repository.NewJobLocker(database.RDB)

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	var publisher service.ModelPublisher
	if objectStore != nil {
		publisher = objectStore
	}
	quizService := service.NewQuizService(questionRepo, responseRepo)
	recommendService := service.NewRecommendService(holder, clusterRepo, gameRepo, recommendCache, cfg.Recommend, nil)
	trainingService := service.NewTrainingService(responseRepo, clusterRepo, fileStore, publisher, jobLocker, cfg.Model)
	curationService := service.NewCurationService(clusterRepo, recommendCache)
	var translator service.Translator
	if cfg.Translate.Enabled {
		translator = translate.NewClient(cfg.Translate)
	}
	catalogService := service.NewCatalogService(gameRepo, freetogame.NewClient(cfg.FreeToGame), indexer, translator)
	adminService := service.NewAdminService(cfg.Admin, jwtManager, holder)

	// 7. 初始化离线任务处理器，Kafka 启用时异步消费
	processor := pipeline.NewProcessor(trainingService, curationService, catalogService, holder)
	var dispatcher pipeline.Dispatcher = processor
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		dispatcher = producer
		go kafka.StartConsumer(consumerCtx, cfg.Kafka, processor, database.RDB)
	}

	// 8. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS(cfg.CORS))

	quizHandler := handler.NewQuizHandler(quizService, recommendService, cfg.Quiz.PersistSubmissions)
	gameHandler := handler.NewGameHandler(catalogService)
	adminHandler := handler.NewAdminHandler(adminService, dispatcher, holder, cfg.Kafka.Enabled)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "model": holder.Fingerprint()})
	})

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/questions", quizHandler.ListQuestions)
		apiV1.POST("/recommend", quizHandler.Recommend)
		apiV1.GET("/clusters", quizHandler.ListClusters)
		apiV1.GET("/games/search", gameHandler.Search)

		apiV1.POST("/admin/login", adminHandler.Login)
		admin := apiV1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminAuthMiddleware(service.RoleAdmin))
		{
			admin.POST("/retrain", adminHandler.Retrain)
			admin.POST("/ingest", adminHandler.Ingest)
			admin.POST("/model/reload", adminHandler.ReloadModel)
			admin.GET("/model", adminHandler.ModelInfo)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	stopConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}

// modelLoader 优先读取本地模型文件；本地不存在且启用了 MinIO 时，先下载再读取。
func modelLoader(fileStore *clustering.FileStore, objectStore *storage.ModelObjectStore) clustering.Loader {
	return func(ctx context.Context) (*clustering.Model, error) {
		m, err := fileStore.Load()
		if err == nil || !errors.Is(err, clustering.ErrModelNotFound) || objectStore == nil {
			return m, err
		}
		log.Warnf("本地模型不存在，尝试从 MinIO 下载: %s", fileStore.Path)
		if ferr := objectStore.Fetch(ctx, fileStore.Path); ferr != nil {
			return nil, fmt.Errorf("%w (minio fallback: %v)", err, ferr)
		}
		return fileStore.Load()
	}
}
