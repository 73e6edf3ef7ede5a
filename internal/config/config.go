// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Admin         AdminConfig         `mapstructure:"admin"`
	Log           LogConfig           `mapstructure:"log"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Model         ModelConfig         `mapstructure:"model"`
	Quiz          QuizConfig          `mapstructure:"quiz"`
	Recommend     RecommendConfig     `mapstructure:"recommend"`
	FreeToGame    FreeToGameConfig    `mapstructure:"freetogame"`
	Translate     TranslateConfig     `mapstructure:"translate"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
// Driver 取值 mysql 或 postgres。
type DatabaseConfig struct {
	Driver       string      `mapstructure:"driver"`
	DSN          string      `mapstructure:"dsn"`
	MaxIdleConns int         `mapstructure:"max_idle_conns"`
	MaxOpenConns int         `mapstructure:"max_open_conns"`
	Redis        RedisConfig `mapstructure:"redis"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// AdminConfig 存储管理员账号。PasswordHash 为 bcrypt 哈希。
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// CORSConfig 存储跨域配置，前端开发服务器默认运行在 5173 端口。
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置，用于保存训练好的模型文件。
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	ObjectName      string `mapstructure:"object_name"`
}

// ModelConfig 存储聚类模型训练与加载的配置。
type ModelConfig struct {
	Path          string  `mapstructure:"path"`
	Clusters      int     `mapstructure:"clusters"`
	Restarts      int     `mapstructure:"restarts"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
	Seed          uint64  `mapstructure:"seed"`
	// LockTTL 是重新训练时 Redis 锁的有效期
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// QuizConfig 存储问卷相关的配置。
type QuizConfig struct {
	PersistSubmissions bool `mapstructure:"persist_submissions"`
}

// RecommendConfig 存储推荐结果相关的配置。
type RecommendConfig struct {
	Count    int           `mapstructure:"count"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// FreeToGameConfig 存储游戏目录抓取接口的配置。
type FreeToGameConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// TranslateConfig 存储游戏简介翻译接口（兼容 LibreTranslate）的配置。
type TranslateConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Target           string        `mapstructure:"target"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// setDefaults 为可选配置项设置默认值。
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cors.allow_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("kafka.topic", "recommender-tasks")
	v.SetDefault("kafka.group_id", "game-recommender-consumer")
	v.SetDefault("elasticsearch.index_name", "games")
	v.SetDefault("minio.bucket_name", "ml-models")
	v.SetDefault("minio.object_name", "kmeans_model.gob.gz")
	v.SetDefault("model.path", "ml_models/kmeans_model.gob.gz")
	v.SetDefault("model.clusters", 8)
	v.SetDefault("model.restarts", 10)
	v.SetDefault("model.max_iterations", 300)
	v.SetDefault("model.tolerance", 1e-4)
	v.SetDefault("model.seed", 42)
	v.SetDefault("model.lock_ttl", 10*time.Minute)
	v.SetDefault("quiz.persist_submissions", true)
	v.SetDefault("recommend.count", 3)
	v.SetDefault("recommend.cache_ttl", 30*time.Minute)
	v.SetDefault("freetogame.base_url", "https://www.freetogame.com/api")
	v.SetDefault("freetogame.timeout", 30*time.Second)
	v.SetDefault("freetogame.failure_threshold", 3)
	v.SetDefault("freetogame.open_timeout", time.Minute)
	v.SetDefault("translate.target", "ko")
	v.SetDefault("translate.timeout", 10*time.Second)
	v.SetDefault("translate.failure_threshold", 3)
	v.SetDefault("translate.open_timeout", time.Minute)
}

// Load 从指定路径读取 YAML 文件，环境变量可覆盖同名配置（例如 DATABASE_DSN）。
func Load(configPath string) (Config, error) {
	// .env 文件是可选的
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}

// Init 初始化配置加载，并将结果写入全局变量 Conf。失败时直接 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
