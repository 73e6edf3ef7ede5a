// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"game-recommender-go/internal/config"
	"game-recommender-go/pkg/log"
	"game-recommender-go/pkg/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

// maxAttempts 是单个任务的最大处理次数，达到后提交 offset 放弃该任务。
const maxAttempts = 3

// TaskProcessor defines the interface for any service that can process a task.
// This decouples the Kafka consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.Task) error
}

// Producer 将任务写入 Kafka。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(cfg.Brokers, ",")...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// Dispatch 发送一个任务到 Kafka，消息 key 为任务类型。
func (p *Producer) Dispatch(ctx context.Context, task tasks.Task) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.Type),
		Value: taskBytes,
	})
}

// Close 关闭生产者。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// StartConsumer 启动一个 Kafka 消费者来处理离线任务，ctx 取消时退出。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor, rdb *redis.Client) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.Brokers, ","),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Error("关闭 Kafka 消费者失败", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Error("从 Kafka 读取消息失败", err)
			return
		}

		var task tasks.Task
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			commit(ctx, r, m)
			continue
		}

		log.Infof("开始处理任务: ID=%s, Type=%s, offset=%d", task.ID, task.Type, m.Offset)
		if err := processWithRetry(ctx, processor, redisAttempts{rdb: rdb}, task, retryBackoff); err != nil {
			if ctx.Err() != nil {
				// 关闭过程中中断，不提交 offset，重启后重新投递
				log.Info("Kafka 消费者已停止")
				return
			}
			log.Errorf("任务多次失败(>=%d)，提交 offset 放弃该任务: ID=%s, Error: %v", maxAttempts, task.ID, err)
		} else {
			log.Infof("任务处理成功: ID=%s", task.ID)
		}
		commit(ctx, r, m)
	}
}

// retryBackoff 是两次重试之间的基础等待时间，按已失败次数线性增长。
var retryBackoff = 5 * time.Second

// attemptCounter 记录任务的失败次数。计数保存在 Redis 中，消费者重启后仍然有效。
type attemptCounter interface {
	Incr(ctx context.Context, taskID string) (int64, error)
	Reset(ctx context.Context, taskID string)
}

type redisAttempts struct {
	rdb *redis.Client
}

func (a redisAttempts) key(taskID string) string {
	return fmt.Sprintf("kafka:attempts:%s", taskID)
}

func (a redisAttempts) Incr(ctx context.Context, taskID string) (int64, error) {
	n, err := a.rdb.Incr(ctx, a.key(taskID)).Result()
	if err != nil {
		return 0, err
	}
	_ = a.rdb.Expire(ctx, a.key(taskID), 24*time.Hour).Err()
	return n, nil
}

func (a redisAttempts) Reset(ctx context.Context, taskID string) {
	_ = a.rdb.Del(ctx, a.key(taskID)).Err()
}

// processWithRetry 在当前消费者内重复处理同一条消息，直到成功或失败次数达到 maxAttempts。
// Redis 不可用时退回到本地计数。
func processWithRetry(ctx context.Context, processor TaskProcessor, counter attemptCounter, task tasks.Task, backoff time.Duration) error {
	var local int64
	for {
		err := processor.Process(ctx, task)
		if err == nil {
			counter.Reset(ctx, task.ID)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		local++
		attempts, incErr := counter.Incr(ctx, task.ID)
		if incErr != nil {
			log.Warnf("记录任务失败次数失败，使用本地计数: %v", incErr)
			attempts = local
		}
		if attempts >= maxAttempts {
			counter.Reset(ctx, task.ID)
			return err
		}
		log.Warnf("处理任务失败，准备第 %d 次重试: ID=%s, Error: %v", attempts+1, task.ID, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff * time.Duration(attempts)):
		}
	}
}

func commit(ctx context.Context, r *kafka.Reader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}
