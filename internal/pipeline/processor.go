// Package pipeline 定义了离线任务（重新训练、目录导入）的处理流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"game-recommender-go/internal/service"
	"game-recommender-go/pkg/log"
	"game-recommender-go/pkg/tasks"
)

// Dispatcher 接收离线任务。Kafka 启用时由生产者投递，否则由 Processor 同步执行。
type Dispatcher interface {
	Dispatch(ctx context.Context, task tasks.Task) error
}

// ModelReloader 在重新训练后刷新内存中的模型。
type ModelReloader interface {
	Reload(ctx context.Context) error
}

// Processor 封装了离线任务的所有依赖和逻辑。
type Processor struct {
	trainingService service.TrainingService
	curationService service.CurationService
	catalogService  service.CatalogService
	reloader        ModelReloader
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	trainingService service.TrainingService,
	curationService service.CurationService,
	catalogService service.CatalogService,
	reloader ModelReloader,
) *Processor {
	return &Processor{
		trainingService: trainingService,
		curationService: curationService,
		catalogService:  catalogService,
		reloader:        reloader,
	}
}

// Dispatch 同步执行任务。
func (p *Processor) Dispatch(ctx context.Context, task tasks.Task) error {
	return p.Process(ctx, task)
}

// Process 是离线任务的主函数。
func (p *Processor) Process(ctx context.Context, task tasks.Task) error {
	log.Infof("[Processor] 开始处理任务, ID: %s, Type: %s, RequestedBy: %s", task.ID, task.Type, task.RequestedBy)
	switch task.Type {
	case tasks.TypeRetrain:
		return p.retrain(ctx, task)
	case tasks.TypeIngest:
		_, err := p.catalogService.Ingest(ctx)
		return err
	default:
		return fmt.Errorf("unknown task type %q", task.Type)
	}
}

// retrain 训练成功后模型文件与 clusters 表都已替换，因此无论定义写入是否成功都必须重新加载模型。
func (p *Processor) retrain(ctx context.Context, task tasks.Task) error {
	result, err := p.trainingService.Train(ctx)
	if err != nil {
		return err
	}
	log.Infow("[Processor] 重新训练完成", "sessions", result.Sessions, "inertia", result.Meta.Inertia, "checksum", result.Meta.Checksum)

	var curateErr error
	if task.Curate {
		if _, curateErr = p.curationService.Curate(ctx); curateErr != nil {
			log.Errorf("[Processor] 写入聚类定义失败，继续重新加载模型: %v", curateErr)
		}
	}

	if p.reloader != nil {
		if err := p.reloader.Reload(ctx); err != nil {
			return errors.Join(curateErr, fmt.Errorf("reload model: %w", err))
		}
		log.Info("[Processor] 模型已重新加载")
	}
	return curateErr
}
