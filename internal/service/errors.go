package service

import "errors"

var (
	// ErrNoTrainingData 表示数据库中没有任何作答，训练中止且不做任何修改。
	ErrNoTrainingData = errors.New("no training data")

	// ErrRetrainInProgress 表示已有重新训练任务持有锁。
	ErrRetrainInProgress = errors.New("retrain already in progress")

	// ErrClusterNotFound 表示模型给出的聚类编号在 clusters 表中不存在。
	ErrClusterNotFound = errors.New("cluster profile not found")

	// ErrClusterDefinitionNotFound 表示聚类缺少推荐类型定义。
	ErrClusterDefinitionNotFound = errors.New("cluster definition not found")

	// ErrClusterMisaligned 表示人工定义与 clusters 表的编号不一致。
	ErrClusterMisaligned = errors.New("cluster definitions misaligned with cluster table")

	// ErrInvalidResponse 表示提交的作答不合法。
	ErrInvalidResponse = errors.New("invalid quiz response")

	// ErrInvalidCredentials 表示管理员用户名或密码错误。
	ErrInvalidCredentials = errors.New("invalid credentials")
)
