// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"game-recommender-go/internal/service"
	"game-recommender-go/pkg/freetogame"

	"github.com/gin-gonic/gin"
)

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": data, "message": "success"})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "message": message})
}

// statusFor 将业务错误映射为 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidResponse):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrClusterNotFound), errors.Is(err, service.ErrClusterDefinitionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRetrainInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoTrainingData), errors.Is(err, service.ErrClusterMisaligned):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSearchDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, freetogame.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
