package handler

import (
	"net/http"
	"strconv"
	"strings"

	"game-recommender-go/internal/service"
	"game-recommender-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// GameHandler 负责处理游戏目录检索请求。
type GameHandler struct {
	catalogService service.CatalogService
}

// NewGameHandler 创建一个新的 GameHandler 实例。
func NewGameHandler(catalogService service.CatalogService) *GameHandler {
	return &GameHandler{catalogService: catalogService}
}

// Search 按关键词检索游戏。
func (h *GameHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		fail(c, http.StatusBadRequest, "query 参数不能为空")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	docs, err := h.catalogService.Search(c.Request.Context(), query, size)
	if err != nil {
		log.Warnf("Search: query=%s, error: %v", query, err)
		fail(c, statusFor(err), err.Error())
		return
	}
	success(c, docs)
}
