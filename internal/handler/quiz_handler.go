package handler

import (
	"net/http"

	"game-recommender-go/internal/model"
	"game-recommender-go/internal/service"
	"game-recommender-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// QuizHandler 负责处理问卷与推荐相关的 API 请求。
type QuizHandler struct {
	quizService      service.QuizService
	recommendService service.RecommendService
	persist          bool
}

// NewQuizHandler 创建一个新的 QuizHandler 实例。persist 为 true 时保存提交的作答。
func NewQuizHandler(quizService service.QuizService, recommendService service.RecommendService, persist bool) *QuizHandler {
	return &QuizHandler{
		quizService:      quizService,
		recommendService: recommendService,
		persist:          persist,
	}
}

// ListQuestions 返回全部题目。
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	questions, err := h.quizService.ListQuestions()
	if err != nil {
		log.Error("ListQuestions: 查询题目失败", err)
		fail(c, http.StatusInternalServerError, "获取题目失败")
		return
	}
	success(c, questions)
}

// Recommend 处理问卷提交并返回推荐结果。
func (h *QuizHandler) Recommend(c *gin.Context) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Recommend: Invalid request payload, error: %v", err)
		fail(c, http.StatusBadRequest, "无效的请求负载")
		return
	}

	if h.persist {
		if err := h.quizService.SubmitResponses(req.SessionID, req.Responses); err != nil {
			log.Warnf("Recommend: 保存作答失败, session=%s, error: %v", req.SessionID, err)
			fail(c, statusFor(err), err.Error())
			return
		}
	}

	result, err := h.recommendService.Recommend(c.Request.Context(), &req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Error("Recommend: 推荐失败", err)
			fail(c, status, "推荐失败")
			return
		}
		log.Warnf("Recommend: session=%s, error: %v", req.SessionID, err)
		fail(c, status, err.Error())
		return
	}

	log.Infow("推荐完成", "session", req.SessionID, "cluster", result.Profile.ID, "games", len(result.RecommendedGames))
	success(c, result)
}

// ListClusters 返回全部聚类画像。
func (h *QuizHandler) ListClusters(c *gin.Context) {
	clusters, err := h.recommendService.ListClusters()
	if err != nil {
		log.Error("ListClusters: 查询聚类失败", err)
		fail(c, http.StatusInternalServerError, "获取聚类失败")
		return
	}
	success(c, clusters)
}
