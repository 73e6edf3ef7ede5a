package handler

import (
	"context"
	"net/http"
	"time"

	"game-recommender-go/internal/middleware"
	"game-recommender-go/internal/pipeline"
	"game-recommender-go/internal/service"
	"game-recommender-go/pkg/log"
	"game-recommender-go/pkg/tasks"
	"game-recommender-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler 负责处理管理员 API 请求。
type AdminHandler struct {
	adminService service.AdminService
	dispatcher   pipeline.Dispatcher
	reloader     pipeline.ModelReloader
	async        bool
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。async 表示 dispatcher 只负责投递。
func NewAdminHandler(adminService service.AdminService, dispatcher pipeline.Dispatcher, reloader pipeline.ModelReloader, async bool) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		dispatcher:   dispatcher,
		reloader:     reloader,
		async:        async,
	}
}

// LoginRequest 定义了管理员登录 API 的请求体结构。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理管理员登录请求。
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载：用户名和密码不能为空")
		return
	}

	accessToken, err := h.adminService.Login(req.Username, req.Password)
	if err != nil {
		log.Warnf("Login: authentication failed for '%s', error: %v", req.Username, err)
		fail(c, http.StatusUnauthorized, "无效的凭证")
		return
	}

	log.Infof("Admin '%s' logged in successfully", req.Username)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Login successful",
		"data":    gin.H{"token": accessToken},
	})
}

// RetrainRequest 定义了重新训练 API 的请求体，curate 默认开启。
type RetrainRequest struct {
	Curate *bool `json:"curate"`
}

// Retrain 触发重新训练任务。
func (h *AdminHandler) Retrain(c *gin.Context) {
	var req RetrainRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "无效的请求负载")
			return
		}
	}
	task := h.newTask(c, tasks.TypeRetrain)
	task.Curate = req.Curate == nil || *req.Curate
	h.dispatch(c, task)
}

// Ingest 触发游戏目录导入任务。
func (h *AdminHandler) Ingest(c *gin.Context) {
	h.dispatch(c, h.newTask(c, tasks.TypeIngest))
}

func (h *AdminHandler) newTask(c *gin.Context, taskType string) tasks.Task {
	requestedBy := ""
	if v, ok := c.Get(middleware.ClaimsKey); ok {
		if claims, ok := v.(*token.CustomClaims); ok {
			requestedBy = claims.Username
		}
	}
	return tasks.Task{
		ID:          uuid.NewString(),
		Type:        taskType,
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	}
}

func (h *AdminHandler) dispatch(c *gin.Context, task tasks.Task) {
	ctx := c.Request.Context()
	if !h.async {
		// 同步执行不应随客户端断开而中断
		ctx = context.WithoutCancel(ctx)
	}
	if err := h.dispatcher.Dispatch(ctx, task); err != nil {
		log.Errorf("任务执行失败: ID=%s, Type=%s, error: %v", task.ID, task.Type, err)
		fail(c, statusFor(err), err.Error())
		return
	}

	status := "completed"
	httpStatus := http.StatusOK
	if h.async {
		status = "queued"
		httpStatus = http.StatusAccepted
	}
	c.JSON(httpStatus, gin.H{
		"code":    httpStatus,
		"message": "success",
		"data":    gin.H{"task_id": task.ID, "type": task.Type, "status": status},
	})
}

// ReloadModel 重新加载模型文件。
func (h *AdminHandler) ReloadModel(c *gin.Context) {
	if err := h.reloader.Reload(c.Request.Context()); err != nil {
		log.Error("ReloadModel: 重新加载模型失败", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.ModelInfo(c)
}

// ModelInfo 返回当前模型的元数据。
func (h *AdminHandler) ModelInfo(c *gin.Context) {
	meta, err := h.adminService.ModelInfo()
	if err != nil {
		fail(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	success(c, meta)
}
