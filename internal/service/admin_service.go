package service

import (
	"game-recommender-go/internal/clustering"
	"game-recommender-go/internal/config"
	"game-recommender-go/pkg/hash"
	"game-recommender-go/pkg/token"
)

// RoleAdmin 是管理员 token 中的角色。
const RoleAdmin = "ADMIN"

// AdminService 接口定义了管理员相关的业务操作。
type AdminService interface {
	Login(username, password string) (string, error)
	ModelInfo() (*clustering.Metadata, error)
}

type adminService struct {
	cfg        config.AdminConfig
	jwtManager *token.JWTManager
	holder     *clustering.Holder
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(cfg config.AdminConfig, jwtManager *token.JWTManager, holder *clustering.Holder) AdminService {
	return &adminService{cfg: cfg, jwtManager: jwtManager, holder: holder}
}

// Login 校验配置中的管理员账号，成功时签发 access token。未配置密码哈希时拒绝所有登录。
func (s *adminService) Login(username, password string) (string, error) {
	if s.cfg.PasswordHash == "" || username != s.cfg.Username {
		return "", ErrInvalidCredentials
	}
	if !hash.CheckPasswordHash(password, s.cfg.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.jwtManager.GenerateToken(username, RoleAdmin)
}

// ModelInfo 返回当前加载模型的元数据。
func (s *adminService) ModelInfo() (*clustering.Metadata, error) {
	m := s.holder.Current()
	if m == nil {
		return nil, clustering.ErrModelNotLoaded
	}
	meta := m.Meta
	return &meta, nil
}
