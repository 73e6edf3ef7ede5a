package service

import (
	"errors"
	"testing"

	"game-recommender-go/internal/clustering"
	"game-recommender-go/internal/config"
	"game-recommender-go/pkg/hash"
	"game-recommender-go/pkg/token"
)

func TestAdminLogin(t *testing.T) {
	h, err := hash.HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	jwtManager := token.NewJWTManager("secret", 1)

	svc := NewAdminService(config.AdminConfig{Username: "admin", PasswordHash: h}, jwtManager, clustering.NewHolder(nil))
	tok, err := svc.Login("admin", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := jwtManager.VerifyToken(tok)
	if err != nil || claims.Role != RoleAdmin {
		t.Fatalf("claims = %+v, err = %v", claims, err)
	}

	for _, tc := range [][2]string{{"admin", "wrong"}, {"root", "pw"}} {
		if _, err := svc.Login(tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q) err = %v", tc[0], tc[1], err)
		}
	}

	disabled := NewAdminService(config.AdminConfig{Username: "admin"}, jwtManager, clustering.NewHolder(nil))
	if _, err := disabled.Login("admin", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login without configured hash: err = %v", err)
	}
}

func TestAdminModelInfo(t *testing.T) {
	jwtManager := token.NewJWTManager("secret", 1)
	if _, err := NewAdminService(config.AdminConfig{}, jwtManager, clustering.NewHolder(nil)).ModelInfo(); !errors.Is(err, clustering.ErrModelNotLoaded) {
		t.Errorf("err = %v, want ErrModelNotLoaded", err)
	}

	m := &clustering.Model{Centroids: [][]float64{{1}}, Meta: clustering.Metadata{K: 1, Checksum: "abc"}}
	meta, err := NewAdminService(config.AdminConfig{}, jwtManager, clustering.NewStaticHolder(m)).ModelInfo()
	if err != nil || meta.K != 1 || meta.Checksum != "abc" {
		t.Errorf("meta = %+v, err = %v", meta, err)
	}
}
