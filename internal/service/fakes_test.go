package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"game-recommender-go/internal/model"

	"gorm.io/gorm"
)

type fakeQuestionRepo struct {
	questions map[uint]model.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[uint]model.Question{}}
}

func (r *fakeQuestionRepo) FindAll() ([]model.Question, error) {
	out := make([]model.Question, 0, len(r.questions))
	for _, q := range r.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeQuestionRepo) CreateMissing(questions []model.Question) (int, error) {
	created := 0
	for _, q := range questions {
		if _, ok := r.questions[q.ID]; ok {
			continue
		}
		r.questions[q.ID] = q
		created++
	}
	return created, nil
}

type fakeResponseRepo struct {
	responses []model.UserResponse
	batches   int
}

func (r *fakeResponseRepo) CreateBatch(responses []model.UserResponse) error {
	r.batches++
	r.responses = append(r.responses, responses...)
	return nil
}

func (r *fakeResponseRepo) FindAll() ([]model.UserResponse, error) {
	return append([]model.UserResponse(nil), r.responses...), nil
}

func (r *fakeResponseRepo) SessionExists(sessionID string) (bool, error) {
	for _, resp := range r.responses {
		if resp.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

type fakeClusterRepo struct {
	clusters     map[uint]model.Cluster
	replaceErr   error
	replaceCalls int
}

func newFakeClusterRepo(clusters ...model.Cluster) *fakeClusterRepo {
	r := &fakeClusterRepo{clusters: map[uint]model.Cluster{}}
	for _, c := range clusters {
		r.clusters[c.ID] = c
	}
	return r
}

func (r *fakeClusterRepo) FindByID(id uint) (*model.Cluster, error) {
	c, ok := r.clusters[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *fakeClusterRepo) FindAll() ([]model.Cluster, error) {
	out := make([]model.Cluster, 0, len(r.clusters))
	for _, c := range r.clusters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeClusterRepo) ReplaceAll(clusters []model.Cluster) error {
	r.replaceCalls++
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.clusters = map[uint]model.Cluster{}
	for _, c := range clusters {
		r.clusters[c.ID] = c
	}
	return nil
}

func (r *fakeClusterRepo) UpdateDefinition(cluster *model.Cluster) error {
	c, ok := r.clusters[cluster.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Name = cluster.Name
	c.Description = cluster.Description
	c.Genres = cluster.Genres
	c.Reason = cluster.Reason
	r.clusters[cluster.ID] = c
	return nil
}

type fakeGameRepo struct {
	games     []model.Game
	createErr map[int]error
}

func (r *fakeGameRepo) FindByGenres(genres []string) ([]model.Game, error) {
	want := map[string]struct{}{}
	for _, g := range genres {
		want[g] = struct{}{}
	}
	var out []model.Game
	for _, g := range r.games {
		if _, ok := want[g.Genre]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGameRepo) FindAll() ([]model.Game, error) {
	return append([]model.Game(nil), r.games...), nil
}

func (r *fakeGameRepo) ExistingFreeToGameIDs() (map[int]struct{}, error) {
	set := map[int]struct{}{}
	for _, g := range r.games {
		set[g.FreeToGameID] = struct{}{}
	}
	return set, nil
}

func (r *fakeGameRepo) Create(game *model.Game) error {
	if err := r.createErr[game.FreeToGameID]; err != nil {
		return err
	}
	game.ID = uint(len(r.games) + 1)
	r.games = append(r.games, *game)
	return nil
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string]model.RecommendResult
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]model.RecommendResult{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (*model.RecommendResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, result *model.RecommendResult, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = *result
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = map[string]model.RecommendResult{}
	return n, nil
}

type fakeLocker struct {
	held     bool
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, _ string, _ time.Duration) (string, bool, error) {
	if l.held {
		return "", false, nil
	}
	l.held = true
	return "token", true, nil
}

func (l *fakeLocker) Release(_ context.Context, _ string, token string) error {
	if token != "token" {
		return errors.New("wrong token")
	}
	l.held = false
	l.released++
	return nil
}

type fakePublisher struct {
	paths []string
}

func (p *fakePublisher) Publish(_ context.Context, localPath string) error {
	p.paths = append(p.paths, localPath)
	return nil
}

// fakeAssigner 记录最后一次收到的向量并返回固定的聚类编号。
type fakeAssigner struct {
	cluster int
	calls   int
	last    []float64
}

func (a *fakeAssigner) Assign(vector []float64) (int, error) {
	a.calls++
	a.last = append([]float64(nil), vector...)
	return a.cluster, nil
}

func (a *fakeAssigner) Fingerprint() string { return "fake" }
