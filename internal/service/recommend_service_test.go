package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"

	"game-recommender-go/internal/config"
	"game-recommender-go/internal/model"
)

func intPtr(v int) *int { return &v }

func genresJSON(genres ...string) []byte {
	b, _ := json.Marshal(genres)
	return b
}

func testCluster(id uint, genres ...string) model.Cluster {
	return model.Cluster{
		ID:             id,
		Name:           "Cluster",
		Description:    "desc",
		CentroidValues: []byte(`[1,2,3]`),
		Genres:         genresJSON(genres...),
		Reason:         "because",
	}
}

func fullAnswers(value int) []model.ResponseItem {
	items := make([]model.ResponseItem, 15)
	for i := range items {
		items[i] = model.ResponseItem{QuestionID: i + 1, ResponseValue: intPtr(value)}
	}
	return items
}

func newTestRecommendService(assigner ClusterAssigner, clusters *fakeClusterRepo, games *fakeGameRepo, seed uint64) RecommendService {
	return NewRecommendService(assigner, clusters, games, nil, config.RecommendConfig{Count: 3}, rand.New(rand.NewPCG(seed, seed)))
}

func TestRecommendMissingAnswerDefaultsToNeutral(t *testing.T) {
	items := fullAnswers(5)
	items = append(items[:6], items[7:]...) // 去掉第 7 题
	items = append(items, model.ResponseItem{QuestionID: 7, ResponseValue: nil})

	assigner := &fakeAssigner{cluster: 1}
	svc := newTestRecommendService(assigner, newFakeClusterRepo(testCluster(1, "Shooter")), &fakeGameRepo{}, 1)

	if _, err := svc.Recommend(context.Background(), &model.RecommendRequest{Responses: items}); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for i, v := range assigner.last {
		want := 5.0
		if i == 6 {
			want = 3
		}
		if v != want {
			t.Errorf("vector[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestRecommendEmptySubmissionIsAllNeutral(t *testing.T) {
	assigner := &fakeAssigner{cluster: 1}
	svc := newTestRecommendService(assigner, newFakeClusterRepo(testCluster(1, "Shooter")), &fakeGameRepo{}, 1)

	if _, err := svc.Recommend(context.Background(), &model.RecommendRequest{}); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(assigner.last) != 15 {
		t.Fatalf("vector length = %d, want 15", len(assigner.last))
	}
	for i, v := range assigner.last {
		if v != 3 {
			t.Errorf("vector[%d] = %v, want 3", i, v)
		}
	}
}

func TestRecommendErrors(t *testing.T) {
	tests := []struct {
		name     string
		cluster  int
		clusters *fakeClusterRepo
		items    []model.ResponseItem
		want     error
	}{
		{
			name:     "cluster row missing",
			cluster:  9,
			clusters: newFakeClusterRepo(testCluster(1, "Shooter")),
			want:     ErrClusterNotFound,
		},
		{
			name:     "no genres",
			cluster:  1,
			clusters: newFakeClusterRepo(model.Cluster{ID: 1, Name: "Cluster 1"}),
			want:     ErrClusterDefinitionNotFound,
		},
		{
			name:     "value out of range",
			cluster:  1,
			clusters: newFakeClusterRepo(testCluster(1, "Shooter")),
			items:    []model.ResponseItem{{QuestionID: 1, ResponseValue: intPtr(6)}},
			want:     ErrInvalidResponse,
		},
		{
			name:     "question out of range",
			cluster:  1,
			clusters: newFakeClusterRepo(testCluster(1, "Shooter")),
			items:    []model.ResponseItem{{QuestionID: 16, ResponseValue: intPtr(3)}},
			want:     ErrInvalidResponse,
		},
		{
			name:     "duplicate question",
			cluster:  1,
			clusters: newFakeClusterRepo(testCluster(1, "Shooter")),
			items: []model.ResponseItem{
				{QuestionID: 2, ResponseValue: intPtr(3)},
				{QuestionID: 2, ResponseValue: intPtr(4)},
			},
			want: ErrInvalidResponse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestRecommendService(&fakeAssigner{cluster: tt.cluster}, tt.clusters, &fakeGameRepo{}, 1)
			_, err := svc.Recommend(context.Background(), &model.RecommendRequest{Responses: tt.items})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func catalog() *fakeGameRepo {
	return &fakeGameRepo{games: []model.Game{
		{ID: 1, Title: "Popular Shooter", Genre: "Shooter", IsPopular: true},
		{ID: 2, Title: "Popular MOBA", Genre: "MOBA", IsPopular: true},
		{ID: 3, Title: "Shooter A", Genre: "Shooter"},
		{ID: 4, Title: "Shooter B", Genre: "Shooter"},
		{ID: 5, Title: "MOBA A", Genre: "MOBA"},
		{ID: 6, Title: "Strategy A", Genre: "Strategy"},
		{ID: 7, Title: "Racing A", Genre: "Racing", IsPopular: true},
	}}
}

func TestRecommendPrefersPopularGames(t *testing.T) {
	clusters := newFakeClusterRepo(testCluster(1, "Shooter", "MOBA", "Strategy"))
	for seed := uint64(1); seed <= 50; seed++ {
		svc := newTestRecommendService(&fakeAssigner{cluster: 1}, clusters, catalog(), seed)
		res, err := svc.Recommend(context.Background(), &model.RecommendRequest{Responses: fullAnswers(3)})
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(res.RecommendedGames) != 3 {
			t.Fatalf("seed %d: got %d games, want 3", seed, len(res.RecommendedGames))
		}
		seen := map[uint]bool{}
		popular := 0
		for _, g := range res.RecommendedGames {
			if seen[g.ID] {
				t.Fatalf("seed %d: duplicate game %d", seed, g.ID)
			}
			seen[g.ID] = true
			if g.Genre == "Racing" {
				t.Fatalf("seed %d: game %q outside cluster genres", seed, g.Title)
			}
			if g.IsPopular {
				popular++
			}
		}
		if popular != 2 {
			t.Errorf("seed %d: %d popular games picked, want both in-genre popular games", seed, popular)
		}
	}
}

func TestRecommendPartialResult(t *testing.T) {
	clusters := newFakeClusterRepo(testCluster(1, "Strategy"), testCluster(2, "Sandbox"))
	svc := newTestRecommendService(&fakeAssigner{cluster: 1}, clusters, catalog(), 1)
	res, err := svc.Recommend(context.Background(), &model.RecommendRequest{})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.RecommendedGames) != 1 || res.RecommendedGames[0].ID != 6 {
		t.Errorf("games = %+v, want only Strategy A", res.RecommendedGames)
	}

	svc = newTestRecommendService(&fakeAssigner{cluster: 2}, clusters, catalog(), 1)
	res, err = svc.Recommend(context.Background(), &model.RecommendRequest{})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.RecommendedGames) != 0 {
		t.Errorf("got %d games, want 0", len(res.RecommendedGames))
	}
}

func TestRecommendProfileAndReason(t *testing.T) {
	svc := newTestRecommendService(&fakeAssigner{cluster: 1}, newFakeClusterRepo(testCluster(1, "Shooter")), catalog(), 1)
	res, err := svc.Recommend(context.Background(), &model.RecommendRequest{})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.Profile.ID != 1 || res.Profile.Name != "Cluster" || res.RecommendationReason != "because" {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(res.Profile.CentroidValues) != 3 {
		t.Errorf("centroid = %v", res.Profile.CentroidValues)
	}
}

func TestRecommendUsesCache(t *testing.T) {
	cache := newFakeCache()
	assigner := &fakeAssigner{cluster: 1}
	svc := NewRecommendService(assigner, newFakeClusterRepo(testCluster(1, "Shooter", "MOBA")), catalog(), cache,
		config.RecommendConfig{Count: 3}, rand.New(rand.NewPCG(7, 7)))

	req := &model.RecommendRequest{SessionID: "s-1", Responses: fullAnswers(4)}
	first, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	second, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if assigner.calls != 1 {
		t.Errorf("assigner called %d times, want 1", assigner.calls)
	}
	if cache.sets != 1 {
		t.Errorf("cache set %d times, want 1", cache.sets)
	}
	for i := range first.RecommendedGames {
		if first.RecommendedGames[i].ID != second.RecommendedGames[i].ID {
			t.Fatalf("cached games differ: %v vs %v", first.RecommendedGames, second.RecommendedGames)
		}
	}

	// 不同作答不命中缓存
	if _, err := svc.Recommend(context.Background(), &model.RecommendRequest{SessionID: "s-1", Responses: fullAnswers(2)}); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if assigner.calls != 2 {
		t.Errorf("assigner called %d times, want 2", assigner.calls)
	}
}

func TestListClusters(t *testing.T) {
	svc := newTestRecommendService(&fakeAssigner{}, newFakeClusterRepo(testCluster(2, "MOBA"), testCluster(1, "Shooter")), catalog(), 1)
	profiles, err := svc.ListClusters()
	if err != nil {
		t.Fatalf("ListClusters: %v", err)
	}
	if len(profiles) != 2 || profiles[0].ID != 1 || profiles[1].ID != 2 {
		t.Errorf("profiles = %+v", profiles)
	}
}
