package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"game-recommender-go/internal/clustering"
	"game-recommender-go/internal/config"
	"game-recommender-go/internal/curation"
	"game-recommender-go/internal/model"
	"game-recommender-go/internal/synthetic"
)

func testModelConfig() config.ModelConfig {
	return config.ModelConfig{Clusters: 8, Restarts: 3, MaxIterations: 100, Tolerance: 1e-4, Seed: 42}
}

func seededResponses(t *testing.T, seed uint64) *fakeResponseRepo {
	t.Helper()
	responses := &fakeResponseRepo{}
	n := 0
	// 会话 ID 决定训练行的顺序，这里使用递增编号保证可复现
	seeder := &seedService{
		questionRepo: newFakeQuestionRepo(),
		responseRepo: responses,
		newSessionID: func() string {
			n++
			return fmt.Sprintf("session-%04d", n)
		},
	}
	if _, err := seeder.SeedResponses(synthetic.DefaultArchetypes(), synthetic.NewRand(seed)); err != nil {
		t.Fatalf("SeedResponses: %v", err)
	}
	return responses
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestTrainNoData(t *testing.T) {
	dir := t.TempDir()
	store := clustering.NewFileStore(filepath.Join(dir, "model.gob.gz"))
	clusters := newFakeClusterRepo(testCluster(1, "Shooter"))

	svc := NewTrainingService(&fakeResponseRepo{}, clusters, store, nil, nil, testModelConfig())
	_, err := svc.Train(context.Background())
	if !errors.Is(err, ErrNoTrainingData) {
		t.Fatalf("err = %v, want ErrNoTrainingData", err)
	}
	if clusters.replaceCalls != 0 || len(clusters.clusters) != 1 {
		t.Error("cluster table touched without training data")
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("files written without training data: %v", names)
	}
}

func TestTrainWritesModelAndClusters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models", "model.gob.gz")
	clusters := newFakeClusterRepo(testCluster(42, "Old"))
	publisher := &fakePublisher{}
	locker := &fakeLocker{}

	svc := NewTrainingService(seededResponses(t, 3), clusters, clustering.NewFileStore(path), publisher, locker, testModelConfig())
	res, err := svc.Train(context.Background())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if res.Sessions != 400 || res.Meta.K != 8 {
		t.Errorf("result = %+v", res)
	}

	if len(clusters.clusters) != 8 {
		t.Fatalf("got %d cluster rows, want 8", len(clusters.clusters))
	}
	for id := uint(1); id <= 8; id++ {
		c, ok := clusters.clusters[id]
		if !ok {
			t.Fatalf("cluster %d missing", id)
		}
		centroid, err := c.Centroid()
		if err != nil || len(centroid) != 15 {
			t.Errorf("cluster %d centroid = %v, err = %v", id, centroid, err)
		}
	}

	m, err := clustering.NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Meta.Checksum != res.Meta.Checksum {
		t.Errorf("stored checksum %s, trained %s", m.Meta.Checksum, res.Meta.Checksum)
	}
	if names := listDir(t, filepath.Dir(path)); len(names) != 1 {
		t.Errorf("leftover files: %v", names)
	}
	if len(publisher.paths) != 1 || publisher.paths[0] != path {
		t.Errorf("published %v", publisher.paths)
	}
	if locker.held || locker.released != 1 {
		t.Errorf("lock not released: %+v", locker)
	}
}

func TestTrainDeterministic(t *testing.T) {
	a, err := NewTrainingService(seededResponses(t, 11), newFakeClusterRepo(), clustering.NewFileStore(filepath.Join(t.TempDir(), "m")), nil, nil, testModelConfig()).Train(context.Background())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	b, err := NewTrainingService(seededResponses(t, 11), newFakeClusterRepo(), clustering.NewFileStore(filepath.Join(t.TempDir(), "m")), nil, nil, testModelConfig()).Train(context.Background())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if a.Meta.Checksum != b.Meta.Checksum {
		t.Errorf("same seed and data produced different models: %s vs %s", a.Meta.Checksum, b.Meta.Checksum)
	}
}

func TestTrainLockHeld(t *testing.T) {
	locker := &fakeLocker{held: true}
	svc := NewTrainingService(seededResponses(t, 1), newFakeClusterRepo(), clustering.NewFileStore(filepath.Join(t.TempDir(), "m")), nil, locker, testModelConfig())
	if _, err := svc.Train(context.Background()); !errors.Is(err, ErrRetrainInProgress) {
		t.Fatalf("err = %v, want ErrRetrainInProgress", err)
	}
}

func TestTrainKeepsPreviousModelOnDBFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gob.gz")
	store := clustering.NewFileStore(path)

	first, err := NewTrainingService(seededResponses(t, 5), newFakeClusterRepo(), store, nil, nil, testModelConfig()).Train(context.Background())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	failing := newFakeClusterRepo()
	failing.replaceErr = errors.New("db down")
	cfg := testModelConfig()
	cfg.Seed = 99
	if _, err := NewTrainingService(seededResponses(t, 6), failing, store, nil, nil, cfg).Train(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	m, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Meta.Checksum != first.Meta.Checksum {
		t.Error("live model replaced despite failed cluster refresh")
	}
	if names := listDir(t, dir); len(names) != 1 {
		t.Errorf("temp artifact left behind: %v", names)
	}
}

func TestTrainRowsCarryDefinitions(t *testing.T) {
	clusters := newFakeClusterRepo()
	cfg := testModelConfig()
	cfg.Clusters = 9
	svc := NewTrainingService(seededResponses(t, 8), clusters, clustering.NewFileStore(filepath.Join(t.TempDir(), "m")), nil, nil, cfg)
	if _, err := svc.Train(context.Background()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	for id := uint(1); id <= 8; id++ {
		def, _ := curation.Lookup(id)
		c := clusters.clusters[id]
		genres, err := c.GenreList()
		if err != nil || len(genres) != len(def.Genres) {
			t.Errorf("cluster %d genres = %v, err = %v", id, genres, err)
		}
		if c.Name != def.Name || c.Reason != def.Reason {
			t.Errorf("cluster %d = %q / %q, want curated values", id, c.Name, c.Reason)
		}
	}
	// 没有人工定义的编号保留通用描述
	extra := clusters.clusters[9]
	if extra.Name != "Cluster 9" || len(extra.Genres) != 0 {
		t.Errorf("cluster 9 = %+v", extra)
	}
}

func TestTrainFirstRunDBFailureLeavesNoModel(t *testing.T) {
	dir := t.TempDir()
	failing := newFakeClusterRepo()
	failing.replaceErr = errors.New("db down")

	svc := NewTrainingService(seededResponses(t, 4), failing, clustering.NewFileStore(filepath.Join(dir, "model.gob.gz")), nil, nil, testModelConfig())
	if _, err := svc.Train(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("model files left after failed cluster refresh: %v", names)
	}
}

func TestPivotResponses(t *testing.T) {
	responses := []model.UserResponse{
		{SessionID: "b", QuestionID: 1, ResponseValue: 5},
		{SessionID: "a", QuestionID: 15, ResponseValue: 2},
		{SessionID: "a", QuestionID: 1, ResponseValue: 4},
	}
	data := PivotResponses(responses)
	if len(data) != 2 {
		t.Fatalf("rows = %d, want 2", len(data))
	}
	// 行按会话 ID 排序：a 在前
	if data[0][0] != 4 || data[0][14] != 2 || data[0][5] != 0 {
		t.Errorf("row a = %v", data[0])
	}
	if data[1][0] != 5 || data[1][14] != 0 {
		t.Errorf("row b = %v", data[1])
	}
}
