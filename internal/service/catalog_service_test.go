package service

import (
	"context"
	"errors"
	"testing"

	"game-recommender-go/internal/model"
	"game-recommender-go/pkg/freetogame"
)

type fakeCatalogClient struct {
	games []freetogame.Game
	err   error
}

func (c *fakeCatalogClient) ListGames(context.Context) ([]freetogame.Game, error) {
	return c.games, c.err
}

type fakeIndexer struct {
	docs  []model.GameDocument
	query string
	size  int
}

func (i *fakeIndexer) IndexGame(_ context.Context, doc model.GameDocument) error {
	i.docs = append(i.docs, doc)
	return nil
}

func (i *fakeIndexer) SearchGames(_ context.Context, query string, size int) ([]model.GameDocument, error) {
	i.query, i.size = query, size
	return i.docs, nil
}

func TestIngest(t *testing.T) {
	repo := &fakeGameRepo{
		games:     []model.Game{{ID: 1, FreeToGameID: 100, Title: "Already There"}},
		createErr: map[int]error{300: errors.New("constraint violation")},
	}
	client := &fakeCatalogClient{games: []freetogame.Game{
		{ID: 100, Title: "Already There"},
		{ID: 200, Title: "Overwatch 2", Genre: "Shooter"},
		{ID: 300, Title: "Broken"},
		{ID: 400, Title: "Obscure Game", Genre: "MMORPG"},
		{ID: 200, Title: "Overwatch 2", Genre: "Shooter"},
	}}
	indexer := &fakeIndexer{}

	res, err := NewCatalogService(repo, client, indexer, nil).Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	want := IngestResult{Fetched: 5, Added: 2, Skipped: 2, Failed: 1}
	if *res != want {
		t.Errorf("result = %+v, want %+v", *res, want)
	}

	byID := map[int]model.Game{}
	for _, g := range repo.games {
		byID[g.FreeToGameID] = g
	}
	if !byID[200].IsPopular {
		t.Error("Overwatch 2 should be flagged popular")
	}
	if byID[400].IsPopular {
		t.Error("Obscure Game should not be popular")
	}
	if len(indexer.docs) != 2 {
		t.Errorf("indexed %d docs, want 2", len(indexer.docs))
	}
}

type fakeTranslator struct {
	fail map[string]bool
}

func (f *fakeTranslator) Translate(_ context.Context, text string) (string, error) {
	if f.fail[text] {
		return "", errors.New("quota exceeded")
	}
	return "KO:" + text, nil
}

func TestIngestTranslatesDescriptions(t *testing.T) {
	repo := &fakeGameRepo{}
	client := &fakeCatalogClient{games: []freetogame.Game{
		{ID: 1, Title: "Warframe", ShortDescription: "Space ninjas"},
		{ID: 2, Title: "Smite", ShortDescription: "Gods fight"},
	}}
	translator := &fakeTranslator{fail: map[string]bool{"Gods fight": true}}

	res, err := NewCatalogService(repo, client, nil, translator).Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Added != 2 || res.Untranslated != 1 {
		t.Errorf("result = %+v", *res)
	}
	byID := map[int]string{}
	for _, g := range repo.games {
		byID[g.FreeToGameID] = g.ShortDescription
	}
	if byID[1] != "KO:Space ninjas" {
		t.Errorf("translated description = %q", byID[1])
	}
	if byID[2] != "Gods fight" {
		t.Errorf("failed translation should keep the original, got %q", byID[2])
	}
}

func TestIngestUpstreamFailure(t *testing.T) {
	repo := &fakeGameRepo{}
	client := &fakeCatalogClient{err: freetogame.ErrUnavailable}
	if _, err := NewCatalogService(repo, client, nil, nil).Ingest(context.Background()); !errors.Is(err, freetogame.ErrUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if len(repo.games) != 0 {
		t.Error("games written after upstream failure")
	}
}

func TestSearch(t *testing.T) {
	if _, err := NewCatalogService(&fakeGameRepo{}, &fakeCatalogClient{}, nil, nil).Search(context.Background(), "x", 5); !errors.Is(err, ErrSearchDisabled) {
		t.Fatalf("err = %v, want ErrSearchDisabled", err)
	}

	indexer := &fakeIndexer{}
	svc := NewCatalogService(&fakeGameRepo{}, &fakeCatalogClient{}, indexer, nil)
	if _, err := svc.Search(context.Background(), "shooter", 500); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if indexer.query != "shooter" || indexer.size != 10 {
		t.Errorf("query=%q size=%d", indexer.query, indexer.size)
	}
}
