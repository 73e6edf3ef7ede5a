// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"game-recommender-go/internal/config"
	"game-recommender-go/internal/model"
	"game-recommender-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// gamesMapping 是游戏目录索引的映射。
const gamesMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "long" },
			"freetogame_id": { "type": "integer" },
			"title": { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
			"short_description": { "type": "text" },
			"genre": { "type": "keyword" },
			"platform": { "type": "keyword" },
			"publisher": { "type": "keyword" },
			"developer": { "type": "keyword" },
			"is_popular": { "type": "boolean" }
		}
	}
}`

// InitES 初始化 Elasticsearch 客户端
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(client, esCfg.IndexName)
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(client *elasticsearch.Client, indexName string) error {
	res, err := client.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(strings.NewReader(gamesMapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// GameIndex 负责游戏目录的索引与检索。
type GameIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewGameIndex 创建一个新的 GameIndex 实例。
func NewGameIndex(client *elasticsearch.Client, indexName string) *GameIndex {
	return &GameIndex{client: client, index: indexName}
}

// IndexGame 将单个游戏写入索引，文档 ID 为 freetogame_id，重复写入会覆盖。
func (g *GameIndex) IndexGame(ctx context.Context, doc model.GameDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      g.index,
		DocumentID: strconv.Itoa(doc.FreeToGameID),
		Body:       bytes.NewReader(docBytes),
	}
	res, err := req.Do(ctx, g.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引游戏到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index game")
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source model.GameDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchGames 在标题、简介与类型中检索游戏，热门游戏优先。
func (g *GameIndex) SearchGames(ctx context.Context, query string, size int) ([]model.GameDocument, error) {
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^3", "short_description", "genre^2"},
					},
				},
				"should": map[string]interface{}{
					"term": map[string]interface{}{"is_popular": true},
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := g.client.Search(
		g.client.Search.WithContext(ctx),
		g.client.Search.WithIndex(g.index),
		g.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, err
	}
	docs := make([]model.GameDocument, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, nil
}
