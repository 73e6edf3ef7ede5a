package model

// ResponseItem 是一道题的作答，ResponseValue 为 nil 表示未作答。
type ResponseItem struct {
	QuestionID    int  `json:"question_id" binding:"required"`
	ResponseValue *int `json:"response_value"`
}

// RecommendRequest 定义了推荐接口的请求体。
type RecommendRequest struct {
	SessionID string         `json:"session_id"`
	Responses []ResponseItem `json:"responses"`
}

// ClusterProfile 是返回给前端的聚类画像。
type ClusterProfile struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CentroidValues []float64 `json:"centroid_values,omitempty"`
}

// RecommendResult 定义了推荐接口的响应体。
type RecommendResult struct {
	Profile              ClusterProfile `json:"profile"`
	RecommendedGames     []Game         `json:"recommended_games"`
	RecommendationReason string         `json:"recommendation_reason"`
}
