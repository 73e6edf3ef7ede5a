package service

import (
	"math/rand/v2"

	"game-recommender-go/internal/model"
	"game-recommender-go/internal/quiz"
	"game-recommender-go/internal/repository"
	"game-recommender-go/internal/synthetic"
	"game-recommender-go/pkg/log"

	"github.com/google/uuid"
)

// SeedResult 汇总一次初始化写入的数据量。
type SeedResult struct {
	QuestionsCreated int
	Sessions         int
	Responses        int
}

// SeedService 负责写入固定题目和模拟作答。
type SeedService interface {
	SeedQuestions() (int, error)
	// SeedResponses 为每个原型生成模拟用户并写入作答，每个模拟用户使用新的会话 ID。
	SeedResponses(archetypes []synthetic.Archetype, rng *rand.Rand) (SeedResult, error)
}

type seedService struct {
	questionRepo repository.QuestionRepository
	responseRepo repository.ResponseRepository
	newSessionID func() string
}

// NewSeedService 创建一个新的 SeedService 实例。
func NewSeedService(questionRepo repository.QuestionRepository, responseRepo repository.ResponseRepository) SeedService {
	return &seedService{
		questionRepo: questionRepo,
		responseRepo: responseRepo,
		newSessionID: uuid.NewString,
	}
}

func (s *seedService) SeedQuestions() (int, error) {
	questions := make([]model.Question, quiz.NumQuestions)
	for i, text := range quiz.QuestionTexts {
		questions[i] = model.Question{ID: uint(i + 1), Text: text}
	}
	created, err := s.questionRepo.CreateMissing(questions)
	if err != nil {
		return 0, err
	}
	log.Infof("题目初始化完成，新增 %d 条", created)
	return created, nil
}

func (s *seedService) SeedResponses(archetypes []synthetic.Archetype, rng *rand.Rand) (SeedResult, error) {
	var result SeedResult
	created, err := s.SeedQuestions()
	if err != nil {
		return result, err
	}
	result.QuestionsCreated = created

	samples := synthetic.GenerateAll(archetypes, rng)
	responses := make([]model.UserResponse, 0, len(samples)*quiz.NumQuestions)
	for _, sample := range samples {
		sessionID := s.newSessionID()
		for q, v := range sample.Values {
			responses = append(responses, model.UserResponse{
				SessionID:     sessionID,
				QuestionID:    uint(q + 1),
				ResponseValue: v,
			})
		}
	}
	if err := s.responseRepo.CreateBatch(responses); err != nil {
		return result, err
	}

	result.Sessions = len(samples)
	result.Responses = len(responses)
	log.Infow("模拟作答写入完成", "archetypes", len(archetypes), "sessions", result.Sessions, "responses", result.Responses)
	return result, nil
}
