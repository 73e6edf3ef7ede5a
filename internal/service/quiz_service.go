// Package service 包含了应用的业务逻辑层。
package service

import (
	"fmt"

	"game-recommender-go/internal/model"
	"game-recommender-go/internal/quiz"
	"game-recommender-go/internal/repository"
	"game-recommender-go/pkg/log"
)

// QuizService 接口定义了问卷相关的业务操作。
type QuizService interface {
	ListQuestions() ([]model.Question, error)
	// SubmitResponses 保存一次提交中已作答的题目。同一会话只写入一次。
	SubmitResponses(sessionID string, items []model.ResponseItem) error
}

type quizService struct {
	questionRepo repository.QuestionRepository
	responseRepo repository.ResponseRepository
}

// NewQuizService 创建一个新的 QuizService 实例。
func NewQuizService(questionRepo repository.QuestionRepository, responseRepo repository.ResponseRepository) QuizService {
	return &quizService{
		questionRepo: questionRepo,
		responseRepo: responseRepo,
	}
}

func (s *quizService) ListQuestions() ([]model.Question, error) {
	return s.questionRepo.FindAll()
}

func (s *quizService) SubmitResponses(sessionID string, items []model.ResponseItem) error {
	answers, err := ParseAnswers(items)
	if err != nil {
		return err
	}
	if sessionID == "" || len(answers) == 0 {
		return nil
	}

	exists, err := s.responseRepo.SessionExists(sessionID)
	if err != nil {
		return err
	}
	if exists {
		log.Infof("会话 %s 已提交过作答，跳过写入", sessionID)
		return nil
	}

	responses := make([]model.UserResponse, 0, len(answers))
	for q := 1; q <= quiz.NumQuestions; q++ {
		v, ok := answers[q]
		if !ok {
			continue
		}
		responses = append(responses, model.UserResponse{
			SessionID:     sessionID,
			QuestionID:    uint(q),
			ResponseValue: v,
		})
	}
	return s.responseRepo.CreateBatch(responses)
}

// ParseAnswers 校验作答列表并转换为 题号 -> 取值。
// response_value 为 null 的题目视为未作答；同一题号出现两次视为非法。
func ParseAnswers(items []model.ResponseItem) (map[int]int, error) {
	answers := make(map[int]int, len(items))
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if !quiz.ValidQuestionID(item.QuestionID) {
			return nil, fmt.Errorf("%w: question_id %d out of range", ErrInvalidResponse, item.QuestionID)
		}
		if _, dup := seen[item.QuestionID]; dup {
			return nil, fmt.Errorf("%w: duplicate question_id %d", ErrInvalidResponse, item.QuestionID)
		}
		seen[item.QuestionID] = struct{}{}
		if item.ResponseValue == nil {
			continue
		}
		if err := quiz.ValidateAnswer(item.QuestionID, *item.ResponseValue); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		answers[item.QuestionID] = *item.ResponseValue
	}
	return answers, nil
}
