package app

import (
	"context"
	"fmt"
	"math/rand"

	"trivia-service/internal/domain"
)

// DrawRequest describes the caller's quiz state. Category is nil when no category was supplied.
type DrawRequest struct {
	PreviousQuestions []int
	Category          *domain.CategoryID
}

// QuizService draws quiz questions the caller has not seen yet.
type QuizService struct {
	questions QuestionStore
	pick      func(n int) int
}

func NewQuizService(questions QuestionStore) *QuizService {
	return NewQuizServiceWithPicker(questions, rand.Intn)
}

// NewQuizServiceWithPicker lets tests control the draw. pick must return an index in [0, n).
func NewQuizServiceWithPicker(questions QuestionStore, pick func(n int) int) *QuizService {
	return &QuizService{questions: questions, pick: pick}
}

// DrawNext returns a random question from the requested scope whose id is not in
// req.PreviousQuestions. domain.AllCategories draws from the whole bank.
func (s *QuizService) DrawNext(ctx context.Context, req DrawRequest) (domain.Question, error) {
	if req.Category == nil {
		return domain.Question{}, fmt.Errorf("%w: quiz category is required", domain.ErrBadRequest)
	}

	pool, err := s.candidates(ctx, *req.Category)
	if err != nil {
		return domain.Question{}, err
	}
	pool = excludeSeen(pool, req.PreviousQuestions)
	if len(pool) == 0 {
		return domain.Question{}, fmt.Errorf("%w: no questions left in category %d", domain.ErrNotFound, *req.Category)
	}
	return pool[s.pick(len(pool))], nil
}

func (s *QuizService) candidates(ctx context.Context, scope domain.CategoryID) ([]domain.Question, error) {
	if scope == domain.AllCategories {
		questions, err := s.questions.ListQuestions(ctx)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		return questions, nil
	}
	questions, err := s.questions.QuestionsByCategory(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("questions of category %d: %w", scope, err)
	}
	return questions, nil
}

// excludeSeen returns a new slice without the questions whose id is in seen.
func excludeSeen(pool []domain.Question, seen []int) []domain.Question {
	if len(seen) == 0 {
		return pool
	}
	skip := make(map[int]struct{}, len(seen))
	for _, id := range seen {
		skip[id] = struct{}{}
	}
	remaining := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := skip[q.ID]; ok {
			continue
		}
		remaining = append(remaining, q)
	}
	return remaining
}
