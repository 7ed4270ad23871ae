package memory

import (
	"context"
	"strings"
	"sync"

	"trivia-service/internal/domain"
)

// QuestionStore is an in-memory implementation of app.QuestionStore.
// Ids are assigned after the highest seeded id; deleted ids are never reused.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.Question
	nextID    int
}

func NewQuestionStore(seed []domain.Question) *QuestionStore {
	s := &QuestionStore{
		questions: make([]domain.Question, 0, len(seed)),
		nextID:    1,
	}
	for _, q := range seed {
		s.questions = append(s.questions, q)
		if q.ID >= s.nextID {
			s.nextID = q.ID + 1
		}
	}
	return s
}

func (s *QuestionStore) ListQuestions(_ context.Context) ([]domain.Question, error) {
	return s.filter(func(domain.Question) bool { return true }), nil
}

func (s *QuestionStore) GetQuestion(_ context.Context, id int) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.questions[i], nil
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (s *QuestionStore) QuestionsByCategory(_ context.Context, category domain.CategoryID) ([]domain.Question, error) {
	return s.filter(func(q domain.Question) bool { return q.Category == category }), nil
}

func (s *QuestionStore) SearchQuestions(_ context.Context, term string) ([]domain.Question, error) {
	needle := strings.ToLower(term)
	return s.filter(func(q domain.Question) bool {
		return strings.Contains(strings.ToLower(q.Question), needle)
	}), nil
}

func (s *QuestionStore) CountQuestions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}

func (s *QuestionStore) InsertQuestion(_ context.Context, draft domain.QuestionDraft) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := domain.Question{
		ID:         s.nextID,
		Question:   draft.Question,
		Answer:     draft.Answer,
		Category:   draft.Category,
		Difficulty: draft.Difficulty,
	}
	s.nextID++
	s.questions = append(s.questions, q)
	return q, nil
}

func (s *QuestionStore) DeleteQuestion(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.ErrQuestionNotFound
	}
	s.questions = append(s.questions[:i], s.questions[i+1:]...)
	return nil
}

// filter copies matching questions so callers never alias the store's slice.
func (s *QuestionStore) filter(keep func(domain.Question) bool) []domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func (s *QuestionStore) indexOf(id int) int {
	for i, q := range s.questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}
