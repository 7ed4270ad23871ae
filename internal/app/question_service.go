package app

import (
	"context"
	"fmt"
	"strconv"

	"trivia-service/internal/domain"
)

// QuestionStore abstracts how questions are persisted (in-memory, Postgres).
// Implementations return questions in insertion order and never hand out shared records.
type QuestionStore interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	GetQuestion(ctx context.Context, id int) (domain.Question, error)
	QuestionsByCategory(ctx context.Context, category domain.CategoryID) ([]domain.Question, error)
	// SearchQuestions matches term as a case-insensitive substring of the question text.
	SearchQuestions(ctx context.Context, term string) ([]domain.Question, error)
	CountQuestions(ctx context.Context) (int, error)
	InsertQuestion(ctx context.Context, draft domain.QuestionDraft) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id int) error
}

// CategoryRepository loads read-only categories (from cache/backing store).
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id domain.CategoryID) (domain.Category, error)
}

// QuestionPage is one page of a question listing.
type QuestionPage struct {
	Questions      []domain.Question
	TotalQuestions int
	// Categories is only filled by ListQuestions.
	Categories map[domain.CategoryID]string
	// CurrentCategory is nil when the listing spans all categories.
	CurrentCategory *domain.CategoryID
}

// NewQuestion holds raw create input. A nil field was absent from the request.
type NewQuestion struct {
	Question   *string
	Answer     *string
	Difficulty *string
	Category   *string
}

// QuestionService implements the question bank queries and mutations.
type QuestionService struct {
	questions  QuestionStore
	categories CategoryRepository
	pageSize   int
}

func NewQuestionService(questions QuestionStore, categories CategoryRepository, pageSize int) *QuestionService {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &QuestionService{questions: questions, categories: categories, pageSize: pageSize}
}

// PageSize reports the configured number of questions per page.
func (s *QuestionService) PageSize() int {
	return s.pageSize
}

// ListQuestions returns a page of the whole bank together with every category.
// A page past the end is reported as not found.
func (s *QuestionService) ListQuestions(ctx context.Context, page int) (QuestionPage, error) {
	questions, err := s.questions.ListQuestions(ctx)
	if err != nil {
		return QuestionPage{}, fmt.Errorf("list questions: %w", err)
	}
	items := Paginate(questions, page, s.pageSize)
	if len(items) == 0 {
		return QuestionPage{}, fmt.Errorf("%w: page %d is empty", domain.ErrNotFound, page)
	}
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return QuestionPage{}, fmt.Errorf("list categories: %w", err)
	}
	return QuestionPage{
		Questions:      items,
		TotalQuestions: len(questions),
		Categories:     domain.CategoryMap(categories),
	}, nil
}

// SearchQuestions pages through questions containing term. TotalQuestions is the size of
// the whole bank, not the number of matches.
func (s *QuestionService) SearchQuestions(ctx context.Context, term string, page int) (QuestionPage, error) {
	if term == "" {
		return QuestionPage{}, fmt.Errorf("%w: empty search term", domain.ErrBadRequest)
	}
	matches, err := s.questions.SearchQuestions(ctx, term)
	if err != nil {
		return QuestionPage{}, fmt.Errorf("search questions: %w", err)
	}
	if len(matches) == 0 {
		return QuestionPage{}, fmt.Errorf("%w: no question matches %q", domain.ErrNotFound, term)
	}
	total, err := s.questions.CountQuestions(ctx)
	if err != nil {
		return QuestionPage{}, fmt.Errorf("count questions: %w", err)
	}
	return QuestionPage{
		Questions:      Paginate(matches, page, s.pageSize),
		TotalQuestions: total,
	}, nil
}

// QuestionsByCategory pages through one category. Every failure on this path, including
// store errors, is reported as not found; the cause stays in the error chain.
func (s *QuestionService) QuestionsByCategory(ctx context.Context, id domain.CategoryID, page int) (QuestionPage, error) {
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return QuestionPage{}, fmt.Errorf("%w: category %d: %w", domain.ErrNotFound, id, err)
	}
	questions, err := s.questions.QuestionsByCategory(ctx, category.ID)
	if err != nil {
		return QuestionPage{}, fmt.Errorf("%w: questions of category %d: %w", domain.ErrNotFound, id, err)
	}
	current := category.ID
	return QuestionPage{
		Questions:       Paginate(questions, page, s.pageSize),
		TotalQuestions:  len(questions),
		CurrentCategory: &current,
	}, nil
}

// ListCategories returns every category label keyed by id.
func (s *QuestionService) ListCategories(ctx context.Context) (map[domain.CategoryID]string, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", domain.ErrNotFound)
	}
	return domain.CategoryMap(categories), nil
}

// CreateQuestion validates in and stores it, returning the assigned id. Missing or empty fields
// are a bad request; values that cannot be stored are unprocessable.
func (s *QuestionService) CreateQuestion(ctx context.Context, in NewQuestion) (int, error) {
	draft, err := in.validate()
	if err != nil {
		return 0, err
	}
	created, err := s.questions.InsertQuestion(ctx, draft)
	if err != nil {
		return 0, fmt.Errorf("%w: insert question: %w", domain.ErrUnprocessable, err)
	}
	return created.ID, nil
}

// DeleteQuestion removes the question with id and echoes the id back.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id int) (int, error) {
	question, err := s.questions.GetQuestion(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%w: question %d: %w", domain.ErrNotFound, id, err)
	}
	if err := s.questions.DeleteQuestion(ctx, question.ID); err != nil {
		return 0, fmt.Errorf("%w: delete question %d: %w", domain.ErrNotFound, id, err)
	}
	return question.ID, nil
}

func (in NewQuestion) validate() (domain.QuestionDraft, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"question", in.Question},
		{"answer", in.Answer},
		{"difficulty", in.Difficulty},
		{"category", in.Category},
	}
	for _, f := range fields {
		if f.value == nil || *f.value == "" {
			return domain.QuestionDraft{}, fmt.Errorf("%w: %s is required", domain.ErrBadRequest, f.name)
		}
	}

	difficulty, err := strconv.Atoi(*in.Difficulty)
	if err != nil {
		return domain.QuestionDraft{}, fmt.Errorf("%w: difficulty %q is not an integer", domain.ErrUnprocessable, *in.Difficulty)
	}
	category, err := strconv.Atoi(*in.Category)
	if err != nil {
		return domain.QuestionDraft{}, fmt.Errorf("%w: category %q is not an integer", domain.ErrUnprocessable, *in.Category)
	}

	return domain.QuestionDraft{
		Question:   *in.Question,
		Answer:     *in.Answer,
		Difficulty: difficulty,
		Category:   domain.CategoryID(category),
	}, nil
}
