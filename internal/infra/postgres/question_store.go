package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-service/internal/domain"
)

const questionColumns = `id, question, answer, category, difficulty`

// QuestionStore persists questions in Postgres. The category column is TEXT, so category
// ids are encoded with categoryKey on the way in and parsed back on the way out.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
}

func (s *QuestionStore) GetQuestion(ctx context.Context, id int) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("get question %d: %w", id, err)
	}
	return q, nil
}

func (s *QuestionStore) QuestionsByCategory(ctx context.Context, category domain.CategoryID) ([]domain.Question, error) {
	return s.query(ctx, `SELECT `+questionColumns+` FROM questions WHERE category=$1 ORDER BY id`, categoryKey(category))
}

func (s *QuestionStore) SearchQuestions(ctx context.Context, term string) ([]domain.Question, error) {
	pattern := "%" + escapeLike(term) + "%"
	return s.query(ctx, `SELECT `+questionColumns+` FROM questions WHERE question ILIKE $1 ESCAPE '\' ORDER BY id`, pattern)
}

func (s *QuestionStore) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

func (s *QuestionStore) InsertQuestion(ctx context.Context, draft domain.QuestionDraft) (domain.Question, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO questions (question, answer, category, difficulty) VALUES ($1, $2, $3, $4) RETURNING `+questionColumns,
		draft.Question, draft.Answer, categoryKey(draft.Category), draft.Difficulty)
	q, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *QuestionStore) DeleteQuestion(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *QuestionStore) query(ctx context.Context, sql string, args ...interface{}) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return questions, nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q   domain.Question
		key string
	)
	if err := row.Scan(&q.ID, &q.Question, &q.Answer, &key, &q.Difficulty); err != nil {
		return domain.Question{}, err
	}
	category, err := strconv.Atoi(key)
	if err != nil {
		return domain.Question{}, fmt.Errorf("question %d has category %q: %w", q.ID, key, err)
	}
	q.Category = domain.CategoryID(category)
	return q, nil
}

func categoryKey(id domain.CategoryID) string {
	return strconv.Itoa(int(id))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside an ILIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
