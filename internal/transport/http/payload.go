package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"trivia-service/internal/domain"
)

// quizRequest is the POST /quizzes body.
type quizRequest struct {
	PreviousQuestions []int                      `json:"previous_questions"`
	QuizCategory      map[string]json.RawMessage `json:"quiz_category"`
}

// category returns nil when the request carries no usable category object.
func (r quizRequest) category() (*domain.CategoryID, error) {
	value, err := looseField(r.QuizCategory, "id")
	if err != nil || value == nil {
		return nil, err
	}
	id, err := strconv.Atoi(*value)
	if err != nil {
		return nil, fmt.Errorf("%w: quiz category id %q is not an integer", domain.ErrBadRequest, *value)
	}
	category := domain.CategoryID(id)
	return &category, nil
}

// looseField reads key from a JSON object as text. Strings are returned as is and numbers in
// their literal form; absent keys and null give nil. Other JSON types are a bad request.
func looseField(fields map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %s must be a string or a number", domain.ErrBadRequest, key)
	}
	text := n.String()
	return &text, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
