package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/metrics"
)

// QuestionHandler exposes the question bank and quiz play over REST.
type QuestionHandler struct {
	questions *app.QuestionService
	quiz      *app.QuizService
}

func NewQuestionHandler(questions *app.QuestionService, quiz *app.QuizService) *QuestionHandler {
	return &QuestionHandler{questions: questions, quiz: quiz}
}

// ListCategories handles GET /categories.
func (h *QuestionHandler) ListCategories(c *gin.Context) {
	categories, err := h.questions.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
	})
}

// ListQuestions handles GET /questions?page=N.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, err := h.questions.ListQuestions(c.Request.Context(), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"questions":        page.Questions,
		"total_questions":  page.TotalQuestions,
		"categories":       page.Categories,
		"current_category": nil,
	})
}

// CategoryQuestions handles GET /categories/:id/questions?page=N.
func (h *QuestionHandler) CategoryQuestions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: category id %q", domain.ErrNotFound, c.Param("id")))
		return
	}
	page, err := h.questions.QuestionsByCategory(c.Request.Context(), domain.CategoryID(id), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"questions":        page.Questions,
		"total_questions":  page.TotalQuestions,
		"current_category": page.CurrentCategory,
	})
}

// PostQuestions handles POST /questions. A body with a searchTerm is a search,
// anything else is a create.
func (h *QuestionHandler) PostQuestions(c *gin.Context) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrBadRequest, err))
		return
	}
	if raw, ok := body["searchTerm"]; ok && !isNull(raw) {
		h.searchQuestions(c, raw)
		return
	}
	h.createQuestion(c, body)
}

func (h *QuestionHandler) searchQuestions(c *gin.Context, raw json.RawMessage) {
	var term string
	if err := json.Unmarshal(raw, &term); err != nil {
		respondError(c, fmt.Errorf("%w: searchTerm must be a string", domain.ErrBadRequest))
		return
	}
	page, err := h.questions.SearchQuestions(c.Request.Context(), term, pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"questions":       page.Questions,
		"total_questions": page.TotalQuestions,
	})
}

func (h *QuestionHandler) createQuestion(c *gin.Context, body map[string]json.RawMessage) {
	var in app.NewQuestion
	for _, f := range []struct {
		key string
		dst **string
	}{
		{"question", &in.Question},
		{"answer", &in.Answer},
		{"difficulty", &in.Difficulty},
		{"category", &in.Category},
	} {
		value, err := looseField(body, f.key)
		if err != nil {
			respondError(c, err)
			return
		}
		*f.dst = value
	}

	id, err := h.questions.CreateQuestion(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": id,
	})
}

// DeleteQuestion handles DELETE /questions/:id.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: question id %q", domain.ErrNotFound, c.Param("id")))
		return
	}
	deleted, err := h.questions.DeleteQuestion(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}

// PlayQuiz handles POST /quizzes.
func (h *QuestionHandler) PlayQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrBadRequest, err))
		return
	}
	category, err := req.category()
	if err != nil {
		respondError(c, err)
		return
	}
	question, err := drawQuestion(c.Request.Context(), h.quiz, app.DrawRequest{
		PreviousQuestions: req.PreviousQuestions,
		Category:          category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"question": question,
	})
}

// drawQuestion runs a draw and records its outcome.
func drawQuestion(ctx context.Context, quiz *app.QuizService, req app.DrawRequest) (domain.Question, error) {
	question, err := quiz.DrawNext(ctx, req)
	outcome := "served"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		outcome = "exhausted"
	case errors.Is(err, domain.ErrBadRequest):
		outcome = "rejected"
	default:
		outcome = "failed"
	}
	metrics.QuizDraws.WithLabelValues(outcome).Inc()
	return question, err
}

// pageParam reads ?page, falling back to 1 for absent or malformed values.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return page
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(status int) gin.H {
	message := "internal server error"
	switch status {
	case http.StatusBadRequest:
		message = "bad request"
	case http.StatusNotFound:
		message = "resource not found"
	case http.StatusMethodNotAllowed:
		message = "method not allowed"
	case http.StatusUnprocessableEntity:
		message = "unprocessable"
	}
	return gin.H{
		"success": false,
		"error":   status,
		"message": message,
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	logger := zerolog.Ctx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	c.AbortWithStatusJSON(status, errorBody(status))
}
