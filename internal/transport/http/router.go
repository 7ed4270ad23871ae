package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires the REST routes, the quiz websocket and operational endpoints.
func NewRouter(questions *QuestionHandler, ws *WSHandler, logger zerolog.Logger, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		requestContext(logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(http.StatusInternalServerError))
		}),
		corsMiddleware(corsOrigins),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody(http.StatusNotFound))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorBody(http.StatusMethodNotAllowed))
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/categories", questions.ListCategories)
	r.GET("/categories/:id/questions", questions.CategoryQuestions)
	r.GET("/questions", questions.ListQuestions)
	r.POST("/questions", questions.PostQuestions)
	r.DELETE("/questions/:id", questions.DeleteQuestion)
	r.POST("/quizzes", questions.PlayQuiz)

	if ws != nil {
		r.GET("/ws/quiz", ws.ServeWS)
	}
	return r
}
