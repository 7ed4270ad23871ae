package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

// WSHandler serves quiz play over a websocket. The connection remembers the questions it
// served so clients may send only what they saw elsewhere.
type WSHandler struct {
	quiz     *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(quiz *app.QuizService) *WSHandler {
	return &WSHandler{
		quiz: quiz,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type nextPayload struct {
	PreviousQuestions []int `json:"previous_questions"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// ServeWS upgrades GET /ws/quiz?category=N and answers "next" messages with questions.
func (h *WSHandler) ServeWS(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("category"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: category query parameter is required", domain.ErrBadRequest))
		return
	}
	category := domain.CategoryID(id)
	logger := zerolog.Ctx(c.Request.Context())

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	var served []int
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var reply any
		switch inbound.Type {
		case "next":
			var payload nextPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					reply = wsError(http.StatusBadRequest)
					break
				}
			}
			question, err := drawQuestion(c.Request.Context(), h.quiz, app.DrawRequest{
				PreviousQuestions: append(payload.PreviousQuestions, served...),
				Category:          &category,
			})
			if err != nil {
				logger.Debug().Err(err).Msg("ws draw rejected")
				reply = wsError(statusFor(err))
				break
			}
			served = append(served, question.ID)
			reply = outboundMessage[domain.Question]{Type: "question", Payload: question}
		default:
			reply = wsError(http.StatusBadRequest)
		}

		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn().Err(err).Msg("ws write error")
			return
		}
	}
}

func wsError(status int) outboundMessage[errorPayload] {
	body := errorBody(status)
	return outboundMessage[errorPayload]{
		Type:    "error",
		Payload: errorPayload{Error: status, Message: body["message"].(string)},
	}
}
