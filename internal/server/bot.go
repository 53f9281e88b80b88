// internal/server/bot.go
package server

import (
	"context"
	"net/http"
	"sync"

	stderrors "abiturbot/internal/common/errors"
	"abiturbot/internal/models"

	"github.com/gin-gonic/gin"
)

// BotReply is one message the conversation produced for a chat. The Type
// tags which rendering a messenger adapter should apply.
type BotReply struct {
	Type            string                  `json:"type"`
	Options         []string                `json:"options,omitempty"`
	Pair            string                  `json:"pair,omitempty"`
	Threshold       float64                 `json:"threshold,omitempty"`
	PayLink         string                  `json:"payLink,omitempty"`
	Amount          string                  `json:"amount,omitempty"`
	Note            string                  `json:"note,omitempty"`
	Score           float64                 `json:"score,omitempty"`
	Recommendations []models.Recommendation `json:"recommendations,omitempty"`
}

// ReplySink implements conversation.Renderer by buffering replies per chat
// until the HTTP bridge drains them into the event response.
type ReplySink struct {
	mu      sync.Mutex
	pending map[string][]BotReply
}

func NewReplySink() *ReplySink {
	return &ReplySink{pending: make(map[string][]BotReply)}
}

func (s *ReplySink) push(chatID string, reply BotReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[chatID] = append(s.pending[chatID], reply)
	return nil
}

// Drain returns and clears the chat's buffered replies.
func (s *ReplySink) Drain(chatID string) []BotReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	replies := s.pending[chatID]
	delete(s.pending, chatID)
	return replies
}

func (s *ReplySink) PromptForPair(chatID string, options []string) error {
	return s.push(chatID, BotReply{Type: "prompt_pair", Options: options})
}

func (s *ReplySink) PromptForScore(chatID string, pair string) error {
	return s.push(chatID, BotReply{Type: "prompt_score", Pair: pair})
}

func (s *ReplySink) RejectLowScore(chatID string, threshold float64) error {
	return s.push(chatID, BotReply{Type: "below_threshold", Threshold: threshold})
}

func (s *ReplySink) PaymentRequest(chatID string, link string, amount string) error {
	return s.push(chatID, BotReply{Type: "payment_request", PayLink: link, Amount: amount})
}

func (s *ReplySink) PaymentNotConfirmed(chatID string, note string) error {
	return s.push(chatID, BotReply{Type: "payment_not_confirmed", Note: note})
}

func (s *ReplySink) FinalResults(chatID string, score float64, recommendations []models.Recommendation) error {
	return s.push(chatID, BotReply{Type: "final_results", Score: score, Recommendations: recommendations})
}

func (s *ReplySink) TechnicalError(chatID string) error {
	return s.push(chatID, BotReply{Type: "technical_error"})
}

// Conversation is the slice of the conversation engine the bridge drives.
type Conversation interface {
	Start(ctx context.Context, chatID string) error
	HandleMessage(ctx context.Context, chatID, text string) error
	PaymentCheckRequested(ctx context.Context, chatID string) error
	Cancel(ctx context.Context, chatID string) error
}

// BotHandler is the transport-agnostic event bridge: a messenger adapter
// posts chat events and receives the buffered replies synchronously.
type BotHandler struct {
	engine  Conversation
	replies *ReplySink
}

func NewBotHandler(engine Conversation, replies *ReplySink) *BotHandler {
	return &BotHandler{engine: engine, replies: replies}
}

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

type eventResponse struct {
	Replies []BotReply `json:"replies"`
	Error   string     `json:"error,omitempty"`
}

func (h *BotHandler) respond(c *gin.Context, chatID string, err error) {
	resp := eventResponse{Replies: h.replies.Drain(chatID)}
	if resp.Replies == nil {
		resp.Replies = []BotReply{}
	}
	if err != nil {
		resp.Error = string(stderrors.CodeOf(err))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BotHandler) Start(c *gin.Context) {
	chatID := c.Param("chat_id")
	h.respond(c, chatID, h.engine.Start(c.Request.Context(), chatID))
}

func (h *BotHandler) Message(c *gin.Context) {
	chatID := c.Param("chat_id")
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	h.respond(c, chatID, h.engine.HandleMessage(c.Request.Context(), chatID, req.Text))
}

func (h *BotHandler) PaymentCheck(c *gin.Context) {
	chatID := c.Param("chat_id")
	h.respond(c, chatID, h.engine.PaymentCheckRequested(c.Request.Context(), chatID))
}

func (h *BotHandler) Cancel(c *gin.Context) {
	chatID := c.Param("chat_id")
	h.respond(c, chatID, h.engine.Cancel(c.Request.Context(), chatID))
}
