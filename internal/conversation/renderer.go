// internal/conversation/renderer.go
package conversation

import "abiturbot/internal/models"

// Renderer is the abstracted chat transport. The conversation engine
// produces outputs through it and never knows which messenger is behind.
type Renderer interface {
	PromptForPair(chatID string, options []string) error
	PromptForScore(chatID string, pair string) error
	RejectLowScore(chatID string, threshold float64) error
	PaymentRequest(chatID string, link string, amount string) error
	PaymentNotConfirmed(chatID string, note string) error
	FinalResults(chatID string, score float64, recommendations []models.Recommendation) error
	TechnicalError(chatID string) error
}
