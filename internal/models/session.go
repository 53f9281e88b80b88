package models

import "time"

// ConversationState is the tagged state of one conversation session.
type ConversationState string

const (
	StateSelectingPair   ConversationState = "SelectingPair"
	StateEnteringScore   ConversationState = "EnteringScore"
	StateAwaitingPayment ConversationState = "AwaitingPayment"
	StateCompleted       ConversationState = "Completed"
	StateCancelled       ConversationState = "Cancelled"
)

// IsTerminal reports whether the conversation has ended.
func (s ConversationState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Session is one per-user conversation record. Created on first
// interaction, mutated only through the state machine, discarded on a
// terminal state.
type Session struct {
	ID              string            `json:"id"`
	ChatID          string            `json:"chatId"`
	State           ConversationState `json:"state"`
	Pair            SubjectPair       `json:"pair"`
	Score           float64           `json:"score"`
	Recommendations []Recommendation  `json:"recommendations,omitempty"`
	MerchantTransID string            `json:"merchantTransId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	LastActivity    time.Time         `json:"lastActivity"`
}

// UpdateActivity updates the last activity timestamp
func (s *Session) UpdateActivity() {
	s.LastActivity = time.Now()
}

// SessionStore defines session data access. Sessions are in-memory only;
// losing them on restart is accepted.
type SessionStore interface {
	Create(session *Session) error
	Get(chatID string) (*Session, bool)
	Update(session *Session) error
	Delete(chatID string)
}
