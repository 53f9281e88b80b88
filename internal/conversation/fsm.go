// internal/conversation/fsm.go
package conversation

import (
	stderrors "abiturbot/internal/common/errors"
	"abiturbot/internal/models"
)

// EventType is one external trigger of the conversation state machine.
type EventType string

const (
	EventPairSelected   EventType = "pair_selected"
	EventScoreSubmitted EventType = "score_submitted"
	EventPaymentCheck   EventType = "payment_check_requested"
	EventCancel         EventType = "cancel_requested"
)

// transitions enumerates which events each state accepts. Cancellation is
// handled separately: it is accepted in every non-terminal state. Anything
// not listed leaves the session unchanged and reports an error.
var transitions = map[models.ConversationState]map[EventType]bool{
	models.StateSelectingPair: {
		EventPairSelected: true,
	},
	models.StateEnteringScore: {
		EventScoreSubmitted: true,
	},
	models.StateAwaitingPayment: {
		EventPaymentCheck: true,
	},
}

// CheckEvent validates that the event is accepted in the given state. The
// caller only mutates the session after a nil return.
func CheckEvent(state models.ConversationState, event EventType) error {
	if event == EventCancel {
		if state.IsTerminal() {
			return stderrors.NewInvalidEventError(string(state), string(event))
		}
		return nil
	}
	if accepted, ok := transitions[state]; ok && accepted[event] {
		return nil
	}
	return stderrors.NewInvalidEventError(string(state), string(event))
}
