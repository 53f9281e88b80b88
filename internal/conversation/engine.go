// internal/conversation/engine.go
package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"abiturbot/internal/common/config"
	stderrors "abiturbot/internal/common/errors"
	"abiturbot/internal/common/logger"
	"abiturbot/internal/common/metrics"
	"abiturbot/internal/common/observability"
	recengine "abiturbot/internal/engine"
	"abiturbot/internal/models"
	"abiturbot/internal/payments"
	"abiturbot/internal/payments/click"
	"abiturbot/pkg/subjects"
)

// Gateway is the outbound payment API surface the engine depends on.
// Satisfied by *click.Client.
type Gateway interface {
	PayLink(merchantTransID string) string
	CreateInvoice(ctx context.Context, merchantTransID, phone string) (*click.InvoiceCreateResponse, error)
	InvoiceStatus(ctx context.Context, merchantTransID string) (*click.InvoiceStatusResponse, error)
}

// Engine drives the conversation: it receives external events, walks the
// state machine, and calls the eligibility check, the recommender and the
// payment coordinator at the right transitions. One chat's events are
// processed one at a time by the transport; cross-chat concurrency is
// handled by the keyed stores.
type Engine struct {
	paymentCfg  config.PaymentConfig
	catalog     *models.Catalog
	sessions    models.SessionStore
	payStore    payments.Store
	gateway     Gateway
	recommender *recengine.Engine
	renderer    Renderer
	logger      logger.Logger
	obs         *observability.Observability
	now         func() time.Time
}

type Deps struct {
	PaymentCfg  config.PaymentConfig
	Catalog     *models.Catalog
	Sessions    models.SessionStore
	Payments    payments.Store
	Gateway     Gateway
	Recommender *recengine.Engine
	Renderer    Renderer
	Logger      logger.Logger
	Obs         *observability.Observability
}

func NewEngine(deps Deps) *Engine {
	return &Engine{
		paymentCfg:  deps.PaymentCfg,
		catalog:     deps.Catalog,
		sessions:    deps.Sessions,
		payStore:    deps.Payments,
		gateway:     deps.Gateway,
		recommender: deps.Recommender,
		renderer:    deps.Renderer,
		logger:      deps.Logger.WithFields(map[string]interface{}{"component": "conversation"}),
		obs:         deps.Obs,
		now:         time.Now,
	}
}

// Start opens a fresh session and offers the subject-pair menu. An
// existing session for the chat is discarded.
func (e *Engine) Start(_ context.Context, chatID string) error {
	session := &models.Session{
		ChatID: chatID,
		State:  models.StateSelectingPair,
	}
	if err := e.sessions.Create(session); err != nil {
		return err
	}

	metrics.SessionsStarted.Inc()
	e.logger.Info("session started", map[string]interface{}{"chatId": chatID})
	return e.render(chatID, e.renderer.PromptForPair(chatID, subjects.Pairs))
}

// PairSelected stores a valid menu selection and moves to score entry.
func (e *Engine) PairSelected(_ context.Context, chatID, entry string) error {
	session, err := e.session(chatID, EventPairSelected)
	if err != nil {
		return err
	}

	if !subjects.IsOffered(entry) {
		// Not in the menu: stay in SelectingPair and re-offer.
		if err := e.render(chatID, e.renderer.PromptForPair(chatID, subjects.Pairs)); err != nil {
			return err
		}
		return stderrors.NewInputFormatError("unknown subject pair " + entry)
	}

	pair, err := subjects.Parse(entry)
	if err != nil {
		return stderrors.NewInputFormatError(err.Error())
	}

	session.Pair = pair
	session.State = models.StateEnteringScore
	if err := e.sessions.Update(session); err != nil {
		return err
	}
	return e.render(chatID, e.renderer.PromptForScore(chatID, entry))
}

// ScoreSubmitted validates the score, runs the eligibility pre-check,
// computes and caches the ranking, and requests a payment intent. The
// ranking is computed exactly once per submission; payment polls never
// recompute it.
func (e *Engine) ScoreSubmitted(ctx context.Context, chatID, text string) error {
	session, err := e.session(chatID, EventScoreSubmitted)
	if err != nil {
		return err
	}

	if !e.paymentCfg.IsConfigured() {
		e.endSession(session, models.StateCancelled, "config_missing")
		e.render(chatID, e.renderer.TechnicalError(chatID))
		return stderrors.NewConfigMissingError("click credentials absent")
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		// Recoverable: no state change, the user resubmits.
		if err := e.render(chatID, e.renderer.PromptForScore(chatID, session.Pair.First+" - "+session.Pair.Second)); err != nil {
			return err
		}
		return stderrors.NewInputFormatError(text)
	}

	if e.catalog == nil || len(e.catalog.Universities) == 0 {
		e.endSession(session, models.StateCancelled, "catalog_unavailable")
		e.render(chatID, e.renderer.TechnicalError(chatID))
		return stderrors.NewCatalogUnavailableError(fmt.Errorf("catalog is empty"))
	}

	if threshold, found := recengine.MinimumPassingScore(session.Pair, e.catalog); found && score < threshold {
		e.endSession(session, models.StateCancelled, "below_threshold")
		if err := e.render(chatID, e.renderer.RejectLowScore(chatID, threshold)); err != nil {
			return err
		}
		return stderrors.NewBelowThresholdError(threshold)
	}

	session.Score = score
	session.Recommendations = e.recommender.FindRecommendations(session.Pair, score, e.catalog)

	merchantTransID := click.NewMerchantTransID(chatID, e.now())
	record := &models.PaymentRecord{
		SessionKey:      chatID,
		MerchantTransID: merchantTransID,
		Amount:          e.paymentCfg.Amount,
	}
	if err := e.payStore.Create(ctx, record); err != nil {
		e.logger.Error("failed to create payment record", map[string]interface{}{
			"chatId": chatID,
			"error":  err.Error(),
		})
		e.render(chatID, e.renderer.TechnicalError(chatID))
		return stderrors.NewStorageError("create", err)
	}

	if _, err := e.gateway.CreateInvoice(ctx, merchantTransID, ""); err != nil {
		// Retryable: the session keeps its data, the user may submit the
		// score again for a fresh invoice attempt.
		e.render(chatID, e.renderer.TechnicalError(chatID))
		return err
	}

	session.MerchantTransID = merchantTransID
	session.State = models.StateAwaitingPayment
	if err := e.sessions.Update(session); err != nil {
		return err
	}

	e.obs.RecordPaymentEvent(ctx, "invoice", "created")
	return e.render(chatID, e.renderer.PaymentRequest(chatID, e.gateway.PayLink(merchantTransID), e.paymentCfg.Amount))
}

// PaymentCheckRequested answers a "check payment" poll. A paid record
// releases the cached ranking and completes the session; otherwise the
// gateway status poll covers the case where the webhook has not landed
// (including after a restart), and the session stays put.
func (e *Engine) PaymentCheckRequested(ctx context.Context, chatID string) error {
	session, err := e.session(chatID, EventPaymentCheck)
	if err != nil {
		return err
	}

	status, err := payments.StatusOf(ctx, e.payStore, chatID)
	if err != nil {
		return stderrors.NewStorageError("get", err)
	}

	if status == models.PaymentStatusPaid {
		return e.complete(ctx, session)
	}

	resp, err := e.gateway.InvoiceStatus(ctx, session.MerchantTransID)
	if err != nil {
		// Unknown result: report and let the user poll again.
		note := "unknown, try again"
		if stderrors.CodeOf(err) == stderrors.ErrCodeGatewayError {
			note = err.Error()
		}
		if rerr := e.render(chatID, e.renderer.PaymentNotConfirmed(chatID, note)); rerr != nil {
			return rerr
		}
		return err
	}

	if resp.Paid() {
		return e.complete(ctx, session)
	}

	return e.render(chatID, e.renderer.PaymentNotConfirmed(chatID, resp.StatusNote))
}

// HandleMessage routes free text by the session's current state, the way a
// messenger adapter delivers updates without knowing the flow. A chat
// without a session must send an explicit start first.
func (e *Engine) HandleMessage(ctx context.Context, chatID, text string) error {
	session, ok := e.sessions.Get(chatID)
	if !ok {
		return stderrors.NewSessionNotFoundError(chatID)
	}
	switch session.State {
	case models.StateSelectingPair:
		return e.PairSelected(ctx, chatID, text)
	case models.StateEnteringScore:
		return e.ScoreSubmitted(ctx, chatID, text)
	default:
		return stderrors.NewInvalidEventError(string(session.State), "message")
	}
}

// Cancel ends the conversation from any non-terminal state.
func (e *Engine) Cancel(_ context.Context, chatID string) error {
	session, err := e.session(chatID, EventCancel)
	if err != nil {
		return err
	}
	e.endSession(session, models.StateCancelled, "cancelled")
	return nil
}

// complete releases the cached results, consumes the payment record and
// ends the session.
func (e *Engine) complete(ctx context.Context, session *models.Session) error {
	if _, err := e.payStore.ReadAndClear(ctx, session.ChatID); err != nil && err != payments.ErrNotFound {
		e.logger.Warn("failed to clear payment record", map[string]interface{}{
			"chatId": session.ChatID,
			"error":  err.Error(),
		})
	}

	err := e.render(session.ChatID, e.renderer.FinalResults(session.ChatID, session.Score, session.Recommendations))
	e.endSession(session, models.StateCompleted, "completed")
	e.obs.RecordPaymentEvent(ctx, "release", "completed")
	return err
}

// session fetches the chat's session and checks the event against the
// state machine. Unrecognized events never mutate the session.
func (e *Engine) session(chatID string, event EventType) (*models.Session, error) {
	session, ok := e.sessions.Get(chatID)
	if !ok {
		return nil, stderrors.NewSessionNotFoundError(chatID)
	}
	if err := CheckEvent(session.State, event); err != nil {
		e.logger.Warn("event rejected in current state", map[string]interface{}{
			"chatId": chatID,
			"state":  string(session.State),
			"event":  string(event),
		})
		return nil, err
	}
	return session, nil
}

func (e *Engine) endSession(session *models.Session, state models.ConversationState, outcome string) {
	session.State = state
	e.sessions.Delete(session.ChatID)
	metrics.SessionsEnded.WithLabelValues(outcome).Inc()
	e.logger.Info("session ended", map[string]interface{}{
		"chatId":  session.ChatID,
		"outcome": outcome,
	})
}

// render logs transport failures; the conversation itself never crashes
// on a failed send.
func (e *Engine) render(chatID string, err error) error {
	if err != nil {
		e.logger.Error("renderer failed", map[string]interface{}{
			"chatId": chatID,
			"error":  err.Error(),
		})
	}
	return nil
}
