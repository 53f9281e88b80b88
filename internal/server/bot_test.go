// internal/server/bot_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"abiturbot/internal/common/config"
	"abiturbot/internal/common/logger"
	"abiturbot/internal/common/observability"
	"abiturbot/internal/conversation"
	recengine "abiturbot/internal/engine"
	"abiturbot/internal/models"
	"abiturbot/internal/payments"
	"abiturbot/internal/payments/click"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type stubGateway struct{}

func (stubGateway) PayLink(merchantTransID string) string {
	return "https://my.click.uz/services/pay?transaction_param=" + merchantTransID
}

func (stubGateway) CreateInvoice(context.Context, string, string) (*click.InvoiceCreateResponse, error) {
	return &click.InvoiceCreateResponse{ErrorCode: 0, ErrorNote: "Success", InvoiceID: 1}, nil
}

func (stubGateway) InvoiceStatus(context.Context, string) (*click.InvoiceStatusResponse, error) {
	return &click.InvoiceStatusResponse{Status: 0, StatusNote: "Waiting"}, nil
}

func fullStackRouter(t *testing.T) (*gin.Engine, payments.Store) {
	cfg := config.PaymentConfig{
		ServiceID:  "79052",
		MerchantID: "43826",
		SecretKey:  "test-secret",
		Amount:     "37000.00",
	}
	store := payments.NewMemoryStore()
	sink := NewReplySink()

	catalog := &models.Catalog{
		Universities: []models.University{
			{
				Name:   "toshkent davlat universiteti",
				Region: "Toshkent shahri",
				Programs: []models.Program{
					{
						Name: "Amaliy matematika",
						Subjects: []models.Subject{
							{Name: "Matematika", Order: 1},
							{Name: "Fizika", Order: 2},
						},
						PassingScores: models.PassingScores{
							Grant:    models.ScoreSeries{"2023": 170.0},
							Contract: models.ScoreSeries{"2023": 150.5},
						},
					},
				},
			},
		},
	}

	engine := conversation.NewEngine(conversation.Deps{
		PaymentCfg:  cfg,
		Catalog:     catalog,
		Sessions:    conversation.NewSessionStore(),
		Payments:    store,
		Gateway:     stubGateway{},
		Recommender: recengine.New(logger.NewNoOpLogger()),
		Renderer:    sink,
		Logger:      logger.NewTestLogger(t),
		Obs:         &observability.Observability{},
	})

	webhook := click.NewWebhookService(cfg, store, logger.NewTestLogger(t), &observability.Observability{})
	router := NewRouter(RouterConfig{
		WebhookHandler: NewWebhookHandler(webhook, logger.NewTestLogger(t)),
		BotHandler:     NewBotHandler(engine, sink),
	})
	return router, store
}

func postEvent(t *testing.T, router *gin.Engine, path string, body interface{}) eventResponse {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp eventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ==========================
// Bot Bridge Tests
// ==========================

func TestBotBridge_FullFlow(t *testing.T) {
	router, _ := fullStackRouter(t)

	resp := postEvent(t, router, "/bot/555/start", nil)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "prompt_pair", resp.Replies[0].Type)
	assert.Contains(t, resp.Replies[0].Options, "Matematika - Fizika")

	resp = postEvent(t, router, "/bot/555/message", map[string]string{"text": "Matematika - Fizika"})
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "prompt_score", resp.Replies[0].Type)

	resp = postEvent(t, router, "/bot/555/message", map[string]string{"text": "165"})
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "payment_request", resp.Replies[0].Type)
	assert.Equal(t, "37000.00", resp.Replies[0].Amount)
	merchantTransID := transactionParam(t, resp.Replies[0].PayLink)
	assert.Contains(t, merchantTransID, "abt-555-")

	// Payment not yet confirmed: the poll reports and waits.
	resp = postEvent(t, router, "/bot/555/payment-check", nil)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "payment_not_confirmed", resp.Replies[0].Type)

	// The gateway's signed completion callback lands.
	sign := click.CompleteSignature("777", "79052", "test-secret", merchantTransID, "37000.00", "1", "2023-11-14 12:00:00")
	whResp := postJSON(router, "/click/complete", map[string]interface{}{
		"click_trans_id":    777,
		"merchant_trans_id": merchantTransID,
		"amount":            "37000.00",
		"action":            1,
		"error":             0,
		"sign_time":         "2023-11-14 12:00:00",
		"sign_string":       sign,
	})
	require.Equal(t, http.StatusOK, whResp.Code)

	// Now the poll releases the cached results.
	resp = postEvent(t, router, "/bot/555/payment-check", nil)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "final_results", resp.Replies[0].Type)
	require.NotEmpty(t, resp.Replies[0].Recommendations)
	assert.Equal(t, "Toshkent davlat universiteti", resp.Replies[0].Recommendations[0].UniversityName)
}

// transactionParam pulls the merchant transaction id out of the pay link.
func transactionParam(t *testing.T, payLink string) string {
	t.Helper()
	parsed, err := url.Parse(payLink)
	require.NoError(t, err)
	return parsed.Query().Get("transaction_param")
}

func TestBotBridge_LowScoreEndsConversation(t *testing.T) {
	router, _ := fullStackRouter(t)

	postEvent(t, router, "/bot/42/start", nil)
	postEvent(t, router, "/bot/42/message", map[string]string{"text": "Matematika - Fizika"})

	resp := postEvent(t, router, "/bot/42/message", map[string]string{"text": "120"})
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "below_threshold", resp.Replies[0].Type)
	assert.InDelta(t, 150.5, resp.Replies[0].Threshold, 0.001)

	// The conversation is over; further messages need a fresh start.
	resp = postEvent(t, router, "/bot/42/message", map[string]string{"text": "180"})
	assert.Equal(t, "SESSION_NOT_FOUND", resp.Error)
}

func TestBotBridge_CancelAndRestart(t *testing.T) {
	router, _ := fullStackRouter(t)

	postEvent(t, router, "/bot/42/start", nil)
	resp := postEvent(t, router, "/bot/42/cancel", nil)
	assert.Empty(t, resp.Error)

	resp = postEvent(t, router, "/bot/42/start", nil)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "prompt_pair", resp.Replies[0].Type)
}

func TestBotBridge_MessageWithoutText(t *testing.T) {
	router, _ := fullStackRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/bot/42/message", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
