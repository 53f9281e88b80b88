// internal/server/router_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"abiturbot/internal/common/config"
	"abiturbot/internal/common/logger"
	"abiturbot/internal/common/observability"
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

func newTestRouter(t *testing.T, store payments.Store) *gin.Engine {
	cfg := config.PaymentConfig{
		ServiceID:  "79052",
		MerchantID: "43826",
		SecretKey:  "test-secret",
		Amount:     "37000.00",
	}
	service := click.NewWebhookService(cfg, store, logger.NewTestLogger(t), &observability.Observability{})
	return NewRouter(RouterConfig{
		WebhookHandler: NewWebhookHandler(service, logger.NewTestLogger(t)),
	})
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ==========================
// Health & Metrics Tests
// ==========================

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, payments.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, payments.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================
// Webhook Endpoint Tests
// ==========================

func TestPrepareEndpoint(t *testing.T) {
	router := newTestRouter(t, payments.NewMemoryStore())

	rec := postJSON(router, "/click/prepare", map[string]interface{}{
		"click_trans_id":    12345,
		"merchant_trans_id": "abt-555-1700000000",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp click.PrepareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, click.CodeSuccess, resp.Error)
	assert.Equal(t, "abt-555-1700000000", resp.MerchantPrepID)
}

func TestPrepareEndpoint_MalformedBody(t *testing.T) {
	router := newTestRouter(t, payments.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/click/prepare", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Protocol-level failure still answers 200 with the error in the body.
	require.Equal(t, http.StatusOK, rec.Code)
	var resp click.PrepareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, click.CodeBadRequest, resp.Error)
}

func TestCompleteEndpoint_MarksRecordPaid(t *testing.T) {
	store := payments.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &models.PaymentRecord{
		SessionKey:      "555",
		MerchantTransID: "abt-555-1700000000",
		Amount:          "37000.00",
	}))

	router := newTestRouter(t, store)

	sign := click.CompleteSignature("12345", "79052", "test-secret", "abt-555-1700000000", "37000.00", "1", "2023-11-14 12:00:00")
	rec := postJSON(router, "/click/complete", map[string]interface{}{
		"click_trans_id":    12345,
		"merchant_trans_id": "abt-555-1700000000",
		"amount":            "37000.00",
		"action":            1,
		"error":             0,
		"sign_time":         "2023-11-14 12:00:00",
		"sign_string":       sign,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp click.CompleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, click.CodeSuccess, resp.Error)

	record, err := store.Get(ctx, "555")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, record.Status)
}

func TestCompleteEndpoint_BadSignature(t *testing.T) {
	store := payments.NewMemoryStore()
	router := newTestRouter(t, store)

	rec := postJSON(router, "/click/complete", map[string]interface{}{
		"click_trans_id":    12345,
		"merchant_trans_id": "abt-555-1700000000",
		"amount":            "37000.00",
		"action":            1,
		"error":             0,
		"sign_time":         "2023-11-14 12:00:00",
		"sign_string":       "forged",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp click.CompleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, click.CodeSignCheck, resp.Error)
	assert.Equal(t, click.NoteSignCheck, resp.ErrorNote)
}
