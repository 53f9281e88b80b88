// internal/payments/click/webhook_test.go
package click

import (
	"context"
	"encoding/json"
	"testing"

	"abiturbot/internal/common/config"
	"abiturbot/internal/common/logger"
	"abiturbot/internal/common/observability"
	"abiturbot/internal/models"
	"abiturbot/internal/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		ServiceID:  "79052",
		MerchantID: "43826",
		SecretKey:  "test-secret",
		Amount:     "37000.00",
	}
}

func newTestWebhookService(t *testing.T, store payments.Store) *WebhookService {
	return NewWebhookService(testPaymentConfig(), store, logger.NewTestLogger(t), observability.New("webhook-test"))
}

// signedCompleteRequest builds a complete callback with a valid signature
// for the test credentials.
func signedCompleteRequest(merchantTransID string) *CompleteRequest {
	req := &CompleteRequest{
		ClickTransID:    json.Number("998877"),
		MerchantTransID: merchantTransID,
		Amount:          json.Number("37000.00"),
		Action:          json.Number("1"),
		Error:           json.Number("0"),
		SignTime:        "2023-11-14 12:00:00",
	}
	req.SignString = CompleteSignature(
		req.ClickTransID.String(), "79052", "test-secret",
		req.MerchantTransID, req.Amount.String(), req.Action.String(), req.SignTime,
	)
	return req
}

// ==========================
// Prepare Tests
// ==========================

func TestPrepare_EchoesIdentifiers(t *testing.T) {
	svc := newTestWebhookService(t, payments.NewMemoryStore())

	resp := svc.Prepare(&PrepareRequest{
		ClickTransID:    json.Number("998877"),
		MerchantTransID: "abt-555-1700000000",
	})

	assert.Equal(t, CodeSuccess, resp.Error)
	assert.Equal(t, NoteSuccess, resp.ErrorNote)
	assert.Equal(t, json.Number("998877"), resp.ClickTransID)
	assert.Equal(t, "abt-555-1700000000", resp.MerchantTransID)
	assert.Equal(t, "abt-555-1700000000", resp.MerchantPrepID)
}

func TestPrepare_Idempotent(t *testing.T) {
	store := payments.NewMemoryStore()
	svc := newTestWebhookService(t, store)
	req := &PrepareRequest{ClickTransID: json.Number("1"), MerchantTransID: "abt-555-1700000000"}

	first := svc.Prepare(req)
	second := svc.Prepare(req)

	assert.Equal(t, first, second)

	// No side effects: the store stays untouched.
	_, err := store.Get(context.Background(), "555")
	assert.ErrorIs(t, err, payments.ErrNotFound)
}

func TestPrepare_MalformedRequest(t *testing.T) {
	svc := newTestWebhookService(t, payments.NewMemoryStore())

	resp := svc.Prepare(&PrepareRequest{})

	assert.Equal(t, CodeBadRequest, resp.Error)
	assert.Equal(t, NoteBadRequest, resp.ErrorNote)
}

// ==========================
// Complete Tests
// ==========================

func TestComplete_MarksSessionPaid(t *testing.T) {
	ctx := context.Background()
	store := payments.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &models.PaymentRecord{
		SessionKey:      "555",
		MerchantTransID: "abt-555-1700000000",
		Amount:          "37000.00",
	}))
	svc := newTestWebhookService(t, store)

	resp := svc.Complete(ctx, signedCompleteRequest("abt-555-1700000000"))

	assert.Equal(t, CodeSuccess, resp.Error)
	assert.Equal(t, NoteSuccess, resp.ErrorNote)
	assert.Equal(t, "abt-555-1700000000", resp.MerchantTransID)

	record, err := store.Get(ctx, "555")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, record.Status)
}

func TestComplete_SignatureFlipRejected(t *testing.T) {
	// Flipping any single character of the signature must reject with the
	// security code and leave every record untouched.
	ctx := context.Background()
	store := payments.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &models.PaymentRecord{
		SessionKey:      "555",
		MerchantTransID: "abt-555-1700000000",
	}))
	svc := newTestWebhookService(t, store)

	valid := signedCompleteRequest("abt-555-1700000000")
	for i := range valid.SignString {
		tampered := *valid
		flipped := []byte(valid.SignString)
		if flipped[i] == 'f' {
			flipped[i] = '0'
		} else {
			flipped[i] = 'f'
		}
		tampered.SignString = string(flipped)

		resp := svc.Complete(ctx, &tampered)
		require.Equal(t, CodeSignCheck, resp.Error, "flip at index %d", i)
		require.Equal(t, NoteSignCheck, resp.ErrorNote)
	}

	record, err := store.Get(ctx, "555")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCreated, record.Status)
}

func TestComplete_TamperedFieldRejected(t *testing.T) {
	// The signature covers the wire-form fields, so editing any of them
	// after signing invalidates the callback.
	ctx := context.Background()
	store := payments.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &models.PaymentRecord{SessionKey: "555"}))
	svc := newTestWebhookService(t, store)

	req := signedCompleteRequest("abt-555-1700000000")
	req.Amount = json.Number("1.00")

	resp := svc.Complete(ctx, req)
	assert.Equal(t, CodeSignCheck, resp.Error)

	record, err := store.Get(ctx, "555")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCreated, record.Status)
}

func TestComplete_NonSuccessActionCancelled(t *testing.T) {
	ctx := context.Background()
	store := payments.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &models.PaymentRecord{SessionKey: "555"}))
	svc := newTestWebhookService(t, store)

	tests := []struct {
		name   string
		action string
		error  string
	}{
		{name: "reversal action", action: "-1", error: "0"},
		{name: "gateway error set", action: "1", error: "-5017"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CompleteRequest{
				ClickTransID:    json.Number("998877"),
				MerchantTransID: "abt-555-1700000000",
				Amount:          json.Number("37000.00"),
				Action:          json.Number(tt.action),
				Error:           json.Number(tt.error),
				SignTime:        "2023-11-14 12:00:00",
			}
			req.SignString = CompleteSignature(
				req.ClickTransID.String(), "79052", "test-secret",
				req.MerchantTransID, req.Amount.String(), req.Action.String(), req.SignTime,
			)

			resp := svc.Complete(ctx, req)
			assert.Equal(t, CodeCancelled, resp.Error)
			assert.Equal(t, NoteCancelled, resp.ErrorNote)
		})
	}

	record, err := store.Get(ctx, "555")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCreated, record.Status)
}

func TestComplete_UnparseableTransactionID(t *testing.T) {
	svc := newTestWebhookService(t, payments.NewMemoryStore())

	resp := svc.Complete(context.Background(), signedCompleteRequest("garbage"))

	assert.Equal(t, CodeMerchantError, resp.Error)
	assert.Equal(t, NoteMerchantError, resp.ErrorNote)
}

func TestComplete_UnknownPaymentRecord(t *testing.T) {
	svc := newTestWebhookService(t, payments.NewMemoryStore())

	resp := svc.Complete(context.Background(), signedCompleteRequest("abt-555-1700000000"))

	assert.Equal(t, CodeMerchantError, resp.Error)
}

func TestComplete_RetryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := payments.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &models.PaymentRecord{SessionKey: "555"}))
	svc := newTestWebhookService(t, store)

	req := signedCompleteRequest("abt-555-1700000000")
	first := svc.Complete(ctx, req)
	second := svc.Complete(ctx, req)

	assert.Equal(t, CodeSuccess, first.Error)
	assert.Equal(t, CodeSuccess, second.Error)
}
