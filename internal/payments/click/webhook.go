// internal/payments/click/webhook.go
package click

import (
	"context"
	"crypto/subtle"
	"errors"

	"abiturbot/internal/common/config"
	"abiturbot/internal/common/logger"
	"abiturbot/internal/common/metrics"
	"abiturbot/internal/common/observability"
	"abiturbot/internal/payments"
)

// WebhookService processes the gateway's prepare and complete callbacks.
// It is the only writer of the paid payment status.
type WebhookService struct {
	cfg    config.PaymentConfig
	store  payments.Store
	logger logger.Logger
	obs    *observability.Observability
}

func NewWebhookService(cfg config.PaymentConfig, store payments.Store, log logger.Logger, obs *observability.Observability) *WebhookService {
	return &WebhookService{
		cfg:    cfg,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "click-webhook"}),
		obs:    obs,
	}
}

// Prepare acknowledges a prepare notification. The call is idempotent and
// mutates nothing: the response echoes the transaction identifiers with
// the merchant prepare id set to the merchant transaction id.
func (s *WebhookService) Prepare(req *PrepareRequest) *PrepareResponse {
	if req.MerchantTransID == "" {
		metrics.WebhookRequests.WithLabelValues("prepare", "bad_request").Inc()
		return &PrepareResponse{Error: CodeBadRequest, ErrorNote: NoteBadRequest}
	}

	metrics.WebhookRequests.WithLabelValues("prepare", "ok").Inc()
	return &PrepareResponse{
		ClickTransID:    req.ClickTransID,
		MerchantTransID: req.MerchantTransID,
		MerchantPrepID:  req.MerchantTransID,
		Error:           CodeSuccess,
		ErrorNote:       NoteSuccess,
	}
}

// Complete verifies and applies a payment completion. The signature is
// recomputed from the callback's own wire-form fields; stored state never
// feeds the digest. On mismatch nothing changes and the rejection is
// logged as a security event.
func (s *WebhookService) Complete(ctx context.Context, req *CompleteRequest) *CompleteResponse {
	expected := CompleteSignature(
		req.ClickTransID.String(),
		s.cfg.ServiceID,
		s.cfg.SecretKey,
		req.MerchantTransID,
		req.Amount.String(),
		req.Action.String(),
		req.SignTime,
	)

	if subtle.ConstantTimeCompare([]byte(expected), []byte(req.SignString)) != 1 {
		s.logger.Error("webhook signature mismatch", map[string]interface{}{
			"securityEvent":   true,
			"clickTransId":    req.ClickTransID.String(),
			"merchantTransId": req.MerchantTransID,
			"signTime":        req.SignTime,
		})
		metrics.WebhookRequests.WithLabelValues("complete", "sign_check_failed").Inc()
		s.obs.RecordPaymentEvent(ctx, "complete", "sign_check_failed")
		return &CompleteResponse{Error: CodeSignCheck, ErrorNote: NoteSignCheck}
	}

	if req.Action.String() != "1" || req.Error.String() != "0" {
		s.logger.Warn("payment completion cancelled by gateway", map[string]interface{}{
			"merchantTransId": req.MerchantTransID,
			"action":          req.Action.String(),
			"error":           req.Error.String(),
		})
		metrics.WebhookRequests.WithLabelValues("complete", "cancelled").Inc()
		s.obs.RecordPaymentEvent(ctx, "complete", "cancelled")
		return &CompleteResponse{Error: CodeCancelled, ErrorNote: NoteCancelled}
	}

	sessionKey, err := ParseMerchantTransID(req.MerchantTransID)
	if err != nil {
		s.logger.Error("completion carries unparseable transaction id", map[string]interface{}{
			"merchantTransId": req.MerchantTransID,
			"error":           err.Error(),
		})
		metrics.WebhookRequests.WithLabelValues("complete", "merchant_error").Inc()
		return &CompleteResponse{Error: CodeMerchantError, ErrorNote: NoteMerchantError}
	}

	if err := s.store.MarkPaid(ctx, sessionKey); err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			s.logger.Error("completion for unknown payment record", map[string]interface{}{
				"sessionKey":      sessionKey,
				"merchantTransId": req.MerchantTransID,
			})
		} else {
			s.logger.Error("failed to persist paid status", map[string]interface{}{
				"sessionKey": sessionKey,
				"error":      err.Error(),
			})
		}
		metrics.WebhookRequests.WithLabelValues("complete", "merchant_error").Inc()
		s.obs.RecordPaymentEvent(ctx, "complete", "merchant_error")
		return &CompleteResponse{Error: CodeMerchantError, ErrorNote: NoteMerchantError}
	}

	s.logger.Info("payment confirmed", map[string]interface{}{
		"sessionKey":      sessionKey,
		"merchantTransId": req.MerchantTransID,
		"clickTransId":    req.ClickTransID.String(),
	})
	metrics.WebhookRequests.WithLabelValues("complete", "ok").Inc()
	s.obs.RecordPaymentEvent(ctx, "complete", "paid")

	return &CompleteResponse{
		ClickTransID:    req.ClickTransID,
		MerchantTransID: req.MerchantTransID,
		Error:           CodeSuccess,
		ErrorNote:       NoteSuccess,
	}
}
