// internal/payments/click/client.go
package click

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"abiturbot/internal/common/config"
	stderrors "abiturbot/internal/common/errors"
	commonhttp "abiturbot/internal/common/http"
	"abiturbot/internal/common/logger"
	"abiturbot/internal/common/metrics"
)

// Client talks to the gateway's merchant API. All calls run under the
// bounded timeout configured for the gateway; a transport failure maps to
// a retryable network error, a non-zero error_code to a gateway error.
type Client struct {
	cfg        config.PaymentConfig
	httpClient *commonhttp.Client
	logger     logger.Logger
	now        func() time.Time
}

func NewClient(cfg config.PaymentConfig, log logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		logger:     log.WithFields(map[string]interface{}{"component": "click"}),
		now:        time.Now,
	}
}

// PayLink builds the user-facing payment page URL for an invoice.
func (c *Client) PayLink(merchantTransID string) string {
	params := url.Values{}
	params.Set("service_id", c.cfg.ServiceID)
	params.Set("merchant_id", c.cfg.MerchantID)
	params.Set("amount", c.cfg.Amount)
	params.Set("transaction_param", merchantTransID)
	params.Set("return_url", c.cfg.ReturnURL)
	return c.cfg.PayBaseURL + "?" + params.Encode()
}

// CreateInvoice requests a payable invoice for the fixed fee, tagged with
// the merchant transaction id.
func (c *Client) CreateInvoice(ctx context.Context, merchantTransID, phone string) (*InvoiceCreateResponse, error) {
	serviceID, err := strconv.Atoi(c.cfg.ServiceID)
	if err != nil {
		return nil, stderrors.NewConfigMissingError(fmt.Sprintf("service id %q is not numeric", c.cfg.ServiceID))
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	headers := map[string]string{
		"Auth": AuthHeader(InvoiceAuthToken(timestamp, c.cfg.SecretKey, c.cfg.ServiceID), timestamp),
	}
	body := &InvoiceCreateRequest{
		ServiceID:       serviceID,
		Amount:          c.cfg.Amount,
		PhoneNumber:     phone,
		MerchantTransID: merchantTransID,
	}

	var resp InvoiceCreateResponse
	if err := c.post(ctx, "invoice_create", "/invoice/create", headers, body, &resp); err != nil {
		return nil, err
	}

	if resp.ErrorCode != 0 {
		c.logger.Warn("invoice creation rejected", map[string]interface{}{
			"merchantTransId": merchantTransID,
			"errorCode":       resp.ErrorCode,
			"errorNote":       resp.ErrorNote,
		})
		return nil, stderrors.NewGatewayError(int64(resp.ErrorCode), resp.ErrorNote)
	}

	c.logger.Info("invoice created", map[string]interface{}{
		"merchantTransId": merchantTransID,
		"invoiceId":       resp.InvoiceID,
	})
	return &resp, nil
}

// InvoiceStatus polls the gateway for the state of an earlier invoice.
// Used by "check payment" when the webhook has not landed, and for
// reconciliation after a restart.
func (c *Client) InvoiceStatus(ctx context.Context, merchantTransID string) (*InvoiceStatusResponse, error) {
	serviceID, err := strconv.Atoi(c.cfg.ServiceID)
	if err != nil {
		return nil, stderrors.NewConfigMissingError(fmt.Sprintf("service id %q is not numeric", c.cfg.ServiceID))
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	headers := map[string]string{
		"Auth": AuthHeader(StatusAuthToken(timestamp, c.cfg.SecretKey, c.cfg.ServiceID, merchantTransID), timestamp),
	}
	body := &InvoiceStatusRequest{
		ServiceID:       serviceID,
		MerchantTransID: merchantTransID,
	}

	var resp InvoiceStatusResponse
	if err := c.post(ctx, "invoice_status", "/invoice/status", headers, body, &resp); err != nil {
		return nil, err
	}

	if resp.ErrorCode != 0 {
		return nil, stderrors.NewGatewayError(int64(resp.ErrorCode), resp.ErrorNote)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, operation, path string, headers map[string]string, body, out interface{}) error {
	start := time.Now()
	err := c.httpClient.PostJSON(ctx, c.cfg.APIBaseURL+path, headers, body, out)
	metrics.GatewayRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GatewayRequests.WithLabelValues(operation, "network_error").Inc()
		c.logger.Warn("gateway call failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
		return stderrors.NewNetworkError(err)
	}

	metrics.GatewayRequests.WithLabelValues(operation, "ok").Inc()
	return nil
}
