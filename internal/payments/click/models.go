// internal/payments/click/models.go
package click

import "encoding/json"

// Webhook response codes defined by the gateway protocol.
const (
	CodeSuccess       = 0
	CodeSignCheck     = -1
	CodeCancelled     = -2
	CodeBadRequest    = -8
	CodeMerchantError = -9

	NoteSuccess       = "Success"
	NoteSignCheck     = "SIGN CHECK FAILED!"
	NoteCancelled     = "Transaction cancelled"
	NoteBadRequest    = "Error in request"
	NoteMerchantError = "Error in merchant's code"
)

// Numeric callback fields are kept as json.Number: the complete signature
// is recomputed over the exact textual form the gateway sent, so decoding
// them into floats or ints would corrupt the digest input.

// PrepareRequest is the gateway's prepare notification. Other fields of
// the callback are ignored.
type PrepareRequest struct {
	ClickTransID    json.Number `json:"click_trans_id"`
	MerchantTransID string      `json:"merchant_trans_id"`
}

// PrepareResponse acknowledges a prepare notification. The prepare id
// echoes the merchant transaction id; no state is recorded.
type PrepareResponse struct {
	ClickTransID    json.Number `json:"click_trans_id,omitempty"`
	MerchantTransID string      `json:"merchant_trans_id,omitempty"`
	MerchantPrepID  string      `json:"merchant_prepare_id,omitempty"`
	Error           int         `json:"error"`
	ErrorNote       string      `json:"error_note"`
}

// CompleteRequest is the gateway's payment completion notification.
type CompleteRequest struct {
	ClickTransID    json.Number `json:"click_trans_id"`
	MerchantTransID string      `json:"merchant_trans_id"`
	Amount          json.Number `json:"amount"`
	Action          json.Number `json:"action"`
	Error           json.Number `json:"error"`
	SignTime        string      `json:"sign_time"`
	SignString      string      `json:"sign_string"`
}

// CompleteResponse reports the merchant-side outcome of a completion.
type CompleteResponse struct {
	ClickTransID    json.Number `json:"click_trans_id,omitempty"`
	MerchantTransID string      `json:"merchant_trans_id,omitempty"`
	Error           int         `json:"error"`
	ErrorNote       string      `json:"error_note"`
}

// InvoiceCreateRequest is the outbound invoice creation body.
type InvoiceCreateRequest struct {
	ServiceID       int    `json:"service_id"`
	Amount          string `json:"amount"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	MerchantTransID string `json:"merchant_trans_id"`
}

// InvoiceCreateResponse is the gateway's answer to invoice creation. A
// non-zero ErrorCode is a gateway-reported failure surfaced verbatim.
type InvoiceCreateResponse struct {
	ErrorCode int    `json:"error_code"`
	ErrorNote string `json:"error_note"`
	InvoiceID int64  `json:"invoice_id"`
}

// InvoiceStatusRequest is the outbound invoice status poll body.
type InvoiceStatusRequest struct {
	ServiceID       int    `json:"service_id"`
	MerchantTransID string `json:"merchant_trans_id"`
}

// InvoiceStatusResponse is the gateway's answer to a status poll.
// Status 1 means the invoice is paid.
type InvoiceStatusResponse struct {
	ErrorCode  int    `json:"error_code"`
	ErrorNote  string `json:"error_note"`
	Status     int    `json:"status"`
	StatusNote string `json:"status_note"`
}

// Paid reports whether the poll observed a completed payment.
func (r *InvoiceStatusResponse) Paid() bool {
	return r.Status == 1
}
