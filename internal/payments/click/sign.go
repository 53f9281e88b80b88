// internal/payments/click/sign.go
package click

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The gateway protocol uses two unrelated signature schemes. Outbound API
// calls authenticate with a sha256 token in the Auth header; inbound
// complete callbacks carry an md5 digest over different fields in a
// different order. They must stay separate functions.

const merchantTransIDPrefix = "abt"

// InvoiceAuthToken derives the sha256 Auth token for invoice creation:
// sha256(timestamp ++ secret ++ service_id).
func InvoiceAuthToken(timestamp, secret, serviceID string) string {
	sum := sha256.Sum256([]byte(timestamp + secret + serviceID))
	return hex.EncodeToString(sum[:])
}

// StatusAuthToken derives the sha256 Auth token for status polling:
// sha256(timestamp ++ secret ++ service_id ++ merchant_trans_id).
func StatusAuthToken(timestamp, secret, serviceID, merchantTransID string) string {
	sum := sha256.Sum256([]byte(timestamp + secret + serviceID + merchantTransID))
	return hex.EncodeToString(sum[:])
}

// AuthHeader formats a token into the "2:<token>:<timestamp>" header the
// gateway expects.
func AuthHeader(token, timestamp string) string {
	return fmt.Sprintf("2:%s:%s", token, timestamp)
}

// CompleteSignature recomputes the md5 digest of a complete callback:
// md5(click_trans_id ++ service_id ++ secret ++ merchant_trans_id ++
// amount ++ action ++ sign_time), all fields in their wire form with no
// separators.
func CompleteSignature(clickTransID, serviceID, secret, merchantTransID, amount, action, signTime string) string {
	sum := md5.Sum([]byte(clickTransID + serviceID + secret + merchantTransID + amount + action + signTime))
	return hex.EncodeToString(sum[:])
}

// NewMerchantTransID builds the structured transaction id correlating a
// payment with its session: "abt-<chat>-<unix>".
func NewMerchantTransID(chatID string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", merchantTransIDPrefix, chatID, now.Unix())
}

// ParseMerchantTransID extracts the session key from a merchant
// transaction id. The timestamp tail is dropped; any dashes inside the
// chat id itself are preserved.
func ParseMerchantTransID(merchantTransID string) (string, error) {
	parts := strings.Split(merchantTransID, "-")
	if len(parts) < 3 || parts[0] != merchantTransIDPrefix {
		return "", fmt.Errorf("malformed merchant transaction id %q", merchantTransID)
	}
	if _, err := strconv.ParseInt(parts[len(parts)-1], 10, 64); err != nil {
		return "", fmt.Errorf("malformed merchant transaction id %q: bad timestamp", merchantTransID)
	}
	sessionKey := strings.Join(parts[1:len(parts)-1], "-")
	if sessionKey == "" {
		return "", fmt.Errorf("malformed merchant transaction id %q: empty session key", merchantTransID)
	}
	return sessionKey, nil
}
