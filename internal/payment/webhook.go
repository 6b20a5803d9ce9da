package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSignature = errors.New("webhook signature mismatch")

// WebhookNotification is the inbound gateway event: only the type and the
// referenced payment id, the payment itself must be fetched back.
type WebhookNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func ParseNotification(rawBody []byte) (*WebhookNotification, error) {
	var notif WebhookNotification
	if err := json.Unmarshal(rawBody, &notif); err != nil {
		return nil, fmt.Errorf("parse webhook body: %w", err)
	}
	return &notif, nil
}

// VerifySignature checks the gateway's HMAC over the canonical manifest
// string before the payload may be trusted. The signature header carries
// "ts=<ts>,v1=<hex>".
func VerifySignature(secret, signatureHeader, requestID, dataID string, rawBody []byte) error {
	ts, v1, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;%s", dataID, requestID, ts, rawBody)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return ErrInvalidSignature
	}
	return nil
}

func parseSignatureHeader(header string) (ts, v1 string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return "", "", ErrInvalidSignature
	}
	return ts, v1, nil
}
