package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	config "github.com/saverana/donation-backend/configs"
)

// VerifyPaymentSignature checks the signature Razorpay hands to the client
// after checkout: HMAC-SHA256 over "orderID|paymentID" with the key secret,
// hex encoded. A mismatch is an expected negative result, never an error.
func VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	secret := config.Config("RAZORPAY_KEY_SECRET")
	if secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal keeps the comparison constant-time.
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// untouched request body using the webhook secret. It must run on the raw
// bytes before any parsing; re-serialized JSON would not match.
//
// This is intentionally a separate function from VerifyPaymentSignature: the
// two sign different byte ranges with different secrets.
func VerifyWebhookSignature(body []byte, signature string) bool {
	secret := config.Config("RAZORPAY_WEBHOOK_SECRET")
	if secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
