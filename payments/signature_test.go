package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "test_key_secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "test_webhook_secret")

	valid := signHex("test_key_secret", "order_1|pay_1")

	assert.True(t, VerifyPaymentSignature("order_1", "pay_1", valid))

	t.Run("tampered signature is rejected", func(t *testing.T) {
		tampered := "0" + valid[1:]
		if tampered == valid {
			tampered = "1" + valid[1:]
		}
		assert.False(t, VerifyPaymentSignature("order_1", "pay_1", tampered))
	})

	t.Run("signature for another order is rejected", func(t *testing.T) {
		assert.False(t, VerifyPaymentSignature("order_2", "pay_1", valid))
	})

	t.Run("signature for another payment is rejected", func(t *testing.T) {
		assert.False(t, VerifyPaymentSignature("order_1", "pay_2", valid))
	})

	t.Run("empty signature is rejected", func(t *testing.T) {
		assert.False(t, VerifyPaymentSignature("order_1", "pay_1", ""))
	})

	t.Run("truncated signature is rejected", func(t *testing.T) {
		assert.False(t, VerifyPaymentSignature("order_1", "pay_1", valid[:32]))
	})

	t.Run("signature made with the webhook secret is rejected", func(t *testing.T) {
		crossSigned := signHex("test_webhook_secret", "order_1|pay_1")
		assert.False(t, VerifyPaymentSignature("order_1", "pay_1", crossSigned))
	})
}

func TestVerifyPaymentSignature_MissingSecret(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "")

	assert.False(t, VerifyPaymentSignature("order_1", "pay_1", signHex("", "order_1|pay_1")))
}

func TestVerifyWebhookSignature(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "test_key_secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "test_webhook_secret")

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"razorpay_order_id":"order_1"}}}`)
	valid := signHex("test_webhook_secret", string(body))

	assert.True(t, VerifyWebhookSignature(body, valid))

	t.Run("re-serialized body does not verify", func(t *testing.T) {
		reserialized := []byte(`{"event": "payment.captured", "payload": {"payment": {"razorpay_order_id": "order_1"}}}`)
		assert.False(t, VerifyWebhookSignature(reserialized, valid))
	})

	t.Run("signature made with the payment secret is rejected", func(t *testing.T) {
		crossSigned := signHex("test_key_secret", string(body))
		assert.False(t, VerifyWebhookSignature(body, crossSigned))
	})

	t.Run("empty signature is rejected", func(t *testing.T) {
		assert.False(t, VerifyWebhookSignature(body, ""))
	})
}
