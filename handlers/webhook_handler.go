package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/saverana/donation-backend/payments"
	"github.com/saverana/donation-backend/services"
)

type razorpayWebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			RazorpayPaymentID string `json:"razorpay_payment_id"`
			RazorpayOrderID   string `json:"razorpay_order_id"`
			RazorpaySignature string `json:"razorpay_signature"`
			Error             *struct {
				Description string `json:"description"`
			} `json:"error,omitempty"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleRazorpayWebhook is the untrusted asynchronous ingress. The raw body
// signature is checked before anything is parsed; after that, permanent
// conditions (unknown order, unknown event) are acknowledged with 200 so the
// gateway does not retry forever.
func HandleRazorpayWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	headerSignature := c.Get("X-Razorpay-Signature")

	if !payments.VerifyWebhookSignature(rawBody, headerSignature) {
		log.Printf("⚠️ Webhook body signature mismatch, rejecting")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var event razorpayWebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		// Authentic but malformed; retrying will not help.
		log.Printf("Webhook payload unparseable after signature check: %v", err)
		return c.JSON(fiber.Map{"success": true, "message": "Webhook acknowledged"})
	}

	log.Printf("Webhook received: %s", event.Event)

	switch event.Event {
	case "payment.authorized", "payment.captured":
		payment := event.Payload.Payment
		_, err := services.ConfirmDonationFromWebhook(payment.RazorpayOrderID, payment.RazorpayPaymentID, payment.RazorpaySignature)
		if err != nil {
			if errors.Is(err, services.ErrVerificationFailed) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
			}
			if errors.Is(err, services.ErrDonationNotFound) {
				log.Printf("Webhook for unknown order %s, acknowledging", payment.RazorpayOrderID)
				return c.JSON(fiber.Map{"success": true, "message": "Webhook acknowledged"})
			}
			log.Printf("🔥 Webhook processing error for order %s: %v", payment.RazorpayOrderID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "Webhook processed"})

	case "payment.failed":
		payment := event.Payload.Payment
		reason := "Payment failed"
		if payment.Error != nil && payment.Error.Description != "" {
			reason = payment.Error.Description
		}
		if err := services.FailDonationFromWebhook(payment.RazorpayOrderID, reason); err != nil {
			if !errors.Is(err, services.ErrDonationNotFound) {
				log.Printf("🔥 Failed to process payment.failed for order %s: %v", payment.RazorpayOrderID, err)
			}
		}
		return c.JSON(fiber.Map{"success": true, "message": "Webhook processed"})

	default:
		// The gateway requires every event to be acknowledged.
		return c.JSON(fiber.Map{"success": true, "message": "Webhook acknowledged"})
	}
}
