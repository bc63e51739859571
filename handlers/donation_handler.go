package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saverana/donation-backend/database"
	"github.com/saverana/donation-backend/models"
	"github.com/saverana/donation-backend/payments"
	"github.com/saverana/donation-backend/services"
)

var validate = validator.New()

type DonationRequest struct {
	FullName     string  `json:"full_name" validate:"required,min=2"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        *string `json:"phone,omitempty"`
	PanNumber    *string `json:"pan_number,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Pincode      *string `json:"pincode,omitempty"`
	Amount       int64   `json:"amount" validate:"required"`
	Currency     string  `json:"currency,omitempty"`
	Message      *string `json:"message,omitempty" validate:"omitempty,max=500"`
	ReferralCode *string `json:"referral_code,omitempty" validate:"omitempty,max=50"`
}

// CreateDonation opens a donation and a gateway order. Amount is in paise.
func CreateDonation(c *fiber.Ctx) error {
	var req DonationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := services.InitiateDonation(services.InitiateDonationInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PanNumber:    req.PanNumber,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		AmountPaise:  req.Amount,
		Currency:     req.Currency,
		Message:      req.Message,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid donation amount"})
		}
		if errors.Is(err, payments.ErrGatewayUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment gateway unavailable, please try again"})
		}
		log.Printf("🔥 Donation creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create donation"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"order_id":    result.OrderID,
		"donation_id": result.DonationID,
		"amount":      result.Amount,
		"currency":    result.Currency,
		"key_id":      result.KeyID,
		"donor_name":  result.DonorName,
		"donor_email": result.DonorEmail,
	})
}

type VerifyDonationRequest struct {
	OrderID    string `json:"order_id" validate:"required"`
	PaymentID  string `json:"payment_id" validate:"required"`
	Signature  string `json:"signature" validate:"required"`
	DonationID string `json:"donation_id" validate:"required,uuid"`
}

// VerifyDonation is the client-side confirm path. Repeated calls with the
// same valid arguments are idempotent successes.
func VerifyDonation(c *fiber.Ctx) error {
	var req VerifyDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields"})
	}

	donationID, err := uuid.Parse(req.DonationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid donation ID format"})
	}

	donation, _, err := services.ConfirmDonation(req.OrderID, req.PaymentID, req.Signature, donationID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerificationFailed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment verification failed"})
		case errors.Is(err, services.ErrOrderMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order does not match donation"})
		case errors.Is(err, services.ErrDonationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Donation not found"})
		default:
			log.Printf("🔥 Payment verification failed for donation %s: %v", req.DonationID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify payment"})
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Payment verified successfully",
		"donation_id": donation.ID,
	})
}

type FailDonationRequest struct {
	DonationID    string `json:"donation_id" validate:"required,uuid"`
	OrderID       string `json:"order_id" validate:"required"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// FailDonation records a client-reported checkout failure. Completed
// donations are never downgraded.
func FailDonation(c *fiber.Ctx) error {
	var req FailDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields"})
	}

	donationID, err := uuid.Parse(req.DonationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid donation ID format"})
	}

	if err := services.FailDonation(donationID, req.OrderID, req.FailureReason); err != nil {
		switch {
		case errors.Is(err, services.ErrDonationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Donation not found"})
		case errors.Is(err, services.ErrOrderMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order does not match donation"})
		default:
			log.Printf("🔥 Failed to record payment failure: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment failure"})
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Payment failure recorded"})
}

// ListDonations returns paginated donations for the manager dashboard,
// newest first.
func ListDonations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := database.DB.Model(&models.Donation{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var donations []models.Donation
	if err := database.DB.Preload("Donor").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&donations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    donations,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetDonationHistory lists completed donations only.
func GetDonationHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit > 100 {
		limit = 100
	}

	var donations []models.Donation
	if err := database.DB.Preload("Donor").
		Where("status = ?", models.DonationCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&donations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{"success": true, "data": donations})
}

// GetDonationStats aggregates totals for the manager dashboard. Amounts are
// reported in rupees.
func GetDonationStats(c *fiber.Ctx) error {
	type statusCount struct {
		Status models.DonationStatus
		Count  int64
	}

	var counts []statusCount
	if err := database.DB.Model(&models.Donation{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var totalPaise int64
	if err := database.DB.Model(&models.Donation{}).
		Where("status = ?", models.DonationCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalPaise).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	stats := fiber.Map{
		"total_donations":  int64(0),
		"completed":        int64(0),
		"pending":          int64(0),
		"failed":           int64(0),
		"total_amount":     float64(totalPaise) / 100,
		"average_donation": float64(0),
	}
	var totalCount, completedCount int64
	for _, sc := range counts {
		totalCount += sc.Count
		switch sc.Status {
		case models.DonationCompleted:
			completedCount = sc.Count
			stats["completed"] = sc.Count
		case models.DonationPending:
			stats["pending"] = sc.Count
		case models.DonationFailed:
			stats["failed"] = sc.Count
		}
	}
	stats["total_donations"] = totalCount
	if completedCount > 0 {
		stats["average_donation"] = float64(totalPaise) / float64(completedCount) / 100
	}

	return c.JSON(fiber.Map{"success": true, "data": stats})
}
