package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	config "github.com/saverana/donation-backend/configs"
	"github.com/saverana/donation-backend/database"
	"github.com/saverana/donation-backend/models"
	"github.com/saverana/donation-backend/payments"
	"github.com/saverana/donation-backend/websocket"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidAmount      = errors.New("invalid donation amount")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrOrderMismatch      = errors.New("order does not belong to this donation")
	ErrDonationNotFound   = errors.New("donation not found")
)

// MinDonationPaise is the smallest accepted donation (₹1).
const MinDonationPaise int64 = 100

const defaultMaxDonationPaise int64 = 100_000_000 // ₹10,00,000

func maxDonationPaise() int64 {
	if raw := config.Config("DONATION_MAX_PAISE"); raw != "" {
		if ceiling, err := strconv.ParseInt(raw, 10, 64); err == nil && ceiling > 0 {
			return ceiling
		}
	}
	return defaultMaxDonationPaise
}

type InitiateDonationInput struct {
	FullName     string
	Email        string
	Phone        *string
	PanNumber    *string
	Address      *string
	City         *string
	State        *string
	Pincode      *string
	AmountPaise  int64
	Currency     string
	Message      *string
	ReferralCode *string
}

type InitiateDonationResult struct {
	DonationID uuid.UUID
	OrderID    string
	Amount     int64
	Currency   string
	KeyID      string
	DonorName  string
	DonorEmail string
}

// InitiateDonation validates the amount, resolves the donor by email, records
// a pending donation and opens the gateway order. If the gateway call fails
// the pending donation is left without an order id for the reconciliation
// sweep; it is never reported to the caller as committed.
func InitiateDonation(input InitiateDonationInput) (*InitiateDonationResult, error) {
	if input.AmountPaise < MinDonationPaise || input.AmountPaise > maxDonationPaise() {
		return nil, ErrInvalidAmount
	}
	currency := input.Currency
	if currency == "" {
		currency = "INR"
	}

	donor, err := upsertDonor(input)
	if err != nil {
		return nil, err
	}

	donation := models.Donation{
		DonorID:      donor.ID,
		Amount:       input.AmountPaise,
		Currency:     currency,
		Message:      input.Message,
		ReferralCode: input.ReferralCode,
		Status:       models.DonationPending,
	}
	payment := models.Payment{Status: models.DonationPending}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&donation).Error; err != nil {
			return err
		}
		payment.DonationID = donation.ID
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("DONATION-%s-%d", donor.ID, time.Now().UnixMilli())
	notes := map[string]string{
		"donation_id": donation.ID.String(),
		"donor_id":    donor.ID.String(),
		"donor_name":  donor.FullName,
		"donor_email": donor.Email,
	}
	if input.ReferralCode != nil {
		notes["referral_code"] = *input.ReferralCode
	}

	order, err := payments.CreateRazorpayOrder(input.AmountPaise, currency, receipt, notes)
	if err != nil {
		log.Printf("🔥 Gateway order creation failed for donation %s: %v", donation.ID, err)
		return nil, err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Donation{}).Where("id = ?", donation.ID).
			Update("razorpay_order_id", order.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Payment{}).Where("donation_id = ?", donation.ID).
			Update("razorpay_order_id", order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return &InitiateDonationResult{
		DonationID: donation.ID,
		OrderID:    order.ID,
		Amount:     input.AmountPaise,
		Currency:   currency,
		KeyID:      config.Config("RAZORPAY_KEY_ID"),
		DonorName:  donor.FullName,
		DonorEmail: donor.Email,
	}, nil
}

// upsertDonor converges concurrent first-time donors with the same email on a
// single row: insert with ON CONFLICT DO NOTHING on the unique email, then
// re-select.
func upsertDonor(input InitiateDonationInput) (*models.Donor, error) {
	candidate := models.Donor{
		FullName:  input.FullName,
		Email:     input.Email,
		Phone:     input.Phone,
		PanNumber: input.PanNumber,
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		Pincode:   input.Pincode,
	}
	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return nil, err
	}

	var donor models.Donor
	if err := database.DB.Where("email = ?", input.Email).First(&donor).Error; err != nil {
		return nil, err
	}
	return &donor, nil
}

// ConfirmDonation is the synchronous client-side verify path. It returns the
// donation and whether this call was the one that performed the transition;
// a lost race or an already completed donation is a no-op success.
func ConfirmDonation(orderID, paymentID, signature string, donationID uuid.UUID) (*models.Donation, bool, error) {
	if !payments.VerifyPaymentSignature(orderID, paymentID, signature) {
		log.Printf("⚠️ Invalid payment signature for order %s", orderID)
		return nil, false, ErrVerificationFailed
	}

	var donation models.Donation
	if err := database.DB.Where("id = ?", donationID).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrDonationNotFound
		}
		return nil, false, err
	}

	// A signature valid for order A must not complete a donation bound to
	// order B.
	if donation.RazorpayOrderID == nil || *donation.RazorpayOrderID != orderID {
		log.Printf("⚠️ Order binding violation: donation %s is not bound to order %s", donationID, orderID)
		return nil, false, ErrOrderMismatch
	}

	if donation.Status == models.DonationCompleted {
		return &donation, false, nil
	}

	transitioned, err := completeDonation(donation.ID, orderID, paymentID, signature)
	if err != nil {
		return nil, false, err
	}

	if err := database.DB.Where("id = ?", donationID).First(&donation).Error; err != nil {
		return nil, transitioned, err
	}
	return &donation, transitioned, nil
}

// ConfirmDonationFromWebhook applies the same guarded transition as
// ConfirmDonation but locates the donation by gateway order id, since the
// webhook payload carries only gateway identifiers.
func ConfirmDonationFromWebhook(orderID, paymentID, signature string) (bool, error) {
	if !payments.VerifyPaymentSignature(orderID, paymentID, signature) {
		log.Printf("⚠️ Invalid payment signature in webhook for order %s", orderID)
		return false, ErrVerificationFailed
	}

	var donation models.Donation
	if err := database.DB.Where("razorpay_order_id = ?", orderID).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrDonationNotFound
		}
		return false, err
	}

	if donation.Status == models.DonationCompleted {
		return false, nil
	}

	return completeDonation(donation.ID, orderID, paymentID, signature)
}

// completeDonation is the single point of mutation for the pending→completed
// transition. The WHERE predicate makes the update atomic at the storage
// layer: exactly one racing caller gets RowsAffected=1, everyone else
// observes a no-op.
func completeDonation(donationID uuid.UUID, orderID, paymentID, signature string) (bool, error) {
	res := database.DB.Model(&models.Donation{}).
		Where("id = ? AND status <> ?", donationID, models.DonationCompleted).
		Updates(map[string]interface{}{
			"status":              models.DonationCompleted,
			"razorpay_payment_id": paymentID,
			"razorpay_signature":  signature,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Another caller won the race.
		return false, nil
	}

	if err := database.DB.Model(&models.Payment{}).
		Where("razorpay_order_id = ? AND status <> ?", orderID, models.DonationCompleted).
		Updates(map[string]interface{}{
			"status":              models.DonationCompleted,
			"razorpay_payment_id": paymentID,
			"razorpay_signature":  signature,
		}).Error; err != nil {
		// The donation is the source of truth; log and carry on.
		log.Printf("🔥 Failed to mirror completion onto payment record for order %s: %v", orderID, err)
	}

	log.Printf("✅ Donation %s completed with payment %s", donationID, paymentID)

	go SendDonationReceipt(donationID)
	go publishCompletedDonation(donationID)

	return true, nil
}

// FailDonation records a payment failure. Only a pending donation may fail;
// a completed donation is never downgraded, so a stale failure report after
// a successful webhook is a silent no-op.
func FailDonation(donationID uuid.UUID, orderID, reason string) error {
	var donation models.Donation
	if err := database.DB.Where("id = ?", donationID).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDonationNotFound
		}
		return err
	}

	if donation.RazorpayOrderID == nil || *donation.RazorpayOrderID != orderID {
		return ErrOrderMismatch
	}

	return markFailed(donation.ID, orderID, reason)
}

// FailDonationFromWebhook handles the gateway's payment.failed event.
func FailDonationFromWebhook(orderID, reason string) error {
	var donation models.Donation
	if err := database.DB.Where("razorpay_order_id = ?", orderID).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDonationNotFound
		}
		return err
	}
	return markFailed(donation.ID, orderID, reason)
}

func markFailed(donationID uuid.UUID, orderID, reason string) error {
	res := database.DB.Model(&models.Donation{}).
		Where("id = ? AND status = ?", donationID, models.DonationPending).
		Update("status", models.DonationFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Already terminal; nothing to do.
		return nil
	}

	if reason == "" {
		reason = "Payment failed"
	}
	if err := database.DB.Model(&models.Payment{}).
		Where("razorpay_order_id = ? AND status = ?", orderID, models.DonationPending).
		Updates(map[string]interface{}{
			"status":         models.DonationFailed,
			"failure_reason": reason,
		}).Error; err != nil {
		log.Printf("🔥 Failed to record failure reason for order %s: %v", orderID, err)
	}

	log.Printf("Donation %s marked failed: %s", donationID, reason)
	return nil
}

func publishCompletedDonation(donationID uuid.UUID) {
	var donation models.Donation
	if err := database.DB.Preload("Donor").Where("id = ?", donationID).First(&donation).Error; err != nil {
		log.Printf("Error loading donation %s for live feed: %v", donationID, err)
		return
	}

	websocket.PublishDonation(websocket.DonationEvent{
		DonationID:   donation.ID.String(),
		Amount:       donation.Amount,
		Currency:     donation.Currency,
		DonorName:    donation.Donor.FullName,
		ReferralCode: donation.ReferralCode,
		CompletedAt:  donation.UpdatedAt,
	})
}
