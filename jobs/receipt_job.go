package jobs

import (
	"log"
	"time"

	"github.com/saverana/donation-backend/database"
	"github.com/saverana/donation-backend/models"
	"github.com/saverana/donation-backend/services"
)

// RetryPendingReceipts re-runs the receipt pipeline for completed donations
// whose receipt email never went out. The five minute grace period keeps the
// sweep from racing the in-request send.
func RetryPendingReceipts() {
	log.Println("Running job: RetryPendingReceipts...")

	cutoff := time.Now().Add(-5 * time.Minute)

	var donations []models.Donation
	err := database.DB.
		Where("status = ? AND receipt_sent = ? AND updated_at < ?", models.DonationCompleted, false, cutoff).
		Limit(50).
		Find(&donations).Error
	if err != nil {
		log.Printf("Error finding donations with pending receipts: %v", err)
		return
	}

	if len(donations) == 0 {
		return
	}

	log.Printf("Retrying receipts for %d donation(s)", len(donations))
	for _, donation := range donations {
		services.SendDonationReceipt(donation.ID)
	}
}
