package utils

import (
	"errors"
	"math/rand"

	"github.com/saverana/donation-backend/models"
	"gorm.io/gorm"
)

const (
	referralCodePrefix = "INTERN-"
	referralCodeLength = 8
	referralCharset    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeAttempts    = 5
)

// GenerateUniqueReferralCode returns an unused INTERN-XXXXXXXX code, retrying
// on collision a bounded number of times.
func GenerateUniqueReferralCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		b := make([]byte, referralCodeLength)
		for i := range b {
			b[i] = referralCharset[rand.Intn(len(referralCharset))]
		}
		code := referralCodePrefix + string(b)

		var intern models.Intern
		err := tx.Where("referral_code = ?", code).First(&intern).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("failed to generate unique referral code")
}
