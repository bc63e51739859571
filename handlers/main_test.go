package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saverana/donation-backend/database"
	"github.com/saverana/donation-backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testKeySecret     = "test_key_secret"
	testWebhookSecret = "test_webhook_secret"
)

var testDBCounter int64

func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Donor{},
		&models.Donation{},
		&models.Payment{},
		&models.DonationReceipt{},
		&models.Intern{},
		&models.Manager{},
	))

	database.DB = db
}

func setupSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("RAZORPAY_KEY_ID", "test_key_id")
	t.Setenv("RAZORPAY_KEY_SECRET", testKeySecret)
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", testWebhookSecret)
	t.Setenv("JWT_SECRET", "test_jwt_secret")
}

func signHex(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func validPaymentSig(orderID, paymentID string) string {
	return signHex(testKeySecret, []byte(orderID+"|"+paymentID))
}

func stubGateway(t *testing.T) {
	t.Helper()

	var orderSeq int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     fmt.Sprintf("order_%d", atomic.AddInt64(&orderSeq, 1)),
			"status": "created",
		})
	}))
	t.Cleanup(srv.Close)
	t.Setenv("RAZORPAY_API_BASE_URL", srv.URL)
}

func createPendingDonation(t *testing.T, orderID string) models.Donation {
	t.Helper()

	donor := models.Donor{FullName: "Test Donor", Email: fmt.Sprintf("%s@example.com", uuid.NewString()[:8])}
	require.NoError(t, database.DB.Create(&donor).Error)

	donation := models.Donation{
		DonorID:         donor.ID,
		Amount:          50000,
		Currency:        "INR",
		Status:          models.DonationPending,
		RazorpayOrderID: &orderID,
	}
	require.NoError(t, database.DB.Create(&donation).Error)

	payment := models.Payment{
		DonationID:      donation.ID,
		RazorpayOrderID: &orderID,
		Status:          models.DonationPending,
	}
	require.NoError(t, database.DB.Create(&payment).Error)

	return donation
}

func reloadDonation(t *testing.T, id uuid.UUID) models.Donation {
	t.Helper()
	var donation models.Donation
	require.NoError(t, database.DB.Where("id = ?", id).First(&donation).Error)
	return donation
}

func readJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	parsed := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return parsed
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody []byte
	switch b := body.(type) {
	case []byte:
		reqBody = b
	default:
		var err error
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, 10000)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	parsed := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}
