package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/saverana/donation-backend/database"
	"github.com/saverana/donation-backend/middleware"
	"github.com/saverana/donation-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInternApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/interns/signup", InternSignup)
	app.Post("/api/v1/interns/login", InternLogin)
	app.Get("/api/v1/interns/donations", middleware.Protected(), middleware.InternRequired(), GetInternDonations)
	return app
}

func signupIntern(t *testing.T, app *fiber.App, email string) map[string]interface{} {
	t.Helper()
	resp, parsed := postJSON(t, app, "/api/v1/interns/signup", fiber.Map{
		"name":     "Ravi Kumar",
		"email":    email,
		"phone":    "9876543210",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return parsed
}

func TestInternSignup(t *testing.T) {
	setupTestDB(t)
	setupSecrets(t)
	app := newInternApp()

	parsed := signupIntern(t, app, "ravi@example.com")

	assert.Equal(t, true, parsed["success"])
	assert.NotEmpty(t, parsed["token"])

	code, _ := parsed["referral_code"].(string)
	assert.True(t, strings.HasPrefix(code, "INTERN-"))
	assert.Len(t, code, len("INTERN-")+8)

	var intern models.Intern
	require.NoError(t, database.DB.Where("email = ?", "ravi@example.com").First(&intern).Error)
	assert.Equal(t, code, intern.ReferralCode)
	assert.NotEqual(t, "secret123", intern.Password)
}

func TestInternSignup_DuplicateEmail(t *testing.T) {
	setupTestDB(t)
	setupSecrets(t)
	app := newInternApp()

	signupIntern(t, app, "ravi@example.com")

	resp, parsed := postJSON(t, app, "/api/v1/interns/signup", fiber.Map{
		"name":     "Ravi Again",
		"email":    "ravi@example.com",
		"phone":    "9876543210",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already registered", parsed["error"])
}

func TestInternSignup_Validation(t *testing.T) {
	setupTestDB(t)
	setupSecrets(t)
	app := newInternApp()

	resp, _ := postJSON(t, app, "/api/v1/interns/signup", fiber.Map{
		"name":     "R",
		"email":    "not-an-email",
		"phone":    "123",
		"password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInternLogin(t *testing.T) {
	setupTestDB(t)
	setupSecrets(t)
	app := newInternApp()

	signupIntern(t, app, "ravi@example.com")

	resp, parsed := postJSON(t, app, "/api/v1/interns/login", fiber.Map{
		"email":    "ravi@example.com",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, parsed["token"])

	resp, _ = postJSON(t, app, "/api/v1/interns/login", fiber.Map{
		"email":    "ravi@example.com",
		"password": "wrongpass",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetInternDonations(t *testing.T) {
	setupTestDB(t)
	setupSecrets(t)
	app := newInternApp()

	parsed := signupIntern(t, app, "ravi@example.com")
	token, _ := parsed["token"].(string)
	code, _ := parsed["referral_code"].(string)

	// One completed and one pending donation attributed to the intern.
	donor := models.Donor{FullName: "Donor", Email: "d@example.com"}
	require.NoError(t, database.DB.Create(&donor).Error)
	require.NoError(t, database.DB.Create(&models.Donation{
		DonorID:      donor.ID,
		Amount:       50000,
		Currency:     "INR",
		Status:       models.DonationCompleted,
		ReferralCode: &code,
	}).Error)
	require.NoError(t, database.DB.Create(&models.Donation{
		DonorID:      donor.ID,
		Amount:       20000,
		Currency:     "INR",
		Status:       models.DonationPending,
		ReferralCode: &code,
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interns/donations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := readJSON(t, resp)
	assert.Equal(t, code, body["referral_code"])
	stats, ok := body["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), stats["total_donations"])
	assert.Equal(t, float64(1), stats["completed"])
	assert.Equal(t, float64(500), stats["total_raised"])
}

func TestGetInternDonations_RequiresToken(t *testing.T) {
	setupTestDB(t)
	setupSecrets(t)
	app := newInternApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interns/donations", nil)
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
