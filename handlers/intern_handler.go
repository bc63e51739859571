package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/saverana/donation-backend/database"
	"github.com/saverana/donation-backend/models"
	"github.com/saverana/donation-backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type InternSignupRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=10"`
	Password string `json:"password" validate:"required,min=6"`
}

func InternSignup(c *fiber.Ctx) error {
	var req InternSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	var intern models.Intern
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		code, err := utils.GenerateUniqueReferralCode(tx)
		if err != nil {
			return err
		}

		intern = models.Intern{
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			Password:     string(hashedPassword),
			ReferralCode: code,
		}
		return tx.Create(&intern).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already registered"})
		}
		log.Printf("🔥 Intern signup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create account"})
	}

	token, err := issueToken(intern.ID.String(), "intern", 30*24*time.Hour)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"intern_id":     intern.ID,
		"referral_code": intern.ReferralCode,
		"token":         token,
	})
}

type InternLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func InternLogin(c *fiber.Ctx) error {
	var req InternLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var intern models.Intern
	if err := database.DB.Where("email = ?", req.Email).First(&intern).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(intern.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := issueToken(intern.ID.String(), "intern", 30*24*time.Hour)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"intern_id":     intern.ID,
		"referral_code": intern.ReferralCode,
		"token":         token,
	})
}

// GetInternDonations lists the donations attributed to the authenticated
// intern's referral code, with aggregate totals for the dashboard.
func GetInternDonations(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	internID, err := uuid.Parse(claims["sub"].(string))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token subject"})
	}

	var intern models.Intern
	if err := database.DB.Where("id = ?", internID).First(&intern).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Intern not found"})
	}

	var donations []models.Donation
	if err := database.DB.Preload("Donor").
		Where("referral_code = ?", intern.ReferralCode).
		Order("created_at DESC").
		Find(&donations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var totalRaised int64
	var completedCount int64
	for _, d := range donations {
		if d.Status == models.DonationCompleted {
			totalRaised += d.Amount
			completedCount++
		}
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"referral_code": intern.ReferralCode,
		"donations":     donations,
		"stats": fiber.Map{
			"total_donations": len(donations),
			"completed":       completedCount,
			"total_raised":    float64(totalRaised) / 100,
		},
	})
}

// ListInterns is the manager view: every intern with attribution totals.
func ListInterns(c *fiber.Ctx) error {
	var interns []models.Intern
	if err := database.DB.Order("created_at DESC").Find(&interns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	type referralTotal struct {
		ReferralCode string
		Count        int64
		Total        int64
	}
	var totals []referralTotal
	if err := database.DB.Model(&models.Donation{}).
		Select("referral_code, COUNT(*) as count, COALESCE(SUM(amount), 0) as total").
		Where("referral_code IS NOT NULL AND status = ?", models.DonationCompleted).
		Group("referral_code").
		Scan(&totals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	totalsByCode := make(map[string]referralTotal, len(totals))
	for _, t := range totals {
		totalsByCode[t.ReferralCode] = t
	}

	type internSummary struct {
		models.Intern
		DonationCount int64   `json:"donation_count"`
		TotalRaised   float64 `json:"total_raised"`
	}
	summaries := make([]internSummary, 0, len(interns))
	for _, intern := range interns {
		summary := internSummary{Intern: intern}
		if t, ok := totalsByCode[intern.ReferralCode]; ok {
			summary.DonationCount = t.Count
			summary.TotalRaised = float64(t.Total) / 100
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(fiber.Map{"success": true, "data": summaries, "total": len(summaries)})
}
