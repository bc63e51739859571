package database

import (
	"fmt"
	"log"

	config "github.com/saverana/donation-backend/configs"
	"github.com/saverana/donation-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Donor{},
		&models.Donation{},
		&models.Payment{},
		&models.DonationReceipt{},
		&models.Intern{},
		&models.Manager{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedManager creates the reporting account from the environment on first
// boot. Manager signup is deliberately not exposed over HTTP.
func SeedManager() {
	managerEmail := config.Config("MANAGER_EMAIL")
	managerPassword := config.Config("MANAGER_PASSWORD")

	if managerEmail == "" || managerPassword == "" {
		log.Println("⚠️ Manager credentials not configured, skipping manager seed")
		return
	}

	var count int64
	if err := DB.Model(&models.Manager{}).Where("email = ?", managerEmail).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for manager account: %v", err)
	}
	if count > 0 {
		log.Println("Manager account already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(managerPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash manager password: %v", err)
	}

	manager := models.Manager{
		FullName: config.Config("MANAGER_FULL_NAME"),
		Email:    managerEmail,
		Password: string(hashedPassword),
	}

	if err := DB.Create(&manager).Error; err != nil {
		log.Fatalf("🔥 Failed to seed manager account: %v", err)
	}

	log.Println("✅ Manager account seeded successfully")
}
