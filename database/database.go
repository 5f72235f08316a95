package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"mealdesk/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database, runs migrations and seeds the initial
// admin account. The handle is returned to the caller and passed down
// explicitly; there is no package-level connection.
func Open(databaseURL string) (*gorm.DB, error) {
	// GORM logger configuration
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the schema migrations and seeding. Split out from Open
// so tests can run it against their own connection.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.MealSelection{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	SeedInitialData(db)
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedInitialData creates the initial admin account if none exists, so
// the admin-only endpoints have a usable principal from the start.
func SeedInitialData(db *gorm.DB) {
	var adminUser models.User
	err := db.Where("role = ?", models.RoleAdmin).First(&adminUser).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking for admin user: %v\n", err)
		return
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("adminpassword"), bcrypt.DefaultCost)
	adminUser = models.User{
		Name:       "Administrator",
		Username:   "admin",
		EmployeeID: "EMP-0000",
		Department: "Administration",
		Password:   string(hashedPassword),
		Role:       models.RoleAdmin,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		log.Printf("Failed to create initial admin user: %v\n", err)
	} else {
		log.Println("Created initial admin user.")
	}
}
