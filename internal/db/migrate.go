package db

import (
	"aligner-lab/internal/domain"
	"aligner-lab/internal/staff"
	"log"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		// reference data first
		&domain.Doctor{},
		&domain.Patient{},
		&domain.Work{},
		&domain.Staff{},
		// then everything keyed by them
		&domain.AlignerSet{},
		&domain.Batch{},
		&domain.Payment{},
		&domain.Note{},
		&domain.ActivityFlag{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}

// SeedData seeds the database with initial data (for development only)
func SeedData() {
	staffRepo := staff.NewRepository(AppDb)

	testStaff := &domain.Staff{
		Name:     "Lab Operator",
		Email:    "operator@example.com",
		Password: "password123",
		IsActive: true,
	}

	// Check if account exists
	_, err := staffRepo.FindByEmail(testStaff.Email)
	if err != nil {
		staffService := staff.NewService(staffRepo)
		// Account doesn't exist, create it
		if err := staffService.Register(testStaff); err != nil {
			log.Printf("Error creating staff account: %v", err)
		} else {
			log.Printf("Created staff account: %s", testStaff.Email)
		}
	} else {
		log.Printf("Staff account already exists: %s", testStaff.Email)
	}
}
