package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedTestData resets the database and populates it with demo users.
//
// Behavior:
//  1. Clears all engine tables.
//  2. Creates 20 users (10 male, 10 female) in the same city with hashed
//     placeholder passwords and ages spread over a ±10 year band.
//  3. Submits a full 10-question personality questionnaire for every user,
//     biased so most cross-gender pairs land above the 0.6 threshold.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(database *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"user_choices", "daily_selections", "personality_responses", "users"} {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch database.Dialector.Name() {
	case "mysql":
		database.Exec("ALTER TABLE user_choices AUTO_INCREMENT = 1")
		database.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		database.Exec("DELETE FROM sqlite_sequence WHERE name = 'user_choices'")
		database.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	// --- Seed Users (10 male, 10 female) ---
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}

		user := User{
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			FirstName:    fmt.Sprintf("User%d", i),
			Age:          25 + r.Intn(10),
			Gender:       gender,
			LocationCity: "Paris",
			Premium:      i%5 == 0,
			Active:       true,
		}

		if err := database.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		// Keep answers in the 3..5 band so cosine scores mostly clear the
		// threshold and the demo selections are non-empty.
		responses := make([]PersonalityResponse, 0, 10)
		for q := 1; q <= 10; q++ {
			responses = append(responses, PersonalityResponse{
				UserID:     user.ID,
				QuestionID: q,
				Value:      3 + r.Intn(3),
			})
		}
		if err := database.Create(&responses).Error; err != nil {
			return fmt.Errorf("failed to seed questionnaire: %w", err)
		}
	}
	log.Println("Seeded 20 users with questionnaires.")

	return nil
}
