// File: /database/database.go
package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"wanderlog-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Info),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Auto migrate all models
	err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Trip{},
		&models.TripLocation{},
		&models.TripParticipant{},
		&models.TripMessage{},
		&models.Post{},
		&models.Comment{},
		&models.SavedPost{},
	)

	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Add custom indexes for better performance
	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	// Add constraints if needed
	if err := addDatabaseConstraints(db); err != nil {
		return fmt.Errorf("failed to add database constraints: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Trip aggregate lookups by owning trip
		{"trip_locations", "idx_trip_locations_trip_order", "trip_id, order_index"},
		{"trip_participants", "idx_trip_participants_trip_user", "trip_id, username"},
		// Chat log polling order
		{"trip_messages", "idx_trip_messages_trip_created", "trip_id, created_at"},
		// Published-trips listing per owner
		{"trips", "idx_trips_owner_status", "owner_username, status"},
		// Location search (country/city/activity substring search)
		{"trip_locations", "idx_trip_locations_country", "country"},
		{"trip_locations", "idx_trip_locations_city", "city"},
	}

	for _, idx := range indexes {
		// MySQL has no CREATE INDEX IF NOT EXISTS, so consult
		// information_schema before creating
		var count int64
		db.Raw(
			"SELECT COUNT(1) FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?",
			idx.table, idx.name,
		).Scan(&count)
		if count > 0 {
			continue
		}

		stmt := fmt.Sprintf("CREATE INDEX %s ON %s(%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			fmt.Printf("Warning: Could not create index %s: %v\n", idx.name, err)
		}
	}

	return nil
}

func addDatabaseConstraints(db *gorm.DB) error {
	// Prevent duplicate follows
	if err := db.Exec("ALTER TABLE follows ADD CONSTRAINT uk_follows_pair UNIQUE (follower, followee)").Error; err != nil {
		// Ignore error if constraint already exists
		fmt.Printf("Warning: Could not add unique constraint for follows: %v\n", err)
	}

	// Prevent self-following
	if err := db.Exec("ALTER TABLE follows ADD CONSTRAINT ck_follows_no_self_follow CHECK (follower != followee)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for follows: %v\n", err)
	}

	// Prevent duplicate bookmarks
	if err := db.Exec("ALTER TABLE saved_posts ADD CONSTRAINT uk_saved_posts_pair UNIQUE (username, post_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for saved_posts: %v\n", err)
	}

	// One location per order slot within a trip
	if err := db.Exec("ALTER TABLE trip_locations ADD CONSTRAINT uk_trip_locations_order UNIQUE (trip_id, order_index)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for trip_locations: %v\n", err)
	}

	// One participant row per user per trip
	if err := db.Exec("ALTER TABLE trip_participants ADD CONSTRAINT uk_trip_participants_pair UNIQUE (trip_id, username)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for trip_participants: %v\n", err)
	}

	return nil
}

// SeedData can be used to populate the database with initial data for development/testing
func SeedData(db *gorm.DB) error {
	// Check if we already have users
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)

	if userCount > 0 {
		fmt.Println("Database already has data, skipping seed")
		return nil
	}

	testUsers := []models.User{
		{
			ID:            "user-1",
			FirstName:     "Alice",
			LastName:      "Janssens",
			Username:      "alice",
			Email:         "alice@example.com",
			Password:      "$2a$10$dummy", // This should be properly hashed in real scenarios
			Privacy:       models.PrivacyPublic,
			EmailVerified: true,
		},
		{
			ID:            "user-2",
			FirstName:     "Bob",
			LastName:      "Peeters",
			Username:      "bob",
			Email:         "bob@example.com",
			Password:      "$2a$10$dummy",
			Privacy:       models.PrivacyPrivate,
			EmailVerified: true,
		},
	}

	for _, user := range testUsers {
		if err := db.Create(&user).Error; err != nil {
			fmt.Printf("Warning: Could not create test user %s: %v\n", user.Username, err)
		}
	}

	// Sample trip with two locations and a shared editor
	trip := models.Trip{
		ID:            "trip-1",
		OwnerUsername: "alice",
		Title:         "Summer in Italy",
		Description:   "Two weeks through the north of Italy.",
		Budget:        1500,
		Currency:      "EUR",
		Status:        models.TripStatusPublished,
	}
	if err := db.Create(&trip).Error; err != nil {
		fmt.Printf("Warning: Could not create test trip: %v\n", err)
		return nil
	}

	date1, date2 := "2025-07-01", "2025-07-05"
	locations := []models.TripLocation{
		{TripID: trip.ID, Country: "Italy", City: "Milan", Date: &date1, Activity: "Duomo and city walk", OrderIndex: 0},
		{TripID: trip.ID, Country: "Italy", City: "Venice", Date: &date2, Activity: "Gondola tour", OrderIndex: 1},
	}
	participants := []models.TripParticipant{
		{TripID: trip.ID, Username: "alice", Role: models.TripRoleOwner},
		{TripID: trip.ID, Username: "bob", Role: models.TripRoleEditor},
	}
	for _, location := range locations {
		if err := db.Create(&location).Error; err != nil {
			fmt.Printf("Warning: Could not create test location: %v\n", err)
		}
	}
	for _, participant := range participants {
		if err := db.Create(&participant).Error; err != nil {
			fmt.Printf("Warning: Could not create test participant: %v\n", err)
		}
	}

	fmt.Println("Database seeded with test data")
	return nil
}
