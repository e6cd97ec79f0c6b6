// File: /repositories/trip_repository.go
package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wanderlog-api/models"
)

// TripRepository owns the trip aggregate: the trip header, its ordered
// location list and its participant set are read and written as one
// consistency unit. Every multi-entity write runs in a single transaction;
// a reader never observes a partially replaced aggregate.
type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

// RoleOf resolves the acting user's role on a trip.
// Returns ErrTripNotFound when the trip does not exist.
func (r *TripRepository) RoleOf(tripID, username string) (string, error) {
	return r.roleOf(r.db, tripID, username)
}

// roleOf runs against the given handle so Edit and Delete can re-resolve the
// role inside their own transaction, closing the race between check and write.
func (r *TripRepository) roleOf(tx *gorm.DB, tripID, username string) (string, error) {
	var trip models.Trip
	if err := tx.Select("id", "owner_username").First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTripNotFound
		}
		return "", err
	}

	if trip.OwnerUsername == username {
		return models.TripRoleOwner, nil
	}

	var participant models.TripParticipant
	err := tx.Where("trip_id = ? AND username = ? AND role = ?",
		tripID, username, models.TripRoleEditor).First(&participant).Error
	if err == nil {
		return models.TripRoleEditor, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return "", err
}

// CreateSimple inserts a minimal single-user trip: header, owner participant
// and one location. No explicit transaction; there is no cross-entity
// invariant a concurrent reader could catch half-applied beyond the owner
// participant row, which is inserted before the location.
func (r *TripRepository) CreateSimple(username, country, city, date, activity string) (string, error) {
	if country == "" || city == "" {
		return "", fmt.Errorf("%w: country and city are required", ErrInvalidInput)
	}
	normalizedDate, err := normalizeDate(date)
	if err != nil {
		return "", err
	}

	trip := models.Trip{
		ID:            uuid.New().String(),
		OwnerUsername: username,
		Title:         fmt.Sprintf("%s, %s", city, country),
		Budget:        0,
		Currency:      "EUR",
		Status:        models.TripStatusDraft,
	}
	if err := r.db.Create(&trip).Error; err != nil {
		return "", fmt.Errorf("failed to create trip: %w", err)
	}

	owner := models.TripParticipant{
		TripID:   trip.ID,
		Username: username,
		Role:     models.TripRoleOwner,
	}
	if err := r.db.Create(&owner).Error; err != nil {
		return "", fmt.Errorf("failed to create owner participant: %w", err)
	}

	location := models.TripLocation{
		TripID:     trip.ID,
		Country:    country,
		City:       city,
		Date:       normalizedDate,
		Activity:   activity,
		OrderIndex: 0,
	}
	if err := r.db.Create(&location).Error; err != nil {
		return "", fmt.Errorf("failed to create trip location: %w", err)
	}

	return trip.ID, nil
}

// CreateCollaborative inserts a full trip aggregate in one transaction:
// header, owner participant, deduplicated editor participants and the
// submitted locations in order. Any failure rolls the whole trip back.
func (r *TripRepository) CreateCollaborative(owner, title, description string, budget float64,
	currency string, locations []models.LocationSpec, participants []string, status string) (string, error) {

	if err := validateHeader(title, budget, currency, status); err != nil {
		return "", err
	}

	tripID := uuid.New().String()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		trip := models.Trip{
			ID:            tripID,
			OwnerUsername: owner,
			Title:         title,
			Description:   description,
			Budget:        budget,
			Currency:      currency,
			Status:        status,
		}
		if err := tx.Create(&trip).Error; err != nil {
			return err
		}

		if err := insertParticipants(tx, tripID, owner, participants); err != nil {
			return err
		}

		return insertLocations(tx, tripID, locations)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return "", err
		}
		return "", fmt.Errorf("trip creation failed: %w", err)
	}

	return tripID, nil
}

// Edit replaces the whole trip aggregate in one transaction:
//  1. resolve the actor's role against current rows (NotFound / Unauthorized
//     short-circuit before anything is written)
//  2. update the header unconditionally - any authorized participant may
//     change trip content
//  3. delete and re-insert the location set, order_index = submitted position
//  4. only when the actor is the owner, delete and re-insert the participant
//     set; a non-owner's submitted participant list is ignored entirely
//
// On any failure the transaction rolls back and the trip is untouched.
// Concurrent edits are not serialized beyond the store's isolation level:
// last commit wins on the header and on both child sets.
func (r *TripRepository) Edit(tripID, actor, title, description string, budget float64,
	currency string, locations []models.LocationSpec, participants []string, status string) error {

	if err := validateHeader(title, budget, currency, status); err != nil {
		return err
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		role, err := r.roleOf(tx, tripID, actor)
		if err != nil {
			return err
		}
		if role == "" {
			return ErrUnauthorized
		}

		updates := map[string]interface{}{
			"title":       title,
			"description": description,
			"budget":      budget,
			"currency":    currency,
			"status":      status,
			"updated_at":  time.Now(),
		}
		if err := tx.Model(&models.Trip{}).Where("id = ?", tripID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("trip_id = ?", tripID).Delete(&models.TripLocation{}).Error; err != nil {
			return err
		}
		if err := insertLocations(tx, tripID, locations); err != nil {
			return err
		}

		if role == models.TripRoleOwner {
			if err := tx.Where("trip_id = ?", tripID).Delete(&models.TripParticipant{}).Error; err != nil {
				return err
			}
			// role == owner implies actor == Trip.OwnerUsername
			if err := insertParticipants(tx, tripID, actor, participants); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTripNotFound) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("trip update failed: %w", err)
	}

	return nil
}

// Delete removes a trip and all of its children. Owner only.
func (r *TripRepository) Delete(tripID, actor string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		role, err := r.roleOf(tx, tripID, actor)
		if err != nil {
			return err
		}
		if role != models.TripRoleOwner {
			return ErrUnauthorized
		}

		if err := tx.Where("trip_id = ?", tripID).Delete(&models.TripLocation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", tripID).Delete(&models.TripParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", tripID).Delete(&models.TripMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Trip{}, "id = ?", tripID).Error
	})
	if err != nil {
		if errors.Is(err, ErrTripNotFound) || errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("trip deletion failed: %w", err)
	}
	return nil
}

// GetTripsForUser returns every trip the user owns or participates in,
// regardless of status.
func (r *TripRepository) GetTripsForUser(username string) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.
		Where("owner_username = ? OR id IN (?)", username,
			r.db.Model(&models.TripParticipant{}).Select("trip_id").Where("username = ?", username)).
		Order("created_at DESC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// GetPublishedTripsForUser returns the user's own published trips; drafts
// are never disclosed to other viewers.
func (r *TripRepository) GetPublishedTripsForUser(username string) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.
		Where("owner_username = ? AND status = ?", username, models.TripStatusPublished).
		Order("created_at DESC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// GetAllTrips returns every published trip, newest first.
func (r *TripRepository) GetAllTrips() ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.
		Where("status = ?", models.TripStatusPublished).
		Order("created_at DESC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// GetTripDetails loads the full aggregate: header, locations in display
// order and participants. Returns nil when the trip does not exist.
func (r *TripRepository) GetTripDetails(tripID string) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.
		Preload("Locations", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Participants").
		First(&trip, "id = ?", tripID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

// RenameUser rewrites a username across the trip aggregate's tables after a
// profile rename, keeping ownership and authorship intact.
func (r *TripRepository) RenameUser(oldUsername, newUsername string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Trip{}).Where("owner_username = ?", oldUsername).
			Update("owner_username", newUsername).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TripParticipant{}).Where("username = ?", oldUsername).
			Update("username", newUsername).Error; err != nil {
			return err
		}
		return tx.Model(&models.TripMessage{}).Where("username = ?", oldUsername).
			Update("username", newUsername).Error
	})
}

// AppendMessage adds a chat message to a trip's log. The log is append-only;
// there is no edit or delete. Callers poll ListMessages for updates.
func (r *TripRepository) AppendMessage(tripID, username, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: message must not be empty", ErrInvalidInput)
	}

	msg := models.TripMessage{
		TripID:   tripID,
		Username: username,
		Message:  message,
	}
	if err := r.db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

// ListMessages returns a trip's chat log ordered by creation time, insertion
// order breaking ties.
func (r *TripRepository) ListMessages(tripID string) ([]models.TripMessage, error) {
	var messages []models.TripMessage
	err := r.db.
		Where("trip_id = ?", tripID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// insertLocations re-creates the location set in submitted order. OrderIndex
// is the position in the slice, so the set is always dense 0..n-1.
func insertLocations(tx *gorm.DB, tripID string, locations []models.LocationSpec) error {
	for i, spec := range locations {
		if spec.Country == "" || spec.City == "" {
			return fmt.Errorf("%w: location %d is missing country or city", ErrInvalidInput, i)
		}
		date, err := normalizeDate(spec.Date)
		if err != nil {
			return err
		}

		location := models.TripLocation{
			TripID:     tripID,
			Country:    spec.Country,
			City:       spec.City,
			Date:       date,
			Activity:   spec.Activity,
			OrderIndex: i,
			Visited:    spec.Visited,
		}
		if err := tx.Create(&location).Error; err != nil {
			return err
		}
	}
	return nil
}

// insertParticipants re-creates the participant set: the owner row first,
// then one editor row per submitted username, skipping the owner and
// duplicates silently.
func insertParticipants(tx *gorm.DB, tripID, owner string, participants []string) error {
	ownerRow := models.TripParticipant{
		TripID:   tripID,
		Username: owner,
		Role:     models.TripRoleOwner,
	}
	if err := tx.Create(&ownerRow).Error; err != nil {
		return err
	}

	seen := map[string]bool{owner: true}
	for _, username := range participants {
		if username == "" || seen[username] {
			continue
		}
		seen[username] = true

		editor := models.TripParticipant{
			TripID:   tripID,
			Username: username,
			Role:     models.TripRoleEditor,
		}
		if err := tx.Create(&editor).Error; err != nil {
			return err
		}
	}
	return nil
}

func validateHeader(title string, budget float64, currency, status string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	}
	if currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}
	if status != models.TripStatusDraft && status != models.TripStatusPublished {
		return fmt.Errorf("%w: status must be draft or published", ErrInvalidInput)
	}
	return nil
}

// normalizeDate maps "" to NULL and validates YYYY-MM-DD otherwise.
func normalizeDate(date string) (*string, error) {
	if date == "" {
		return nil, nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return &date, nil
}
