// File: /controllers/trip_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"wanderlog-api/models"
	"wanderlog-api/repositories"
	"wanderlog-api/services"
	"wanderlog-api/utils"
)

type TripController struct {
	db           *gorm.DB
	tripRepo     *repositories.TripRepository
	visibility   *services.VisibilityService
	emailService *services.EmailService
}

func NewTripController(db *gorm.DB, tripRepo *repositories.TripRepository,
	visibility *services.VisibilityService, emailService *services.EmailService) *TripController {
	return &TripController{
		db:           db,
		tripRepo:     tripRepo,
		visibility:   visibility,
		emailService: emailService,
	}
}

type SimpleTripRequest struct {
	Country  string `json:"country" binding:"required"`
	City     string `json:"city" binding:"required"`
	Date     string `json:"date"`
	Activity string `json:"activity"`
}

// CreateSimpleTrip is the lightweight planner flow: one location, no
// collaborators.
func (tc *TripController) CreateSimpleTrip(c *gin.Context) {
	username := c.GetString("username")

	var req SimpleTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tripID, err := tc.tripRepo.CreateSimple(username, req.Country, req.City, req.Date, req.Activity)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trip"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "trip_id": tripID})
}

type CollaborativeTripRequest struct {
	Title        string                `json:"title" binding:"required"`
	Description  string                `json:"description"`
	Budget       float64               `json:"budget"`
	Currency     string                `json:"currency" binding:"required"`
	Locations    []models.LocationSpec `json:"locations"`
	Participants []string              `json:"participants"`
	Status       string                `json:"status" binding:"required"`
}

// CreateCollaborativeTrip creates a full trip aggregate in one transaction.
func (tc *TripController) CreateCollaborativeTrip(c *gin.Context) {
	username := c.GetString("username")

	var req CollaborativeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.IsValidCurrency(req.Currency) {
		utils.SendValidationError(c, "Currency must be a three-letter code")
		return
	}

	tripID, err := tc.tripRepo.CreateCollaborative(username, req.Title, req.Description,
		req.Budget, req.Currency, req.Locations, req.Participants, req.Status)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create trip"})
		return
	}

	tc.notifyInvitedParticipants(username, req.Title, req.Participants)

	c.JSON(http.StatusCreated, gin.H{"success": true, "trip_id": tripID})
}

// EditTrip replaces the trip aggregate. Any participant may edit content;
// only the owner's submitted participant list is applied.
func (tc *TripController) EditTrip(c *gin.Context) {
	username := c.GetString("username")
	tripID := c.Param("id")

	var req CollaborativeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.IsValidCurrency(req.Currency) {
		utils.SendValidationError(c, "Currency must be a three-letter code")
		return
	}

	// Snapshot the participant set so newly added editors can be notified
	// once the replace has committed.
	var before []string
	tc.db.Model(&models.TripParticipant{}).Where("trip_id = ?", tripID).
		Pluck("username", &before)

	err := tc.tripRepo.Edit(tripID, username, req.Title, req.Description,
		req.Budget, req.Currency, req.Locations, req.Participants, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTripNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Trip not found"})
		case errors.Is(err, repositories.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not authorized to edit this trip"})
		case errors.Is(err, repositories.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update trip"})
		}
		return
	}

	// The repository ignores a non-owner's participant list, so diffing the
	// stored set rather than the submitted one only mails real additions.
	var after []string
	tc.db.Model(&models.TripParticipant{}).Where("trip_id = ?", tripID).
		Pluck("username", &after)
	if added := newParticipants(before, after); len(added) > 0 {
		tc.notifyInvitedParticipants(username, req.Title, added)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "trip_id": tripID})
}

func (tc *TripController) DeleteTrip(c *gin.Context) {
	username := c.GetString("username")
	tripID := c.Param("id")

	if err := tc.tripRepo.Delete(tripID, username); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTripNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		case errors.Is(err, repositories.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete a trip"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trip"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted successfully"})
}

// GetMyTrips lists every trip the caller owns or participates in.
func (tc *TripController) GetMyTrips(c *gin.Context) {
	username := c.GetString("username")

	trips, err := tc.tripRepo.GetTripsForUser(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetUserTrips lists another user's trips through the visibility gate.
// Hidden content comes back as an empty list, not as an error.
func (tc *TripController) GetUserTrips(c *gin.Context) {
	viewer := c.GetString("username")
	owner := c.Param("username")

	trips, err := tc.visibility.VisibleTrips(tc.tripRepo, viewer, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": owner, "trips": trips})
}

// GetTrip returns the full aggregate: header, locations in display order and
// participants. Non-owner viewers pass through the visibility gate; a hidden
// trip answers with an empty detail set.
func (tc *TripController) GetTrip(c *gin.Context) {
	viewer := c.GetString("username")
	tripID := c.Param("id")

	trip, err := tc.tripRepo.GetTripDetails(tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}
	if trip == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	canView, err := tc.visibility.CanViewContent(viewer, trip.OwnerUsername)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}
	if !canView && !tc.isParticipant(trip, viewer) {
		// Hidden content looks absent: header only, no detail
		c.JSON(http.StatusOK, gin.H{
			"trip": gin.H{
				"id":             trip.ID,
				"owner_username": trip.OwnerUsername,
				"locations":      []models.TripLocation{},
				"participants":   []models.TripParticipant{},
			},
			"is_owner": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip":     trip,
		"is_owner": trip.OwnerUsername == viewer,
	})
}

// GetAllTrips feeds the homepage with published trips.
func (tc *TripController) GetAllTrips(c *gin.Context) {
	trips, err := tc.tripRepo.GetAllTrips()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

type ChatMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// AppendChatMessage adds to the trip's append-only chat log.
func (tc *TripController) AppendChatMessage(c *gin.Context) {
	username := c.GetString("username")
	tripID := c.Param("id")

	var req ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing data"})
		return
	}

	if err := tc.tripRepo.AppendMessage(tripID, username, req.Message); err != nil {
		if errors.Is(err, repositories.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ChatMessageResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Time     string `json:"time"` // HH:MM display time
}

// ListChatMessages returns the chat log in posting order. Clients poll this
// endpoint; there is no push channel.
func (tc *TripController) ListChatMessages(c *gin.Context) {
	tripID := c.Param("id")

	messages, err := tc.tripRepo.ListMessages(tripID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	response := make([]ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, ChatMessageResponse{
			Username: m.Username,
			Message:  m.Message,
			Time:     m.CreatedAt.Format("15:04"),
		})
	}

	c.JSON(http.StatusOK, gin.H{"messages": response})
}

func (tc *TripController) isParticipant(trip *models.Trip, username string) bool {
	for _, p := range trip.Participants {
		if p.Username == username {
			return true
		}
	}
	return false
}

// newParticipants returns the usernames present in after but not in before.
func newParticipants(before, after []string) []string {
	existing := make(map[string]bool, len(before))
	for _, username := range before {
		existing[username] = true
	}

	var added []string
	for _, username := range after {
		if !existing[username] {
			added = append(added, username)
		}
	}
	return added
}

// inviteCandidates filters a participant list down to the names that should
// receive an invite mail: no owner, no blanks, no duplicates.
func inviteCandidates(owner string, participants []string) []string {
	seen := map[string]bool{owner: true, "": true}

	var candidates []string
	for _, participant := range participants {
		if seen[participant] {
			continue
		}
		seen[participant] = true
		candidates = append(candidates, participant)
	}
	return candidates
}

// notifyInvitedParticipants sends a best-effort invite mail to each added
// editor. Mail failures never fail the trip write.
func (tc *TripController) notifyInvitedParticipants(owner, tripTitle string, participants []string) {
	for _, participant := range inviteCandidates(owner, participants) {
		var user models.User
		if err := tc.db.Select("email", "first_name").First(&user, "username = ?", participant).Error; err != nil {
			continue
		}

		go func(email, name string) {
			if err := tc.emailService.SendTripInviteEmail(email, name, owner, tripTitle); err != nil {
				fmt.Printf("Failed to send trip invite email: %v\n", err)
			}
		}(user.Email, user.FirstName)
	}
}
