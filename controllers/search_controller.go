// File: /controllers/search_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"wanderlog-api/models"
	"wanderlog-api/utils"
)

type SearchController struct {
	db *gorm.DB
}

func NewSearchController(db *gorm.DB) *SearchController {
	return &SearchController{db: db}
}

type TripSearchResult struct {
	TripID        string `json:"trip_id"`
	OwnerUsername string `json:"owner_username"`
	Title         string `json:"title"`
	Country       string `json:"country"`
	City          string `json:"city"`
	Activity      string `json:"activity"`
}

// Search does a substring search over trip locations (joined to their trips)
// and over users.
func (sc *SearchController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.SendError(c, http.StatusBadRequest, "Search query required")
		return
	}

	term := "%" + query + "%"

	var tripResults []TripSearchResult
	err := sc.db.Model(&models.TripLocation{}).
		Select("trips.id AS trip_id, trips.owner_username, trips.title, trip_locations.country, trip_locations.city, trip_locations.activity").
		Joins("JOIN trips ON trips.id = trip_locations.trip_id").
		Where("trip_locations.country LIKE ? OR trip_locations.city LIKE ? OR trip_locations.activity LIKE ?", term, term, term).
		Where("trips.status = ?", models.TripStatusPublished).
		Scan(&tripResults).Error
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to search trips")
		return
	}

	var users []models.User
	err = sc.db.
		Where("username LIKE ? OR first_name LIKE ? OR last_name LIKE ?", term, term, term).
		Find(&users).Error
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to search users")
		return
	}

	for i := range users {
		users[i].Password = ""
		users[i].Email = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"trips": tripResults,
		"users": users,
	})
}
