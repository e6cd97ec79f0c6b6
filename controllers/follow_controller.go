// File: /controllers/follow_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"wanderlog-api/models"
	"wanderlog-api/repositories"
)

type FollowController struct {
	db         *gorm.DB
	followRepo *repositories.FollowRepository
}

func NewFollowController(db *gorm.DB, followRepo *repositories.FollowRepository) *FollowController {
	return &FollowController{db: db, followRepo: followRepo}
}

func (fc *FollowController) FollowUser(c *gin.Context) {
	username := c.GetString("username")
	target := c.Param("username")

	var targetUser models.User
	if err := fc.db.First(&targetUser, "username = ?", target).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := fc.followRepo.Follow(username, target); err != nil {
		if errors.Is(err, repositories.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully followed user"})
}

func (fc *FollowController) UnfollowUser(c *gin.Context) {
	username := c.GetString("username")
	target := c.Param("username")

	if err := fc.followRepo.Unfollow(username, target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully unfollowed user"})
}

func (fc *FollowController) GetFollowers(c *gin.Context) {
	username := c.Param("username")

	followers, err := fc.followRepo.ListFollowers(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "followers": followers})
}

func (fc *FollowController) GetFollowing(c *gin.Context) {
	username := c.Param("username")

	following, err := fc.followRepo.ListFollowing(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch following"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "following": following})
}

// GetFriends lists the caller's mutual follows, offered by the planner as
// participant candidates.
func (fc *FollowController) GetFriends(c *gin.Context) {
	username := c.GetString("username")

	friends, err := fc.followRepo.MutualFriends(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
