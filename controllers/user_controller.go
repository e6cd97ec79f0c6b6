// File: /controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"wanderlog-api/models"
	"wanderlog-api/repositories"
	"wanderlog-api/utils"
)

type UserController struct {
	db         *gorm.DB
	tripRepo   *repositories.TripRepository
	followRepo *repositories.FollowRepository
}

func NewUserController(db *gorm.DB, tripRepo *repositories.TripRepository, followRepo *repositories.FollowRepository) *UserController {
	return &UserController{
		db:         db,
		tripRepo:   tripRepo,
		followRepo: followRepo,
	}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	username := c.GetString("username")

	var user models.User
	if err := uc.db.First(&user, "username = ?", username).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	followerCount, _ := uc.followRepo.FollowerCount(username)
	followingCount, _ := uc.followRepo.FollowingCount(username)

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"follower_count":  followerCount,
		"following_count": followingCount,
	})
}

// GetUser returns another user's public profile with follow state relative
// to the viewer.
func (uc *UserController) GetUser(c *gin.Context) {
	viewer := c.GetString("username")
	username := c.Param("username")

	var user models.User
	if err := uc.db.First(&user, "username = ?", username).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	followerCount, _ := uc.followRepo.FollowerCount(username)
	followingCount, _ := uc.followRepo.FollowingCount(username)

	following := false
	if viewer != username {
		following, _ = uc.followRepo.IsFollowing(viewer, username)
	}

	user.Password = ""
	user.Email = ""
	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"follower_count":  followerCount,
		"following_count": followingCount,
		"is_own_profile":  viewer == username,
		"following":       following,
	})
}

type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Username   *string `json:"username"`
	Privacy    *string `json:"privacy"`
	ProfilePic *string `json:"profile_pic"`
}

// UpdateProfile edits the caller's profile. A username change cascades
// through trips, posts, follows and bookmarks so child rows keep pointing at
// the renamed user.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	username := c.GetString("username")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Privacy != nil && *req.Privacy != models.PrivacyPublic && *req.Privacy != models.PrivacyPrivate {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Privacy must be public or private"})
		return
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		utils.SendValidationError(c, "Invalid email address")
		return
	}
	if req.Username != nil && !utils.IsValidUsername(*req.Username) {
		utils.SendValidationError(c, "Username must be 3-50 lowercase letters, digits or underscores")
		return
	}

	if req.Username != nil && *req.Username != username {
		newUsername := *req.Username

		var existing models.User
		if err := uc.db.Where("username = ?", newUsername).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}

		// Rename related rows first to avoid dangling references
		if err := uc.tripRepo.RenameUser(username, newUsername); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename user"})
			return
		}
		if err := uc.followRepo.RenameUser(username, newUsername); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename user"})
			return
		}
		if err := uc.db.Model(&models.Post{}).Where("username = ?", username).
			Update("username", newUsername).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename user"})
			return
		}
		if err := uc.db.Model(&models.SavedPost{}).Where("username = ?", username).
			Update("username", newUsername).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename user"})
			return
		}
		if err := uc.db.Model(&models.Comment{}).Where("username = ?", username).
			Update("username", newUsername).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename user"})
			return
		}
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.Privacy != nil {
		updates["privacy"] = *req.Privacy
	}
	if req.ProfilePic != nil {
		updates["profile_pic"] = *req.ProfilePic
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to update"})
		return
	}

	if err := uc.db.Model(&models.User{}).Where("username = ?", username).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// DeleteAccount removes the caller's user row. Their trips remain reachable
// for participants until deleted by hand; posts, comments, bookmarks and
// follows are cleaned up.
func (uc *UserController) DeleteAccount(c *gin.Context) {
	username := c.GetString("username")

	err := uc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower = ? OR followee = ?", username, username).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("username = ?", username).Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("username = ?", username).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		// Children of the user's posts go before the posts themselves
		if err := tx.Where("post_id IN (?)",
			tx.Model(&models.Post{}).Select("id").Where("username = ?", username)).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN (?)",
			tx.Model(&models.Post{}).Select("id").Where("username = ?", username)).
			Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("username = ?", username).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "username = ?", username).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
