// File: /controllers/bookmark_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"wanderlog-api/models"
)

type BookmarkController struct {
	db *gorm.DB
}

func NewBookmarkController(db *gorm.DB) *BookmarkController {
	return &BookmarkController{db: db}
}

// ToggleSave saves a post for the caller, or unsaves it when already saved.
func (bc *BookmarkController) ToggleSave(c *gin.Context) {
	username := c.GetString("username")
	postID := c.Param("id")

	var post models.Post
	if err := bc.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var saved models.SavedPost
	err := bc.db.Where("username = ? AND post_id = ?", username, postID).First(&saved).Error
	if err == nil {
		if err := bc.db.Delete(&saved).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave post"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Post unsaved", "is_saved": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle save"})
		return
	}

	saved = models.SavedPost{Username: username, PostID: postID}
	if err := bc.db.Create(&saved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post saved", "is_saved": true})
}

// GetSavedPosts lists the caller's bookmarked posts, newest first.
func (bc *BookmarkController) GetSavedPosts(c *gin.Context) {
	username := c.GetString("username")

	var saved []models.SavedPost
	if err := bc.db.Preload("Post").Where("username = ?", username).
		Order("created_at DESC").Find(&saved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch saved posts"})
		return
	}

	posts := make([]models.Post, 0, len(saved))
	for _, s := range saved {
		posts = append(posts, s.Post)
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
