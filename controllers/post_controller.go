// File: /controllers/post_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"wanderlog-api/models"
	"wanderlog-api/repositories"
	"wanderlog-api/services"
)

type PostController struct {
	db         *gorm.DB
	visibility *services.VisibilityService
}

func NewPostController(db *gorm.DB, visibility *services.VisibilityService) *PostController {
	return &PostController{db: db, visibility: visibility}
}

type CreatePostRequest struct {
	Caption   string   `json:"caption" binding:"required"`
	ImageUrls []string `json:"image_urls"`
}

func (pc *PostController) CreatePost(c *gin.Context) {
	username := c.GetString("username")

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		ID:        uuid.New().String(),
		Username:  username,
		Caption:   req.Caption,
		ImageUrls: models.StringSlice(req.ImageUrls),
	}

	if err := pc.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetAllPosts returns the feed: posts by public users plus the caller's own.
func (pc *PostController) GetAllPosts(c *gin.Context) {
	username := c.GetString("username")

	var posts []models.Post
	err := pc.db.
		Where("username = ? OR username IN (?)", username,
			pc.db.Model(&models.User{}).Select("username").Where("privacy = ?", models.PrivacyPublic)).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": pc.withSavedFlags(username, posts)})
}

// GetUserPosts lists a user's posts through the same mutual-follow
// visibility gate as trips.
func (pc *PostController) GetUserPosts(c *gin.Context) {
	viewer := c.GetString("username")
	owner := c.Param("username")

	canView, err := pc.visibility.CanViewContent(viewer, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	posts := []models.Post{}
	if canView {
		if err := pc.db.Where("username = ?", owner).Order("created_at DESC").Find(&posts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"username": owner, "posts": pc.withSavedFlags(viewer, posts)})
}

func (pc *PostController) DeletePost(c *gin.Context) {
	username := c.GetString("username")
	postID := c.Param("id")

	result := pc.db.Where("id = ? AND username = ?", postID, username).Delete(&models.Post{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found or access denied"})
		return
	}

	// Clean up comments and bookmarks of the removed post
	pc.db.Where("post_id = ?", postID).Delete(&models.Comment{})
	pc.db.Where("post_id = ?", postID).Delete(&models.SavedPost{})

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

type CommentRequest struct {
	Caption  string `json:"caption" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

func (pc *PostController) AddComment(c *gin.Context) {
	username := c.GetString("username")
	postID := c.Param("id")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := pc.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comment := models.Comment{
		PostID:   postID,
		Username: username,
		Caption:  req.Caption,
		ParentID: req.ParentID,
	}

	if err := pc.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments returns root comments for a post; replies are fetched per
// comment via parent_id.
func (pc *PostController) GetComments(c *gin.Context) {
	postID := c.Param("id")

	var comments []models.Comment
	if err := pc.db.Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (pc *PostController) GetReplies(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var replies []models.Comment
	if err := pc.db.Where("parent_id = ?", uint(commentID)).
		Order("created_at DESC").Find(&replies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch replies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

func (pc *PostController) UpdateComment(c *gin.Context) {
	username := c.GetString("username")
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var req struct {
		Caption string `json:"caption" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := pc.db.Model(&models.Comment{}).
		Where("id = ? AND username = ?", uint(commentID), username).
		Update("caption", req.Caption)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found or access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully"})
}

func (pc *PostController) DeleteComment(c *gin.Context) {
	username := c.GetString("username")
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	result := pc.db.Where("id = ? AND username = ?", uint(commentID), username).
		Delete(&models.Comment{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found or access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (pc *PostController) withSavedFlags(viewer string, posts []models.Post) []models.PostWithSaved {
	decorated := make([]models.PostWithSaved, 0, len(posts))
	for _, post := range posts {
		var count int64
		pc.db.Model(&models.SavedPost{}).
			Where("username = ? AND post_id = ?", viewer, post.ID).
			Count(&count)
		decorated = append(decorated, models.PostWithSaved{Post: post, IsSaved: count > 0})
	}
	return decorated
}
