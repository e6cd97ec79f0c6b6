// File: /controllers/user_controller_test.go
package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"wanderlog-api/models"
	"wanderlog-api/repositories"
)

func newUserRouter(t *testing.T, db *gorm.DB, username string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tripRepo := repositories.NewTripRepository(db)
	followRepo := repositories.NewFollowRepository(db)
	uc := NewUserController(db, tripRepo, followRepo)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("username", username)
		c.Next()
	})

	api := r.Group("/api/v1")
	api.GET("/users/profile", uc.GetProfile)
	api.PUT("/users/profile", uc.UpdateProfile)
	api.DELETE("/users/profile", uc.DeleteAccount)

	return r
}

func seedPost(t *testing.T, db *gorm.DB, username string) models.Post {
	t.Helper()
	post := models.Post{
		ID:       uuid.New().String(),
		Username: username,
		Caption:  "from " + username,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return post
}

func TestDeleteAccountCleansUpContent(t *testing.T) {
	db := newTestDB(t)
	seedTestUser(t, db, "alice", "public")
	seedTestUser(t, db, "bob", "public")

	alicePost := seedPost(t, db, "alice")
	bobPost := seedPost(t, db, "bob")

	// Comments and bookmarks crossing both directions.
	comments := []models.Comment{
		{PostID: bobPost.ID, Username: "alice", Caption: "alice on bob"},
		{PostID: alicePost.ID, Username: "bob", Caption: "bob on alice"},
		{PostID: bobPost.ID, Username: "bob", Caption: "bob on bob"},
	}
	for i := range comments {
		if err := db.Create(&comments[i]).Error; err != nil {
			t.Fatalf("failed to seed comment: %v", err)
		}
	}
	saves := []models.SavedPost{
		{Username: "alice", PostID: bobPost.ID},
		{Username: "bob", PostID: alicePost.ID},
	}
	for i := range saves {
		if err := db.Create(&saves[i]).Error; err != nil {
			t.Fatalf("failed to seed bookmark: %v", err)
		}
	}
	follows := []models.Follow{
		{Follower: "alice", Followee: "bob"},
		{Follower: "bob", Followee: "alice"},
	}
	for i := range follows {
		if err := db.Create(&follows[i]).Error; err != nil {
			t.Fatalf("failed to seed follow: %v", err)
		}
	}

	r := newUserRouter(t, db, "alice")
	if w := doJSON(t, r, http.MethodDelete, "/api/v1/users/profile", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for account delete, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.User{}).Where("username = ?", "alice").Count(&count)
	if count != 0 {
		t.Error("expected alice's user row to be deleted")
	}
	db.Model(&models.Post{}).Where("username = ?", "alice").Count(&count)
	if count != 0 {
		t.Error("expected alice's posts to be deleted")
	}
	db.Model(&models.Comment{}).Where("username = ?", "alice").Count(&count)
	if count != 0 {
		t.Error("expected alice's comments to be deleted")
	}
	db.Model(&models.Comment{}).Where("post_id = ?", alicePost.ID).Count(&count)
	if count != 0 {
		t.Error("expected comments on alice's posts to be deleted")
	}
	db.Model(&models.SavedPost{}).Where("post_id = ?", alicePost.ID).Count(&count)
	if count != 0 {
		t.Error("expected bookmarks of alice's posts to be deleted")
	}
	db.Model(&models.Follow{}).Where("follower = ? OR followee = ?", "alice", "alice").Count(&count)
	if count != 0 {
		t.Error("expected follow edges touching alice to be deleted")
	}

	// Bob's own content is untouched.
	db.Model(&models.Post{}).Where("id = ?", bobPost.ID).Count(&count)
	if count != 1 {
		t.Error("expected bob's post to survive")
	}
	db.Model(&models.Comment{}).Where("post_id = ? AND username = ?", bobPost.ID, "bob").Count(&count)
	if count != 1 {
		t.Error("expected bob's comment on his own post to survive")
	}
	db.Model(&models.User{}).Where("username = ?", "bob").Count(&count)
	if count != 1 {
		t.Error("expected bob's user row to survive")
	}
}
