// File: /repositories/follow_repository.go
package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"wanderlog-api/models"
)

// FollowRepository manages the directional follow graph between users.
type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Follow(follower, followee string) error {
	if follower == followee {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}

	var existing models.Follow
	err := r.db.Where("follower = ? AND followee = ?", follower, followee).First(&existing).Error
	if err == nil {
		return nil // already following
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	follow := models.Follow{Follower: follower, Followee: followee}
	return r.db.Create(&follow).Error
}

func (r *FollowRepository) Unfollow(follower, followee string) error {
	return r.db.Where("follower = ? AND followee = ?", follower, followee).
		Delete(&models.Follow{}).Error
}

func (r *FollowRepository) IsFollowing(follower, followee string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower = ? AND followee = ?", follower, followee).
		Count(&count).Error
	return count > 0, err
}

func (r *FollowRepository) FollowerCount(username string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("followee = ?", username).Count(&count).Error
	return count, err
}

func (r *FollowRepository) FollowingCount(username string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower = ?", username).Count(&count).Error
	return count, err
}

// ListFollowers returns the usernames following the given user.
func (r *FollowRepository) ListFollowers(username string) ([]string, error) {
	var followers []string
	err := r.db.Model(&models.Follow{}).
		Where("followee = ?", username).
		Order("created_at DESC").
		Pluck("follower", &followers).Error
	return followers, err
}

// ListFollowing returns the usernames the given user follows.
func (r *FollowRepository) ListFollowing(username string) ([]string, error) {
	var following []string
	err := r.db.Model(&models.Follow{}).
		Where("follower = ?", username).
		Order("created_at DESC").
		Pluck("followee", &following).Error
	return following, err
}

// MutualFriends returns users connected to username by follow edges in both
// directions. The trip planner offers these as participant candidates.
func (r *FollowRepository) MutualFriends(username string) ([]string, error) {
	var friends []string
	err := r.db.Model(&models.Follow{}).
		Where("follower = ? AND followee IN (?)", username,
			r.db.Model(&models.Follow{}).Select("follower").Where("followee = ?", username)).
		Pluck("followee", &friends).Error
	return friends, err
}

// RenameUser rewrites a username on both sides of the follow graph.
func (r *FollowRepository) RenameUser(oldUsername, newUsername string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Follow{}).Where("follower = ?", oldUsername).
			Update("follower", newUsername).Error; err != nil {
			return err
		}
		return tx.Model(&models.Follow{}).Where("followee = ?", oldUsername).
			Update("followee", newUsername).Error
	})
}
