// File: /services/visibility_service.go
package services

import (
	"errors"

	"gorm.io/gorm"
	"wanderlog-api/models"
	"wanderlog-api/repositories"
)

// VisibilityService decides whether a viewer may see another user's trips and
// posts. Private content requires a mutual follow: the viewer follows the
// owner AND the owner follows the viewer back. A one-directional follow is
// not enough.
type VisibilityService struct {
	db         *gorm.DB
	followRepo *repositories.FollowRepository
}

func NewVisibilityService(db *gorm.DB, followRepo *repositories.FollowRepository) *VisibilityService {
	return &VisibilityService{
		db:         db,
		followRepo: followRepo,
	}
}

// CanViewContent reports whether viewer may see owner's detail content.
// A false result means the caller should respond with empty collections,
// not with an error: hidden content looks absent, not forbidden.
func (s *VisibilityService) CanViewContent(viewer, owner string) (bool, error) {
	if viewer == owner {
		return true, nil
	}

	var user models.User
	if err := s.db.Select("username", "privacy").First(&user, "username = ?", owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, repositories.ErrUserNotFound
		}
		return false, err
	}

	if user.Privacy != models.PrivacyPrivate {
		return true, nil
	}

	following, err := s.followRepo.IsFollowing(viewer, owner)
	if err != nil {
		return false, err
	}
	if !following {
		return false, nil
	}

	followedBack, err := s.followRepo.IsFollowing(owner, viewer)
	if err != nil {
		return false, err
	}
	return followedBack, nil
}

// VisibleTrips applies the listing contract: the owner sees every status,
// any other permitted viewer sees published trips only, and a viewer without
// visibility gets an empty list.
func (s *VisibilityService) VisibleTrips(tripRepo *repositories.TripRepository, viewer, owner string) ([]models.Trip, error) {
	canView, err := s.CanViewContent(viewer, owner)
	if err != nil {
		return nil, err
	}
	if !canView {
		return []models.Trip{}, nil
	}

	if viewer == owner {
		return tripRepo.GetTripsForUser(owner)
	}
	return tripRepo.GetPublishedTripsForUser(owner)
}
