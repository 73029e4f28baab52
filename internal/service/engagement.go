package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"go.uber.org/zap"
)

// Milestones are the like and save counts that notify the recipe owner.
var Milestones = []int{1, 10, 25, 50, 100, 250, 500, 1000}

// IsMilestone reports whether count is one of Milestones.
func IsMilestone(count int) bool {
	return slices.Contains(Milestones, count)
}

// Notifier is the part of NotificationService the engagement flow needs.
type Notifier interface {
	NotifyMilestone(ctx context.Context, ownerID, recipeID uint, kind models.NotificationType, count int) error
}

// EngagementService toggles likes and saves and counts shares.
type EngagementService struct {
	Repo     repository.EngagementRepo
	Notifier Notifier
}

// EngagementResponse is the state of one counter after a change.
type EngagementResponse struct {
	RecipeID uint `json:"recipeId"`
	Active   bool `json:"active"`
	Count    int  `json:"count"`
}

// NewEngagementService is the constructor function for initializing a new EngagementService.
func NewEngagementService(repo repository.EngagementRepo, notifier Notifier) *EngagementService {
	return &EngagementService{Repo: repo, Notifier: notifier}
}

// ToggleLike likes the recipe, or removes the like if present.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, recipeID uint) (*EngagementResponse, error) {
	res, err := s.Repo.ToggleLike(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	s.maybeNotify(ctx, userID, recipeID, res, models.NotificationLikeMilestone)
	return &EngagementResponse{RecipeID: recipeID, Active: res.Active, Count: res.Count}, nil
}

// ToggleSave saves the recipe, or removes the save if present.
func (s *EngagementService) ToggleSave(ctx context.Context, userID, recipeID uint) (*EngagementResponse, error) {
	res, err := s.Repo.ToggleSave(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	s.maybeNotify(ctx, userID, recipeID, res, models.NotificationSaveMilestone)
	return &EngagementResponse{RecipeID: recipeID, Active: res.Active, Count: res.Count}, nil
}

// Share counts one share of the recipe.
func (s *EngagementService) Share(ctx context.Context, recipeID uint) (*EngagementResponse, error) {
	count, err := s.Repo.IncrementShare(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count share: %w", err)
	}
	return &EngagementResponse{RecipeID: recipeID, Active: true, Count: count}, nil
}

// maybeNotify tells the owner when a new like or save lands on a milestone.
// Removals and the owner's own actions never notify.
func (s *EngagementService) maybeNotify(ctx context.Context, actorID, recipeID uint, res *repository.ToggleResult, kind models.NotificationType) {
	if s.Notifier == nil || !res.Active || res.OwnerID == 0 || res.OwnerID == actorID || !IsMilestone(res.Count) {
		return
	}
	if err := s.Notifier.NotifyMilestone(ctx, res.OwnerID, recipeID, kind, res.Count); err != nil {
		logger.Get().Error("milestone notification failed",
			zap.Uint("recipe_id", recipeID),
			zap.Uint("owner_id", res.OwnerID),
			zap.Error(err),
		)
	}
}
