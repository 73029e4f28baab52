package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/search"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// profileFetchConcurrency bounds parallel owner lookups per request.
const profileFetchConcurrency = 8

// CommunityRecipeResponse is a community feed item. The attribution fields
// are null when the owner opted out or has no name or photo.
type CommunityRecipeResponse struct {
	RecipeResponse
	SharedByDisplayName *string `json:"sharedByDisplayName"`
	SharedByPhotoURL    *string `json:"sharedByPhotoUrl"`
	IsLiked             bool    `json:"isLiked"`
}

// Decorator turns fetched recipes into community feed items.
type Decorator interface {
	Decorate(ctx context.Context, requesterID uint, recipes []models.Recipe) ([]CommunityRecipeResponse, error)
}

// CommunityDecorator drops the requester's own and external recipes, then
// attaches owner attribution and the requester's like status.
type CommunityDecorator struct {
	RecipeRepo repository.RecipeRepo
	UserRepo   repository.UserRepo
}

// NewCommunityDecorator returns a CommunityDecorator backed by the given repos.
func NewCommunityDecorator(recipeRepo repository.RecipeRepo, userRepo repository.UserRepo) *CommunityDecorator {
	return &CommunityDecorator{RecipeRepo: recipeRepo, UserRepo: userRepo}
}

// Decorate implements Decorator. Profile lookup failures are logged and leave
// that owner's attribution empty. A failed like lookup fails the request.
func (d *CommunityDecorator) Decorate(ctx context.Context, requesterID uint, recipes []models.Recipe) ([]CommunityRecipeResponse, error) {
	kept := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.CreatedByID == requesterID || r.IsExternal {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return []CommunityRecipeResponse{}, nil
	}

	profiles := d.fetchProfiles(ctx, kept)

	ids := make([]uint, len(kept))
	for i := range kept {
		ids[i] = kept[i].ID
	}
	liked, err := d.likedSet(ctx, requesterID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]CommunityRecipeResponse, len(kept))
	for i := range kept {
		item := CommunityRecipeResponse{
			RecipeResponse: *ToRecipeResponse(&kept[i]),
			IsLiked:        liked[kept[i].ID],
		}
		if p, ok := profiles[kept[i].CreatedByID]; ok && p.Visible {
			item.SharedByDisplayName = optionalString(p.DisplayName)
			item.SharedByPhotoURL = optionalString(p.PhotoURL)
		}
		out[i] = item
	}
	return out, nil
}

// fetchProfiles looks up each distinct owner in parallel.
func (d *CommunityDecorator) fetchProfiles(ctx context.Context, recipes []models.Recipe) map[uint]*models.PublicProfile {
	seen := make(map[uint]bool)
	var owners []uint
	for _, r := range recipes {
		if r.CreatedByID == 0 || seen[r.CreatedByID] {
			continue
		}
		seen[r.CreatedByID] = true
		owners = append(owners, r.CreatedByID)
	}

	var (
		mu       sync.Mutex
		profiles = make(map[uint]*models.PublicProfile, len(owners))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileFetchConcurrency)
	for _, ownerID := range owners {
		g.Go(func() error {
			p, err := d.UserRepo.GetPublicProfile(gctx, ownerID)
			if err != nil {
				logger.Get().Warn("owner profile lookup failed",
					zap.Uint("owner_id", ownerID),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			profiles[ownerID] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return profiles
}

// likedSet checks like membership in chunks of search.AnyOfLimit ids.
func (d *CommunityDecorator) likedSet(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	for _, chunk := range search.ChunkIDs(ids, search.AnyOfLimit) {
		got, err := d.RecipeRepo.LikedRecipeIDs(ctx, userID, chunk)
		if err != nil {
			return nil, fmt.Errorf("liked recipe ids: %w", err)
		}
		for _, id := range got {
			liked[id] = true
		}
	}
	return liked, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
