package repository

import (
	"context"

	"github.com/windoze95/forkful-api/internal/models"
)

// Partition selects which pool of recipes a search runs against.
type Partition int

// Partition values.
const (
	// PartitionExternal is the third-party catalog.
	PartitionExternal Partition = iota + 1
	// PartitionCommunity is discoverable, non-external user recipes.
	PartitionCommunity
)

// String returns the partition label used in logs and metrics.
func (p Partition) String() string {
	switch p {
	case PartitionExternal:
		return "external"
	case PartitionCommunity:
		return "community"
	default:
		return "unknown"
	}
}

// RecipeFilter is the predicate shared by recipe counts, pages and samples.
type RecipeFilter struct {
	Partition Partition
	// Difficulty is matched exactly and must already be normalized.
	Difficulty string
	// Tokens match any recipe whose searchable fields contain at least one of
	// them. Only the first search.AnyOfLimit are used.
	Tokens []string
}

// FindOptions controls ordering and paging of FindRecipes.
type FindOptions struct {
	// Ordered sorts newest first by creation time.
	Ordered bool
	Limit   int
	Offset  int
}

// RecipeRepo is the interface for recipe repository operations.
type RecipeRepo interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	GetRecipeByID(ctx context.Context, recipeID uint) (*models.Recipe, error)
	GetExternalRecipeBySourceURL(ctx context.Context, sourceURL string) (*models.Recipe, error)
	GetUserRecipes(ctx context.Context, userID uint, page, pageSize int) ([]models.Recipe, int64, error)
	UpdateRecipe(ctx context.Context, recipe *models.Recipe) error
	UpdateRecipeImageURL(ctx context.Context, recipeID uint, imageURL string) error
	DeleteRecipe(ctx context.Context, recipeID uint) error
	CountRecipes(ctx context.Context, filter RecipeFilter) (int64, error)
	FindRecipes(ctx context.Context, filter RecipeFilter, opts FindOptions) ([]models.Recipe, error)
	SampleRecipes(ctx context.Context, filter RecipeFilter, n int) ([]models.Recipe, error)
	// LikedRecipeIDs returns which of recipeIDs the user has liked. Callers
	// pass at most search.AnyOfLimit ids per call.
	LikedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error)
}

// ProfileUpdate carries the optional fields of a profile edit.
type ProfileUpdate struct {
	DisplayName            *string
	PhotoURL               *string
	ShowProfileInCommunity *bool
}

// UserRepo is the interface for user repository operations.
type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	GetUserAuthByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUserProfile(ctx context.Context, userID uint, update ProfileUpdate) error
	GetPublicProfile(ctx context.Context, userID uint) (*models.PublicProfile, error)
}

// ToggleResult describes the state of a like or save after a toggle.
type ToggleResult struct {
	// Active is true when the join row exists after the toggle.
	Active  bool
	Count   int
	OwnerID uint
}

// EngagementRepo is the interface for like, save and share counters.
type EngagementRepo interface {
	ToggleLike(ctx context.Context, userID, recipeID uint) (*ToggleResult, error)
	ToggleSave(ctx context.Context, userID, recipeID uint) (*ToggleResult, error)
	IncrementShare(ctx context.Context, recipeID uint) (int, error)
}

// CollectionRepo is the interface for collection repository operations.
type CollectionRepo interface {
	CreateCollection(ctx context.Context, collection *models.Collection) error
	GetCollectionByID(ctx context.Context, collectionID uint) (*models.Collection, error)
	GetUserCollections(ctx context.Context, ownerID uint) ([]models.Collection, error)
	DeleteCollection(ctx context.Context, collectionID uint) error
	AddRecipeToCollection(ctx context.Context, collectionID, recipeID uint) error
	RemoveRecipeFromCollection(ctx context.Context, collectionID, recipeID uint) error
}

// NotificationRepo is the interface for notification and device storage.
type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetUserNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID uint) error
	UpsertDeviceToken(ctx context.Context, token *models.DeviceToken) error
	GetDeviceTokens(ctx context.Context, userID uint) ([]models.DeviceToken, error)
}
