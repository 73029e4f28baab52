package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/windoze95/forkful-api/internal/ai"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/search"
)

// --- MockTextProvider ---

// MockTextProvider is a mock implementation of ai.TextProvider.
type MockTextProvider struct {
	GenerateRecipeFunc        func(ctx context.Context, req ai.RecipeRequest) (*ai.RecipeResult, error)
	ExtractRecipeFromTextFunc func(ctx context.Context, req ai.ExtractRequest) (*ai.RecipeResult, error)

	mu    sync.Mutex
	Calls int
}

func (m *MockTextProvider) count() {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
}

func (m *MockTextProvider) GenerateRecipe(ctx context.Context, req ai.RecipeRequest) (*ai.RecipeResult, error) {
	m.count()
	if m.GenerateRecipeFunc != nil {
		return m.GenerateRecipeFunc(ctx, req)
	}
	return nil, fmt.Errorf("GenerateRecipe not configured")
}

func (m *MockTextProvider) ExtractRecipeFromText(ctx context.Context, req ai.ExtractRequest) (*ai.RecipeResult, error) {
	m.count()
	if m.ExtractRecipeFromTextFunc != nil {
		return m.ExtractRecipeFromTextFunc(ctx, req)
	}
	return nil, fmt.Errorf("ExtractRecipeFromText not configured")
}

// --- MockImageProvider ---

// MockImageProvider is a mock implementation of ai.ImageProvider.
type MockImageProvider struct {
	GenerateImageFunc func(ctx context.Context, prompt string) ([]byte, error)
}

func (m *MockImageProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt)
	}
	return nil, fmt.Errorf("GenerateImage not configured")
}

// --- MockImageSearchProvider ---

// MockImageSearchProvider is a mock implementation of ai.ImageSearchProvider.
type MockImageSearchProvider struct {
	SearchImageFunc func(ctx context.Context, query string) (string, error)
}

func (m *MockImageSearchProvider) SearchImage(ctx context.Context, query string) (string, error) {
	if m.SearchImageFunc != nil {
		return m.SearchImageFunc(ctx, query)
	}
	return "", nil
}

// --- MockSocialProvider ---

// MockSocialProvider is a mock implementation of ai.SocialProvider.
type MockSocialProvider struct {
	FetchMetadataFunc func(ctx context.Context, postURL string) (*ai.SocialMetadata, error)
}

func (m *MockSocialProvider) FetchMetadata(ctx context.Context, postURL string) (*ai.SocialMetadata, error) {
	if m.FetchMetadataFunc != nil {
		return m.FetchMetadataFunc(ctx, postURL)
	}
	return nil, fmt.Errorf("FetchMetadata not configured")
}

// --- MockImageStore ---

// MockImageStore keeps uploaded images in memory.
type MockImageStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string

	UploadErr error
	DeleteErr error
}

// NewMockImageStore creates an empty MockImageStore.
func NewMockImageStore() *MockImageStore {
	return &MockImageStore{Objects: make(map[string][]byte)}
}

// URLFor returns the public URL the store reports for key.
func (m *MockImageStore) URLFor(key string) string {
	return "https://images.test/" + key
}

func (m *MockImageStore) Upload(_ context.Context, key string, data []byte) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return m.URLFor(key), nil
}

func (m *MockImageStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Objects, key)
	return nil
}

// --- MockRecipeRepo ---

// MockRecipeRepo is an in-memory mock implementation of repository.RecipeRepo.
// Filters follow the store semantics: partition, exact difficulty and an
// any-of match over the first search.AnyOfLimit tokens.
type MockRecipeRepo struct {
	mu      sync.Mutex
	Recipes map[uint]*models.Recipe
	NextID  uint
	// Likes holds the liked recipe ids per user.
	Likes map[uint]map[uint]bool
	// LikedChunks records the size of every LikedRecipeIDs call.
	LikedChunks []int
	// Clock stamps CreatedAt on new recipes. Each call advances it by a second.
	Clock time.Time

	CreateErr   error
	FailCount   bool
	FailOrdered bool
	FailFind    bool
	FailSample  bool
	FailLiked   bool
	// FindCalls records the options of every FindRecipes call.
	FindCalls []repository.FindOptions
	// SampleSizes records n of every SampleRecipes call.
	SampleSizes []int
}

// NewMockRecipeRepo creates a new MockRecipeRepo with initialized maps.
func NewMockRecipeRepo() *MockRecipeRepo {
	return &MockRecipeRepo{
		Recipes: make(map[uint]*models.Recipe),
		NextID:  1,
		Likes:   make(map[uint]map[uint]bool),
		Clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Add stores recipe as-is, assigning an id and timestamp if missing.
func (m *MockRecipeRepo) Add(recipe *models.Recipe) *models.Recipe {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(recipe)
	return recipe
}

func (m *MockRecipeRepo) insert(recipe *models.Recipe) {
	if recipe.ID == 0 {
		recipe.ID = m.NextID
	}
	if recipe.ID >= m.NextID {
		m.NextID = recipe.ID + 1
	}
	if recipe.CreatedAt.IsZero() {
		m.Clock = m.Clock.Add(time.Second)
		recipe.CreatedAt = m.Clock
		recipe.UpdatedAt = m.Clock
	}
	if !recipe.Source.IsValid() {
		recipe.Source = models.RecipeSourceManual
	}
	recipe.RefreshSearchableFields()
	m.Recipes[recipe.ID] = recipe
}

// Like marks recipeID as liked by userID.
func (m *MockRecipeRepo) Like(userID, recipeID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Likes[userID] == nil {
		m.Likes[userID] = make(map[uint]bool)
	}
	m.Likes[userID][recipeID] = true
}

func (m *MockRecipeRepo) CreateRecipe(_ context.Context, recipe *models.Recipe) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	recipe.ID = 0
	m.insert(recipe)
	return nil
}

func (m *MockRecipeRepo) GetRecipeByID(_ context.Context, recipeID uint) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Recipes[recipeID]
	if !ok {
		return nil, repository.NewNotFoundError("recipe not found")
	}
	cp := *r
	return &cp, nil
}

func (m *MockRecipeRepo) GetExternalRecipeBySourceURL(_ context.Context, sourceURL string) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.sorted(false) {
		if r.IsExternal && r.SourceURL == sourceURL {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.NewNotFoundError("catalog recipe not found")
}

func (m *MockRecipeRepo) GetUserRecipes(_ context.Context, userID uint, page, pageSize int) ([]models.Recipe, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []models.Recipe
	for _, r := range m.sorted(true) {
		if r.CreatedByID == userID {
			owned = append(owned, *r)
		}
	}
	return search.PageSlice(owned, page, pageSize), int64(len(owned)), nil
}

func (m *MockRecipeRepo) UpdateRecipe(_ context.Context, recipe *models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Recipes[recipe.ID]
	if !ok {
		return repository.NewNotFoundError("recipe not found")
	}
	recipe.RefreshSearchableFields()
	updated := *recipe
	updated.CreatedAt = existing.CreatedAt
	updated.ImageURL = existing.ImageURL
	m.Recipes[recipe.ID] = &updated
	return nil
}

func (m *MockRecipeRepo) UpdateRecipeImageURL(_ context.Context, recipeID uint, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Recipes[recipeID]
	if !ok {
		return repository.NewNotFoundError("recipe not found")
	}
	r.ImageURL = imageURL
	return nil
}

func (m *MockRecipeRepo) DeleteRecipe(_ context.Context, recipeID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Recipes[recipeID]; !ok {
		return repository.NewNotFoundError("recipe not found")
	}
	delete(m.Recipes, recipeID)
	return nil
}

func (m *MockRecipeRepo) CountRecipes(_ context.Context, filter repository.RecipeFilter) (int64, error) {
	if m.FailCount {
		return 0, fmt.Errorf("count unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(filter, false))), nil
}

func (m *MockRecipeRepo) FindRecipes(_ context.Context, filter repository.RecipeFilter, opts repository.FindOptions) ([]models.Recipe, error) {
	m.mu.Lock()
	m.FindCalls = append(m.FindCalls, opts)
	m.mu.Unlock()

	if m.FailFind || (opts.Ordered && m.FailOrdered) {
		return nil, fmt.Errorf("missing index for ordered query")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	matched := m.matching(filter, opts.Ordered)
	if opts.Offset >= len(matched) {
		return []models.Recipe{}, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (m *MockRecipeRepo) SampleRecipes(_ context.Context, filter repository.RecipeFilter, n int) ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SampleSizes = append(m.SampleSizes, n)
	if m.FailSample {
		return nil, fmt.Errorf("sample unavailable")
	}
	matched := m.matching(filter, false)
	if len(matched) > n {
		matched = matched[:n]
	}
	return matched, nil
}

func (m *MockRecipeRepo) LikedRecipeIDs(_ context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LikedChunks = append(m.LikedChunks, len(recipeIDs))
	if m.FailLiked {
		return nil, fmt.Errorf("likes unavailable")
	}
	var liked []uint
	for _, id := range recipeIDs {
		if m.Likes[userID][id] {
			liked = append(liked, id)
		}
	}
	return liked, nil
}

// sorted returns the stored recipes newest first, or in id order.
func (m *MockRecipeRepo) sorted(newestFirst bool) []*models.Recipe {
	out := make([]*models.Recipe, 0, len(m.Recipes))
	for _, r := range m.Recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst && !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MockRecipeRepo) matching(filter repository.RecipeFilter, newestFirst bool) []models.Recipe {
	tokens := filter.Tokens
	if len(tokens) > search.AnyOfLimit {
		tokens = tokens[:search.AnyOfLimit]
	}

	out := []models.Recipe{}
	for _, r := range m.sorted(newestFirst) {
		switch filter.Partition {
		case repository.PartitionExternal:
			if !r.IsExternal {
				continue
			}
		case repository.PartitionCommunity:
			if !r.IsDiscoverable || r.IsExternal {
				continue
			}
		}
		if filter.Difficulty != "" && r.Difficulty != filter.Difficulty {
			continue
		}
		if len(tokens) > 0 && !slices.ContainsFunc(tokens, func(t string) bool {
			return slices.Contains(r.SearchableFields, t)
		}) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// --- MockUserRepo ---

// MockUserRepo is an in-memory mock implementation of repository.UserRepo.
type MockUserRepo struct {
	mu     sync.Mutex
	Users  map[uint]*models.User
	NextID uint

	CreateUserErr error
	// GetPublicProfileFunc overrides profile lookups when set.
	GetPublicProfileFunc func(ctx context.Context, userID uint) (*models.PublicProfile, error)
	ProfileCalls         int
}

// NewMockUserRepo creates a new MockUserRepo with initialized maps.
func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{
		Users:  make(map[uint]*models.User),
		NextID: 1,
	}
}

// Add stores user as-is, assigning an id if missing.
func (m *MockUserRepo) Add(user *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = m.NextID
	}
	if user.ID >= m.NextID {
		m.NextID = user.ID + 1
	}
	m.Users[user.ID] = user
	return user
}

func (m *MockUserRepo) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	if m.CreateUserErr != nil {
		return nil, m.CreateUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if strings.EqualFold(u.Username, user.Username) {
			return nil, repository.NewConflictError("username already in use")
		}
		if user.Email != "" && strings.EqualFold(u.Email, user.Email) {
			return nil, repository.NewConflictError("email already in use")
		}
	}
	user.ID = m.NextID
	m.NextID++
	m.Users[user.ID] = user
	return user, nil
}

func (m *MockUserRepo) GetUserByID(_ context.Context, userID uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return nil, repository.NewNotFoundError("user not found")
	}
	return u, nil
}

func (m *MockUserRepo) GetUserAuthByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, repository.NewNotFoundError("user not found")
}

func (m *MockUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepo) UpdateUserProfile(_ context.Context, userID uint, update repository.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return repository.NewNotFoundError("user not found")
	}
	if update.DisplayName != nil {
		u.DisplayName = *update.DisplayName
	}
	if update.PhotoURL != nil {
		u.PhotoURL = *update.PhotoURL
	}
	if update.ShowProfileInCommunity != nil {
		if u.Settings == nil {
			u.Settings = &models.UserSettings{UserID: userID}
		}
		show := *update.ShowProfileInCommunity
		u.Settings.ShowProfileInCommunity = &show
	}
	return nil
}

func (m *MockUserRepo) GetPublicProfile(ctx context.Context, userID uint) (*models.PublicProfile, error) {
	m.mu.Lock()
	m.ProfileCalls++
	m.mu.Unlock()
	if m.GetPublicProfileFunc != nil {
		return m.GetPublicProfileFunc(ctx, userID)
	}
	u, err := m.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := u.PublicProfile()
	return &p, nil
}

// --- MockEngagementRepo ---

// MockEngagementRepo toggles likes and saves on the recipes of a MockRecipeRepo.
type MockEngagementRepo struct {
	mu      sync.Mutex
	Recipes *MockRecipeRepo
	saves   map[[2]uint]bool

	Err error
}

// NewMockEngagementRepo creates a MockEngagementRepo over recipes.
func NewMockEngagementRepo(recipes *MockRecipeRepo) *MockEngagementRepo {
	return &MockEngagementRepo{Recipes: recipes, saves: make(map[[2]uint]bool)}
}

func (m *MockEngagementRepo) ToggleLike(_ context.Context, userID, recipeID uint) (*repository.ToggleResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Recipes.mu.Lock()
	defer m.Recipes.mu.Unlock()
	r, ok := m.Recipes.Recipes[recipeID]
	if !ok {
		return nil, repository.NewNotFoundError("recipe not found")
	}
	if m.Recipes.Likes[userID] == nil {
		m.Recipes.Likes[userID] = make(map[uint]bool)
	}
	active := !m.Recipes.Likes[userID][recipeID]
	if active {
		m.Recipes.Likes[userID][recipeID] = true
		r.LikeCount++
	} else {
		delete(m.Recipes.Likes[userID], recipeID)
		r.LikeCount = max(r.LikeCount-1, 0)
	}
	return &repository.ToggleResult{Active: active, Count: r.LikeCount, OwnerID: r.CreatedByID}, nil
}

func (m *MockEngagementRepo) ToggleSave(_ context.Context, userID, recipeID uint) (*repository.ToggleResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Recipes.mu.Lock()
	defer m.Recipes.mu.Unlock()
	r, ok := m.Recipes.Recipes[recipeID]
	if !ok {
		return nil, repository.NewNotFoundError("recipe not found")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uint{userID, recipeID}
	active := !m.saves[key]
	if active {
		m.saves[key] = true
		r.SaveCount++
	} else {
		delete(m.saves, key)
		r.SaveCount = max(r.SaveCount-1, 0)
	}
	return &repository.ToggleResult{Active: active, Count: r.SaveCount, OwnerID: r.CreatedByID}, nil
}

func (m *MockEngagementRepo) IncrementShare(_ context.Context, recipeID uint) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.Recipes.mu.Lock()
	defer m.Recipes.mu.Unlock()
	r, ok := m.Recipes.Recipes[recipeID]
	if !ok {
		return 0, repository.NewNotFoundError("recipe not found")
	}
	r.ShareCount++
	return r.ShareCount, nil
}

// --- MockCollectionRepo ---

// MockCollectionRepo is an in-memory mock implementation of repository.CollectionRepo.
type MockCollectionRepo struct {
	mu          sync.Mutex
	Collections map[uint]*models.Collection
	NextID      uint
	Recipes     *MockRecipeRepo
}

// NewMockCollectionRepo creates a MockCollectionRepo resolving recipes from recipes.
func NewMockCollectionRepo(recipes *MockRecipeRepo) *MockCollectionRepo {
	return &MockCollectionRepo{
		Collections: make(map[uint]*models.Collection),
		NextID:      1,
		Recipes:     recipes,
	}
}

func (m *MockCollectionRepo) CreateCollection(_ context.Context, c *models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Collections {
		if existing.OwnerID == c.OwnerID && existing.Name == c.Name {
			return repository.NewConflictError("a collection with that name already exists")
		}
	}
	c.ID = m.NextID
	m.NextID++
	m.Collections[c.ID] = c
	return nil
}

func (m *MockCollectionRepo) GetCollectionByID(_ context.Context, collectionID uint) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Collections[collectionID]
	if !ok {
		return nil, repository.NewNotFoundError("collection not found")
	}
	cp := *c
	return &cp, nil
}

func (m *MockCollectionRepo) GetUserCollections(_ context.Context, ownerID uint) ([]models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Collection{}
	for id := uint(1); id < m.NextID; id++ {
		if c, ok := m.Collections[id]; ok && c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *MockCollectionRepo) DeleteCollection(_ context.Context, collectionID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Collections[collectionID]; !ok {
		return repository.NewNotFoundError("collection not found")
	}
	delete(m.Collections, collectionID)
	return nil
}

func (m *MockCollectionRepo) AddRecipeToCollection(ctx context.Context, collectionID, recipeID uint) error {
	recipe, err := m.Recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Collections[collectionID]
	if !ok {
		return repository.NewNotFoundError("collection not found")
	}
	for _, r := range c.Recipes {
		if r.ID == recipeID {
			return repository.NewConflictError("recipe already in collection")
		}
	}
	c.Recipes = append(c.Recipes, recipe)
	return nil
}

func (m *MockCollectionRepo) RemoveRecipeFromCollection(_ context.Context, collectionID, recipeID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Collections[collectionID]
	if !ok {
		return repository.NewNotFoundError("collection not found")
	}
	for i, r := range c.Recipes {
		if r.ID == recipeID {
			c.Recipes = append(c.Recipes[:i], c.Recipes[i+1:]...)
			return nil
		}
	}
	return repository.NewNotFoundError("recipe not in collection")
}

// --- MockNotificationRepo ---

// MockNotificationRepo is an in-memory mock implementation of repository.NotificationRepo.
type MockNotificationRepo struct {
	mu            sync.Mutex
	Notifications []models.Notification
	Devices       map[string]models.DeviceToken
	nextID        uint

	CreateErr error
}

// NewMockNotificationRepo creates an empty MockNotificationRepo.
func NewMockNotificationRepo() *MockNotificationRepo {
	return &MockNotificationRepo{Devices: make(map[string]models.DeviceToken), nextID: 1}
}

func (m *MockNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.nextID
	m.nextID++
	n.CreatedAt = time.Now()
	m.Notifications = append(m.Notifications, *n)
	return nil
}

func (m *MockNotificationRepo) GetUserNotifications(_ context.Context, userID uint, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Notification{}
	for i := len(m.Notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Notifications[i].UserID == userID {
			out = append(out, m.Notifications[i])
		}
	}
	return out, nil
}

func (m *MockNotificationRepo) MarkNotificationRead(_ context.Context, userID, notificationID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Notifications {
		if m.Notifications[i].ID == notificationID && m.Notifications[i].UserID == userID {
			m.Notifications[i].Read = true
			return nil
		}
	}
	return repository.NewNotFoundError("notification not found")
}

func (m *MockNotificationRepo) UpsertDeviceToken(_ context.Context, token *models.DeviceToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Devices[token.Token] = *token
	return nil
}

func (m *MockNotificationRepo) GetDeviceTokens(_ context.Context, userID uint) ([]models.DeviceToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DeviceToken{}
	for _, d := range m.Devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

// --- MockSender ---

// MockSender records delivered notifications.
type MockSender struct {
	mu         sync.Mutex
	SenderName string
	Delivered  []models.Notification
	Err        error
}

func (m *MockSender) Name() string {
	if m.SenderName == "" {
		return "mock"
	}
	return m.SenderName
}

func (m *MockSender) Deliver(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Delivered = append(m.Delivered, *n)
	return nil
}
