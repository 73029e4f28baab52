package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	goaway "github.com/TwiN/go-away"
	"github.com/asaskevich/govalidator"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/models"
	"github.com/windoze95/forkful-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserService is the business logic layer for user-related operations.
type UserService struct {
	Cfg  *config.Config
	Repo repository.UserRepo
}

// ErrInvalidCredentials is returned by LoginUser for a wrong username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserResponse is the response object for user-related operations.
type UserResponse struct {
	ID          uint             `json:"id"`
	Username    string           `json:"username"`
	DisplayName string           `json:"display_name"`
	PhotoURL    string           `json:"photo_url"`
	Email       string           `json:"email"`
	Settings    SettingsResponse `json:"settings"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// SettingsResponse is the response object for user settings.
type SettingsResponse struct {
	ShowProfileInCommunity bool `json:"show_profile_in_community"`
}

// ProfileInput is the body of a profile edit. Nil fields are left unchanged.
type ProfileInput struct {
	DisplayName            *string `json:"display_name"`
	PhotoURL               *string `json:"photo_url"`
	ShowProfileInCommunity *bool   `json:"show_profile_in_community"`
}

// NewUserService is the constructor function for initializing a new UserService
func NewUserService(cfg *config.Config, repo repository.UserRepo) *UserService {
	return &UserService{
		Cfg:  cfg,
		Repo: repo,
	}
}

// CreateUser creates a new user.
func (s *UserService) CreateUser(ctx context.Context, username, displayName, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:    username,
		DisplayName: strings.TrimSpace(displayName),
		Email:       email,
		Auth: &models.UserAuth{
			HashedPassword: string(hashedPassword),
			AuthType:       models.Standard,
		},
		Settings: &models.UserSettings{},
	}

	return s.Repo.CreateUser(ctx, user)
}

// LoginUser checks a username and password and returns the user.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Repo.GetUserAuthByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Auth == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Auth.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ToUserResponse converts a User to a UserResponse.
func ToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Email:       user.Email,
		Settings: SettingsResponse{
			ShowProfileInCommunity: user.ShowsProfileInCommunity(),
		},
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// GetUserByID gets a user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.Repo.GetUserByID(ctx, userID)
}

// UpdateProfile validates and applies a profile edit.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) error {
	update := repository.ProfileUpdate{ShowProfileInCommunity: in.ShowProfileInCommunity}

	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if utf8.RuneCountInString(name) > 50 {
			return NewValidationError("display name must be at most 50 characters")
		}
		if name != "" && newProfanityDetector().IsProfane(name) {
			return NewValidationError("display name contains inappropriate language")
		}
		update.DisplayName = &name
	}
	if in.PhotoURL != nil {
		photo := strings.TrimSpace(*in.PhotoURL)
		if photo != "" && !govalidator.IsRequestURL(photo) {
			return NewValidationError("photo_url must be a valid URL")
		}
		update.PhotoURL = &photo
	}

	return s.Repo.UpdateUserProfile(ctx, userID, update)
}

// ValidateUsername validates a username against a set of rules.
func (s *UserService) ValidateUsername(ctx context.Context, username string) error {
	// Check if the username already exists.
	// This is also caught as a known error in the repository.
	exists, err := s.Repo.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("error checking username: %w", err)
	}
	if exists {
		return NewValidationError("username is already taken")
	}

	// Check if the username is long enough
	minLength := 3
	if len(username) < minLength {
		return NewValidationError(fmt.Sprintf("username must be at least %d characters", minLength))
	}

	// Check if the username is alphanumeric
	if !govalidator.IsAlphanumeric(username) {
		return NewValidationError("username can only contain alphanumeric characters")
	}

	// Define a list of forbidden usernames
	var forbiddenUsernames = []string{
		"admin",
		"administrator",
		"root",
		"sys",
		"sysadmin",
		"system",
		"test",
		"testuser",
		"test-user",
		"test_user",
		"login",
		"logout",
		"register",
		"password",
		"user",
		"newuser",
		"yourapp",
		"yourcompany",
		"yourbrand",
		"support",
		"help",
		"faq",
		"forkful",
		"forkful_admin",
		"forkful-admin",
		"forkfuladmin",
		"community",
		"discover",
	}

	// Check if the username is in the forbidden list
	lowercaseUsername := strings.ToLower(username)
	for _, forbiddenUsername := range forbiddenUsernames {
		if strings.EqualFold(lowercaseUsername, forbiddenUsername) {
			return NewValidationError(fmt.Sprintf("username '%s' is not allowed", username))
		}
	}

	if newProfanityDetector().IsProfane(username) {
		return NewValidationError("username contains inappropriate language")
	}

	// If we've passed all checks, the username is valid.
	return nil
}

// ValidateEmail validates an email address against a set of rules.
func (s *UserService) ValidateEmail(email string) error {
	if !govalidator.IsEmail(email) {
		return NewValidationError("invalid email format")
	}
	return nil
}

// ValidatePassword validates a password against a set of rules.
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 8 {
		return NewValidationError("password must be at least 8 characters long")
	}
	hasUppercase, _ := regexp.MatchString(`[A-Z]`, password)
	if !hasUppercase {
		return NewValidationError("password must contain at least one uppercase letter")
	}
	hasLowercase, _ := regexp.MatchString(`[a-z]`, password)
	if !hasLowercase {
		return NewValidationError("password must contain at least one lowercase letter")
	}
	hasNumber, _ := regexp.MatchString(`\d`, password)
	if !hasNumber {
		return NewValidationError("password must contain at least one digit")
	}
	hasSpecialChar, _ := regexp.MatchString(`[!@#$%^&*]`, password)
	if !hasSpecialChar {
		return NewValidationError("password must contain at least one special character")
	}
	return nil
}

func newProfanityDetector() *goaway.ProfanityDetector {
	return goaway.NewProfanityDetector().WithSanitizeLeetSpeak(true).WithSanitizeSpecialCharacters(true).WithSanitizeAccents(false)
}
