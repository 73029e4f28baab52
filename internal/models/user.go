package models

import (
	"errors"

	"gorm.io/gorm"
)

// User is the model for a user.
type User struct {
	gorm.Model
	Username    string        `gorm:"unique;index"`
	DisplayName string        `gorm:"default:null"`
	PhotoURL    string        `gorm:"default:null"`
	Email       string        `gorm:"unique;default:null"`
	Auth        *UserAuth     `gorm:"foreignKey:UserID"`
	Settings    *UserSettings `gorm:"foreignKey:UserID"`
}

// UserAuth is the model for a user's authentication information.
type UserAuth struct {
	gorm.Model
	UserID         uint `gorm:"unique;index"`
	HashedPassword string
	AuthType       UserAuthType `gorm:"type:text"`
}

// UserAuthType is the type for the UserAuthType enum.
type UserAuthType string

// UserAuthType enum values.
const (
	Standard UserAuthType = "standard"
)

// IsValidAuthType checks if the AuthType is valid.
func (ua *UserAuth) IsValidAuthType() bool {
	switch ua.AuthType {
	case Standard:
		return true
	default:
		return false
	}
}

// BeforeCreate is a GORM hook that runs before creating a new UserAuth.
func (ua *UserAuth) BeforeCreate(tx *gorm.DB) (err error) {
	if !ua.IsValidAuthType() {
		return errors.New("invalid AuthType provided")
	}
	return nil
}

// UserSettings is the model for a user's settings.
type UserSettings struct {
	gorm.Model
	UserID uint `gorm:"unique;index"`
	// ShowProfileInCommunity is nil until the user chooses; nil means shown.
	ShowProfileInCommunity *bool
}

// ShowsProfileInCommunity reports whether the user's name and photo may be
// attached to their recipes in community results.
func (u *User) ShowsProfileInCommunity() bool {
	if u.Settings == nil || u.Settings.ShowProfileInCommunity == nil {
		return true
	}
	return *u.Settings.ShowProfileInCommunity
}

// PublicProfile is the part of a user that other users may see.
type PublicProfile struct {
	UserID      uint
	DisplayName string
	PhotoURL    string
	// Visible is false when the owner opted out of community attribution.
	Visible bool
}

// PublicProfile returns the user's public profile, honoring the community opt-out.
func (u *User) PublicProfile() PublicProfile {
	p := PublicProfile{UserID: u.ID, Visible: u.ShowsProfileInCommunity()}
	if !p.Visible {
		return p
	}
	p.DisplayName = u.DisplayName
	if p.DisplayName == "" {
		p.DisplayName = u.Username
	}
	p.PhotoURL = u.PhotoURL
	return p
}
