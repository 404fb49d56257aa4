package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// PasswordHash holds an argon2id (PHC) or bcrypt hash, never the plaintext.
// Name and MobileNumber are empty when unset. ResetToken and ResetTokenExpiry
// are set and cleared together.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	Name             string
	MobileNumber     string
	ResetToken       string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPendingReset reports whether a reset token is stored and not yet expired at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetToken != "" && u.ResetTokenExpiry != nil && !now.After(*u.ResetTokenExpiry)
}

// PublicUser is the outward representation of a User.
type PublicUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	MobileNumber string    `json:"mobileNumber,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		MobileNumber: u.MobileNumber,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ProfileUpdate carries a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string `json:"name" validate:"omitempty,notblank,max=100"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,phone"`
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.MobileNumber == nil
}
