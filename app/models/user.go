package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a shop account. Email is stored trimmed and lowercased.
type User struct {
	ID        string    `gorm:"primaryKey;size:36"            json:"_id"`
	Name      string    `gorm:"size:255;not null"             json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null"             json:"-"` // bcrypt hash, never serialised
	Role      string    `gorm:"size:20;not null;default:user" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user may manage the catalogue.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
