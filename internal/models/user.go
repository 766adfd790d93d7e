package models

import "time"

// User represents a registered user.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Defaults applied when a user has no preference record.
const (
	DefaultLanguage = "en-US"
	DefaultRegion   = "US"
)

// Preference stores a user's preferred catalog language and region.
// At most one record per user; overwritten on update.
type Preference struct {
	UserID    int       `json:"user_id"`
	Language  string    `json:"language"`
	Region    string    `json:"region"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPreference returns the system default preference for a user
// with no stored record.
func DefaultPreference(userID int) Preference {
	return Preference{UserID: userID, Language: DefaultLanguage, Region: DefaultRegion}
}

// SetPreferenceRequest is the request body for setting preferences.
type SetPreferenceRequest struct {
	Language string `json:"language"`
	Region   string `json:"region"`
}
