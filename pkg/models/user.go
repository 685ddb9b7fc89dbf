package models

import "time"

// Profile is the public part of an account. The ID is the auth provider UID.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(128)"`
	Email     string    `json:"email" gorm:"index"`
	Username  *string   `json:"username" gorm:"index"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// UpdateProfileRequest carries a partial profile update; nil fields are left untouched.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Username  *string `json:"username,omitempty" validate:"omitempty,min=1,max=50"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// Changes returns the columns to update, keyed by column name.
func (r UpdateProfileRequest) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if r.FullName != nil {
		changes["full_name"] = *r.FullName
	}
	if r.Username != nil {
		changes["username"] = *r.Username
	}
	if r.AvatarURL != nil {
		changes["avatar_url"] = *r.AvatarURL
	}
	return changes
}

// SessionRequest exchanges a Firebase ID token for the caller's profile.
type SessionRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}
