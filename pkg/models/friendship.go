package models

import "time"

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship is a directed edge: UserID sent the request, FriendID received it.
// Membership queries treat an accepted edge as symmetric.
type Friendship struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(128);not null;index;uniqueIndex:idx_friendship_pair"`
	FriendID  string    `json:"friend_id" gorm:"type:varchar(128);not null;index;uniqueIndex:idx_friendship_pair"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touches reports whether the edge has userID on either end.
func (f Friendship) Touches(userID string) bool {
	return f.UserID == userID || f.FriendID == userID
}

// Other returns the end of the edge that is not userID.
func (f Friendship) Other(userID string) string {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// FriendPairQuery binds the user_id/friend_id query parameters of the friends endpoints.
type FriendPairQuery struct {
	UserID   string `query:"user_id" validate:"required"`
	FriendID string `query:"friend_id" validate:"required"`
}
