package client

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/relations"
)

// SocialView is what the social screen shows for one viewer.
type SocialView struct {
	Users    []models.Profile
	Friends  []models.Profile
	Incoming []models.Profile
	Outgoing []models.Profile
}

// ListUsers lists every profile except currentUser, filtered by username when
// search is not empty.
func (c *Client) ListUsers(ctx context.Context, currentUser, search string) ([]models.Profile, error) {
	q := url.Values{}
	if currentUser != "" {
		q.Set("current_user", currentUser)
	}
	if search != "" {
		q.Set("search", search)
	}
	var users []models.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/users", q, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/profile", userQuery("user_id", userID), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/profile", userQuery("user_id", userID), req, nil)
}

// UploadAvatar replaces the avatar of userID. Only JPG and PNG files are accepted.
func (c *Client) UploadAvatar(ctx context.Context, userID, filename string, data []byte) (*models.Profile, error) {
	body, contentType, err := multipartFile(filename, bytes.NewReader(data), map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var profile models.Profile
	if err := c.do(ctx, http.MethodPost, "/profile/avatar", nil, body, contentType, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListFriends returns every pending and accepted friendship row touching userID.
func (c *Client) ListFriends(ctx context.Context, userID string) ([]models.Friendship, error) {
	var rows []models.Friendship
	if err := c.doJSON(ctx, http.MethodGet, "/friends", userQuery("user_id", userID), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func pair(userID, friendID string) url.Values {
	return url.Values{"user_id": []string{userID}, "friend_id": []string{friendID}}
}

// SendFriendRequest sends a request, or accepts the one friendID already sent.
func (c *Client) SendFriendRequest(ctx context.Context, userID, friendID string) (string, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/friends/request", pair(userID, friendID), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) AcceptFriendRequest(ctx context.Context, userID, friendID string) error {
	return c.doJSON(ctx, http.MethodPost, "/friends/accept", pair(userID, friendID), nil, nil)
}

// RemoveFriend ends a friendship or cancels a pending request in either direction.
func (c *Client) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/friends/remove", pair(userID, friendID), nil, nil)
}

// LoadSocial fetches the user directory and the friendship rows of userID and
// splits them into friends, received requests and sent requests.
func (c *Client) LoadSocial(ctx context.Context, userID string) (*SocialView, error) {
	users, err := c.ListUsers(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	rows, err := c.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Profile, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	profiles := func(rows []models.Friendship) []models.Profile {
		out := make([]models.Profile, 0, len(rows))
		for _, r := range rows {
			id := r.Other(userID)
			p, ok := byID[id]
			if !ok {
				p = models.Profile{ID: id}
			}
			out = append(out, p)
		}
		return out
	}

	social := relations.Partition(rows, userID)
	return &SocialView{
		Users:    users,
		Friends:  profiles(social.Friends),
		Incoming: profiles(social.Incoming),
		Outgoing: profiles(social.Outgoing),
	}, nil
}
