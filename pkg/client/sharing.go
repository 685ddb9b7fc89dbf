package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/relations"
)

// ErrAlreadyShared is returned by Share when a grant already links the two users.
var ErrAlreadyShared = errors.New("memory is already shared between these users")

// FriendShare is the share toggle state of one friend for one memory.
type FriendShare struct {
	FriendID string
	State    relations.ShareState
}

func (c *Client) ListShares(ctx context.Context, memoryID string) ([]models.ShareOut, error) {
	var shares []models.ShareOut
	if err := c.doJSON(ctx, http.MethodGet, "/memories/"+url.PathEscape(memoryID)+"/shares", nil, nil, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}

// ShareStates lists the accepted friends of viewer with the share state of
// memoryID towards each of them.
func (c *Client) ShareStates(ctx context.Context, memoryID, viewer string) ([]FriendShare, error) {
	rows, err := c.ListFriends(ctx, viewer)
	if err != nil {
		return nil, err
	}
	shares, err := c.ListShares(ctx, memoryID)
	if err != nil {
		return nil, err
	}

	friends := relations.FriendIDs(rows, viewer)
	out := make([]FriendShare, 0, len(friends))
	for _, id := range friends {
		out = append(out, FriendShare{FriendID: id, State: relations.ShareStateFor(shares, viewer, id)})
	}
	return out, nil
}

// Share grants friend access to memoryID on behalf of sharer. It makes no write
// when a grant already links the two users.
func (c *Client) Share(ctx context.Context, memoryID, sharer, friend string) error {
	shares, err := c.ListShares(ctx, memoryID)
	if err != nil {
		return err
	}
	if !relations.CanShare(shares, sharer, friend) {
		return ErrAlreadyShared
	}
	q := url.Values{"shared_with": []string{friend}, "shared_by": []string{sharer}}
	return c.doJSON(ctx, http.MethodPost, "/memories/"+url.PathEscape(memoryID)+"/share-user", q, nil, nil)
}

// Unshare revokes the grant viewer made to friend. Grants made by other users stay.
func (c *Client) Unshare(ctx context.Context, memoryID, viewer, friend string) error {
	path := "/memories/" + url.PathEscape(memoryID) + "/share-user/" + url.PathEscape(friend)
	return c.doJSON(ctx, http.MethodDelete, path, userQuery("user_id", viewer), nil, nil)
}
