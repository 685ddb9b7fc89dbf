package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/relations"
)

// ListMemories returns the memories created by userID.
func (c *Client) ListMemories(ctx context.Context, userID string) ([]models.Memory, error) {
	var memories []models.Memory
	if err := c.doJSON(ctx, http.MethodGet, "/memories", userQuery("user_id", userID), nil, &memories); err != nil {
		return nil, err
	}
	return memories, nil
}

// ListSharedMemories returns the memories other users shared with userID.
func (c *Client) ListSharedMemories(ctx context.Context, userID string) ([]models.Memory, error) {
	var memories []models.Memory
	if err := c.doJSON(ctx, http.MethodGet, "/memories/shared", userQuery("user_id", userID), nil, &memories); err != nil {
		return nil, err
	}
	return memories, nil
}

// ListVisibleMemories fetches own memories, then shared ones, and merges them
// without duplicates. Either request failing fails the whole call.
func (c *Client) ListVisibleMemories(ctx context.Context, userID string) ([]relations.VisibleMemory, error) {
	own, err := c.ListMemories(ctx, userID)
	if err != nil {
		return nil, err
	}
	shared, err := c.ListSharedMemories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return relations.MergeVisible(own, shared, userID), nil
}

func (c *Client) CreateMemory(ctx context.Context, req models.CreateMemoryRequest) (*models.Memory, error) {
	var memory models.Memory
	if err := c.doJSON(ctx, http.MethodPost, "/memories", nil, req, &memory); err != nil {
		return nil, err
	}
	return &memory, nil
}

// EditMemory changes the title and, when description is non-nil, the description.
func (c *Client) EditMemory(ctx context.Context, memoryID, userID, title string, description *string) error {
	body := models.EditMemoryRequest{Title: &title, Description: description}
	return c.doJSON(ctx, http.MethodPut, "/memories/"+url.PathEscape(memoryID)+"/edit", userQuery("user_id", userID), body, nil)
}

func (c *Client) DeleteMemory(ctx context.Context, memoryID, userID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/memories/"+url.PathEscape(memoryID), userQuery("user_id", userID), nil, nil)
}
