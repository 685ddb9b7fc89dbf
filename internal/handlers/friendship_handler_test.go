package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailback/backend/pkg/models"
)

func TestFriendshipLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/friends/request?user_id=alice&friend_id=bob", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var rows []models.Friendship
	rec = env.do(t, http.MethodGet, "/friends?user_id=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].UserID)
	assert.Equal(t, "bob", rows[0].FriendID)
	assert.Equal(t, models.FriendshipPending, rows[0].Status)

	rec = env.do(t, http.MethodPost, "/friends/accept?user_id=bob&friend_id=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/friends?user_id=alice", nil)
	decode(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, models.FriendshipAccepted, rows[0].Status)

	rec = env.do(t, http.MethodDelete, "/friends/remove?user_id=bob&friend_id=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/friends?user_id=alice", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, []string{"REQUEST:bob", "ACCEPT:alice", "REMOVE:alice"}, env.events.ops())
}

func TestSendFriendRequestCrossing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/friends/request?user_id=alice&friend_id=bob", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/friends/request?user_id=bob&friend_id=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, env.friendships.rows, 1)
	assert.Equal(t, models.FriendshipAccepted, env.friendships.rows[0].Status)
}

func TestSendFriendRequestRejections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/friends/request?user_id=alice&friend_id=alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/friends/request?user_id=alice&friend_id=nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", detail(t, rec))

	rec = env.do(t, http.MethodPost, "/friends/request?user_id=alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/friends/request?user_id=alice&friend_id=bob", nil).Code)
	rec = env.do(t, http.MethodPost, "/friends/request?user_id=alice&friend_id=bob", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.befriend("alice", "carol")
	rec = env.do(t, http.MethodPost, "/friends/request?user_id=carol&friend_id=alice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "users are already friends", detail(t, rec))
}

func TestAcceptFriendRequestRejections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/friends/accept?user_id=bob&friend_id=alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/friends/request?user_id=alice&friend_id=bob", nil).Code)
	rec = env.do(t, http.MethodPost, "/friends/accept?user_id=alice&friend_id=bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/friends/accept?user_id=bob&friend_id=alice", nil).Code)
	rec = env.do(t, http.MethodPost, "/friends/accept?user_id=bob&friend_id=alice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRemoveFriendCancelsPendingRequest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/friends/remove?user_id=alice&friend_id=bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/friends/request?user_id=alice&friend_id=bob", nil).Code)
	rec = env.do(t, http.MethodDelete, "/friends/remove?user_id=alice&friend_id=bob", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.friendships.rows)
}

func TestListFriendsRequiresUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/friends", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user_id is required", detail(t, rec))
}
