package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailback/backend/pkg/models"
)

func pending(from, to string) models.Friendship {
	return models.Friendship{UserID: from, FriendID: to, Status: models.FriendshipPending}
}

func accepted(from, to string) models.Friendship {
	return models.Friendship{UserID: from, FriendID: to, Status: models.FriendshipAccepted}
}

// apply mimics what the repository does with a decision.
func apply(rows []models.Friendship, d Decision) []models.Friendship {
	switch d.Op {
	case OpCreate:
		return append(rows, d.Row)
	case OpAccept:
		out := make([]models.Friendship, 0, len(rows))
		for _, r := range rows {
			if r.UserID == d.Row.UserID && r.FriendID == d.Row.FriendID {
				r.Status = models.FriendshipAccepted
			}
			out = append(out, r)
		}
		return out
	case OpDelete:
		var out []models.Friendship
		for _, r := range rows {
			if len(Between([]models.Friendship{r}, d.Rows[0].UserID, d.Rows[0].FriendID)) == 0 {
				out = append(out, r)
			}
		}
		return out
	}
	return rows
}

func TestFriendshipLifecycle(t *testing.T) {
	var rows []models.Friendship

	d, err := Decide(rows, "alice", "bob", ActionSend)
	require.NoError(t, err)
	require.Equal(t, OpCreate, d.Op)
	rows = apply(rows, d)

	require.Len(t, rows, 1)
	assert.Equal(t, pending("alice", "bob"), rows[0])

	bob := Partition(rows, "bob")
	alice := Partition(rows, "alice")
	assert.Len(t, bob.Incoming, 1)
	assert.Empty(t, bob.Outgoing)
	assert.Len(t, alice.Outgoing, 1)
	assert.Empty(t, alice.Incoming)
	assert.Empty(t, alice.Friends)
	assert.Empty(t, bob.Friends)

	d, err = Decide(rows, "bob", "alice", ActionAccept)
	require.NoError(t, err)
	require.Equal(t, OpAccept, d.Op)
	rows = apply(rows, d)

	require.Len(t, rows, 1)
	assert.Equal(t, accepted("alice", "bob"), rows[0])
	for _, viewer := range []string{"alice", "bob"} {
		s := Partition(rows, viewer)
		assert.Len(t, s.Friends, 1, viewer)
		assert.Empty(t, s.Incoming, viewer)
		assert.Empty(t, s.Outgoing, viewer)
	}
	assert.True(t, AreFriends(rows, "bob", "alice"))

	d, err = Decide(rows, "bob", "alice", ActionRemove)
	require.NoError(t, err)
	rows = apply(rows, d)
	assert.Empty(t, Between(rows, "alice", "bob"))
	assert.Equal(t, StateNone, StateBetween(rows, "alice", "bob"))
}

func TestDecideSend(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		_, err := Decide(nil, "alice", "alice", ActionSend)
		assert.ErrorIs(t, err, ErrSelfRequest)
	})

	t.Run("duplicate outgoing", func(t *testing.T) {
		_, err := Decide([]models.Friendship{pending("alice", "bob")}, "alice", "bob", ActionSend)
		assert.ErrorIs(t, err, ErrRequestExists)
	})

	t.Run("already friends in either orientation", func(t *testing.T) {
		_, err := Decide([]models.Friendship{accepted("bob", "alice")}, "alice", "bob", ActionSend)
		assert.ErrorIs(t, err, ErrAlreadyFriends)
	})

	t.Run("crossing request is accepted", func(t *testing.T) {
		rows := []models.Friendship{pending("bob", "alice")}
		d, err := Decide(rows, "alice", "bob", ActionSend)
		require.NoError(t, err)
		assert.Equal(t, OpAccept, d.Op)
		assert.Equal(t, "bob", d.Row.UserID)
		assert.Equal(t, "alice", d.Row.FriendID)

		rows = apply(rows, d)
		require.Len(t, rows, 1)
		assert.True(t, AreFriends(rows, "alice", "bob"))
	})

	t.Run("rows of other pairs are ignored", func(t *testing.T) {
		rows := []models.Friendship{accepted("alice", "carol"), pending("dave", "bob")}
		d, err := Decide(rows, "alice", "bob", ActionSend)
		require.NoError(t, err)
		assert.Equal(t, OpCreate, d.Op)
	})
}

func TestDecideAccept(t *testing.T) {
	cases := []struct {
		name string
		rows []models.Friendship
		err  error
	}{
		{"no request", nil, ErrNoPendingRequest},
		{"sender cannot accept", []models.Friendship{pending("bob", "alice")}, ErrNotRecipient},
		{"already accepted", []models.Friendship{accepted("alice", "bob")}, ErrAlreadyFriends},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decide(tc.rows, "bob", "alice", ActionAccept)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDecideRemove(t *testing.T) {
	_, err := Decide(nil, "alice", "bob", ActionRemove)
	assert.ErrorIs(t, err, ErrNoFriendship)

	rows := []models.Friendship{pending("alice", "bob"), pending("bob", "alice"), accepted("alice", "carol")}
	d, err := Decide(rows, "bob", "alice", ActionRemove)
	require.NoError(t, err)
	assert.Equal(t, OpDelete, d.Op)
	assert.Len(t, d.Rows, 2)
}

func TestFriendIDs(t *testing.T) {
	rows := []models.Friendship{
		accepted("alice", "bob"),
		accepted("carol", "alice"),
		pending("alice", "dave"),
		accepted("bob", "carol"),
	}
	assert.Equal(t, []string{"bob", "carol"}, FriendIDs(rows, "alice"))
	assert.Empty(t, FriendIDs(rows, "dave"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "incoming", StateBetween([]models.Friendship{pending("bob", "alice")}, "alice", "bob").String())
	assert.Equal(t, "outgoing", StateBetween([]models.Friendship{pending("bob", "alice")}, "bob", "alice").String())
}
