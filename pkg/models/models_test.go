package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateUnmarshal(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-05-01"`:                time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		`"2024-05-01T10:30:00"`:       time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		`"2024-05-01T10:30:00+02:00"`: time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(raw), &d), raw)
		assert.True(t, want.Equal(d.Time), raw)
	}

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"01.05.2024"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`12`), &d))
}

func TestUpdateProfileRequestChanges(t *testing.T) {
	name := "Alice"
	assert.Empty(t, UpdateProfileRequest{}.Changes())
	assert.Equal(t, map[string]interface{}{"full_name": "Alice"}, UpdateProfileRequest{FullName: &name}.Changes())
}

func TestFriendshipEnds(t *testing.T) {
	f := Friendship{UserID: "alice", FriendID: "bob"}
	assert.True(t, f.Touches("bob"))
	assert.False(t, f.Touches("carol"))
	assert.Equal(t, "alice", f.Other("bob"))
	assert.Equal(t, "bob", f.Other("alice"))
}
