// Package relations holds the rules of the friendship graph, memory visibility
// and memory sharing. Everything here is pure: callers load the rows, ask for a
// decision and apply it.
package relations

import (
	"errors"

	"github.com/trailback/backend/pkg/models"
)

var (
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrRequestExists    = errors.New("friend request already sent")
	ErrAlreadyFriends   = errors.New("users are already friends")
	ErrNoPendingRequest = errors.New("no pending friend request from this user")
	ErrNotRecipient     = errors.New("only the recipient can accept a friend request")
	ErrNoFriendship     = errors.New("no friendship between these users")
)

// State is the relationship between two users as seen from the first one.
type State int

const (
	StateNone State = iota
	StateOutgoing
	StateIncoming
	StateFriends
)

func (s State) String() string {
	switch s {
	case StateOutgoing:
		return "outgoing"
	case StateIncoming:
		return "incoming"
	case StateFriends:
		return "friends"
	default:
		return "none"
	}
}

type Action int

const (
	ActionSend Action = iota
	ActionAccept
	ActionRemove
)

// Op is the storage operation a Decision asks for.
type Op int

const (
	OpCreate Op = iota + 1
	OpAccept
	OpDelete
)

// Decision describes how to apply an action. Row is the row to insert (OpCreate)
// or to flip to accepted (OpAccept); Rows lists every row to delete (OpDelete).
type Decision struct {
	Op   Op
	Row  models.Friendship
	Rows []models.Friendship
}

// Between keeps the rows linking a and b, in either orientation.
func Between(rows []models.Friendship, a, b string) []models.Friendship {
	var out []models.Friendship
	for _, r := range rows {
		if (r.UserID == a && r.FriendID == b) || (r.UserID == b && r.FriendID == a) {
			out = append(out, r)
		}
	}
	return out
}

// StateBetween reports the relationship of a towards b.
func StateBetween(rows []models.Friendship, a, b string) State {
	state := StateNone
	for _, r := range Between(rows, a, b) {
		switch {
		case r.Status == models.FriendshipAccepted:
			return StateFriends
		case r.UserID == a:
			state = StateOutgoing
		default:
			state = StateIncoming
		}
	}
	return state
}

// Decide validates action of actor towards other against the existing rows and
// returns the change to apply.
//
// A send that crosses a pending request from other is turned into an accept of
// that request, so the pair never holds two pending rows.
func Decide(rows []models.Friendship, actor, other string, action Action) (Decision, error) {
	if actor == other {
		return Decision{}, ErrSelfRequest
	}
	pair := Between(rows, actor, other)

	switch action {
	case ActionSend:
		switch StateBetween(pair, actor, other) {
		case StateFriends:
			return Decision{}, ErrAlreadyFriends
		case StateOutgoing:
			return Decision{}, ErrRequestExists
		case StateIncoming:
			return Decision{Op: OpAccept, Row: pendingFrom(pair, other, actor)}, nil
		}
		return Decision{Op: OpCreate, Row: models.Friendship{
			UserID:   actor,
			FriendID: other,
			Status:   models.FriendshipPending,
		}}, nil

	case ActionAccept:
		switch StateBetween(pair, actor, other) {
		case StateIncoming:
			return Decision{Op: OpAccept, Row: pendingFrom(pair, other, actor)}, nil
		case StateOutgoing:
			return Decision{}, ErrNotRecipient
		case StateFriends:
			return Decision{}, ErrAlreadyFriends
		}
		return Decision{}, ErrNoPendingRequest

	case ActionRemove:
		if len(pair) == 0 {
			return Decision{}, ErrNoFriendship
		}
		return Decision{Op: OpDelete, Rows: pair}, nil
	}
	return Decision{}, errors.New("unknown friendship action")
}

func pendingFrom(rows []models.Friendship, sender, recipient string) models.Friendship {
	for _, r := range rows {
		if r.UserID == sender && r.FriendID == recipient && r.Status == models.FriendshipPending {
			return r
		}
	}
	return models.Friendship{}
}

// Social is the viewer's split of the rows touching them.
type Social struct {
	Friends  []models.Friendship `json:"friends"`
	Incoming []models.Friendship `json:"incoming"`
	Outgoing []models.Friendship `json:"outgoing"`
}

// Partition sorts rows into accepted friendships, requests the viewer received
// and requests the viewer sent. Rows not touching the viewer are ignored.
func Partition(rows []models.Friendship, viewer string) Social {
	var s Social
	for _, r := range rows {
		if !r.Touches(viewer) {
			continue
		}
		switch {
		case r.Status == models.FriendshipAccepted:
			s.Friends = append(s.Friends, r)
		case r.FriendID == viewer:
			s.Incoming = append(s.Incoming, r)
		default:
			s.Outgoing = append(s.Outgoing, r)
		}
	}
	return s
}

// FriendIDs lists the other side of every accepted friendship of viewer.
func FriendIDs(rows []models.Friendship, viewer string) []string {
	var ids []string
	seen := map[string]bool{}
	for _, r := range Partition(rows, viewer).Friends {
		id := r.Other(viewer)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// AreFriends reports whether an accepted row links a and b.
func AreFriends(rows []models.Friendship, a, b string) bool {
	return StateBetween(rows, a, b) == StateFriends
}
