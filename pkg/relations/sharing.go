package relations

import "github.com/trailback/backend/pkg/models"

// ShareState is how a memory relates to one friend from the viewer's side.
type ShareState int

const (
	NotShared ShareState = iota
	// SharedByMe can be revoked by the viewer.
	SharedByMe
	// SharedByOther is informational only.
	SharedByOther
)

func (s ShareState) String() string {
	switch s {
	case SharedByMe:
		return "shared_by_me"
	case SharedByOther:
		return "shared_by_other"
	default:
		return "not_shared"
	}
}

// ShareStateFor classifies the grants of one memory for the pair viewer/friend.
func ShareStateFor(shares []models.ShareOut, viewer, friend string) ShareState {
	state := NotShared
	for _, s := range shares {
		switch {
		case s.SharedWith == friend && s.SharedBy == viewer:
			return SharedByMe
		case s.SharedWith == friend, s.SharedWith == viewer && s.SharedBy == friend:
			state = SharedByOther
		}
	}
	return state
}

// CanShare reports whether no grant already links sharer and friend in either
// direction. Grants made by third parties do not count.
func CanShare(shares []models.ShareOut, sharer, friend string) bool {
	if sharer == friend {
		return false
	}
	for _, s := range shares {
		if (s.SharedWith == friend && s.SharedBy == sharer) || (s.SharedWith == sharer && s.SharedBy == friend) {
			return false
		}
	}
	return true
}

// Revocable returns the grant sharer made to friend, if any.
func Revocable(shares []models.ShareOut, sharer, friend string) (models.ShareOut, bool) {
	for _, s := range shares {
		if s.SharedWith == friend && s.SharedBy == sharer {
			return s, true
		}
	}
	return models.ShareOut{}, false
}

// SharedWithBy lists the recipients of the grants made by sharer.
func SharedWithBy(shares []models.ShareOut, sharer string) []string {
	var out []string
	for _, s := range shares {
		if s.SharedBy == sharer {
			out = append(out, s.SharedWith)
		}
	}
	return out
}

// Recipients lists every user holding a grant, without duplicates.
func Recipients(shares []models.ShareOut) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range shares {
		if !seen[s.SharedWith] {
			seen[s.SharedWith] = true
			out = append(out, s.SharedWith)
		}
	}
	return out
}

// CanAccess reports whether user may see the memory owned by owner given its grants.
func CanAccess(owner string, shares []models.ShareOut, user string) bool {
	if user == owner {
		return true
	}
	for _, s := range shares {
		if s.SharedWith == user {
			return true
		}
	}
	return false
}
