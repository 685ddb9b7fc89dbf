package relations

import "github.com/trailback/backend/pkg/models"

// VisibleMemory is a memory as seen by one viewer.
type VisibleMemory struct {
	models.Memory
	IsShared bool `json:"isShared"`
}

// IsShared reports whether viewer sees m through someone else's grant.
func IsShared(m models.Memory, viewer string) bool {
	return m.CreatedBy != viewer
}

// MergeVisible concatenates own and shared memories, drops repeated IDs keeping
// the first occurrence and flags each entry with IsShared.
func MergeVisible(own, shared []models.Memory, viewer string) []VisibleMemory {
	out := make([]VisibleMemory, 0, len(own)+len(shared))
	seen := make(map[string]bool, len(own)+len(shared))
	for _, list := range [][]models.Memory{own, shared} {
		for _, m := range list {
			id := m.ID.Hex()
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, VisibleMemory{Memory: m, IsShared: IsShared(m, viewer)})
		}
	}
	return out
}
