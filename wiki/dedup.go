package wiki

type shownKey struct {
	section Section
	entryID string
}

// ShownRegistry tracks which (section, entry) pairs already carry a marker in
// the current cycle. It holds identifiers only, never nodes, so a removed
// subtree cannot pin memory or leave the registry pointing at detached nodes.
// The coordinator discards the registry wholesale at the start of each apply
// cycle.
type ShownRegistry struct {
	shown map[shownKey]struct{}
}

// NewShownRegistry returns an empty registry.
func NewShownRegistry() *ShownRegistry {
	return &ShownRegistry{shown: make(map[shownKey]struct{})}
}

// Claim records the pair and reports whether it was new. The second and later
// claims for the same pair return false.
func (r *ShownRegistry) Claim(section Section, entryID string) bool {
	k := shownKey{section: section, entryID: entryID}
	if _, ok := r.shown[k]; ok {
		return false
	}
	r.shown[k] = struct{}{}
	return true
}

// Len returns the number of claimed pairs.
func (r *ShownRegistry) Len() int { return len(r.shown) }

// FilterFirstPerSection keeps, for each (section, entry) pair, only the first
// match in document order. Two different entries in the same section both
// survive; the same entry twice in one section does not.
func FilterFirstPerSection(matches []Match, reg *ShownRegistry) []Match {
	out := matches[:0]
	for _, m := range matches {
		if reg.Claim(m.Section, m.Entry.ID) {
			out = append(out, m)
		}
	}
	return out
}
