package core

// ChangedContainers is the result bundle a mutating tree operation
// returns: containers whose update id was bumped, and containers that
// became empty and were purged as a side effect. It is never
// persisted.
type ChangedContainers struct {
	UpdatedIDs []int
	PurgedIDs  []int
}

// Merge folds other into c, preserving c's ordering and skipping ids
// already present.
func (c *ChangedContainers) Merge(other *ChangedContainers) {
	if other == nil {
		return
	}
	c.UpdatedIDs = mergeUnique(c.UpdatedIDs, other.UpdatedIDs)
	c.PurgedIDs = mergeUnique(c.PurgedIDs, other.PurgedIDs)
}

func mergeUnique(dst, src []int) []int {
	seen := make(map[int]struct{}, len(dst))
	for _, id := range dst {
		seen[id] = struct{}{}
	}
	for _, id := range src {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dst = append(dst, id)
	}
	return dst
}

// Empty reports whether nothing changed.
func (c *ChangedContainers) Empty() bool {
	return c == nil || (len(c.UpdatedIDs) == 0 && len(c.PurgedIDs) == 0)
}
