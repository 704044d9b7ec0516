package usecase

// letterDiff partitions letter ids into the three transaction op classes.
type letterDiff struct {
	updated []string // present in both sets
	added   []string // present only in the incoming set
	removed []string // present only in the persisted set
}

// diffLetterIDs compares the letter ids already persisted for a
// correspondence against the ids present in an incoming request. It is a pure
// set operation; no ordering is guaranteed among siblings beyond input order.
// An empty existing set means every incoming id is treated as new.
func diffLetterIDs(existing, incoming []string) letterDiff {
	existingSet := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}
	incomingSet := make(map[string]struct{}, len(incoming))

	var d letterDiff
	for _, id := range incoming {
		if _, dup := incomingSet[id]; dup {
			continue
		}
		incomingSet[id] = struct{}{}
		if _, ok := existingSet[id]; ok {
			d.updated = append(d.updated, id)
		} else {
			d.added = append(d.added, id)
		}
	}
	for _, id := range existing {
		if _, ok := incomingSet[id]; !ok {
			d.removed = append(d.removed, id)
		}
	}
	return d
}
