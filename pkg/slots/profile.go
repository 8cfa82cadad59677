package slots

import "github.com/benepick/benepick/pkg/domain"

// MergeProfile sets the region and life-cycle found in msg. Slots that are
// not found keep their previous value.
func MergeProfile(p domain.Profile, msg string, table LifeCycleTable) domain.Profile {
	if r, ok := Region(msg); ok {
		p.Region = r
	}
	if lc, ok := LifeCycle(table, msg); ok {
		p.LifeCycle = lc
	}
	return p
}
