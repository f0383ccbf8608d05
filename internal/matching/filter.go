package matching

import (
	"strings"

	"github.com/goldwen/matching-service/internal/db"
)

// FilterConfig carries the eligibility knobs. GenderPairs maps a
// requester's gender to the candidate gender it is shown (configuration,
// not a hardcoded binary).
type FilterConfig struct {
	MaxAgeGap   int
	GenderPairs map[string]string
}

// Eligible reports whether candidate may appear in requester's daily
// selection. Pure predicate, no side effects; the exclusion set is supplied
// by the choice/selection history collaborator, the profile flag by the
// directory.
func Eligible(
	cfg FilterConfig,
	requester db.User,
	candidate db.User,
	candidateHasProfile bool,
	excluded map[uint64]struct{},
) bool {
	if candidate.ID == requester.ID {
		return false
	}
	if !candidate.Active || !candidateHasProfile {
		return false
	}

	gap := candidate.Age - requester.Age
	if gap < 0 {
		gap = -gap
	}
	if gap > cfg.MaxAgeGap {
		return false
	}

	want, ok := cfg.GenderPairs[strings.ToLower(requester.Gender)]
	if !ok || !strings.EqualFold(candidate.Gender, want) {
		return false
	}

	// Coarse location match only; no distance metric in this version.
	if !strings.EqualFold(candidate.LocationCity, requester.LocationCity) {
		return false
	}

	if _, isExcluded := excluded[candidate.ID]; isExcluded {
		return false
	}

	return true
}
