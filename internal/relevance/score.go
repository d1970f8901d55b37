// Package relevance implements the focus-area scoring used to rank event
// sessions for a contractor. The scoring is deliberately a plain set
// intersection with tiered urgency buckets: results drive time-sensitive SMS
// content, so determinism and explainability win over sophistication.
package relevance

import "strings"

// Score tiers. A session with any focus-area overlap scores MatchedScore;
// sessions with no overlap still surface at BaselineScore so every session
// stays discoverable, just lower-ranked.
const (
	MatchedScore  = 100
	BaselineScore = 50
)

// Urgency tier bases for "starting soon" priority scoring.
const (
	urgentBase   = 100 // starts within 15 minutes
	soonBase     = 75  // starts within 30 minutes
	upcomingBase = 50  // anything further out

	matchWeight = 5
)

// MatchCount returns the cardinality of the case-insensitive intersection of
// two focus-area tag sets. Duplicate tags on either side count once.
func MatchCount(contractorTags, sessionTags []string) int {
	if len(contractorTags) == 0 || len(sessionTags) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(contractorTags))
	for _, tag := range contractorTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			want[tag] = struct{}{}
		}
	}
	seen := make(map[string]struct{}, len(sessionTags))
	count := 0
	for _, tag := range sessionTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := want[tag]; ok {
			count++
		}
	}
	return count
}

// Score maps a match count onto the coarse 100/50 relevance score.
func Score(matchCount int) int {
	if matchCount > 0 {
		return MatchedScore
	}
	return BaselineScore
}

// PriorityScore ranks a "starting soon" session. For equal match counts a
// closer urgency tier always outranks a farther one; within a tier, higher
// match count wins.
func PriorityScore(minutesUntilStart, matchCount int) int {
	base := upcomingBase
	switch {
	case minutesUntilStart < 15:
		base = urgentBase
	case minutesUntilStart < 30:
		base = soonBase
	}
	return base + matchCount*matchWeight
}
