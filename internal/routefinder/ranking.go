package routefinder

import "sort"

// rankJourneys drops journeys sharing a Key, sorts the rest with Less and keeps the first limit.
func rankJourneys(journeys []JourneyOption, limit int) []JourneyOption {
	seen := make(map[string]bool, len(journeys))
	ranked := make([]JourneyOption, 0, len(journeys))
	for _, j := range journeys {
		key := j.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		ranked = append(ranked, j)
	}

	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Less(ranked[b]) })

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
