package badge

import "sort"

// Earned keeps the earned results, preserving order.
func Earned(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Earned {
			out = append(out, r)
		}
	}
	return out
}

// InProgress returns unearned results sorted by progress, highest first. Ties keep the input
// order. A limit of zero or less returns all of them.
func InProgress(results []Result, limit int) []Result {
	var out []Result
	for _, r := range results {
		if !r.Earned {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Progress > out[j].Progress
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// VisibleOrDiscovered drops hidden badges that have not been earned yet.
func VisibleOrDiscovered(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Hidden || r.Earned {
			out = append(out, r)
		}
	}
	return out
}

// ByTier keeps the results of one tier.
func ByTier(results []Result, tier Tier) []Result {
	var out []Result
	for _, r := range results {
		if r.Tier == tier {
			out = append(out, r)
		}
	}
	return out
}
