package badge

import (
	"math"
	"time"
)

const (
	shortEntryWords     = 50
	defaultStreakWindow = 7
	comebackGapDays     = 7
	defaultComebackDays = 7
)

func entryMatcher(c Condition) func(Entry) bool {
	switch c {
	case ConditionVoiceEntries:
		return func(e Entry) bool { return e.IsVoiceEntry }
	case ConditionShortEntries:
		return func(e Entry) bool {
			w, ok := e.words()
			return ok && w < shortEntryWords
		}
	default:
		return func(Entry) bool { return true }
	}
}

// countEntries counts dated entries inside the window that satisfy match. When undated is set
// and there is no window, entries lacking a timestamp are counted too. The completing time is the
// timestamp of the entry that brought the count up to the threshold.
func countEntries(h *history, window int, threshold float64, undated bool, match func(Entry) bool) outcome {
	matches := 0.0
	if undated && window <= 0 {
		for _, e := range h.all {
			if e.CreatedAt.IsZero() && match(e) {
				matches++
			}
		}
	}

	var completing *time.Time
	for i, e := range h.dated {
		if !h.inWindow(i, window) || !match(e) {
			continue
		}
		matches++
		if completing == nil && matches >= threshold {
			completing = timeRef(e.CreatedAt)
		}
	}
	return countOutcome(matches, threshold, completing)
}

func evaluateCount(req Requirement, h *history) outcome {
	return countEntries(h, req.Window, req.Threshold, true, entryMatcher(req.Condition))
}

func evaluateAnalyticsViews(req Requirement, h *history) outcome {
	return countOutcome(float64(h.counters.Get(CounterAnalyticsViews)), req.Threshold, nil)
}

func evaluateWordCount(req Requirement, h *history) outcome {
	best := 0
	for _, e := range h.all {
		if !e.CreatedAt.IsZero() {
			continue
		}
		if w, ok := e.words(); ok && w > best {
			best = w
		}
	}

	var completing *time.Time
	for _, e := range h.dated {
		w, ok := e.words()
		if !ok {
			continue
		}
		if w > best {
			best = w
		}
		if completing == nil && float64(w) >= req.Threshold {
			completing = timeRef(e.CreatedAt)
		}
	}
	return countOutcome(float64(best), req.Threshold, completing)
}

// evaluateFlexibleStreak counts distinct active days inside the trailing window.
func evaluateFlexibleStreak(req Requirement, h *history) outcome {
	window := req.Window
	if window <= 0 {
		window = defaultStreakWindow
	}

	seen := make(map[int]bool)
	var completing *time.Time
	for i := range h.dated {
		if !h.inWindow(i, window) || seen[h.days[i]] {
			continue
		}
		seen[h.days[i]] = true
		if completing == nil && float64(len(seen)) >= req.Threshold {
			completing = timeRef(h.dated[i].CreatedAt)
		}
	}
	return countOutcome(float64(len(seen)), req.Threshold, completing)
}

func evaluateConsecutiveDays(req Requirement, h *history) outcome {
	return longestRun(req, h, func(Entry) bool { return true })
}

func evaluateNegativeMoodStreak(req Requirement, h *history) outcome {
	return longestRun(req, h, func(e Entry) bool { return e.mood().Negative() })
}

// longestRun finds the longest run of consecutive calendar days that each hold at least one
// qualifying entry. A day without a qualifying entry breaks the run.
func longestRun(req Requirement, h *history, qualifies func(Entry) bool) outcome {
	var (
		longest    int
		run        int
		lastDay    int
		started    bool
		completing *time.Time
	)
	for i, e := range h.dated {
		if !h.inWindow(i, req.Window) || !qualifies(e) {
			continue
		}
		day := h.days[i]
		if started && day == lastDay {
			continue
		}
		if started && day == lastDay+1 {
			run++
		} else {
			run = 1
		}
		started = true
		lastDay = day

		if run > longest {
			longest = run
		}
		if completing == nil && float64(run) >= req.Threshold {
			completing = timeRef(e.CreatedAt)
		}
	}
	return countOutcome(float64(longest), req.Threshold, completing)
}

// evaluateComeback looks for a gap of at least comebackGapDays empty days followed by
// threshold entries within the window that starts on the comeback day.
func evaluateComeback(req Requirement, h *history) outcome {
	window := req.Window
	if window <= 0 {
		window = defaultComebackDays
	}
	needed := int(math.Ceil(req.Threshold))

	best := 0
	var completing *time.Time
	for i := 1; i < len(h.dated); i++ {
		prev, day := h.days[i-1], h.days[i]
		if day-prev-1 < comebackGapDays {
			continue
		}

		n := 0
		for j := i; j < len(h.dated) && h.days[j] < day+window; j++ {
			n++
		}
		if n > best {
			best = n
		}
		if completing == nil && n >= needed {
			completing = timeRef(h.dated[i+needed-1].CreatedAt)
		}
	}
	return countOutcome(float64(best), req.Threshold, completing)
}
