package badge

import (
	"time"
)

const (
	recoveryWindow   = 24 * time.Hour
	hourBucketLength = 2
)

// evaluateNegativeToPositive counts recoveries: a negative entry followed within 24 hours by a
// positive one. Each negative entry anchors at most one recovery and each positive entry closes
// at most one, pairing the oldest open negative first.
func evaluateNegativeToPositive(req Requirement, h *history) outcome {
	var (
		pending    []time.Time
		recoveries float64
		completing *time.Time
	)
	for i, e := range h.dated {
		if !h.inWindow(i, req.Window) {
			continue
		}
		mood := e.mood()
		switch {
		case mood.Negative():
			pending = append(pending, e.CreatedAt)
		case mood.Positive():
			for len(pending) > 0 && e.CreatedAt.Sub(pending[0]) > recoveryWindow {
				pending = pending[1:]
			}
			if len(pending) == 0 {
				continue
			}
			pending = pending[1:]
			recoveries++
			if completing == nil && recoveries >= req.Threshold {
				completing = timeRef(e.CreatedAt)
			}
		}
	}
	return countOutcome(recoveries, req.Threshold, completing)
}

// evaluateMonthOverMonth compares the average mood score of the trailing window against the
// window just before it. The threshold is the required improvement in percent of the baseline.
func evaluateMonthOverMonth(req Requirement, h *history) outcome {
	var (
		curSum, prevSum     float64
		curCount, prevCount int
		latest              *time.Time
	)
	for i, e := range h.dated {
		score, ok := e.score()
		if !ok {
			continue
		}
		age := h.today - h.days[i]
		switch {
		case age < req.Window:
			curSum += score
			curCount++
			latest = timeRef(e.CreatedAt)
		case age < 2*req.Window:
			prevSum += score
			prevCount++
		}
	}
	if curCount == 0 || prevCount == 0 || prevSum == 0 {
		return outcome{}
	}

	baseline := prevSum / float64(prevCount)
	current := curSum / float64(curCount)
	improvement := (current - baseline) / baseline * 100
	return countOutcome(improvement, req.Threshold, latest)
}

func inHourBucket(c Condition, hour int) bool {
	switch c {
	case ConditionNightHours:
		return hour >= 23 || hour < 3
	case ConditionMorningHours:
		return hour < 7
	default:
		return false
	}
}

// evaluateHourBucket counts entries written during a named span of the local day.
func evaluateHourBucket(req Requirement, h *history) outcome {
	loc := h.now.Location()
	return countEntries(h, req.Window, req.Threshold, false, func(e Entry) bool {
		return inHourBucket(req.Condition, e.CreatedAt.In(loc).Hour())
	})
}

type moodSlot struct {
	mood   Mood
	bucket int
}

// evaluateSameMoodSameTime groups entries by mood and two-hour slot of the day and measures the
// largest group by the number of distinct days it occurred on.
func evaluateSameMoodSameTime(req Requirement, h *history) outcome {
	groups := make(map[moodSlot]map[int]bool)
	best := 0
	var completing *time.Time
	for i, e := range h.dated {
		mood := e.mood()
		if mood == "" || !h.inWindow(i, req.Window) {
			continue
		}
		slot := moodSlot{mood: mood, bucket: h.localHour(i) / hourBucketLength}
		days, ok := groups[slot]
		if !ok {
			days = make(map[int]bool)
			groups[slot] = days
		}
		days[h.days[i]] = true
		if len(days) > best {
			best = len(days)
		}
		if completing == nil && float64(len(days)) >= req.Threshold {
			completing = timeRef(e.CreatedAt)
		}
	}
	return countOutcome(float64(best), req.Threshold, completing)
}

// evaluateDiversity requires both enough distinct moods and that no single mood makes up more
// than half of the mood-tagged entries. Progress drops to zero while the ceiling is violated.
func evaluateDiversity(req Requirement, h *history) outcome {
	counts := make(map[Mood]int)
	var (
		total, top int
		satisfied  bool
		completing *time.Time
	)
	for i, e := range h.dated {
		mood := e.mood()
		if mood == "" || !h.inWindow(i, req.Window) {
			continue
		}
		counts[mood]++
		total++
		if counts[mood] > top {
			top = counts[mood]
		}

		ok := top*2 <= total && float64(len(counts)) >= req.Threshold
		if ok && !satisfied {
			completing = timeRef(e.CreatedAt)
		}
		satisfied = ok
	}

	if total == 0 || top*2 > total {
		return outcome{}
	}
	return countOutcome(float64(len(counts)), req.Threshold, completing)
}
