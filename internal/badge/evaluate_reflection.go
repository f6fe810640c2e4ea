package badge

import (
	"strings"
	"time"
	"unicode"
)

// triggerLexicon lists the words treated as recurring stress triggers.
var triggerLexicon = map[string]bool{
	"work":       true,
	"deadline":   true,
	"deadlines":  true,
	"boss":       true,
	"exam":       true,
	"exams":      true,
	"money":      true,
	"bills":      true,
	"rent":       true,
	"family":     true,
	"parents":    true,
	"sleep":      true,
	"insomnia":   true,
	"tired":      true,
	"argument":   true,
	"conflict":   true,
	"lonely":     true,
	"alone":      true,
	"traffic":    true,
	"commute":    true,
	"health":     true,
	"pain":       true,
	"news":       true,
	"social":     true,
	"breakup":    true,
	"pressure":   true,
	"criticism":  true,
	"rejection":  true,
	"comparison": true,
	"overtime":   true,
}

func evaluateReflections(req Requirement, h *history) outcome {
	return countEntries(h, req.Window, req.Threshold, true, func(e Entry) bool { return e.HasReflection })
}

// evaluateTriggerWords measures the trigger word that recurs across the most separate entries.
func evaluateTriggerWords(req Requirement, h *history) outcome {
	occurrences := make(map[string]int)
	best := 0
	var completing *time.Time
	for i, e := range h.dated {
		if !h.inWindow(i, req.Window) {
			continue
		}
		for word := range triggerWords(e.Text) {
			occurrences[word]++
			n := occurrences[word]
			if n > best {
				best = n
			}
			if completing == nil && float64(n) >= req.Threshold {
				completing = timeRef(e.CreatedAt)
			}
		}
	}
	return countOutcome(float64(best), req.Threshold, completing)
}

// triggerWords returns the distinct lexicon words found in text.
func triggerWords(text string) map[string]bool {
	found := make(map[string]bool)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, t := range tokens {
		if triggerLexicon[t] {
			found[t] = true
		}
	}
	return found
}
