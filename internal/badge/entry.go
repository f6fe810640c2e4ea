package badge

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Mood is the categorical label attached to an entry by the mood-analysis collaborator.
type Mood string

const (
	MoodJoyful      Mood = "joyful"
	MoodExcited     Mood = "excited"
	MoodCalm        Mood = "calm"
	MoodContent     Mood = "content"
	MoodGrateful    Mood = "grateful"
	MoodHopeful     Mood = "hopeful"
	MoodSad         Mood = "sad"
	MoodAngry       Mood = "angry"
	MoodAnxious     Mood = "anxious"
	MoodFrustrated  Mood = "frustrated"
	MoodOverwhelmed Mood = "overwhelmed"
	MoodStressed    Mood = "stressed"
)

var negativeMoods = map[Mood]bool{
	MoodSad:         true,
	MoodAngry:       true,
	MoodAnxious:     true,
	MoodFrustrated:  true,
	MoodOverwhelmed: true,
	MoodStressed:    true,
}

var positiveMoods = map[Mood]bool{
	MoodJoyful:   true,
	MoodExcited:  true,
	MoodCalm:     true,
	MoodContent:  true,
	MoodGrateful: true,
	MoodHopeful:  true,
}

// Negative reports whether the mood belongs to the negative set.
func (m Mood) Negative() bool { return negativeMoods[m.normalized()] }

// Positive reports whether the mood belongs to the positive set.
func (m Mood) Positive() bool { return positiveMoods[m.normalized()] }

func (m Mood) normalized() Mood {
	return Mood(strings.ToLower(strings.TrimSpace(string(m))))
}

// Entry is one journaling event as handed to the engine. Entries are read-only inputs.
type Entry struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Text          string    `json:"text,omitempty"`
	WordCount     int       `json:"word_count"`
	PrimaryMood   Mood      `json:"primary_mood,omitempty"`
	MoodScore     *float64  `json:"mood_score,omitempty"`
	IsVoiceEntry  bool      `json:"is_voice_entry"`
	HasReflection bool      `json:"has_reflection"`
}

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// words returns the usable word count and false when the stored count is malformed.
func (e Entry) words() (int, bool) {
	if e.WordCount < 0 {
		return 0, false
	}
	if e.WordCount == 0 && e.Text != "" {
		return CountWords(e.Text), true
	}
	return e.WordCount, true
}

// score returns the mood score and false when it is absent or outside 0-10.
func (e Entry) score() (float64, bool) {
	if e.MoodScore == nil {
		return 0, false
	}
	v := *e.MoodScore
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 10 {
		return 0, false
	}
	return v, true
}

func (e Entry) mood() Mood { return e.PrimaryMood.normalized() }

// Counter names an auxiliary per-user counter that cannot be derived from entries.
type Counter string

// CounterAnalyticsViews counts how many times the user opened the analytics view.
const CounterAnalyticsViews Counter = "analytics_views"

// Counters holds auxiliary counters. Missing keys read as zero.
type Counters map[Counter]int

// Get returns the counter value or zero.
func (c Counters) Get(name Counter) int {
	if c == nil {
		return 0
	}
	if v := c[name]; v > 0 {
		return v
	}
	return 0
}

// history is the per-call, read-only view the evaluators work on.
type history struct {
	all      []Entry // every entry, in input order
	dated    []Entry // entries with a timestamp not after now, ascending
	days     []int   // civil day number for each entry in dated
	counters Counters
	now      time.Time
	today    int
}

func newHistory(entries []Entry, counters Counters, now time.Time) *history {
	h := &history{
		all:      entries,
		counters: counters,
		now:      now,
		today:    dayNumber(now, now.Location()),
	}
	for _, e := range entries {
		if e.CreatedAt.IsZero() || e.CreatedAt.After(now) {
			continue
		}
		h.dated = append(h.dated, e)
	}
	sort.SliceStable(h.dated, func(i, j int) bool {
		a, b := h.dated[i], h.dated[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	h.days = make([]int, len(h.dated))
	for i, e := range h.dated {
		h.days[i] = dayNumber(e.CreatedAt, now.Location())
	}
	return h
}

func (h *history) empty() bool { return len(h.all) == 0 }

// inWindow reports whether the i-th dated entry falls in the trailing window of n days.
// A window of zero or less means all time.
func (h *history) inWindow(i, n int) bool {
	if n <= 0 {
		return true
	}
	return h.days[i] > h.today-n
}

func (h *history) localHour(i int) int {
	return h.dated[i].CreatedAt.In(h.now.Location()).Hour()
}

// dayNumber maps t to a civil day count in loc, independent of DST shifts.
func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DataQuality summarizes entries the engine had to skip for at least one evaluator.
type DataQuality struct {
	MissingTimestamp int `json:"missing_timestamp"`
	FutureTimestamp  int `json:"future_timestamp"`
	InvalidWordCount int `json:"invalid_word_count"`
	InvalidMoodScore int `json:"invalid_mood_score"`
}

// Clean reports whether no malformed entries were seen.
func (q DataQuality) Clean() bool {
	return q == DataQuality{}
}

// Inspect reports malformed entries so the host can log them.
func Inspect(entries []Entry, now time.Time) DataQuality {
	var q DataQuality
	for _, e := range entries {
		switch {
		case e.CreatedAt.IsZero():
			q.MissingTimestamp++
		case e.CreatedAt.After(now):
			q.FutureTimestamp++
		}
		if e.WordCount < 0 {
			q.InvalidWordCount++
		}
		if e.MoodScore != nil {
			if _, ok := e.score(); !ok {
				q.InvalidMoodScore++
			}
		}
	}
	return q
}
