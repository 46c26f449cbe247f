// Package routine builds the fixed daily timeline every user starts from and
// answers questions about it.
package routine

import (
	"fmt"
	"math"
	"sort"

	"github.com/daypilot/backend/internal/clock"
)

// BlockType categorizes a routine block.
type BlockType string

const (
	TypeWakeUp   BlockType = "wake-up"
	TypeWork     BlockType = "work"
	TypeMeal     BlockType = "meal"
	TypeEditable BlockType = "editable"
	TypeRest     BlockType = "rest"
	TypeGym      BlockType = "gym"
	TypeSleep    BlockType = "sleep"
)

// ValidType reports whether t is a known block type.
func ValidType(t BlockType) bool {
	switch t {
	case TypeWakeUp, TypeWork, TypeMeal, TypeEditable, TypeRest, TypeGym, TypeSleep:
		return true
	}
	return false
}

// Block is one segment of a day's routine. Locked blocks cannot be deleted;
// only editable blocks may change title or times.
type Block struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Type      BlockType `json:"type"`
	Locked    bool      `json:"is_locked"`
	Editable  bool      `json:"is_editable"`
	Completed bool      `json:"completed"`
	Notes     *string   `json:"notes"`
	Priority  bool      `json:"priority"`
}

type template struct {
	title      string
	start, end string
	typ        BlockType
	locked     bool
	editable   bool
}

var defaultTemplate = []template{
	{"Wake Up", "08:00", "08:00", TypeWakeUp, true, false},
	{"Tatkal Booking Work", "08:00", "12:00", TypeWork, true, false},
	{"Fresh Up & Lunch", "12:00", "14:00", TypeMeal, true, false},
	{"Work Block 1", "14:00", "15:00", TypeEditable, false, true},
	{"Work Block 2", "15:00", "16:00", TypeEditable, false, true},
	{"Work Block 3", "16:00", "17:00", TypeEditable, false, true},
	{"Rest Hour", "17:00", "18:00", TypeRest, false, true},
	{"Gym Time", "18:00", "19:30", TypeGym, true, false},
	{"Dinner Time", "19:30", "20:30", TypeMeal, true, false},
	{"Evening Work", "20:30", "23:00", TypeEditable, false, true},
	{"Sleeping Time", "23:00", "08:00", TypeSleep, true, false},
}

// BlockID is the deterministic id of the index-th default block of date.
func BlockID(date string, index int) string {
	return fmt.Sprintf("%s_block_%d", date, index)
}

// GenerateDefault returns the default routine for date. The same date always
// yields identical blocks, so first-time initialization and reset agree.
func GenerateDefault(date string) []Block {
	blocks := make([]Block, len(defaultTemplate))
	for i, t := range defaultTemplate {
		blocks[i] = Block{
			ID:        BlockID(date, i),
			Title:     t.title,
			StartTime: t.start,
			EndTime:   t.end,
			Type:      t.typ,
			Locked:    t.locked,
			Editable:  t.editable,
		}
	}
	return blocks
}

// span returns start and end in minutes since midnight.
func (b Block) span() (start, end int, ok bool) {
	start, err := clock.ParseTime(b.StartTime)
	if err != nil {
		return 0, 0, false
	}
	end, err = clock.ParseTime(b.EndTime)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// Wraps reports whether the block runs past midnight.
func (b Block) Wraps() bool {
	start, end, ok := b.span()
	return ok && end < start
}

// Contains reports whether hhmm falls in [start, end). Overnight blocks wrap,
// so 23:00-08:00 contains both 23:30 and 02:00. A zero-length block or a
// malformed time contains nothing.
func (b Block) Contains(hhmm string) bool {
	start, end, ok := b.span()
	if !ok {
		return false
	}
	at, err := clock.ParseTime(hhmm)
	if err != nil {
		return false
	}
	if end < start {
		return at >= start || at < end
	}
	return at >= start && at < end
}

// Duration returns the block length in minutes, accounting for wraparound.
func (b Block) Duration() int {
	start, end, ok := b.span()
	if !ok {
		return 0
	}
	if end < start {
		end += 24 * 60
	}
	return end - start
}

// CurrentBlock returns the first block containing hhmm.
func CurrentBlock(blocks []Block, hhmm string) (Block, bool) {
	for _, b := range blocks {
		if b.Contains(hhmm) {
			return b, true
		}
	}
	return Block{}, false
}

// SortByStart orders blocks by start time, keeping the relative order of
// blocks that start together.
func SortByStart(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].StartTime < blocks[j].StartTime
	})
}

// Stats summarizes completion of a day's routine.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Progress  int `json:"progress"`
}

// Summarize counts completed blocks; Progress is a rounded percentage.
func Summarize(blocks []Block) Stats {
	s := Stats{Total: len(blocks)}
	for _, b := range blocks {
		if b.Completed {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Progress = int(math.Floor(float64(s.Completed)/float64(s.Total)*100 + 0.5))
	}
	return s
}

// Period is the timeline section a block is shown under.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
	PeriodNight     Period = "night"
)

// PeriodOf places a block by its start hour: 05-11 morning, 12-16 afternoon,
// 17-20 evening, otherwise night.
func PeriodOf(b Block) Period {
	m, err := clock.ParseTime(b.StartTime)
	if err != nil {
		return PeriodNight
	}
	switch h := m / 60; {
	case h >= 5 && h < 12:
		return PeriodMorning
	case h >= 12 && h < 17:
		return PeriodAfternoon
	case h >= 17 && h < 21:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// Group buckets blocks by Period, preserving order within each bucket.
func Group(blocks []Block) map[Period][]Block {
	out := map[Period][]Block{
		PeriodMorning:   {},
		PeriodAfternoon: {},
		PeriodEvening:   {},
		PeriodNight:     {},
	}
	for _, b := range blocks {
		p := PeriodOf(b)
		out[p] = append(out[p], b)
	}
	return out
}
