package schedule

import (
	"sort"
	"time"
)

// Candidate is one bookable slot start produced by the iterator.
type Candidate struct {
	Block Block
	Start time.Time
}

// SlotIterator walks every 30-minute slot across a rolling window of
// calendar days, chronologically: day by day, then block by block in
// start-time order, then slot by slot inside the block. The first day
// offered is the day after `from` — same-day slots are never produced.
//
// The iterator is a pure function of its inputs; two iterators built
// from the same arguments yield identical sequences.
type SlotIterator struct {
	byDay    [7][]Block
	firstDay time.Time // midnight of the first searchable day
	days     int

	day  int
	idx  int
	slot time.Time // zero means "start of current block not computed yet"
}

// NewSlotIterator prepares a scan over windowDays days starting the day
// after from, in from's location.
func NewSlotIterator(blocks []Block, from time.Time, windowDays int) *SlotIterator {
	it := &SlotIterator{days: windowDays}

	for _, b := range blocks {
		if b.Weekday < 0 || b.Weekday > 6 {
			continue
		}
		it.byDay[b.Weekday] = append(it.byDay[b.Weekday], b)
	}
	for wd := range it.byDay {
		sort.SliceStable(it.byDay[wd], func(i, j int) bool {
			return it.byDay[wd][i].StartMinute < it.byDay[wd][j].StartMinute
		})
	}

	y, m, d := from.Date()
	it.firstDay = time.Date(y, m, d, 0, 0, 0, 0, from.Location()).AddDate(0, 0, 1)

	return it
}

// Next returns the next candidate slot, or false when the window is
// exhausted.
func (it *SlotIterator) Next() (Candidate, bool) {
	for it.day < it.days {
		date := it.firstDay.AddDate(0, 0, it.day)
		dayBlocks := it.byDay[WeekdayOf(date)]

		for it.idx < len(dayBlocks) {
			b := dayBlocks[it.idx]
			blockEnd := date.Add(time.Duration(b.EndMinute) * time.Minute)

			if it.slot.IsZero() {
				it.slot = date.Add(time.Duration(b.StartMinute) * time.Minute)
			}

			if !it.slot.Add(SlotLength).After(blockEnd) {
				c := Candidate{Block: b, Start: it.slot}
				it.slot = it.slot.Add(SlotLength)
				return c, true
			}

			it.idx++
			it.slot = time.Time{}
		}

		it.day++
		it.idx = 0
		it.slot = time.Time{}
	}

	return Candidate{}, false
}
