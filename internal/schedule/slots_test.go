package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func collect(it *SlotIterator) []Candidate {
	var out []Candidate
	for {
		c, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

func TestWeekdayOfIsMondayFirst(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2026-08-24 00:00", 0}, // Monday
		{"2026-08-25 00:00", 1}, // Tuesday
		{"2026-08-28 00:00", 4}, // Friday
		{"2026-08-29 00:00", 5}, // Saturday
		{"2026-08-30 00:00", 6}, // Sunday
	}
	for _, tc := range cases {
		if got := WeekdayOf(mustTime(t, tc.date)); got != tc.want {
			t.Errorf("WeekdayOf(%s) = %d, want %d", tc.date, got, tc.want)
		}
	}
}

func TestIteratorNeverOffersSameDay(t *testing.T) {
	// Block every day of the week so the only thing keeping today out
	// is the window start.
	var blocks []Block
	for wd := 0; wd < 7; wd++ {
		blocks = append(blocks, Block{
			ID:             uuid.New(),
			PractitionerID: uuid.New(),
			Weekday:        wd,
			StartMinute:    9 * 60,
			EndMinute:      10 * 60,
			Room:           "101",
		})
	}

	now := mustTime(t, "2026-08-24 08:00") // Monday morning
	it := NewSlotIterator(blocks, now, 14)

	first, ok := it.Next()
	if !ok {
		t.Fatal("expected at least one slot")
	}
	want := mustTime(t, "2026-08-25 09:00")
	if !first.Start.Equal(want) {
		t.Fatalf("first slot = %s, want %s", first.Start, want)
	}
}

func TestIteratorGridAlignmentAndBlockEnd(t *testing.T) {
	block := Block{
		ID:             uuid.New(),
		PractitionerID: uuid.New(),
		Weekday:        1, // Tuesday
		StartMinute:    9*60 + 15,
		EndMinute:      10*60 + 50,
		Room:           "104",
	}

	now := mustTime(t, "2026-08-24 12:00") // Monday
	got := collect(NewSlotIterator([]Block{block}, now, 7))

	// 09:15 start, 95 minutes long: slots at 09:15, 09:45, 10:15.
	// 10:45 would end at 11:15, past the block end.
	wantStarts := []string{"2026-08-25 09:15", "2026-08-25 09:45", "2026-08-25 10:15"}
	if len(got) != len(wantStarts) {
		t.Fatalf("got %d slots, want %d", len(got), len(wantStarts))
	}
	blockEnd := mustTime(t, "2026-08-25 00:00").Add(time.Duration(block.EndMinute) * time.Minute)
	for i, w := range wantStarts {
		want := mustTime(t, w)
		if !got[i].Start.Equal(want) {
			t.Errorf("slot[%d] = %s, want %s", i, got[i].Start, want)
		}
		if got[i].Start.Add(SlotLength).After(blockEnd) {
			t.Errorf("slot[%d] overruns block end", i)
		}
	}
	for _, c := range got {
		offset := c.Start.Sub(mustTime(t, "2026-08-25 00:00").Add(time.Duration(block.StartMinute) * time.Minute))
		if offset%SlotLength != 0 {
			t.Errorf("slot %s not aligned to the 30-minute grid from block start", c.Start)
		}
	}
}

func TestIteratorOrdering(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	blocks := []Block{
		// Deliberately unsorted input.
		{ID: uuid.New(), PractitionerID: p2, Weekday: 2, StartMinute: 8 * 60, EndMinute: 9 * 60, Room: "B"},
		{ID: uuid.New(), PractitionerID: p1, Weekday: 1, StartMinute: 14 * 60, EndMinute: 15 * 60, Room: "A"},
		{ID: uuid.New(), PractitionerID: p1, Weekday: 1, StartMinute: 9 * 60, EndMinute: 10 * 60, Room: "A"},
	}

	now := mustTime(t, "2026-08-24 10:00") // Monday
	got := collect(NewSlotIterator(blocks, now, 7))

	var prev time.Time
	for i, c := range got {
		if i > 0 && c.Start.Before(prev) {
			t.Fatalf("slot %d (%s) out of order after %s", i, c.Start, prev)
		}
		prev = c.Start
	}

	// Tuesday's 09:00 block comes before Tuesday's 14:00 block, and both
	// before Wednesday's 08:00 block.
	wantFirst := mustTime(t, "2026-08-25 09:00")
	if !got[0].Start.Equal(wantFirst) {
		t.Fatalf("first slot = %s, want %s", got[0].Start, wantFirst)
	}
}

func TestIteratorIsRestartable(t *testing.T) {
	blocks := []Block{
		{ID: uuid.New(), PractitionerID: uuid.New(), Weekday: 3, StartMinute: 9 * 60, EndMinute: 12 * 60, Room: "7"},
	}
	now := mustTime(t, "2026-08-24 10:00")

	a := collect(NewSlotIterator(blocks, now, 14))
	b := collect(NewSlotIterator(blocks, now, 14))

	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("sequences differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Start.Equal(b[i].Start) || a[i].Block.ID != b[i].Block.ID {
			t.Fatalf("sequences diverge at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestIteratorFiniteWindow(t *testing.T) {
	blocks := []Block{
		{ID: uuid.New(), PractitionerID: uuid.New(), Weekday: 0, StartMinute: 9 * 60, EndMinute: 10 * 60, Room: "1"},
	}
	now := mustTime(t, "2026-08-24 10:00") // Monday

	got := collect(NewSlotIterator(blocks, now, 14))

	// 14-day window starting Tuesday contains exactly two Mondays,
	// each contributing two 30-minute slots.
	if len(got) != 4 {
		t.Fatalf("got %d slots, want 4", len(got))
	}
	last := got[len(got)-1]
	horizon := mustTime(t, "2026-08-25 00:00").AddDate(0, 0, 14)
	if !last.Start.Before(horizon) {
		t.Fatalf("slot %s beyond the 14-day horizon %s", last.Start, horizon)
	}
}

func TestSlotWithinBlock(t *testing.T) {
	block := Block{
		Weekday:     1, // Tuesday
		StartMinute: 9 * 60,
		EndMinute:   11 * 60,
	}

	cases := []struct {
		name  string
		start string
		want  bool
	}{
		{"block start", "2026-08-25 09:00", true},
		{"mid block", "2026-08-25 10:00", true},
		{"last valid slot", "2026-08-25 10:30", true},
		{"slot would overrun block end", "2026-08-25 11:00", false},
		{"off grid", "2026-08-25 09:10", false},
		{"before block", "2026-08-25 08:30", false},
		{"wrong weekday", "2026-08-26 09:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SlotWithinBlock(block, mustTime(t, tc.start)); got != tc.want {
				t.Errorf("SlotWithinBlock(%s) = %v, want %v", tc.start, got, tc.want)
			}
		})
	}
}
