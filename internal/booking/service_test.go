package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vec70rr/sistema-hospitalario/internal/config"
	"github.com/vec70rr/sistema-hospitalario/internal/schedule"
)

// passthroughLocker runs the critical section without any locking, so
// the tests exercise the store-level atomicity on its own.
type passthroughLocker struct{}

func (passthroughLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func testConfig() config.Config {
	return config.Config{
		CancelLeadTime:   2 * time.Hour,
		SearchWindowDays: 14,
	}
}

type fixture struct {
	store   *MemoryStore
	svc     *Service
	patient Patient
	doctor  Practitioner
	block   schedule.Block
}

// newFixture builds a store with one patient and one general
// practitioner holding a Tuesday 09:00-10:00 block, and an engine whose
// clock reads Monday 2026-08-24 10:00.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := NewMemoryStore()

	patient := Patient{ID: uuid.New(), Name: "Ana Rivera"}
	store.AddPatient(patient)

	doctor := Practitioner{ID: uuid.New(), Name: "Dr. Campos"}
	store.AddPractitioner(doctor, false)

	block := schedule.Block{
		ID:             uuid.New(),
		PractitionerID: doctor.ID,
		Weekday:        1, // Tuesday
		StartMinute:    9 * 60,
		EndMinute:      10 * 60,
		Room:           "101",
	}
	store.AddBlock(block)

	svc := NewService(store, passthroughLocker{}, testConfig())
	svc.now = func() time.Time { return mustTime(t, "2026-08-24 10:00") }

	return &fixture{store: store, svc: svc, patient: patient, doctor: doctor, block: block}
}

func (f *fixture) addPatient(t *testing.T, name string) Patient {
	t.Helper()
	p := Patient{ID: uuid.New(), Name: name}
	f.store.AddPatient(p)
	return p
}

func TestAutoAssignFirstAvailableSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.AutoAssign(ctx, f.patient.ID)
	if err != nil {
		t.Fatalf("AutoAssign: %v", err)
	}

	wantFirst := mustTime(t, "2026-08-25 09:00")
	if !first.SlotStart.Equal(wantFirst) {
		t.Errorf("first assignment at %s, want %s", first.SlotStart, wantFirst)
	}
	if first.Status != StatusPending {
		t.Errorf("status = %s, want %s", first.Status, StatusPending)
	}
	if first.Type != TypeGeneral {
		t.Errorf("type = %s, want %s", first.Type, TypeGeneral)
	}
	if first.Room != "101" {
		t.Errorf("room = %q, want %q", first.Room, "101")
	}
	if first.PractitionerName != f.doctor.Name {
		t.Errorf("practitioner name = %q, want %q", first.PractitionerName, f.doctor.Name)
	}

	// A second patient gets the next slot of the same block.
	other := f.addPatient(t, "Luis Peña")
	second, err := f.svc.AutoAssign(ctx, other.ID)
	if err != nil {
		t.Fatalf("second AutoAssign: %v", err)
	}
	wantSecond := mustTime(t, "2026-08-25 09:30")
	if !second.SlotStart.Equal(wantSecond) {
		t.Errorf("second assignment at %s, want %s", second.SlotStart, wantSecond)
	}
}

func TestAutoAssignPatientNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AutoAssign(context.Background(), uuid.New())
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("err = %v, want ErrPatientNotFound", err)
	}
}

func TestAutoAssignNoScheduleConfigured(t *testing.T) {
	store := NewMemoryStore()
	patient := Patient{ID: uuid.New(), Name: "Ana Rivera"}
	store.AddPatient(patient)

	// A specialist's block does not count as a configured schedule.
	specialist := Practitioner{ID: uuid.New(), Name: "Dr. Soto"}
	store.AddPractitioner(specialist, true)
	store.AddBlock(schedule.Block{
		ID:             uuid.New(),
		PractitionerID: specialist.ID,
		Weekday:        1,
		StartMinute:    9 * 60,
		EndMinute:      12 * 60,
		Room:           "301",
	})

	svc := NewService(store, passthroughLocker{}, testConfig())

	_, err := svc.AutoAssign(context.Background(), patient.ID)
	if !errors.Is(err, ErrNoScheduleConfigured) {
		t.Fatalf("err = %v, want ErrNoScheduleConfigured", err)
	}
}

func TestAutoAssignWindowExhausted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The Tuesday 09:00-10:00 block yields two slots on each of the two
	// Tuesdays inside the window. Occupy all four.
	starts := []string{
		"2026-08-25 09:00", "2026-08-25 09:30",
		"2026-09-01 09:00", "2026-09-01 09:30",
	}
	for _, s := range starts {
		occupant := f.addPatient(t, "Occupant")
		_, err := f.store.CreateAppointment(ctx, NewAppointment{
			ScheduleBlockID: f.block.ID,
			PractitionerID:  f.doctor.ID,
			PatientID:       occupant.ID,
			SlotStart:       mustTime(t, s),
			Type:            TypeGeneral,
		})
		if err != nil {
			t.Fatalf("seed appointment at %s: %v", s, err)
		}
	}

	_, err := f.svc.AutoAssign(ctx, f.patient.ID)
	if !errors.Is(err, ErrNoSlotAvailable) {
		t.Fatalf("err = %v, want ErrNoSlotAvailable", err)
	}
}

func TestAutoAssignSkipsCancelledSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	occupant := f.addPatient(t, "Occupant")
	appt, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       occupant.ID,
		SlotStart:       mustTime(t, "2026-08-25 09:00"),
		Type:            TypeGeneral,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, StatusCancelled); err != nil {
		t.Fatal(err)
	}

	// A cancelled occupant does not block the slot.
	got, err := f.svc.AutoAssign(ctx, f.patient.ID)
	if err != nil {
		t.Fatalf("AutoAssign: %v", err)
	}
	want := mustTime(t, "2026-08-25 09:00")
	if !got.SlotStart.Equal(want) {
		t.Errorf("assigned %s, want %s", got.SlotStart, want)
	}
}

func TestCancelRules(t *testing.T) {
	slotStart := "2026-08-25 09:00"

	cases := []struct {
		name    string
		typ     Type
		status  Status
		now     string
		wantErr error
	}{
		{"specialist never cancellable", TypeSpecialist, StatusPending, "2026-08-20 09:00", ErrNotCancellable},
		{"already cancelled", TypeGeneral, StatusCancelled, "2026-08-20 09:00", ErrAlreadyCancelled},
		{"1h59m remaining is too late", TypeGeneral, StatusPending, "2026-08-25 07:01", ErrCancelTooLate},
		{"2h01m remaining succeeds", TypeGeneral, StatusPending, "2026-08-25 06:59", nil},
		{"confirmed is cancellable", TypeGeneral, StatusConfirmed, "2026-08-24 09:00", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			appt, err := f.store.CreateAppointment(ctx, NewAppointment{
				ScheduleBlockID: f.block.ID,
				PractitionerID:  f.doctor.ID,
				PatientID:       f.patient.ID,
				SlotStart:       mustTime(t, slotStart),
				Type:            tc.typ,
			})
			if err != nil {
				t.Fatal(err)
			}
			if tc.status != StatusPending {
				if _, err := f.store.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, tc.status); err != nil {
					t.Fatal(err)
				}
			}

			got, err := f.svc.Cancel(ctx, appt.ID, mustTime(t, tc.now))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Cancel: %v", err)
			}
			if got.Status != StatusCancelled {
				t.Errorf("status = %s, want %s", got.Status, StatusCancelled)
			}
		})
	}
}

func TestCancelNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cancel(context.Background(), uuid.New(), mustTime(t, "2026-08-24 10:00"))
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("err = %v, want ErrAppointmentNotFound", err)
	}
}

func TestRescheduleOnCancelledFailsBeforeBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       f.patient.ID,
		SlotStart:       mustTime(t, "2026-08-25 09:00"),
		Type:            TypeGeneral,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, StatusCancelled); err != nil {
		t.Fatal(err)
	}

	before, _ := f.store.ListByPatient(ctx, f.patient.ID)

	_, err = f.svc.Reschedule(ctx, appt.ID, mustTime(t, "2026-08-24 10:00"))
	if !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("err = %v, want ErrAlreadyCancelled", err)
	}

	after, _ := f.store.ListByPatient(ctx, f.patient.ID)
	if len(after) != len(before) {
		t.Errorf("reschedule on a cancelled appointment created a booking")
	}
}

func TestRescheduleSpecialistRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       f.patient.ID,
		SlotStart:       mustTime(t, "2026-08-25 09:00"),
		Type:            TypeSpecialist,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Reschedule(ctx, appt.ID, mustTime(t, "2026-08-24 10:00"))
	if !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("err = %v, want ErrNotCancellable", err)
	}
}

func TestRescheduleSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       f.patient.ID,
		SlotStart:       mustTime(t, "2026-08-25 09:00"),
		Type:            TypeGeneral,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Even with under two hours of lead time the reschedule cancels.
	res, err := f.svc.Reschedule(ctx, appt.ID, mustTime(t, "2026-08-25 08:30"))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if res.Partial {
		t.Fatal("unexpected partial result")
	}
	if res.OldID != appt.ID {
		t.Errorf("old id = %s, want %s", res.OldID, appt.ID)
	}
	if res.New == nil {
		t.Fatal("expected a replacement appointment")
	}

	old, err := f.store.GetAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if old.Status != StatusCancelled {
		t.Errorf("original status = %s, want %s", old.Status, StatusCancelled)
	}

	// Freeing 09:00 makes it the first candidate again.
	want := mustTime(t, "2026-08-25 09:00")
	if !res.New.SlotStart.Equal(want) {
		t.Errorf("replacement at %s, want %s", res.New.SlotStart, want)
	}
	if res.New.PatientID != f.patient.ID {
		t.Errorf("replacement patient = %s, want %s", res.New.PatientID, f.patient.ID)
	}
}

func TestReschedulePartialLeavesOriginalCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Occupy every slot in the window with other patients, then give the
	// target appointment a slot outside the generator's reach so
	// cancelling it frees nothing.
	starts := []string{
		"2026-08-25 09:00", "2026-08-25 09:30",
		"2026-09-01 09:00", "2026-09-01 09:30",
	}
	for _, s := range starts {
		occupant := f.addPatient(t, "Occupant")
		if _, err := f.store.CreateAppointment(ctx, NewAppointment{
			ScheduleBlockID: f.block.ID,
			PractitionerID:  f.doctor.ID,
			PatientID:       occupant.ID,
			SlotStart:       mustTime(t, s),
			Type:            TypeGeneral,
		}); err != nil {
			t.Fatal(err)
		}
	}

	appt, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       f.patient.ID,
		SlotStart:       mustTime(t, "2026-09-08 09:00"),
		Type:            TypeGeneral,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.Reschedule(ctx, appt.ID, mustTime(t, "2026-08-24 10:00"))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if !res.Partial {
		t.Fatal("expected a partial result")
	}
	if res.New != nil {
		t.Fatal("partial result must not carry a replacement")
	}

	old, err := f.store.GetAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if old.Status != StatusCancelled {
		t.Errorf("original status = %s, want %s: the committed cancellation must not be rolled back", old.Status, StatusCancelled)
	}
}

func TestBookChosenSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown schedule block", func(t *testing.T) {
		_, err := f.svc.BookChosenSlot(ctx, f.patient.ID, uuid.New(), mustTime(t, "2026-08-25 09:00"))
		if !errors.Is(err, ErrScheduleNotFound) {
			t.Fatalf("err = %v, want ErrScheduleNotFound", err)
		}
	})

	t.Run("off-grid slot rejected", func(t *testing.T) {
		_, err := f.svc.BookChosenSlot(ctx, f.patient.ID, f.block.ID, mustTime(t, "2026-08-25 09:10"))
		if !errors.Is(err, ErrSlotOutsideSchedule) {
			t.Fatalf("err = %v, want ErrSlotOutsideSchedule", err)
		}
	})

	t.Run("past slot rejected", func(t *testing.T) {
		_, err := f.svc.BookChosenSlot(ctx, f.patient.ID, f.block.ID, mustTime(t, "2026-08-18 09:00"))
		if !errors.Is(err, ErrSlotOutsideSchedule) {
			t.Fatalf("err = %v, want ErrSlotOutsideSchedule", err)
		}
	})

	t.Run("success then occupied", func(t *testing.T) {
		slot := mustTime(t, "2026-08-25 09:30")

		got, err := f.svc.BookChosenSlot(ctx, f.patient.ID, f.block.ID, slot)
		if err != nil {
			t.Fatalf("BookChosenSlot: %v", err)
		}
		if got.Status != StatusPending || got.Type != TypeGeneral {
			t.Errorf("got status=%s type=%s, want pending/general", got.Status, got.Type)
		}

		other := f.addPatient(t, "Luis Peña")
		_, err = f.svc.BookChosenSlot(ctx, other.ID, f.block.ID, slot)
		if !errors.Is(err, ErrSlotTaken) {
			t.Fatalf("err = %v, want ErrSlotTaken", err)
		}
	})
}

func TestConfirmTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       f.patient.ID,
		SlotStart:       mustTime(t, "2026-08-25 09:00"),
		Type:            TypeGeneral,
	})
	if err != nil {
		t.Fatal(err)
	}

	confirmed, err := f.svc.Confirm(ctx, appt.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Errorf("status = %s, want %s", confirmed.Status, StatusConfirmed)
	}

	// Confirming twice is an invalid transition.
	_, err = f.svc.Confirm(ctx, appt.ID)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("err = %v, want ErrInvalidStatusTransition", err)
	}
}

func TestListForPatientChronological(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Insert out of order.
	for _, s := range []string{"2026-09-01 09:30", "2026-08-25 09:00", "2026-09-01 09:00"} {
		if _, err := f.store.CreateAppointment(ctx, NewAppointment{
			ScheduleBlockID: f.block.ID,
			PractitionerID:  f.doctor.ID,
			PatientID:       f.patient.ID,
			SlotStart:       mustTime(t, s),
			Type:            TypeGeneral,
		}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := f.svc.ListForPatient(ctx, f.patient.ID)
	if err != nil {
		t.Fatalf("ListForPatient: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d appointments, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].SlotStart.Before(got[i-1].SlotStart) {
			t.Fatalf("appointments out of order at %d", i)
		}
	}
	if got[0].Room != "101" || got[0].PractitionerName != f.doctor.Name {
		t.Errorf("detail not hydrated: room=%q practitioner=%q", got[0].Room, got[0].PractitionerName)
	}
}

func TestListAvailableOptionsFewerThanMin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Occupy one of the four window slots, leaving three free.
	occupant := f.addPatient(t, "Occupant")
	if _, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       occupant.ID,
		SlotStart:       mustTime(t, "2026-08-25 09:00"),
		Type:            TypeGeneral,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.ListAvailableOptions(ctx, 5)
	if err != nil {
		t.Fatalf("ListAvailableOptions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d options, want 3", len(got))
	}
	want := mustTime(t, "2026-08-25 09:30")
	if !got[0].SlotStart.Equal(want) {
		t.Errorf("first option at %s, want %s", got[0].SlotStart, want)
	}
}

func TestListAvailableOptionsStopsAtMin(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.ListAvailableOptions(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListAvailableOptions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d options, want 2", len(got))
	}
}

func TestListAvailableOptionsNoSchedule(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, passthroughLocker{}, testConfig())

	_, err := svc.ListAvailableOptions(context.Background(), 5)
	if !errors.Is(err, ErrNoScheduleConfigured) {
		t.Fatalf("err = %v, want ErrNoScheduleConfigured", err)
	}
}

func TestConcurrentAutoAssignLastSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Fill every slot except 2026-09-01 09:30.
	for _, s := range []string{"2026-08-25 09:00", "2026-08-25 09:30", "2026-09-01 09:00"} {
		occupant := f.addPatient(t, "Occupant")
		if _, err := f.store.CreateAppointment(ctx, NewAppointment{
			ScheduleBlockID: f.block.ID,
			PractitionerID:  f.doctor.ID,
			PatientID:       occupant.ID,
			SlotStart:       mustTime(t, s),
			Type:            TypeGeneral,
		}); err != nil {
			t.Fatal(err)
		}
	}

	patientA := f.addPatient(t, "A")
	patientB := f.addPatient(t, "B")

	type outcome struct {
		detail *AppointmentDetail
		err    error
	}
	results := make(chan outcome, 2)

	var wg sync.WaitGroup
	for _, p := range []Patient{patientA, patientB} {
		wg.Add(1)
		go func(p Patient) {
			defer wg.Done()
			d, err := f.svc.AutoAssign(ctx, p.ID)
			results <- outcome{detail: d, err: err}
		}(p)
	}
	wg.Wait()
	close(results)

	var wins, exhausted int
	for r := range results {
		switch {
		case r.err == nil:
			wins++
		case errors.Is(r.err, ErrNoSlotAvailable):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", r.err)
		}
	}
	if wins != 1 || exhausted != 1 {
		t.Fatalf("wins=%d exhausted=%d, want exactly one of each", wins, exhausted)
	}
}

func TestStoreRejectsConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := mustTime(t, "2026-08-25 09:00")

	const attempts = 16
	errs := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			occupant := Patient{ID: uuid.New(), Name: "Occupant"}
			f.store.AddPatient(occupant)
			_, err := f.store.CreateAppointment(ctx, NewAppointment{
				ScheduleBlockID: f.block.ID,
				PractitionerID:  f.doctor.ID,
				PatientID:       occupant.ID,
				SlotStart:       slot,
				Type:            TypeGeneral,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var created, rejected int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrSlotTaken):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("created=%d, want exactly 1 active appointment per slot", created)
	}
	if rejected != attempts-1 {
		t.Fatalf("rejected=%d, want %d", rejected, attempts-1)
	}
}

func TestCompletePastAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       f.patient.ID,
		SlotStart:       mustTime(t, "2026-08-18 09:00"),
		Type:            TypeGeneral,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, StatusConfirmed); err != nil {
		t.Fatal(err)
	}

	// A pending appointment in the past is left alone; completion only
	// applies to confirmed ones.
	pending, err := f.store.CreateAppointment(ctx, NewAppointment{
		ScheduleBlockID: f.block.ID,
		PractitionerID:  f.doctor.ID,
		PatientID:       f.patient.ID,
		SlotStart:       mustTime(t, "2026-08-18 09:30"),
		Type:            TypeGeneral,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.CompletePastAppointments(ctx); err != nil {
		t.Fatalf("CompletePastAppointments: %v", err)
	}

	got, err := f.store.GetAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", got.Status, StatusCompleted)
	}

	still, err := f.store.GetAppointment(ctx, pending.ID)
	if err != nil {
		t.Fatal(err)
	}
	if still.Status != StatusPending {
		t.Errorf("pending appointment moved to %s", still.Status)
	}
}
