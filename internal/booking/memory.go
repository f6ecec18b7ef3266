package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vec70rr/sistema-hospitalario/internal/schedule"
)

// MemoryStore is an in-process Store used by tests. All mutations run
// under one mutex, so CreateAppointment's check-and-insert is atomic
// against the occupancy invariant exactly like the Postgres partial
// unique index.
type MemoryStore struct {
	mu            sync.Mutex
	patients      map[uuid.UUID]Patient
	practitioners map[uuid.UUID]Practitioner
	specialists   map[uuid.UUID]bool
	blocks        []schedule.Block
	appointments  map[uuid.UUID]*Appointment
	events        []EventLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients:      make(map[uuid.UUID]Patient),
		practitioners: make(map[uuid.UUID]Practitioner),
		specialists:   make(map[uuid.UUID]bool),
		appointments:  make(map[uuid.UUID]*Appointment),
	}
}

// Seed helpers

func (s *MemoryStore) AddPatient(p Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = p
}

func (s *MemoryStore) AddPractitioner(p Practitioner, specialist bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.practitioners[p.ID] = p
	if specialist {
		s.specialists[p.ID] = true
	}
}

func (s *MemoryStore) AddBlock(b schedule.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, b)
}

// Store methods

func (s *MemoryStore) GetPatient(_ context.Context, id uuid.UUID) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetScheduleBlock(_ context.Context, id uuid.UUID) (*schedule.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.blocks {
		if b.ID == id {
			blk := b
			return &blk, nil
		}
	}
	return nil, ErrScheduleNotFound
}

func (s *MemoryStore) GeneralPracticeBlocks(_ context.Context) ([]PoolBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []PoolBlock
	for _, b := range s.blocks {
		if s.specialists[b.PractitionerID] {
			continue
		}
		result = append(result, PoolBlock{
			Block:            b,
			PractitionerName: s.practitioners[b.PractitionerID].Name,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Weekday != result[j].Weekday {
			return result[i].Weekday < result[j].Weekday
		}
		return result[i].StartMinute < result[j].StartMinute
	})

	return result, nil
}

func (s *MemoryStore) SlotOccupied(_ context.Context, practitionerID uuid.UUID, slotStart time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupiedLocked(practitionerID, slotStart), nil
}

func (s *MemoryStore) occupiedLocked(practitionerID uuid.UUID, slotStart time.Time) bool {
	for _, a := range s.appointments {
		if a.PractitionerID == practitionerID && a.SlotStart.Equal(slotStart) && a.Status.Active() {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateAppointment(_ context.Context, appt NewAppointment) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.occupiedLocked(appt.PractitionerID, appt.SlotStart) {
		return nil, ErrSlotTaken
	}

	now := time.Now()
	created := &Appointment{
		ID:              uuid.New(),
		ScheduleBlockID: appt.ScheduleBlockID,
		PractitionerID:  appt.PractitionerID,
		PatientID:       appt.PatientID,
		SlotStart:       appt.SlotStart,
		Type:            appt.Type,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.appointments[created.ID] = created

	out := *created
	return &out, nil
}

func (s *MemoryStore) GetAppointment(_ context.Context, id uuid.UUID) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *a
	return &out, nil
}

func (s *MemoryStore) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}

	a.Status = to
	a.UpdatedAt = time.Now()

	out := *a
	return &out, nil
}

func (s *MemoryStore) ListByPatient(_ context.Context, patientID uuid.UUID) ([]AppointmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []AppointmentDetail
	for _, a := range s.appointments {
		if a.PatientID != patientID {
			continue
		}
		d := AppointmentDetail{
			Appointment:      *a,
			PractitionerName: s.practitioners[a.PractitionerID].Name,
		}
		for _, b := range s.blocks {
			if b.ID == a.ScheduleBlockID {
				d.Room = b.Room
				break
			}
		}
		result = append(result, d)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SlotStart.Before(result[j].SlotStart)
	})

	return result, nil
}

func (s *MemoryStore) FindCompletablePast(_ context.Context, now time.Time) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Appointment
	for _, a := range s.appointments {
		if a.Status == StatusConfirmed && !a.SlotStart.Add(schedule.SlotLength).After(now) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (s *MemoryStore) InsertEvent(_ context.Context, ev EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = int64(len(s.events) + 1)
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of the recorded event log.
func (s *MemoryStore) Events() []EventLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EventLog, len(s.events))
	copy(out, s.events)
	return out
}
