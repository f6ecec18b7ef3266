package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vec70rr/sistema-hospitalario/internal/config"
	redisclient "github.com/vec70rr/sistema-hospitalario/internal/redis"
	"github.com/vec70rr/sistema-hospitalario/internal/schedule"
)

const (
	EventAppointmentCreated   = "APPOINTMENT_CREATED"
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventAppointmentCompleted = "APPOINTMENT_COMPLETED"
)

var (
	ErrNoScheduleConfigured = errors.New("no general-practice schedule configured")
	ErrNoSlotAvailable      = errors.New("no free slot in the search window")

	ErrNotCancellable   = errors.New("specialist appointments cannot be cancelled or rescheduled by the patient")
	ErrAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrCancelTooLate    = errors.New("cancellation must happen before the lead-time cutoff")

	ErrSlotOutsideSchedule     = errors.New("slot start is not a valid slot of the schedule block")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// Service is the booking engine. It holds no appointment state of its
// own; every operation re-reads from the store.
type Service struct {
	store  Store
	locker redisclient.Locker
	cfg    config.Config
	now    func() time.Time
}

func NewService(store Store, locker redisclient.Locker, cfg config.Config) *Service {
	return &Service{
		store:  store,
		locker: locker,
		cfg:    cfg,
		now:    time.Now,
	}
}

// AutoAssign books the first free general-practice slot in the search
// window for the patient. Two requests may race for the same candidate;
// the store's atomic create lets exactly one win and the loser resumes
// scanning from the next candidate.
func (s *Service) AutoAssign(ctx context.Context, patientID uuid.UUID) (*AppointmentDetail, error) {
	if _, err := s.store.GetPatient(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	pool, err := s.store.GeneralPracticeBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load general-practice blocks: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoScheduleConfigured
	}

	blocks := make([]schedule.Block, len(pool))
	names := make(map[uuid.UUID]string, len(pool))
	for i, pb := range pool {
		blocks[i] = pb.Block
		names[pb.Block.ID] = pb.PractitionerName
	}

	it := schedule.NewSlotIterator(blocks, s.now(), s.cfg.SearchWindowDays)
	for {
		cand, ok := it.Next()
		if !ok {
			break
		}

		occupied, err := s.store.SlotOccupied(ctx, cand.Block.PractitionerID, cand.Start)
		if err != nil {
			return nil, fmt.Errorf("check slot occupancy: %w", err)
		}
		if occupied {
			continue
		}

		appt, err := s.store.CreateAppointment(ctx, NewAppointment{
			ScheduleBlockID: cand.Block.ID,
			PractitionerID:  cand.Block.PractitionerID,
			PatientID:       patientID,
			SlotStart:       cand.Start,
			Type:            TypeGeneral,
		})
		if errors.Is(err, ErrSlotTaken) {
			// Lost the race for this candidate, keep scanning.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create appointment: %w", err)
		}

		s.logEvent(ctx, appt.ID, EventAppointmentCreated, map[string]any{
			"patient_id": patientID.String(),
			"slot_start": appt.SlotStart,
			"mode":       "auto_assign",
		})

		return &AppointmentDetail{
			Appointment:      *appt,
			Room:             cand.Block.Room,
			PractitionerName: names[cand.Block.ID],
		}, nil
	}

	return nil, ErrNoSlotAvailable
}

// Cancel moves a general appointment to cancelled if the caller-supplied
// now leaves at least the configured lead time before the slot.
func (s *Service) Cancel(ctx context.Context, appointmentID uuid.UUID, now time.Time) (*Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appt.Type == TypeSpecialist {
		return nil, ErrNotCancellable
	}
	if appt.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if appt.SlotStart.Sub(now) < s.cfg.CancelLeadTime {
		return nil, ErrCancelTooLate
	}

	updated, err := s.store.UpdateAppointmentStatus(ctx, appointmentID, appt.Status, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost a status race; a concurrent cancel got there first.
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentCancelled, map[string]any{
		"slot_start": updated.SlotStart,
	})

	return updated, nil
}

// Reschedule cancels the appointment unconditionally (no lead-time gate)
// and auto-assigns a replacement for the same patient. When no
// replacement exists the result is partial: the original stays cancelled.
func (s *Service) Reschedule(ctx context.Context, appointmentID uuid.UUID, now time.Time) (*RescheduleResult, error) {
	appt, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appt.Type == TypeSpecialist {
		return nil, ErrNotCancellable
	}
	if appt.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	if _, err := s.store.UpdateAppointmentStatus(ctx, appointmentID, appt.Status, StatusCancelled); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("cancel original appointment: %w", err)
	}

	s.logEvent(ctx, appointmentID, EventAppointmentCancelled, map[string]any{
		"slot_start": appt.SlotStart,
		"reason":     "reschedule",
	})

	replacement, err := s.AutoAssign(ctx, appt.PatientID)
	if err != nil {
		if errors.Is(err, ErrNoSlotAvailable) || errors.Is(err, ErrNoScheduleConfigured) {
			// The cancellation is committed and must not be hidden.
			return &RescheduleResult{OldID: appointmentID, Partial: true}, nil
		}
		return nil, fmt.Errorf("book replacement: %w", err)
	}

	return &RescheduleResult{OldID: appointmentID, New: replacement}, nil
}

// BookChosenSlot books a caller-picked slot. The slot must be a real
// slot of the block: right weekday, 30-minute grid from the block start,
// fully inside the block's range, and in the future.
func (s *Service) BookChosenSlot(ctx context.Context, patientID, scheduleBlockID uuid.UUID, slotStart time.Time) (*AppointmentDetail, error) {
	if _, err := s.store.GetPatient(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	block, err := s.store.GetScheduleBlock(ctx, scheduleBlockID)
	if err != nil {
		return nil, err
	}

	if !slotStart.After(s.now()) || !schedule.SlotWithinBlock(*block, slotStart) {
		return nil, ErrSlotOutsideSchedule
	}

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, block.PractitionerID, slotStart, func(lockCtx context.Context) error {
		occupied, err := s.store.SlotOccupied(lockCtx, block.PractitionerID, slotStart)
		if err != nil {
			return fmt.Errorf("check slot occupancy: %w", err)
		}
		if occupied {
			return ErrSlotTaken
		}

		appt, err := s.store.CreateAppointment(lockCtx, NewAppointment{
			ScheduleBlockID: block.ID,
			PractitionerID:  block.PractitionerID,
			PatientID:       patientID,
			SlotStart:       slotStart,
			Type:            TypeGeneral,
		})
		if err != nil {
			return err
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentCreated, map[string]any{
			"patient_id": patientID.String(),
			"slot_start": slotStart,
			"mode":       "chosen_slot",
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	detail := &AppointmentDetail{Appointment: *created, Room: block.Room}
	return detail, nil
}

// Confirm is the landing point for the external payment event: it moves
// a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, appointmentID uuid.UUID) (*Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appt.Status != StatusPending {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.store.UpdateAppointmentStatus(ctx, appointmentID, StatusPending, StatusConfirmed)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("confirm appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentConfirmed, map[string]any{})

	return updated, nil
}

// ListForPatient returns the patient's appointments ordered by slot start.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error) {
	appointments, err := s.store.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

// ListAvailableOptions walks the same sequence as AutoAssign without
// creating anything. It stops once minOptions free slots are collected;
// if the window holds fewer, it returns all of them.
func (s *Service) ListAvailableOptions(ctx context.Context, minOptions int) ([]SlotOption, error) {
	if minOptions <= 0 {
		minOptions = 3
	}

	pool, err := s.store.GeneralPracticeBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load general-practice blocks: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoScheduleConfigured
	}

	blocks := make([]schedule.Block, len(pool))
	names := make(map[uuid.UUID]string, len(pool))
	for i, pb := range pool {
		blocks[i] = pb.Block
		names[pb.Block.ID] = pb.PractitionerName
	}

	var options []SlotOption

	it := schedule.NewSlotIterator(blocks, s.now(), s.cfg.SearchWindowDays)
	for {
		cand, ok := it.Next()
		if !ok {
			break
		}

		occupied, err := s.store.SlotOccupied(ctx, cand.Block.PractitionerID, cand.Start)
		if err != nil {
			return nil, fmt.Errorf("check slot occupancy: %w", err)
		}
		if occupied {
			continue
		}

		options = append(options, SlotOption{
			ScheduleBlockID:  cand.Block.ID,
			PractitionerID:   cand.Block.PractitionerID,
			PractitionerName: names[cand.Block.ID],
			Room:             cand.Block.Room,
			SlotStart:        cand.Start,
		})

		if len(options) >= minOptions {
			return options, nil
		}
	}

	return options, nil
}

// CompletePastAppointments is called by the completion worker: confirmed
// appointments whose slot has fully elapsed move to completed.
func (s *Service) CompletePastAppointments(ctx context.Context) error {
	now := s.now()
	candidates, err := s.store.FindCompletablePast(ctx, now)
	if err != nil {
		return fmt.Errorf("find completable appointments: %w", err)
	}

	for _, appt := range candidates {
		_, err := s.store.UpdateAppointmentStatus(ctx, appt.ID, StatusConfirmed, StatusCompleted)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			log.Printf("failed to complete appointment %s: %v", appt.ID, err)
			continue
		}
		s.logEvent(ctx, appt.ID, EventAppointmentCompleted, map[string]any{
			"slot_start": appt.SlotStart,
		})
	}

	return nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.store.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s for appointment %s: %v", eventType, appointmentID, err)
	}
}
