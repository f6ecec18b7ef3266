package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vec70rr/sistema-hospitalario/internal/schedule"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrScheduleNotFound    = errors.New("schedule block not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is the store's atomic-create rejection: an active
	// appointment already holds the (practitioner, slot start) pair.
	ErrSlotTaken = errors.New("slot already taken by an active appointment")
)

// Store contains all persistence interactions needed by the engine.
//
// CreateAppointment must be atomic against the occupancy invariant:
// it either inserts the row or fails with ErrSlotTaken when an active
// appointment for the same practitioner and slot start exists, with no
// window in between. This is the sole concurrency-control point of the
// engine.
type Store interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)

	// Schedule registry, read-only for the engine.
	GetScheduleBlock(ctx context.Context, id uuid.UUID) (*schedule.Block, error)
	GeneralPracticeBlocks(ctx context.Context) ([]PoolBlock, error)

	// Occupancy.
	SlotOccupied(ctx context.Context, practitionerID uuid.UUID, slotStart time.Time) (bool, error)

	// Creation and updates.
	CreateAppointment(ctx context.Context, appt NewAppointment) (*Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// UpdateAppointmentStatus is a compare-and-set: it fails with
	// ErrAppointmentNotFound when the row is absent or no longer in
	// the `from` status.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	// Read surfaces.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error)

	// Completion worker.
	FindCompletablePast(ctx context.Context, now time.Time) ([]Appointment, error)

	// Event logging.
	InsertEvent(ctx context.Context, ev EventLog) error
}
