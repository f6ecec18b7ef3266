package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/vec70rr/sistema-hospitalario/internal/schedule"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Active reports whether an appointment in this status counts toward
// slot occupancy.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Type string

const (
	TypeGeneral    Type = "general"
	TypeSpecialist Type = "specialist"
)

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Practitioner struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Appointment struct {
	ID              uuid.UUID
	ScheduleBlockID uuid.UUID
	PractitionerID  uuid.UUID
	PatientID       uuid.UUID
	SlotStart       time.Time
	Type            Type
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewAppointment carries the fields the caller chooses; the store picks
// the id and stamps the initial pending status.
type NewAppointment struct {
	ScheduleBlockID uuid.UUID
	PractitionerID  uuid.UUID
	PatientID       uuid.UUID
	SlotStart       time.Time
	Type            Type
}

// AppointmentDetail is an appointment hydrated with the block's room and
// the practitioner's name for read surfaces.
type AppointmentDetail struct {
	Appointment
	Room             string
	PractitionerName string
}

// PoolBlock is a schedule block joined with its owner's name, as served
// by the general-practice pool query.
type PoolBlock struct {
	schedule.Block
	PractitionerName string
}

// SlotOption is one free candidate slot offered to a patient choosing
// their own time.
type SlotOption struct {
	ScheduleBlockID  uuid.UUID
	PractitionerID   uuid.UUID
	PractitionerName string
	Room             string
	SlotStart        time.Time
}

// RescheduleResult reports a reschedule outcome. Partial means the
// original appointment was cancelled but no replacement could be booked;
// the cancellation is never rolled back.
type RescheduleResult struct {
	OldID   uuid.UUID
	New     *AppointmentDetail
	Partial bool
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
