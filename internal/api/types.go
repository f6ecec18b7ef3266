package api

import (
	"time"

	"github.com/google/uuid"
)

type AutoAssignRequest struct {
	PatientID string `json:"patient_id"`
}

type BookChosenSlotRequest struct {
	PatientID       string    `json:"patient_id"`
	ScheduleBlockID string    `json:"schedule_block_id"`
	SlotStart       time.Time `json:"slot_start"`
}

type AppointmentResponse struct {
	ID               uuid.UUID `json:"id"`
	ScheduleBlockID  uuid.UUID `json:"schedule_block_id"`
	PractitionerID   uuid.UUID `json:"practitioner_id"`
	PractitionerName string    `json:"practitioner_name,omitempty"`
	Room             string    `json:"room,omitempty"`
	PatientID        uuid.UUID `json:"patient_id"`
	SlotStart        time.Time `json:"slot_start"`
	Type             string    `json:"type"`
	Status           string    `json:"status"`
}

type CancelResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	SlotStart     time.Time `json:"slot_start"`
	Status        string    `json:"status"`
}

type RescheduleResponse struct {
	OldAppointmentID uuid.UUID            `json:"old_appointment_id"`
	Partial          bool                 `json:"partial"`
	New              *AppointmentResponse `json:"new_appointment,omitempty"`
}

type SlotOptionResponse struct {
	ScheduleBlockID  uuid.UUID `json:"schedule_block_id"`
	PractitionerID   uuid.UUID `json:"practitioner_id"`
	PractitionerName string    `json:"practitioner_name"`
	Room             string    `json:"room"`
	SlotStart        time.Time `json:"slot_start"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
