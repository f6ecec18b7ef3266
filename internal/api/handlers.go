package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vec70rr/sistema-hospitalario/internal/booking"
	redisclient "github.com/vec70rr/sistema-hospitalario/internal/redis"
)

func toAppointmentResponse(d *booking.AppointmentDetail) AppointmentResponse {
	return AppointmentResponse{
		ID:               d.ID,
		ScheduleBlockID:  d.ScheduleBlockID,
		PractitionerID:   d.PractitionerID,
		PractitionerName: d.PractitionerName,
		Room:             d.Room,
		PatientID:        d.PatientID,
		SlotStart:        d.SlotStart,
		Type:             string(d.Type),
		Status:           string(d.Status),
	}
}

func autoAssignHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AutoAssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		detail, err := svc.AutoAssign(r.Context(), patientID)
		if err != nil {
			handleAssignError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(detail))
	}
}

func bookChosenSlotHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookChosenSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		blockID, err := uuid.Parse(req.ScheduleBlockID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_schedule_block_id", "schedule_block_id must be a valid UUID")
			return
		}

		if req.SlotStart.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid_slot_start", "slot_start is required")
			return
		}

		detail, err := svc.BookChosenSlot(r.Context(), patientID, blockID, req.SlotStart)
		if err != nil {
			handleBookError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(detail))
	}
}

func cancelHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		appt, err := svc.Cancel(r.Context(), id, time.Now())
		if err != nil {
			handleCancelError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CancelResponse{
			AppointmentID: appt.ID,
			SlotStart:     appt.SlotStart,
			Status:        string(appt.Status),
		})
	}
}

func rescheduleHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		res, err := svc.Reschedule(r.Context(), id, time.Now())
		if err != nil {
			handleCancelError(w, err)
			return
		}

		resp := RescheduleResponse{
			OldAppointmentID: res.OldID,
			Partial:          res.Partial,
		}
		if res.New != nil {
			out := toAppointmentResponse(res.New)
			resp.New = &out
		}

		// 202 marks the partial outcome: the original is cancelled but
		// no replacement could be booked.
		status := http.StatusCreated
		if res.Partial {
			status = http.StatusAccepted
		}
		writeJSON(w, status, resp)
	}
}

func confirmHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		appt, err := svc.Confirm(r.Context(), id)
		if err != nil {
			handleConfirmError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentResponse{
			ID:              appt.ID,
			ScheduleBlockID: appt.ScheduleBlockID,
			PractitionerID:  appt.PractitionerID,
			PatientID:       appt.PatientID,
			SlotStart:       appt.SlotStart,
			Type:            string(appt.Type),
			Status:          string(appt.Status),
		})
	}
}

func listForPatientHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "id")
		patientID, err := uuid.Parse(idStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		details, err := svc.ListForPatient(r.Context(), patientID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(details))
		for i := range details {
			resp = append(resp, toAppointmentResponse(&details[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func listOptionsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minOptions := 5
		if v := r.URL.Query().Get("min"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_min", "min must be a positive integer")
				return
			}
			minOptions = n
		}

		options, err := svc.ListAvailableOptions(r.Context(), minOptions)
		if err != nil {
			if errors.Is(err, booking.ErrNoScheduleConfigured) {
				writeError(w, http.StatusNotFound, "no_schedule_configured", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]SlotOptionResponse, 0, len(options))
		for _, o := range options {
			resp = append(resp, SlotOptionResponse{
				ScheduleBlockID:  o.ScheduleBlockID,
				PractitionerID:   o.PractitionerID,
				PractitionerName: o.PractitionerName,
				Room:             o.Room,
				SlotStart:        o.SlotStart,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleAssignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, booking.ErrNoScheduleConfigured):
		writeError(w, http.StatusNotFound, "no_schedule_configured", err.Error())
	case errors.Is(err, booking.ErrNoSlotAvailable):
		writeError(w, http.StatusNotFound, "no_slot_available", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, booking.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "schedule_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotOutsideSchedule):
		writeError(w, http.StatusUnprocessableEntity, "slot_outside_schedule", err.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleCancelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrNotCancellable):
		writeError(w, http.StatusConflict, "not_cancellable", err.Error())
	case errors.Is(err, booking.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "already_cancelled", err.Error())
	case errors.Is(err, booking.ErrCancelTooLate):
		writeError(w, http.StatusConflict, "cancel_too_late", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleConfirmError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
