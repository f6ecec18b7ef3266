package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vec70rr/sistema-hospitalario/internal/schedule"
)

const uniqueViolation = "23505"

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanBlock(row pgx.Row) (*schedule.Block, error) {
	var b schedule.Block

	err := row.Scan(
		&b.ID,
		&b.PractitionerID,
		&b.Weekday,
		&b.StartMinute,
		&b.EndMinute,
		&b.Room,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	return &b, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.ScheduleBlockID,
		&a.PractitionerID,
		&a.PatientID,
		&a.SlotStart,
		&a.Type,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (s *PgStore) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (s *PgStore) GetScheduleBlock(ctx context.Context, id uuid.UUID) (*schedule.Block, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, practitioner_id, weekday, start_minute, end_minute, room
		FROM schedule_blocks
		WHERE id = $1
	`, id)
	return scanBlock(row)
}

// GeneralPracticeBlocks returns every block owned by a practitioner who
// is not on the specialist roster, ordered by weekday then start time.
func (s *PgStore) GeneralPracticeBlocks(ctx context.Context) ([]PoolBlock, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.practitioner_id, b.weekday, b.start_minute, b.end_minute, b.room, p.name
		FROM schedule_blocks b
		JOIN practitioners p ON p.id = b.practitioner_id
		WHERE NOT EXISTS (
			SELECT 1 FROM specialist_roster sr
			WHERE sr.practitioner_id = b.practitioner_id
		)
		ORDER BY b.weekday, b.start_minute
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PoolBlock
	for rows.Next() {
		var pb PoolBlock
		err := rows.Scan(
			&pb.ID,
			&pb.PractitionerID,
			&pb.Weekday,
			&pb.StartMinute,
			&pb.EndMinute,
			&pb.Room,
			&pb.PractitionerName,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, pb)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) SlotOccupied(ctx context.Context, practitionerID uuid.UUID, slotStart time.Time) (bool, error) {
	var occupied bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE practitioner_id = $1
			  AND slot_start = $2
			  AND status IN ('pending', 'confirmed')
		)
	`, practitionerID, slotStart).Scan(&occupied)
	if err != nil {
		return false, err
	}
	return occupied, nil
}

// CreateAppointment inserts a pending appointment. The partial unique
// index uq_active_slot on (practitioner_id, slot_start) over active rows
// makes this the atomic insert-if-free primitive: a concurrent occupant
// surfaces as ErrSlotTaken, never as a duplicate booking.
func (s *PgStore) CreateAppointment(ctx context.Context, appt NewAppointment) (*Appointment, error) {
	id := uuid.New()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, schedule_block_id, practitioner_id, patient_id, slot_start, type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', now(), now())
		RETURNING id, schedule_block_id, practitioner_id, patient_id, slot_start, type, status, created_at, updated_at
	`, id, appt.ScheduleBlockID, appt.PractitionerID, appt.PatientID, appt.SlotStart, appt.Type)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	return created, nil
}

func (s *PgStore) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, schedule_block_id, practitioner_id, patient_id, slot_start, type, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (s *PgStore) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, schedule_block_id, practitioner_id, patient_id, slot_start, type, status, created_at, updated_at
	`, id, to, from)

	return scanAppointment(row)
}

func (s *PgStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.schedule_block_id, a.practitioner_id, a.patient_id, a.slot_start, a.type, a.status, a.created_at, a.updated_at,
		       b.room, p.name
		FROM appointments a
		JOIN schedule_blocks b ON b.id = a.schedule_block_id
		JOIN practitioners p ON p.id = a.practitioner_id
		WHERE a.patient_id = $1
		ORDER BY a.slot_start
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		err := rows.Scan(
			&d.ID,
			&d.ScheduleBlockID,
			&d.PractitionerID,
			&d.PatientID,
			&d.SlotStart,
			&d.Type,
			&d.Status,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.Room,
			&d.PractitionerName,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) FindCompletablePast(ctx context.Context, now time.Time) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, schedule_block_id, practitioner_id, patient_id, slot_start, type, status, created_at, updated_at
		FROM appointments
		WHERE status = 'confirmed'
		  AND slot_start + interval '30 minutes' <= $1
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
