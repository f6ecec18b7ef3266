package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vec70rr/sistema-hospitalario/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	generalIDs, err := seedPractitioners(context.Background(), pool, 30, 20)
	if err != nil {
		log.Fatalf("seed practitioners: %v", err)
	}
	if err := seedScheduleBlocks(context.Background(), pool, generalIDs); err != nil {
		log.Fatalf("seed schedule blocks: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 5000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

// seedPractitioners inserts generalCount general practitioners plus
// specialistCount practitioners listed on the specialist roster, and
// returns the ids of the general ones.
func seedPractitioners(ctx context.Context, pool *pgxpool.Pool, generalCount, specialistCount int) ([]uuid.UUID, error) {
	log.Printf("seeding %d general + %d specialist practitioners", generalCount, specialistCount)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var generalIDs []uuid.UUID

	for i := 0; i < generalCount+specialistCount; i++ {
		id := uuid.New()
		name := gofakeit.Name()

		_, err := tx.Exec(ctx, `
			INSERT INTO practitioners (id, name, created_at, updated_at)
			VALUES ($1, $2, now(), now())
		`, id, name)
		if err != nil {
			return nil, err
		}

		if i < generalCount {
			generalIDs = append(generalIDs, id)
			continue
		}

		spec := specialties[gofakeit.Number(0, len(specialties)-1)]
		_, err = tx.Exec(ctx, `
			INSERT INTO specialist_roster (practitioner_id, specialty, created_at)
			VALUES ($1, $2, now())
		`, id, spec)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("practitioners seeded")
	return generalIDs, nil
}

// seedScheduleBlocks gives every general practitioner a morning block on
// two or three weekdays.
func seedScheduleBlocks(ctx context.Context, pool *pgxpool.Pool, practitionerIDs []uuid.UUID) error {
	log.Printf("seeding schedule blocks for %d practitioners", len(practitionerIDs))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, pid := range practitionerIDs {
		room := gofakeit.Numerify("Room 1##")
		days := gofakeit.Number(2, 3)
		weekday := gofakeit.Number(0, 4) // Monday..Friday

		for d := 0; d < days; d++ {
			wd := (weekday + d*2) % 5
			startHour := gofakeit.Number(8, 11)
			durationHours := gofakeit.Number(2, 4)

			_, err := tx.Exec(ctx, `
				INSERT INTO schedule_blocks (id, practitioner_id, weekday, start_minute, end_minute, room, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, now(), now())
				ON CONFLICT DO NOTHING
			`, uuid.New(), pid, wd, startHour*60, (startHour+durationHours)*60, room)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("schedule blocks seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, id, name, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}
