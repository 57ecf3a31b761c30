// Command seed fills the configured record store with fake but coherent
// data: practitioners, their weekly availability, and a handful of
// bookings. Safe to run against an empty or existing data directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/agenda"
	"github.com/psicoapp/agenda-service/internal/booking"
	"github.com/psicoapp/agenda-service/internal/clock"
	"github.com/psicoapp/agenda-service/internal/config"
	"github.com/psicoapp/agenda-service/internal/db"
	"github.com/psicoapp/agenda-service/internal/directory"
	"github.com/psicoapp/agenda-service/internal/lock"
	"github.com/psicoapp/agenda-service/internal/store"
)

var specialtyNames = []string{
	"Ansiedad",
	"Depresión",
	"Terapia de Pareja",
	"Terapia Familiar",
	"Trauma",
	"Adicciones",
	"Trastornos Alimentarios",
	"Terapia Cognitivo Conductual",
	"Psicología Infantil",
	"Autoestima",
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func main() {
	practitioners := flag.Int("psicologos", 10, "practitioners to create")
	bookings := flag.Int("reservas", 5, "bookings to create")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "seed").Logger()
	log.Info().Msg("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	clk := clock.System()

	var st store.Store
	switch cfg.StoreDriver {
	case "memory":
		log.Fatal().Msg("seeding a memory store is pointless, use file or postgres")
	case "postgres":
		pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()
		pg := store.NewPgStore(pool, clk)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("store migration error")
		}
		st = pg
	default:
		st, err = store.NewFileStore(cfg.DataDir, clk)
		if err != nil {
			log.Fatal().Err(err).Msg("file store error")
		}
	}

	dirRepo := directory.NewRepository(st)
	bookRepo := booking.NewRepository(st)
	bookingSvc := booking.NewService(bookRepo, dirRepo, lock.NewLocalLocker(), clk, cfg.CancelNotice, cfg.DefaultTimezone, log)
	dirSvc := directory.NewService(dirRepo, bookingSvc, cfg.DefaultTimezone, log)
	agendaSvc := agenda.NewService(dirRepo, bookingSvc, clk, cfg.DefaultTimezone, log)

	gofakeit.Seed(time.Now().UnixNano())

	if err := dirSvc.EnsureDefaultSpecialties(ctx); err != nil {
		log.Fatal().Err(err).Msg("default specialties error")
	}

	created, err := seedPractitioners(ctx, dirSvc, *practitioners, log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed practitioners")
	}
	if err := seedBookings(ctx, bookingSvc, agendaSvc, created, *bookings, log); err != nil {
		log.Fatal().Err(err).Msg("seed bookings")
	}

	log.Info().Msg("seed complete")
}

func seedPractitioners(ctx context.Context, svc *directory.Service, count int, log zerolog.Logger) ([]directory.Practitioner, error) {
	out := make([]directory.Practitioner, 0, count)
	for i := 0; i < count; i++ {
		specs := []string{specialtyNames[gofakeit.Number(0, len(specialtyNames)-1)]}
		if gofakeit.Bool() {
			specs = append(specs, specialtyNames[gofakeit.Number(0, len(specialtyNames)-1)])
		}

		p, err := svc.CreatePractitioner(ctx, directory.CreatePractitionerInput{
			FirstName:   gofakeit.FirstName(),
			LastName:    gofakeit.LastName(),
			Email:       fmt.Sprintf("%s.%d@%s", gofakeit.Username(), i, gofakeit.DomainName()),
			Phone:       gofakeit.Phone(),
			Specialties: specs,
			Description: gofakeit.Sentence(12),
			Experience:  fmt.Sprintf("%d años de experiencia clínica", gofakeit.Number(2, 25)),
			BasePrice:   float64(gofakeit.Number(40, 120)) * 100,
		})
		if err != nil {
			return nil, err
		}

		for _, day := range weekdays {
			if gofakeit.Number(0, 3) == 0 {
				continue
			}
			slots := make([]directory.SlotInput, 0, 4)
			for hour := 9 + gofakeit.Number(0, 1); hour <= 17; hour += 2 {
				slots = append(slots, directory.SlotInput{Time: fmt.Sprintf("%02d:00", hour)})
			}
			_, err := svc.CreateTemplate(ctx, directory.CreateTemplateInput{
				PractitionerID: p.ID,
				Weekday:        day,
				Slots:          slots,
			})
			if err != nil {
				return nil, err
			}
		}

		out = append(out, *p)
	}
	log.Info().Int("count", len(out)).Msg("practitioners seeded")
	return out, nil
}

func seedBookings(ctx context.Context, svc *booking.Service, ag *agenda.Service, practitioners []directory.Practitioner, count int, log zerolog.Logger) error {
	booked := 0
	for _, p := range practitioners {
		if booked >= count {
			break
		}
		next, err := ag.FindNext(ctx, p.ID)
		if err != nil {
			return err
		}
		if next == nil {
			continue
		}

		_, _, err = svc.Create(ctx, booking.CreateInput{
			PractitionerID: p.ID,
			Date:           next.Date,
			Time:           next.Time,
			Patient: booking.Patient{
				Name:  gofakeit.Name(),
				Email: gofakeit.Email(),
				Phone: gofakeit.Phone(),
			},
		})
		if err != nil {
			return err
		}
		booked++
	}

	log.Info().Int("count", booked).Msg("bookings seeded")
	return nil
}
