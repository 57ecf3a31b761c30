package agenda

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psicoapp/agenda-service/internal/apperr"
	"github.com/psicoapp/agenda-service/internal/clock"
	"github.com/psicoapp/agenda-service/internal/directory"
	"github.com/psicoapp/agenda-service/internal/store"
)

const zoneBA = "America/Argentina/Buenos_Aires"

type stubBooked struct {
	taken map[string]bool
}

func (s *stubBooked) SlotBooked(_ context.Context, practitionerID, date, timeOfDay string) (bool, error) {
	return s.taken[practitionerID+"|"+date+"|"+timeOfDay], nil
}

type fixture struct {
	svc    *Service
	repo   *directory.Repository
	booked *stubBooked
	clk    *clock.Fake
}

// Sunday 2025-06-01 12:00 in Buenos Aires (UTC-3).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC))
	repo := directory.NewRepository(store.NewMemoryStore(clk))
	booked := &stubBooked{taken: map[string]bool{}}
	svc := NewService(repo, booked, clk, zoneBA, zerolog.Nop())
	return &fixture{svc: svc, repo: repo, booked: booked, clk: clk}
}

func (f *fixture) practitioner(t *testing.T) *directory.Practitioner {
	t.Helper()
	p, err := f.repo.CreatePractitioner(context.Background(), directory.Practitioner{
		FirstName: "Ana",
		LastName:  "García",
		Email:     "ana@example.com",
		BasePrice: 8000,
		Timezone:  zoneBA,
		Active:    true,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) template(t *testing.T, practitionerID, weekday string, slots ...directory.TimeSlot) {
	t.Helper()
	_, err := f.repo.CreateTemplate(context.Background(), directory.AvailabilityTemplate{
		PractitionerID: practitionerID,
		Weekday:        weekday,
		Slots:          slots,
		Timezone:       zoneBA,
	})
	require.NoError(t, err)
}

func TestGetAgendaWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.practitioner(t)
	f.template(t, p.ID, "monday",
		directory.TimeSlot{Time: "10:00", Duration: 50, Price: 9000},
		directory.TimeSlot{Time: "09:00"},
	)

	week, err := f.svc.GetAgenda(ctx, p.ID, "", "")
	require.NoError(t, err)

	require.Len(t, week.Days, WindowDays)
	assert.Equal(t, "2025-06-01", week.Days[0].Date, "window starts today in the viewer zone")
	assert.Equal(t, "sunday", week.Days[0].Weekday)
	assert.Empty(t, week.Days[0].Slots, "no template for this weekday")
	assert.Equal(t, zoneBA, week.Timezone)
	assert.Equal(t, "Ana", week.Practitioner.FirstName)

	monday := week.Days[1]
	assert.Equal(t, "2025-06-02", monday.Date)
	require.Len(t, monday.Slots, 2)

	assert.Equal(t, "09:00", monday.Slots[0].Time, "slots sorted by time")
	assert.Equal(t, "2025-06-02-09:00", monday.Slots[0].ID)
	assert.True(t, monday.Slots[0].Available)
	assert.Equal(t, directory.DefaultSlotDuration, monday.Slots[0].Duration)
	assert.Equal(t, 8000.0, monday.Slots[0].Price, "missing price falls back to the base price")
	assert.Equal(t, 9000.0, monday.Slots[1].Price)
}

func TestGetAgendaDropsPastSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.practitioner(t)
	// Today is Sunday, 12:00 local
	f.template(t, p.ID, "sunday",
		directory.TimeSlot{Time: "09:00"},
		directory.TimeSlot{Time: "12:00"},
		directory.TimeSlot{Time: "14:00"},
	)

	week, err := f.svc.GetAgenda(ctx, p.ID, "", "")
	require.NoError(t, err)

	today := week.Days[0]
	require.Len(t, today.Slots, 1, "09:00 already passed, 12:00 is not strictly future")
	assert.Equal(t, "14:00", today.Slots[0].Time)
}

func TestGetAgendaMarksBookedSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.practitioner(t)
	f.template(t, p.ID, "monday",
		directory.TimeSlot{Time: "09:00"},
		directory.TimeSlot{Time: "10:00"},
	)
	f.booked.taken[p.ID+"|2025-06-02|09:00"] = true

	week, err := f.svc.GetAgenda(ctx, p.ID, "", "")
	require.NoError(t, err)

	monday := week.Days[1]
	require.Len(t, monday.Slots, 2, "booked slots stay visible")
	assert.False(t, monday.Slots[0].Available)
	assert.True(t, monday.Slots[1].Available)
}

func TestGetAgendaProjectsToViewerZone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.practitioner(t)
	f.template(t, p.ID, "monday", directory.TimeSlot{Time: "09:00"})

	// Madrid is UTC+2 in June; 09:00 in Buenos Aires is 14:00 there
	week, err := f.svc.GetAgenda(ctx, p.ID, "", "Europe/Madrid")
	require.NoError(t, err)

	monday := week.Days[1]
	require.Len(t, monday.Slots, 1)
	slot := monday.Slots[0]
	assert.Equal(t, "09:00", slot.Time, "template time stays in the template zone")
	assert.Equal(t, "14:00", slot.ViewerTime)
	assert.Equal(t, "2025-06-02T14:00:00+02:00", slot.ViewerDateTime)
}

func TestGetAgendaExplicitStartDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.practitioner(t)

	week, err := f.svc.GetAgenda(ctx, p.ID, "2025-07-07", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-07", week.Days[0].Date)
	assert.Equal(t, "monday", week.Days[0].Weekday)
}

func TestGetAgendaInputErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.practitioner(t)

	_, err := f.svc.GetAgenda(ctx, p.ID, "junk", "")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = f.svc.GetAgenda(ctx, p.ID, "", "Mars/Olympus")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = f.svc.GetAgenda(ctx, "nope", "", "")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestFindNext(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.practitioner(t)
	f.template(t, p.ID, "monday",
		directory.TimeSlot{Time: "09:00"},
		directory.TimeSlot{Time: "10:00"},
	)

	t.Run("earliest open slot", func(t *testing.T) {
		next, err := f.svc.FindNext(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, "2025-06-02", next.Date)
		assert.Equal(t, "09:00", next.Time)
		assert.Equal(t, "2025-06-02T09:00:00-03:00", next.Instant)
	})

	t.Run("skips booked slots", func(t *testing.T) {
		f.booked.taken[p.ID+"|2025-06-02|09:00"] = true
		next, err := f.svc.FindNext(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, "10:00", next.Time)
	})

	t.Run("nil without templates", func(t *testing.T) {
		bare, err := f.repo.CreatePractitioner(ctx, directory.Practitioner{
			FirstName: "Sin", LastName: "Horarios", Email: "sin@example.com", BasePrice: 1, Active: true,
		})
		require.NoError(t, err)

		next, err := f.svc.FindNext(ctx, bare.ID)
		require.NoError(t, err)
		assert.Nil(t, next)
	})
}

func TestFormatLong(t *testing.T) {
	loc, err := time.LoadLocation(zoneBA)
	require.NoError(t, err)
	instant := time.Date(2025, 6, 2, 9, 0, 0, 0, loc)
	assert.Equal(t, "lunes, 02 de junio de 2025 a las 09:00", FormatLong(instant))
}
