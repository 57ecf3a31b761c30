package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/agenda"
	"github.com/psicoapp/agenda-service/internal/apperr"
	"github.com/psicoapp/agenda-service/internal/clock"
	"github.com/psicoapp/agenda-service/internal/directory"
	"github.com/psicoapp/agenda-service/internal/lock"
	"github.com/psicoapp/agenda-service/internal/store"
	"github.com/psicoapp/agenda-service/internal/timeutil"
)

const confirmationDateLayout = "02/01/2006"

// DefaultCancelReason is stamped when the caller gives none.
const DefaultCancelReason = "Cancelada por el paciente"

type Service struct {
	repo        *Repository
	dir         *directory.Repository
	locker      lock.Locker
	clk         clock.Clock
	notice      time.Duration // minimum cancellation notice
	defaultZone string
	log         zerolog.Logger
}

func NewService(repo *Repository, dir *directory.Repository, locker lock.Locker, clk clock.Clock, notice time.Duration, defaultZone string, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		dir:         dir,
		locker:      locker,
		clk:         clk,
		notice:      notice,
		defaultZone: defaultZone,
		log:         log.With().Str("component", "booking").Logger(),
	}
}

// SlotBooked is the availability predicate shared with the agenda
// resolver: true when a non-cancelled booking occupies the tuple.
func (s *Service) SlotBooked(ctx context.Context, practitionerID, date, timeOfDay string) (bool, error) {
	return s.repo.ActiveExists(ctx, practitionerID, date, timeOfDay)
}

// HasActiveBookings implements directory.BookingLookup.
func (s *Service) HasActiveBookings(ctx context.Context, practitionerID string) (bool, error) {
	return s.repo.HasActive(ctx, practitionerID)
}

// CheckAvailability answers whether the tuple can be booked: no active
// booking on it, and a template slot backing it. The same predicate runs
// again inside Create; the client-visible answer is never trusted at
// commit time.
func (s *Service) CheckAvailability(ctx context.Context, practitionerID, date, timeOfDay string) (*Availability, error) {
	if _, err := timeutil.ParseDate(date); err != nil {
		return nil, invalidDate(date)
	}
	if !timeutil.ValidTime(timeOfDay) {
		return nil, invalidTime(timeOfDay)
	}

	booked, err := s.repo.ActiveExists(ctx, practitionerID, date, timeOfDay)
	if err != nil {
		return nil, err
	}

	_, _, err = s.matchTemplateSlot(ctx, practitionerID, date, timeOfDay)
	hasTemplate := err == nil
	if err != nil && !apperr.IsKind(err, apperr.KindInvalidInput) {
		return nil, err
	}

	return &Availability{
		Available:   !booked && hasTemplate,
		Booked:      booked,
		HasTemplate: hasTemplate,
	}, nil
}

type CreateInput struct {
	PractitionerID string
	Date           string
	Time           string
	Patient        Patient
	Timezone       string // requester's zone, for the confirmation
}

// Create validates and commits a booking. The availability re-check and
// the persist run as one critical section under the slot lock, so two
// concurrent requests for the same tuple cannot both succeed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Booking, *Confirmation, error) {
	if in.PractitionerID == "" || in.Date == "" || in.Time == "" {
		return nil, nil, apperr.New(apperr.KindInvalidInput, "psicologoId, fecha and hora are required")
	}
	if in.Patient.Name == "" || in.Patient.Email == "" {
		return nil, nil, apperr.New(apperr.KindInvalidInput, "patient nombre and email are required")
	}
	if _, err := timeutil.ParseDate(in.Date); err != nil {
		return nil, nil, invalidDate(in.Date)
	}
	if !timeutil.ValidTime(in.Time) {
		return nil, nil, invalidTime(in.Time)
	}

	practitioner, err := s.dir.GetPractitioner(ctx, in.PractitionerID)
	if err != nil {
		return nil, nil, err
	}

	requesterZone := in.Timezone
	if requesterZone == "" {
		requesterZone = s.defaultZone
	}
	requesterLoc, err := agenda.LoadZone(requesterZone)
	if err != nil {
		return nil, nil, err
	}

	var (
		created *Booking
		target  time.Time
	)

	key := slotKey(in.PractitionerID, in.Date, in.Time)
	err = s.locker.WithLock(ctx, key, func(lockCtx context.Context) error {
		booked, err := s.repo.ActiveExists(lockCtx, in.PractitionerID, in.Date, in.Time)
		if err != nil {
			return err
		}
		if booked {
			return apperr.New(apperr.KindConflict, "slot is already booked")
		}

		template, slot, err := s.matchTemplateSlot(lockCtx, in.PractitionerID, in.Date, in.Time)
		if err != nil {
			return err
		}

		// Futurity is judged on the template's wall clock, so slots
		// straddling midnight across zones stay unambiguous.
		loc, err := template.Location(practitioner.Timezone, s.defaultZone)
		if err != nil {
			return apperr.Internal("resolve template zone", err)
		}
		target, err = timeutil.SlotInstant(in.Date, in.Time, loc)
		if err != nil {
			return apperr.Internal("compute slot instant", err)
		}
		if !target.After(s.clk.Now()) {
			return apperr.New(apperr.KindInvalidInput, "cannot book a slot in the past")
		}

		price := slot.Price
		if price <= 0 {
			price = practitioner.BasePrice
		}

		created, err = s.repo.Create(lockCtx, Booking{
			PractitionerID: in.PractitionerID,
			Date:           in.Date,
			Time:           in.Time,
			Patient:        in.Patient,
			Timezone:       requesterZone,
			Status:         StatusConfirmed,
			Price:          price,
			BookedAt:       s.clk.Now().UTC().Format(time.RFC3339),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, nil, apperr.Wrap(apperr.KindConflict, "slot is being booked, retry shortly", err)
		}
		return nil, nil, err
	}

	local := agenda.Project(target, requesterLoc)
	confirmation := &Confirmation{
		Message:      "¡Tu sesión quedó agendada!",
		Practitioner: practitioner.FullName(),
		Date:         target.In(requesterLoc).Format(confirmationDateLayout),
		Time:         local.Time,
		Timezone:     requesterZone,
		FullDate:     agenda.FormatLong(target.In(requesterLoc)),
	}

	s.log.Info().
		Str("booking_id", created.ID).
		Str("practitioner_id", in.PractitionerID).
		Str("fecha", in.Date).
		Str("hora", in.Time).
		Msg("booking created")
	return created, confirmation, nil
}

// Cancel transitions confirmada -> cancelada when the slot is still more
// than the notice window away. At exactly the boundary cancellation is
// allowed. Cancelled bookings free their tuple but are never deleted.
func (s *Service) Cancel(ctx context.Context, id, reason string) (*Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, apperr.New(apperr.KindInvalidInput, "booking is already cancelled")
	}

	target, err := s.bookingInstant(ctx, b)
	if err != nil {
		return nil, err
	}
	if target.Sub(s.clk.Now()) < s.notice {
		return nil, apperr.Newf(apperr.KindPolicyViolation,
			"cancellation requires at least %s notice", s.notice)
	}

	if reason == "" {
		reason = DefaultCancelReason
	}
	updated, err := s.repo.Patch(ctx, id, store.Record{
		"estado":            string(StatusCancelled),
		"fechaCancelacion":  s.clk.Now().UTC().Format(time.RFC3339),
		"motivoCancelacion": reason,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("booking_id", id).Str("motivo", reason).Msg("booking cancelled")
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, *b), nil
}

type Filters struct {
	PractitionerID string
	Email          string
	Status         string
	Date           string
}

// List returns hydrated bookings matching the filters, most recent slot
// first.
func (s *Service) List(ctx context.Context, f Filters) ([]Detail, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Detail, 0, len(all))
	for _, b := range all {
		if f.PractitionerID != "" && b.PractitionerID != f.PractitionerID {
			continue
		}
		if f.Email != "" && !strings.EqualFold(b.Patient.Email, f.Email) {
			continue
		}
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		if f.Date != "" && b.Date != f.Date {
			continue
		}
		out = append(out, *s.hydrate(ctx, b))
	}

	// YYYY-MM-DD HH:mm sorts chronologically as a string.
	sort.Slice(out, func(a, b int) bool {
		return out[a].Date+" "+out[a].Time > out[b].Date+" "+out[b].Time
	})
	return out, nil
}

func (s *Service) hydrate(ctx context.Context, b Booking) *Detail {
	d := &Detail{Booking: b}
	practitioner, err := s.dir.GetPractitioner(ctx, b.PractitionerID)
	if err == nil {
		card := practitioner.FullCard()
		d.Practitioner = &card
	}
	return d
}

// bookingInstant recomputes the booking's target instant the same way
// Create anchored it: template zone first, then the practitioner's, then
// the configured default. Template or practitioner may have been deleted
// since the booking was made.
func (s *Service) bookingInstant(ctx context.Context, b *Booking) (time.Time, error) {
	zone := s.defaultZone

	if practitioner, err := s.dir.GetPractitioner(ctx, b.PractitionerID); err == nil {
		if practitioner.Timezone != "" {
			zone = practitioner.Timezone
		}
		if template, _, err := s.matchTemplateSlot(ctx, b.PractitionerID, b.Date, b.Time); err == nil && template.Timezone != "" {
			zone = template.Timezone
		}
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, apperr.Internal("resolve booking zone", err)
	}
	target, err := timeutil.SlotInstant(b.Date, b.Time, loc)
	if err != nil {
		return time.Time{}, apperr.Internal("compute booking instant", err)
	}
	return target, nil
}

// matchTemplateSlot finds the template slot backing (date, time), or
// KindInvalidInput when the practitioner does not offer that tuple.
func (s *Service) matchTemplateSlot(ctx context.Context, practitionerID, date, timeOfDay string) (*directory.AvailabilityTemplate, *directory.TimeSlot, error) {
	day, err := timeutil.ParseDate(date)
	if err != nil {
		return nil, nil, invalidDate(date)
	}
	weekday := timeutil.WeekdayKey(day)

	templates, err := s.dir.ListTemplates(ctx, practitionerID)
	if err != nil {
		return nil, nil, err
	}
	for i := range templates {
		t := &templates[i]
		if t.Weekday != weekday {
			continue
		}
		if slot, ok := t.SlotAt(timeOfDay); ok {
			return t, &slot, nil
		}
	}
	return nil, nil, apperr.New(apperr.KindInvalidInput, "practitioner has no availability at that date and time")
}

func slotKey(practitionerID, date, timeOfDay string) string {
	return practitionerID + "|" + date + "|" + timeOfDay
}

func invalidDate(s string) error {
	return apperr.Newf(apperr.KindInvalidInput, "invalid date %q, want YYYY-MM-DD", s)
}

func invalidTime(s string) error {
	return apperr.Newf(apperr.KindInvalidInput, "invalid time %q, want HH:mm", s)
}
