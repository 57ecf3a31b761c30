// Package agenda resolves recurring weekly templates into a concrete,
// timezone-aware view of a practitioner's week, and finds the earliest
// open slot.
package agenda

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/apperr"
	"github.com/psicoapp/agenda-service/internal/clock"
	"github.com/psicoapp/agenda-service/internal/directory"
	"github.com/psicoapp/agenda-service/internal/timeutil"
)

const (
	// WindowDays is the agenda window length.
	WindowDays = 7
	// nextSearchDays bounds the forward search for the earliest open slot.
	nextSearchDays = 30
)

// BookedChecker is the booking engine's availability predicate: true when
// a non-cancelled booking occupies the tuple.
type BookedChecker interface {
	SlotBooked(ctx context.Context, practitionerID, date, timeOfDay string) (bool, error)
}

type Service struct {
	dir         *directory.Repository
	booked      BookedChecker
	clk         clock.Clock
	defaultZone string
	log         zerolog.Logger
}

func NewService(dir *directory.Repository, booked BookedChecker, clk clock.Clock, defaultZone string, log zerolog.Logger) *Service {
	return &Service{
		dir:         dir,
		booked:      booked,
		clk:         clk,
		defaultZone: defaultZone,
		log:         log.With().Str("component", "agenda").Logger(),
	}
}

// Slot is one concrete bookable (date, time) pair, annotated with
// availability and projected into the viewer's zone.
type Slot struct {
	ID             string  `json:"id"` // fecha-hora, stable per slot
	Date           string  `json:"fecha"`
	Time           string  `json:"hora"`
	ViewerTime     string  `json:"horaUsuario"`
	ViewerDateTime string  `json:"fechaHoraUsuario"`
	Available      bool    `json:"disponible"`
	Duration       int     `json:"duracion"`
	Price          float64 `json:"precio"`
}

type Day struct {
	Date    string `json:"fecha"`
	Weekday string `json:"diaSemana"`
	Slots   []Slot `json:"slots"`
}

type Week struct {
	PractitionerID string         `json:"psicologoId"`
	Practitioner   directory.Card `json:"psicologo"`
	Timezone       string         `json:"timezone"`
	Days           []Day          `json:"agenda"`
}

// GetAgenda expands the practitioner's weekly templates over a 7-day
// window starting at startDate (today when empty), drops slots that are
// not strictly in the future of the template's own zone, annotates each
// with availability and projects it to the viewer zone.
func (s *Service) GetAgenda(ctx context.Context, practitionerID, startDate, viewerZone string) (*Week, error) {
	if viewerZone == "" {
		viewerZone = s.defaultZone
	}
	viewerLoc, err := LoadZone(viewerZone)
	if err != nil {
		return nil, err
	}

	practitioner, err := s.dir.GetPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()

	var base time.Time
	if startDate != "" {
		base, err = timeutil.ParseDate(startDate)
		if err != nil {
			return nil, invalidDate(startDate)
		}
	} else {
		base, _ = timeutil.ParseDate(timeutil.FormatDate(now.In(viewerLoc)))
	}

	templates, err := s.dir.ListTemplates(ctx, practitionerID)
	if err != nil {
		return nil, err
	}

	week := &Week{
		PractitionerID: practitionerID,
		Practitioner:   practitioner.Card(),
		Timezone:       viewerZone,
		Days:           make([]Day, 0, WindowDays),
	}

	for i := 0; i < WindowDays; i++ {
		day := base.AddDate(0, 0, i)
		date := timeutil.FormatDate(day)
		weekday := timeutil.WeekdayKey(day)

		slots := []Slot{}
		for _, t := range templates {
			if t.Weekday != weekday {
				continue
			}
			expanded, err := s.expandTemplate(ctx, practitioner, t, date, now, viewerLoc)
			if err != nil {
				return nil, err
			}
			slots = append(slots, expanded...)
		}
		sort.Slice(slots, func(a, b int) bool { return slots[a].Time < slots[b].Time })

		week.Days = append(week.Days, Day{Date: date, Weekday: weekday, Slots: slots})
	}
	return week, nil
}

func (s *Service) expandTemplate(ctx context.Context, p *directory.Practitioner, t directory.AvailabilityTemplate, date string, now time.Time, viewerLoc *time.Location) ([]Slot, error) {
	loc, err := t.Location(p.Timezone, s.defaultZone)
	if err != nil {
		loc = time.UTC
	}

	out := []Slot{}
	for _, slot := range t.Slots {
		instant, err := timeutil.SlotInstant(date, slot.Time, loc)
		if err != nil {
			s.log.Warn().Str("template_id", t.ID).Str("hora", slot.Time).Msg("skipping malformed template slot")
			continue
		}
		// Future-only, judged on the template's own wall clock.
		if !instant.After(now) {
			continue
		}

		booked, err := s.booked.SlotBooked(ctx, p.ID, date, slot.Time)
		if err != nil {
			return nil, err
		}

		projected := Project(instant, viewerLoc)
		price := slot.Price
		if price <= 0 {
			price = p.BasePrice
		}
		duration := slot.Duration
		if duration <= 0 {
			duration = directory.DefaultSlotDuration
		}

		out = append(out, Slot{
			ID:             date + "-" + slot.Time,
			Date:           date,
			Time:           slot.Time,
			ViewerTime:     projected.Time,
			ViewerDateTime: projected.DateTime,
			Available:      !booked,
			Duration:       duration,
			Price:          price,
		})
	}
	return out, nil
}

func invalidDate(s string) error {
	return apperr.Newf(apperr.KindInvalidInput, "invalid date %q, want YYYY-MM-DD", s)
}

// NextSlot is the earliest open slot of a practitioner.
type NextSlot struct {
	Date    string `json:"fecha"`
	Time    string `json:"hora"`
	Instant string `json:"fechaHora"` // RFC3339 in the template's zone
}

// FindNext walks forward day by day, up to 30 days, and returns the first
// template slot that is strictly in the future and not booked. Nil when
// nothing is open within the bound.
func (s *Service) FindNext(ctx context.Context, practitionerID string) (*NextSlot, error) {
	practitioner, err := s.dir.GetPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	templates, err := s.dir.ListTemplates(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}

	now := s.clk.Now()
	base, _ := timeutil.ParseDate(timeutil.FormatDate(now))

	for i := 0; i < nextSearchDays; i++ {
		day := base.AddDate(0, 0, i)
		date := timeutil.FormatDate(day)
		weekday := timeutil.WeekdayKey(day)

		for _, t := range templates {
			if t.Weekday != weekday {
				continue
			}
			loc, err := t.Location(practitioner.Timezone, s.defaultZone)
			if err != nil {
				loc = time.UTC
			}
			for _, slot := range t.Slots {
				instant, err := timeutil.SlotInstant(date, slot.Time, loc)
				if err != nil {
					continue
				}
				if !instant.After(now) {
					continue
				}
				booked, err := s.booked.SlotBooked(ctx, practitionerID, date, slot.Time)
				if err != nil {
					return nil, err
				}
				if booked {
					continue
				}
				return &NextSlot{
					Date:    date,
					Time:    slot.Time,
					Instant: instant.Format(time.RFC3339),
				}, nil
			}
		}
	}
	return nil, nil
}
