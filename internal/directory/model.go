// Package directory is the admin domain: practitioners, specialties and
// their recurring weekly availability templates.
package directory

import (
	"time"
)

// Collection names match the original deployment's JSON documents so an
// existing data directory keeps working.
const (
	CollectionPractitioners = "psicologos"
	CollectionSpecialties   = "especialidades"
	CollectionTemplates     = "horarios"
)

const (
	DefaultSlotDuration = 50 // minutes
	DefaultPhoto        = "/uploads/default-avatar.jpg"
)

type Practitioner struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"nombre"`
	LastName    string   `json:"apellido"`
	Email       string   `json:"email"`
	Phone       string   `json:"telefono,omitempty"`
	Specialties []string `json:"especialidades"`
	Description string   `json:"descripcion,omitempty"`
	Experience  string   `json:"experiencia,omitempty"`
	Education   string   `json:"educacion,omitempty"`
	BasePrice   float64  `json:"precioBase"`
	Photo       string   `json:"foto,omitempty"`
	Timezone    string   `json:"timezone"`
	Active      bool     `json:"activo"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

func (p *Practitioner) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Card is the public summary embedded in agendas and booking details.
type Card struct {
	FirstName   string   `json:"nombre"`
	LastName    string   `json:"apellido"`
	Photo       string   `json:"foto,omitempty"`
	Specialties []string `json:"especialidades,omitempty"`
}

func (p *Practitioner) Card() Card {
	return Card{FirstName: p.FirstName, LastName: p.LastName, Photo: p.Photo}
}

func (p *Practitioner) FullCard() Card {
	c := p.Card()
	c.Specialties = p.Specialties
	return c
}

// Specialty is referenced from practitioners by name, not id. Renaming a
// specialty does not cascade to practitioners holding the old name.
type Specialty struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// TimeSlot is one bookable time of day inside a weekly template.
type TimeSlot struct {
	Time     string  `json:"hora"`     // HH:mm wall clock, no date
	Duration int     `json:"duracion"` // minutes
	Price    float64 `json:"precio"`
}

// AvailabilityTemplate holds the slots one practitioner offers on one
// weekday. At most one template exists per (practitioner, weekday).
type AvailabilityTemplate struct {
	ID             string     `json:"id"`
	PractitionerID string     `json:"psicologoId"`
	Weekday        string     `json:"diaSemana"` // monday..sunday
	Slots          []TimeSlot `json:"slots"`
	Timezone       string     `json:"timezone"`
	CreatedAt      string     `json:"createdAt,omitempty"`
	UpdatedAt      string     `json:"updatedAt,omitempty"`
}

// SlotAt returns the template slot starting at the given HH:mm time.
func (t *AvailabilityTemplate) SlotAt(timeOfDay string) (TimeSlot, bool) {
	for _, s := range t.Slots {
		if s.Time == timeOfDay {
			return s, true
		}
	}
	return TimeSlot{}, false
}

// Location resolves the template's zone, falling back to fallback names in
// order. Slots straddling midnight across zones are anchored here, never
// in the viewer's zone.
func (t *AvailabilityTemplate) Location(fallbacks ...string) (*time.Location, error) {
	names := append([]string{t.Timezone}, fallbacks...)
	var lastErr error
	for _, name := range names {
		if name == "" {
			continue
		}
		loc, err := time.LoadLocation(name)
		if err == nil {
			return loc, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return time.UTC, nil
}
