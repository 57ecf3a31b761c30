package api

import (
	"github.com/psicoapp/agenda-service/internal/agenda"
	"github.com/psicoapp/agenda-service/internal/booking"
	"github.com/psicoapp/agenda-service/internal/directory"
)

type patientPayload struct {
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Phone string `json:"telefono,omitempty"`
	Notes string `json:"notas,omitempty"`
}

type createBookingRequest struct {
	PractitionerID string         `json:"psicologoId"`
	Date           string         `json:"fecha"`
	Time           string         `json:"hora"`
	Timezone       string         `json:"timezone,omitempty"`
	Patient        patientPayload `json:"paciente"`
}

type cancelBookingRequest struct {
	Reason string `json:"motivo,omitempty"`
}

type createBookingResponse struct {
	Booking      booking.Booking      `json:"reserva"`
	Confirmation booking.Confirmation `json:"confirmacion"`
}

// practitionerSummary is the public listing entry: the profile plus the
// soonest bookable slot, if any within the search horizon.
type practitionerSummary struct {
	directory.Practitioner
	NextAvailable *agenda.NextSlot `json:"proximaDisponibilidad"`
}

type createPractitionerRequest struct {
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
	Timezone    string   `json:"timezone,omitempty"`
}

type updatePractitionerRequest struct {
	FirstName   *string   `json:"nombre"`
	LastName    *string   `json:"apellido"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"telefono"`
	Specialties *[]string `json:"especialidades"`
	Description *string   `json:"descripcion"`
	Experience  *string   `json:"experiencia"`
	Education   *string   `json:"educacion"`
	BasePrice   *float64  `json:"precioBase"`
	Photo       *string   `json:"foto"`
	Timezone    *string   `json:"timezone"`
	Active      *bool     `json:"activo"`
}

type slotPayload struct {
	Time     string  `json:"hora"`
	Duration int     `json:"duracion,omitempty"`
	Price    float64 `json:"precio,omitempty"`
}

type createTemplateRequest struct {
	PractitionerID string        `json:"psicologoId"`
	Weekday        string        `json:"diaSemana"`
	Slots          []slotPayload `json:"slots"`
	Timezone       string        `json:"timezone,omitempty"`
}

type updateTemplateRequest struct {
	Slots    *[]slotPayload `json:"slots"`
	Timezone *string        `json:"timezone"`
}

type createSpecialtyRequest struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
}

type updateSpecialtyRequest struct {
	Name        *string `json:"nombre"`
	Description *string `json:"descripcion"`
}
