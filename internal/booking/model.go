// Package booking owns the booking lifecycle: availability checks, the
// lock-guarded create, and the cancellation policy.
package booking

import "github.com/psicoapp/agenda-service/internal/directory"

const Collection = "reservas"

type Status string

const (
	StatusConfirmed Status = "confirmada"
	StatusCancelled Status = "cancelada"
)

// Patient is a snapshot captured at booking time, not a live reference.
type Patient struct {
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Phone string `json:"telefono,omitempty"`
	Notes string `json:"notas,omitempty"`
}

type Booking struct {
	ID             string  `json:"id"`
	PractitionerID string  `json:"psicologoId"`
	Date           string  `json:"fecha"` // YYYY-MM-DD
	Time           string  `json:"hora"`  // HH:mm, must match a template slot
	Patient        Patient `json:"paciente"`
	Timezone       string  `json:"timezone"` // requester's zone
	Status         Status  `json:"estado"`
	Price          float64 `json:"precio"`
	BookedAt       string  `json:"fechaReserva"`
	CancelledAt    string  `json:"fechaCancelacion,omitempty"`
	CancelReason   string  `json:"motivoCancelacion,omitempty"`
	CreatedAt      string  `json:"createdAt,omitempty"`
	UpdatedAt      string  `json:"updatedAt,omitempty"`
}

// Active reports whether the booking still occupies its slot tuple.
func (b *Booking) Active() bool { return b.Status != StatusCancelled }

// Detail is a booking hydrated with its practitioner's public card.
type Detail struct {
	Booking
	Practitioner *directory.Card `json:"psicologo"`
}

// Availability is the engine's predicate result, exposed with both legs so
// the disponibilidad endpoint can report why a tuple is closed.
type Availability struct {
	Available   bool `json:"disponible"`
	Booked      bool `json:"estaReservado"`
	HasTemplate bool `json:"tieneHorario"`
}

// Confirmation is the human-readable receipt, localized to the requester's
// zone.
type Confirmation struct {
	Message      string `json:"mensaje"`
	Practitioner string `json:"psicologo"`
	Date         string `json:"fecha"` // DD/MM/YYYY
	Time         string `json:"hora"`  // requester-local HH:mm
	Timezone     string `json:"timezone"`
	FullDate     string `json:"fechaCompleta"`
}
