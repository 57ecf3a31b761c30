package agenda

import (
	"fmt"
	"time"

	"github.com/psicoapp/agenda-service/internal/apperr"
	"github.com/psicoapp/agenda-service/internal/timeutil"
)

// Projected is an instant rendered in a viewer's zone.
type Projected struct {
	Time     string // HH:mm viewer wall clock
	DateTime string // RFC3339 with the viewer's offset
}

// Project converts an instant to a viewer zone. Pure; zone math is
// delegated entirely to the IANA database via time.Location, never to
// offset arithmetic, so DST transitions behave.
func Project(instant time.Time, viewer *time.Location) Projected {
	local := instant.In(viewer)
	return Projected{
		Time:     local.Format(timeutil.TimeLayout),
		DateTime: local.Format(time.RFC3339),
	}
}

// LoadZone resolves an IANA zone name, surfacing bad viewer input as
// invalid input rather than an internal error.
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperr.Newf(apperr.KindInvalidInput, "unknown timezone %q", name)
	}
	return loc, nil
}

var spanishWeekdays = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatLong renders an instant as the product's long-form Spanish
// confirmation date, e.g. "lunes, 02 de junio de 2025 a las 09:00".
func FormatLong(t time.Time) string {
	return fmt.Sprintf("%s, %02d de %s de %d a las %s",
		spanishWeekdays[t.Weekday()],
		t.Day(),
		spanishMonths[t.Month()-1],
		t.Year(),
		t.Format(timeutil.TimeLayout),
	)
}
