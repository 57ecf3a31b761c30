package directory

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/apperr"
	"github.com/psicoapp/agenda-service/internal/store"
	"github.com/psicoapp/agenda-service/internal/timeutil"
)

// BookingLookup answers whether a practitioner still has non-cancelled
// bookings. Implemented by the booking service; kept as an interface here
// so the admin domain has no dependency on the engine.
type BookingLookup interface {
	HasActiveBookings(ctx context.Context, practitionerID string) (bool, error)
}

type Service struct {
	repo        *Repository
	bookings    BookingLookup
	defaultZone string
	log         zerolog.Logger
}

func NewService(repo *Repository, bookings BookingLookup, defaultZone string, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		bookings:    bookings,
		defaultZone: defaultZone,
		log:         log.With().Str("component", "directory").Logger(),
	}
}

// -- Practitioners --

type CreatePractitionerInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Specialties []string
	Description string
	Experience  string
	Education   string
	BasePrice   float64
	Photo       string
	Timezone    string
}

func (s *Service) CreatePractitioner(ctx context.Context, in CreatePractitionerInput) (*Practitioner, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "nombre, apellido and email are required")
	}
	if len(in.Specialties) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "at least one specialty is required")
	}
	if in.BasePrice <= 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "precioBase must be positive")
	}
	if in.Timezone != "" {
		if _, err := time.LoadLocation(in.Timezone); err != nil {
			return nil, apperr.Newf(apperr.KindInvalidInput, "unknown timezone %q", in.Timezone)
		}
	}

	if err := s.checkEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	p := Practitioner{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		Specialties: in.Specialties,
		Description: in.Description,
		Experience:  in.Experience,
		Education:   in.Education,
		BasePrice:   in.BasePrice,
		Photo:       in.Photo,
		Timezone:    in.Timezone,
		Active:      true,
	}
	if p.Photo == "" {
		p.Photo = DefaultPhoto
	}
	if p.Timezone == "" {
		p.Timezone = s.defaultZone
	}

	created, err := s.repo.CreatePractitioner(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("practitioner_id", created.ID).Str("email", created.Email).Msg("practitioner created")
	return created, nil
}

// UpdatePractitionerInput patches only the fields that are set.
type UpdatePractitionerInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Specialties *[]string
	Description *string
	Experience  *string
	Education   *string
	BasePrice   *float64
	Photo       *string
	Timezone    *string
	Active      *bool
}

func (s *Service) UpdatePractitioner(ctx context.Context, id string, in UpdatePractitionerInput) (*Practitioner, error) {
	current, err := s.repo.GetPractitioner(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != current.Email {
		if err := s.checkEmailFree(ctx, *in.Email, id); err != nil {
			return nil, err
		}
	}
	if in.Specialties != nil && len(*in.Specialties) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "at least one specialty is required")
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return nil, apperr.Newf(apperr.KindInvalidInput, "unknown timezone %q", *in.Timezone)
		}
	}

	patch := store.Record{}
	setStr := func(key string, v *string) {
		if v != nil {
			patch[key] = *v
		}
	}
	setStr("nombre", in.FirstName)
	setStr("apellido", in.LastName)
	setStr("email", in.Email)
	setStr("telefono", in.Phone)
	setStr("descripcion", in.Description)
	setStr("experiencia", in.Experience)
	setStr("educacion", in.Education)
	setStr("foto", in.Photo)
	setStr("timezone", in.Timezone)
	if in.Specialties != nil {
		patch["especialidades"] = *in.Specialties
	}
	if in.BasePrice != nil {
		if *in.BasePrice <= 0 {
			return nil, apperr.New(apperr.KindInvalidInput, "precioBase must be positive")
		}
		patch["precioBase"] = *in.BasePrice
	}
	if in.Active != nil {
		patch["activo"] = *in.Active
	}
	if len(patch) == 0 {
		return current, nil
	}

	return s.repo.PatchPractitioner(ctx, id, patch)
}

// DeletePractitioner refuses while non-cancelled bookings exist, then
// removes the practitioner and cascades its templates.
func (s *Service) DeletePractitioner(ctx context.Context, id string) error {
	if _, err := s.repo.GetPractitioner(ctx, id); err != nil {
		return err
	}

	active, err := s.bookings.HasActiveBookings(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return apperr.New(apperr.KindConflict, "practitioner has active bookings")
	}

	ok, err := s.repo.DeletePractitioner(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindNotFound, "practitioner not found")
	}

	templates, err := s.repo.ListTemplates(ctx, id)
	if err != nil {
		return err
	}
	for _, t := range templates {
		if _, err := s.repo.DeleteTemplate(ctx, t.ID); err != nil {
			return err
		}
	}
	s.log.Info().Str("practitioner_id", id).Int("templates_removed", len(templates)).Msg("practitioner deleted")
	return nil
}

func (s *Service) GetPractitioner(ctx context.Context, id string) (*Practitioner, error) {
	return s.repo.GetPractitioner(ctx, id)
}

func (s *Service) ListPractitioners(ctx context.Context) ([]Practitioner, error) {
	return s.repo.ListPractitioners(ctx)
}

// ListPractitionersBySpecialty filters by case-insensitive substring on
// any of the practitioner's specialty names.
func (s *Service) ListPractitionersBySpecialty(ctx context.Context, specialty string) ([]Practitioner, error) {
	all, err := s.repo.ListPractitioners(ctx)
	if err != nil {
		return nil, err
	}
	if specialty == "" {
		return all, nil
	}
	needle := strings.ToLower(specialty)
	out := make([]Practitioner, 0, len(all))
	for _, p := range all {
		for _, sp := range p.Specialties {
			if strings.Contains(strings.ToLower(sp), needle) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (s *Service) checkEmailFree(ctx context.Context, email, excludeID string) error {
	all, err := s.repo.ListPractitioners(ctx)
	if err != nil {
		return err
	}
	for _, p := range all {
		if p.ID != excludeID && strings.EqualFold(p.Email, email) {
			return apperr.New(apperr.KindConflict, "a practitioner with that email already exists")
		}
	}
	return nil
}

// -- Specialties --

func (s *Service) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	return s.repo.ListSpecialties(ctx)
}

func (s *Service) CreateSpecialty(ctx context.Context, name, description string) (*Specialty, error) {
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "nombre is required")
	}
	all, err := s.repo.ListSpecialties(ctx)
	if err != nil {
		return nil, err
	}
	for _, sp := range all {
		if strings.EqualFold(sp.Name, name) {
			return nil, apperr.New(apperr.KindConflict, "a specialty with that name already exists")
		}
	}
	return s.repo.CreateSpecialty(ctx, Specialty{Name: name, Description: description})
}

func (s *Service) UpdateSpecialty(ctx context.Context, id string, name, description *string) (*Specialty, error) {
	patch := store.Record{}
	if name != nil {
		if *name == "" {
			return nil, apperr.New(apperr.KindInvalidInput, "nombre is required")
		}
		all, err := s.repo.ListSpecialties(ctx)
		if err != nil {
			return nil, err
		}
		for _, sp := range all {
			if sp.ID != id && strings.EqualFold(sp.Name, *name) {
				return nil, apperr.New(apperr.KindConflict, "a specialty with that name already exists")
			}
		}
		patch["nombre"] = *name
	}
	if description != nil {
		patch["descripcion"] = *description
	}
	return s.repo.PatchSpecialty(ctx, id, patch)
}

func (s *Service) DeleteSpecialty(ctx context.Context, id string) error {
	ok, err := s.repo.DeleteSpecialty(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindNotFound, "specialty not found")
	}
	return nil
}

// EnsureDefaultSpecialties seeds the original catalogue when the
// collection is empty. Idempotent; run at startup.
func (s *Service) EnsureDefaultSpecialties(ctx context.Context) error {
	existing, err := s.repo.ListSpecialties(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	defaults := []Specialty{
		{Name: "Ansiedad", Description: "Tratamiento de trastornos de ansiedad"},
		{Name: "Depresión", Description: "Tratamiento de trastornos depresivos"},
		{Name: "Terapia de Pareja", Description: "Counseling y terapia para parejas"},
		{Name: "Terapia Familiar", Description: "Terapia sistémica familiar"},
		{Name: "Trauma", Description: "Tratamiento de PTSD y trauma"},
		{Name: "Adicciones", Description: "Tratamiento de adicciones"},
		{Name: "Trastornos Alimentarios", Description: "Tratamiento de TCA"},
		{Name: "Terapia Cognitivo Conductual", Description: "TCC"},
		{Name: "Psicología Infantil", Description: "Psicología para niños y adolescentes"},
		{Name: "Autoestima", Description: "Fortalecimiento de la autoestima"},
	}
	for _, sp := range defaults {
		if _, err := s.repo.CreateSpecialty(ctx, sp); err != nil {
			return err
		}
	}
	s.log.Info().Int("count", len(defaults)).Msg("default specialties seeded")
	return nil
}

// -- Availability templates --

type SlotInput struct {
	Time     string
	Duration int
	Price    float64
}

type CreateTemplateInput struct {
	PractitionerID string
	Weekday        string
	Slots          []SlotInput
	Timezone       string
}

func (s *Service) CreateTemplate(ctx context.Context, in CreateTemplateInput) (*AvailabilityTemplate, error) {
	if in.PractitionerID == "" || in.Weekday == "" || len(in.Slots) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "psicologoId, diaSemana and slots are required")
	}
	weekday := strings.ToLower(in.Weekday)
	if !timeutil.Weekdays[weekday] {
		return nil, apperr.Newf(apperr.KindInvalidInput, "invalid weekday %q", in.Weekday)
	}

	practitioner, err := s.repo.GetPractitioner(ctx, in.PractitionerID)
	if err != nil {
		return nil, err
	}

	slots, err := normalizeSlots(in.Slots, practitioner.BasePrice)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListTemplates(ctx, in.PractitionerID)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Weekday == weekday {
			return nil, apperr.New(apperr.KindConflict, "a template already exists for that weekday")
		}
	}

	zone := in.Timezone
	if zone == "" {
		zone = practitioner.Timezone
	}
	if zone == "" {
		zone = s.defaultZone
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return nil, apperr.Newf(apperr.KindInvalidInput, "unknown timezone %q", zone)
	}

	created, err := s.repo.CreateTemplate(ctx, AvailabilityTemplate{
		PractitionerID: in.PractitionerID,
		Weekday:        weekday,
		Slots:          slots,
		Timezone:       zone,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("practitioner_id", in.PractitionerID).
		Str("weekday", weekday).
		Int("slots", len(slots)).
		Msg("availability template created")
	return created, nil
}

type UpdateTemplateInput struct {
	Slots    *[]SlotInput
	Timezone *string
}

// UpdateTemplate replaces slots and/or the zone; the weekday and owner of
// a template are fixed at creation.
func (s *Service) UpdateTemplate(ctx context.Context, id string, in UpdateTemplateInput) (*AvailabilityTemplate, error) {
	current, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := store.Record{}
	if in.Slots != nil {
		practitioner, err := s.repo.GetPractitioner(ctx, current.PractitionerID)
		if err != nil {
			return nil, err
		}
		slots, err := normalizeSlots(*in.Slots, practitioner.BasePrice)
		if err != nil {
			return nil, err
		}
		patch["slots"] = slots
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return nil, apperr.Newf(apperr.KindInvalidInput, "unknown timezone %q", *in.Timezone)
		}
		patch["timezone"] = *in.Timezone
	}
	if len(patch) == 0 {
		return current, nil
	}
	return s.repo.PatchTemplate(ctx, id, patch)
}

func (s *Service) ListTemplates(ctx context.Context, practitionerID string) ([]AvailabilityTemplate, error) {
	return s.repo.ListTemplates(ctx, practitionerID)
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	ok, err := s.repo.DeleteTemplate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindNotFound, "availability template not found")
	}
	return nil
}

func normalizeSlots(in []SlotInput, basePrice float64) ([]TimeSlot, error) {
	slots := make([]TimeSlot, 0, len(in))
	for _, slot := range in {
		if !timeutil.ValidTime(slot.Time) {
			return nil, apperr.Newf(apperr.KindInvalidInput, "invalid slot time %q, want HH:mm", slot.Time)
		}
		duration := slot.Duration
		if duration <= 0 {
			duration = DefaultSlotDuration
		}
		price := slot.Price
		if price <= 0 {
			price = basePrice
		}
		slots = append(slots, TimeSlot{Time: slot.Time, Duration: duration, Price: price})
	}
	return slots, nil
}
