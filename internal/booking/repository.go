package booking

import (
	"context"
	"errors"

	"github.com/psicoapp/agenda-service/internal/apperr"
	"github.com/psicoapp/agenda-service/internal/store"
)

type Repository struct {
	st store.Store
}

func NewRepository(st store.Store) *Repository {
	return &Repository{st: st}
}

func (r *Repository) Create(ctx context.Context, b Booking) (*Booking, error) {
	rec, err := store.Encode(b)
	if err != nil {
		return nil, apperr.Internal("encode booking", err)
	}
	created, err := r.st.Create(ctx, Collection, rec)
	if err != nil {
		return nil, apperr.Internal("create booking", err)
	}
	var out Booking
	if err := store.Decode(created, &out); err != nil {
		return nil, apperr.Internal("decode booking", err)
	}
	return &out, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Booking, error) {
	rec, err := r.st.FindByID(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "booking not found")
		}
		return nil, apperr.Internal("get booking", err)
	}
	var b Booking
	if err := store.Decode(rec, &b); err != nil {
		return nil, apperr.Internal("decode booking", err)
	}
	return &b, nil
}

func (r *Repository) Patch(ctx context.Context, id string, patch store.Record) (*Booking, error) {
	rec, err := r.st.Update(ctx, Collection, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "booking not found")
		}
		return nil, apperr.Internal("update booking", err)
	}
	var b Booking
	if err := store.Decode(rec, &b); err != nil {
		return nil, apperr.Internal("decode booking", err)
	}
	return &b, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]Booking, error) {
	recs, err := r.st.FindAll(ctx, Collection)
	if err != nil {
		return nil, apperr.Internal("list bookings", err)
	}
	out, err := store.DecodeAll[Booking](recs)
	if err != nil {
		return nil, apperr.Internal("decode bookings", err)
	}
	return out, nil
}

func (r *Repository) ListByPractitioner(ctx context.Context, practitionerID string) ([]Booking, error) {
	recs, err := r.st.FindByQuery(ctx, Collection, map[string]string{"psicologoId": practitionerID})
	if err != nil {
		return nil, apperr.Internal("list bookings", err)
	}
	out, err := store.DecodeAll[Booking](recs)
	if err != nil {
		return nil, apperr.Internal("decode bookings", err)
	}
	return out, nil
}

// ActiveExists reports whether a non-cancelled booking occupies the slot
// tuple.
func (r *Repository) ActiveExists(ctx context.Context, practitionerID, date, timeOfDay string) (bool, error) {
	all, err := r.ListByPractitioner(ctx, practitionerID)
	if err != nil {
		return false, err
	}
	for _, b := range all {
		if b.Date == date && b.Time == timeOfDay && b.Active() {
			return true, nil
		}
	}
	return false, nil
}

// HasActive reports whether the practitioner holds any non-cancelled
// booking. Used by practitioner deletion.
func (r *Repository) HasActive(ctx context.Context, practitionerID string) (bool, error) {
	all, err := r.ListByPractitioner(ctx, practitionerID)
	if err != nil {
		return false, err
	}
	for _, b := range all {
		if b.Active() {
			return true, nil
		}
	}
	return false, nil
}
