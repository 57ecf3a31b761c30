package directory

import (
	"context"
	"errors"

	"github.com/psicoapp/agenda-service/internal/apperr"
	"github.com/psicoapp/agenda-service/internal/store"
)

// Repository maps the directory collections onto typed models. Store
// failures come back as apperr.KindInternal so callers never see storage
// detail.
type Repository struct {
	st store.Store
}

func NewRepository(st store.Store) *Repository {
	return &Repository{st: st}
}

// -- Practitioners --

func (r *Repository) ListPractitioners(ctx context.Context) ([]Practitioner, error) {
	recs, err := r.st.FindAll(ctx, CollectionPractitioners)
	if err != nil {
		return nil, apperr.Internal("list practitioners", err)
	}
	out, err := store.DecodeAll[Practitioner](recs)
	if err != nil {
		return nil, apperr.Internal("decode practitioners", err)
	}
	return out, nil
}

func (r *Repository) GetPractitioner(ctx context.Context, id string) (*Practitioner, error) {
	rec, err := r.st.FindByID(ctx, CollectionPractitioners, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "practitioner not found")
		}
		return nil, apperr.Internal("get practitioner", err)
	}
	var p Practitioner
	if err := store.Decode(rec, &p); err != nil {
		return nil, apperr.Internal("decode practitioner", err)
	}
	return &p, nil
}

func (r *Repository) CreatePractitioner(ctx context.Context, p Practitioner) (*Practitioner, error) {
	rec, err := store.Encode(p)
	if err != nil {
		return nil, apperr.Internal("encode practitioner", err)
	}
	created, err := r.st.Create(ctx, CollectionPractitioners, rec)
	if err != nil {
		return nil, apperr.Internal("create practitioner", err)
	}
	var out Practitioner
	if err := store.Decode(created, &out); err != nil {
		return nil, apperr.Internal("decode practitioner", err)
	}
	return &out, nil
}

func (r *Repository) PatchPractitioner(ctx context.Context, id string, patch store.Record) (*Practitioner, error) {
	rec, err := r.st.Update(ctx, CollectionPractitioners, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "practitioner not found")
		}
		return nil, apperr.Internal("update practitioner", err)
	}
	var out Practitioner
	if err := store.Decode(rec, &out); err != nil {
		return nil, apperr.Internal("decode practitioner", err)
	}
	return &out, nil
}

func (r *Repository) DeletePractitioner(ctx context.Context, id string) (bool, error) {
	ok, err := r.st.Delete(ctx, CollectionPractitioners, id)
	if err != nil {
		return false, apperr.Internal("delete practitioner", err)
	}
	return ok, nil
}

// -- Specialties --

func (r *Repository) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	recs, err := r.st.FindAll(ctx, CollectionSpecialties)
	if err != nil {
		return nil, apperr.Internal("list specialties", err)
	}
	out, err := store.DecodeAll[Specialty](recs)
	if err != nil {
		return nil, apperr.Internal("decode specialties", err)
	}
	return out, nil
}

func (r *Repository) CreateSpecialty(ctx context.Context, s Specialty) (*Specialty, error) {
	rec, err := store.Encode(s)
	if err != nil {
		return nil, apperr.Internal("encode specialty", err)
	}
	created, err := r.st.Create(ctx, CollectionSpecialties, rec)
	if err != nil {
		return nil, apperr.Internal("create specialty", err)
	}
	var out Specialty
	if err := store.Decode(created, &out); err != nil {
		return nil, apperr.Internal("decode specialty", err)
	}
	return &out, nil
}

func (r *Repository) PatchSpecialty(ctx context.Context, id string, patch store.Record) (*Specialty, error) {
	rec, err := r.st.Update(ctx, CollectionSpecialties, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "specialty not found")
		}
		return nil, apperr.Internal("update specialty", err)
	}
	var out Specialty
	if err := store.Decode(rec, &out); err != nil {
		return nil, apperr.Internal("decode specialty", err)
	}
	return &out, nil
}

func (r *Repository) DeleteSpecialty(ctx context.Context, id string) (bool, error) {
	ok, err := r.st.Delete(ctx, CollectionSpecialties, id)
	if err != nil {
		return false, apperr.Internal("delete specialty", err)
	}
	return ok, nil
}

// -- Availability templates --

func (r *Repository) ListTemplates(ctx context.Context, practitionerID string) ([]AvailabilityTemplate, error) {
	recs, err := r.st.FindByQuery(ctx, CollectionTemplates, map[string]string{"psicologoId": practitionerID})
	if err != nil {
		return nil, apperr.Internal("list templates", err)
	}
	out, err := store.DecodeAll[AvailabilityTemplate](recs)
	if err != nil {
		return nil, apperr.Internal("decode templates", err)
	}
	return out, nil
}

func (r *Repository) GetTemplate(ctx context.Context, id string) (*AvailabilityTemplate, error) {
	rec, err := r.st.FindByID(ctx, CollectionTemplates, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "availability template not found")
		}
		return nil, apperr.Internal("get template", err)
	}
	var t AvailabilityTemplate
	if err := store.Decode(rec, &t); err != nil {
		return nil, apperr.Internal("decode template", err)
	}
	return &t, nil
}

func (r *Repository) CreateTemplate(ctx context.Context, t AvailabilityTemplate) (*AvailabilityTemplate, error) {
	rec, err := store.Encode(t)
	if err != nil {
		return nil, apperr.Internal("encode template", err)
	}
	created, err := r.st.Create(ctx, CollectionTemplates, rec)
	if err != nil {
		return nil, apperr.Internal("create template", err)
	}
	var out AvailabilityTemplate
	if err := store.Decode(created, &out); err != nil {
		return nil, apperr.Internal("decode template", err)
	}
	return &out, nil
}

func (r *Repository) PatchTemplate(ctx context.Context, id string, patch store.Record) (*AvailabilityTemplate, error) {
	rec, err := r.st.Update(ctx, CollectionTemplates, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "availability template not found")
		}
		return nil, apperr.Internal("update template", err)
	}
	var out AvailabilityTemplate
	if err := store.Decode(rec, &out); err != nil {
		return nil, apperr.Internal("decode template", err)
	}
	return &out, nil
}

func (r *Repository) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	ok, err := r.st.Delete(ctx, CollectionTemplates, id)
	if err != nil {
		return false, apperr.Internal("delete template", err)
	}
	return ok, nil
}
