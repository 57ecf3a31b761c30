package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/directory"
)

func adminListPractitionersHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitioners, err := dir.ListPractitioners(r.Context())
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, practitioners)
	}
}

func adminCreatePractitionerHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPractitionerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		p, err := dir.CreatePractitioner(r.Context(), directory.CreatePractitionerInput{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Phone:       req.Phone,
			Specialties: req.Specialties,
			Description: req.Description,
			Experience:  req.Experience,
			Education:   req.Education,
			BasePrice:   req.BasePrice,
			Photo:       req.Photo,
			Timezone:    req.Timezone,
		})
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func adminUpdatePractitionerHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePractitionerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		p, err := dir.UpdatePractitioner(r.Context(), chi.URLParam(r, "id"), directory.UpdatePractitionerInput{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Phone:       req.Phone,
			Specialties: req.Specialties,
			Description: req.Description,
			Experience:  req.Experience,
			Education:   req.Education,
			BasePrice:   req.BasePrice,
			Photo:       req.Photo,
			Timezone:    req.Timezone,
			Active:      req.Active,
		})
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func adminDeletePractitionerHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := dir.DeletePractitioner(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeAppError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func adminListTemplatesHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := dir.ListTemplates(r.Context(), chi.URLParam(r, "psicologoId"))
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, templates)
	}
}

func adminCreateTemplateHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		t, err := dir.CreateTemplate(r.Context(), directory.CreateTemplateInput{
			PractitionerID: req.PractitionerID,
			Weekday:        req.Weekday,
			Slots:          slotInputs(req.Slots),
			Timezone:       req.Timezone,
		})
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func adminUpdateTemplateHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateTemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		in := directory.UpdateTemplateInput{Timezone: req.Timezone}
		if req.Slots != nil {
			slots := slotInputs(*req.Slots)
			in.Slots = &slots
		}

		t, err := dir.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func adminDeleteTemplateHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := dir.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeAppError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func adminListSpecialtiesHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specialties, err := dir.ListSpecialties(r.Context())
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, specialties)
	}
}

func adminCreateSpecialtyHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSpecialtyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		sp, err := dir.CreateSpecialty(r.Context(), req.Name, req.Description)
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, sp)
	}
}

func adminUpdateSpecialtyHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateSpecialtyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		sp, err := dir.UpdateSpecialty(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, sp)
	}
}

func adminDeleteSpecialtyHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := dir.DeleteSpecialty(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeAppError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func slotInputs(payloads []slotPayload) []directory.SlotInput {
	out := make([]directory.SlotInput, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, directory.SlotInput{Time: p.Time, Duration: p.Duration, Price: p.Price})
	}
	return out
}
