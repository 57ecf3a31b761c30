package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/agenda"
	"github.com/psicoapp/agenda-service/internal/booking"
	"github.com/psicoapp/agenda-service/internal/directory"
)

func listPractitionersHandler(dir *directory.Service, ag *agenda.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specialty := r.URL.Query().Get("especialidad")
		onlyAvailable := strings.EqualFold(r.URL.Query().Get("disponible"), "true")

		var (
			practitioners []directory.Practitioner
			err           error
		)
		if specialty != "" {
			practitioners, err = dir.ListPractitionersBySpecialty(r.Context(), specialty)
		} else {
			practitioners, err = dir.ListPractitioners(r.Context())
		}
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}

		out := make([]practitionerSummary, 0, len(practitioners))
		for _, p := range practitioners {
			if !p.Active {
				continue
			}
			next, err := ag.FindNext(r.Context(), p.ID)
			if err != nil {
				writeAppError(w, r, log, err)
				return
			}
			if onlyAvailable && next == nil {
				continue
			}
			out = append(out, practitionerSummary{Practitioner: p, NextAvailable: next})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getPractitionerHandler(dir *directory.Service, ag *agenda.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := dir.GetPractitioner(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}

		next, err := ag.FindNext(r.Context(), p.ID)
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, practitionerSummary{Practitioner: *p, NextAvailable: next})
	}
}

func listSpecialtiesHandler(dir *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specialties, err := dir.ListSpecialties(r.Context())
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, specialties)
	}
}

func getAgendaHandler(ag *agenda.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		week, err := ag.GetAgenda(
			r.Context(),
			chi.URLParam(r, "psicologoId"),
			r.URL.Query().Get("fecha"),
			r.URL.Query().Get("timezone"),
		)
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, week)
	}
}

func checkAvailabilityHandler(svc *booking.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avail, err := svc.CheckAvailability(
			r.Context(),
			chi.URLParam(r, "psicologoId"),
			r.URL.Query().Get("fecha"),
			r.URL.Query().Get("hora"),
		)
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, avail)
	}
}

func createBookingHandler(svc *booking.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "could not parse JSON body")
			return
		}

		b, conf, err := svc.Create(r.Context(), booking.CreateInput{
			PractitionerID: req.PractitionerID,
			Date:           req.Date,
			Time:           req.Time,
			Timezone:       req.Timezone,
			Patient: booking.Patient{
				Name:  req.Patient.Name,
				Email: req.Patient.Email,
				Phone: req.Patient.Phone,
				Notes: req.Patient.Notes,
			},
		})
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, createBookingResponse{Booking: *b, Confirmation: *conf})
	}
}

func listBookingsHandler(svc *booking.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		details, err := svc.List(r.Context(), booking.Filters{
			PractitionerID: q.Get("psicologoId"),
			Email:          q.Get("email"),
			Status:         q.Get("estado"),
			Date:           q.Get("fecha"),
		})
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

func getBookingHandler(svc *booking.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func cancelBookingHandler(svc *booking.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelBookingRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "could not parse JSON body")
				return
			}
		}

		b, err := svc.Cancel(r.Context(), chi.URLParam(r, "id"), req.Reason)
		if err != nil {
			writeAppError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}
