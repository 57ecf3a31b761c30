package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psicoapp/agenda-service/internal/agenda"
	"github.com/psicoapp/agenda-service/internal/booking"
	"github.com/psicoapp/agenda-service/internal/clock"
	"github.com/psicoapp/agenda-service/internal/directory"
	"github.com/psicoapp/agenda-service/internal/lock"
	"github.com/psicoapp/agenda-service/internal/store"
)

const zoneBA = "America/Argentina/Buenos_Aires"

type env struct {
	handler http.Handler
	dir     *directory.Service
	clk     *clock.Fake
}

// Sunday 2025-06-01 12:00 in Buenos Aires (UTC-3).
func newEnv(t *testing.T) *env {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(clk)
	log := zerolog.Nop()

	dirRepo := directory.NewRepository(st)
	bookRepo := booking.NewRepository(st)
	bookingSvc := booking.NewService(bookRepo, dirRepo, lock.NewLocalLocker(), clk, 24*time.Hour, zoneBA, log)
	agendaSvc := agenda.NewService(dirRepo, bookingSvc, clk, zoneBA, log)
	dirSvc := directory.NewService(dirRepo, bookingSvc, zoneBA, log)

	handler := NewRouter(RouterConfig{
		Directory: dirSvc,
		Agenda:    agendaSvc,
		Bookings:  bookingSvc,
		Health:    NewHealthHandler(st, nil, nil, "test", "test"),
		Log:       log,
	})
	return &env{handler: handler, dir: dirSvc, clk: clk}
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// createPractitioner seeds one practitioner with a Monday template via
// the admin endpoints.
func (e *env) createPractitioner(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, "POST", "/api/admin/psicologos", map[string]any{
		"nombre":         "Carlos",
		"apellido":       "Pérez",
		"email":          email,
		"especialidades": []string{"Ansiedad"},
		"precioBase":     8000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p struct {
		ID string `json:"id"`
	}
	decode(t, rec, &p)

	rec = e.do(t, "POST", "/api/admin/horarios", map[string]any{
		"psicologoId": p.ID,
		"diaSemana":   "monday",
		"slots":       []map[string]any{{"hora": "09:00"}, {"hora": "10:00"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return p.ID
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, "GET", "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, "GET", "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var ready ReadinessResponse
	decode(t, rec, &ready)
	assert.Equal(t, "ok", ready.Status)
	assert.Equal(t, "ok", ready.Dependencies["store"])
	assert.NotContains(t, ready.Dependencies, "postgres")
}

func TestRequestIDHeader(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, "GET", "/health/live", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPractitionerEndpoints(t *testing.T) {
	e := newEnv(t)
	id := e.createPractitioner(t, "carlos@example.com")

	t.Run("list annotates next availability", func(t *testing.T) {
		rec := e.do(t, "GET", "/api/psicologos", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []struct {
			ID   string `json:"id"`
			Next *struct {
				Date string `json:"fecha"`
				Time string `json:"hora"`
			} `json:"proximaDisponibilidad"`
		}
		decode(t, rec, &list)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0].ID)
		require.NotNil(t, list[0].Next)
		assert.Equal(t, "2025-06-02", list[0].Next.Date)
		assert.Equal(t, "09:00", list[0].Next.Time)
	})

	t.Run("filter by especialidad", func(t *testing.T) {
		rec := e.do(t, "GET", "/api/psicologos?especialidad=ansiedad", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []json.RawMessage
		decode(t, rec, &list)
		assert.Len(t, list, 1)

		rec = e.do(t, "GET", "/api/psicologos?especialidad=trauma", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &list)
		assert.Empty(t, list)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := e.do(t, "GET", "/api/psicologos/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = e.do(t, "GET", "/api/psicologos/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("specialties list", func(t *testing.T) {
		rec := e.do(t, "GET", "/api/psicologos/especialidades/list", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("inactive practitioners stay off the public list", func(t *testing.T) {
		rec := e.do(t, "PUT", "/api/admin/psicologos/"+id, map[string]any{
			"activo": false,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = e.do(t, "GET", "/api/psicologos", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []json.RawMessage
		decode(t, rec, &list)
		assert.Empty(t, list)

		// still reachable by id and through the admin listing
		rec = e.do(t, "GET", "/api/psicologos/"+id, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = e.do(t, "GET", "/api/admin/psicologos", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &list)
		assert.Len(t, list, 1)

		rec = e.do(t, "PUT", "/api/admin/psicologos/"+id, map[string]any{
			"activo": true,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAgendaEndpoint(t *testing.T) {
	e := newEnv(t)
	id := e.createPractitioner(t, "carlos@example.com")

	rec := e.do(t, "GET", "/api/agenda/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var week struct {
		PractitionerID string `json:"psicologoId"`
		Timezone       string `json:"timezone"`
		Agenda         []struct {
			Date  string `json:"fecha"`
			Slots []struct {
				Time      string `json:"hora"`
				Available bool   `json:"disponible"`
			} `json:"slots"`
		} `json:"agenda"`
	}
	decode(t, rec, &week)
	assert.Equal(t, id, week.PractitionerID)
	assert.Equal(t, zoneBA, week.Timezone)
	require.Len(t, week.Agenda, 7)

	monday := week.Agenda[1]
	assert.Equal(t, "2025-06-02", monday.Date)
	require.Len(t, monday.Slots, 2)
	assert.True(t, monday.Slots[0].Available)

	t.Run("bad timezone is 400", func(t *testing.T) {
		rec := e.do(t, "GET", "/api/agenda/"+id+"?timezone=Mars%2FOlympus", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookingFlow(t *testing.T) {
	e := newEnv(t)
	id := e.createPractitioner(t, "carlos@example.com")

	payload := map[string]any{
		"psicologoId": id,
		"fecha":       "2025-06-02",
		"hora":        "09:00",
		"paciente":    map[string]string{"nombre": "Ana López", "email": "ana@example.com"},
	}

	var bookingID string

	t.Run("create returns booking and confirmation", func(t *testing.T) {
		rec := e.do(t, "POST", "/api/reservas", payload)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Booking struct {
				ID     string `json:"id"`
				Status string `json:"estado"`
			} `json:"reserva"`
			Confirmation struct {
				Message string `json:"mensaje"`
				Date    string `json:"fecha"`
			} `json:"confirmacion"`
		}
		decode(t, rec, &resp)
		require.NotEmpty(t, resp.Booking.ID)
		assert.Equal(t, "confirmada", resp.Booking.Status)
		assert.Equal(t, "¡Tu sesión quedó agendada!", resp.Confirmation.Message)
		assert.Equal(t, "02/06/2025", resp.Confirmation.Date)
		bookingID = resp.Booking.ID
	})

	t.Run("same tuple again is 409", func(t *testing.T) {
		rec := e.do(t, "POST", "/api/reservas", payload)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("slot now unavailable", func(t *testing.T) {
		rec := e.do(t, "GET", "/api/agenda/"+id+"/disponibilidad?fecha=2025-06-02&hora=09:00", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var avail struct {
			Available bool `json:"disponible"`
			Booked    bool `json:"estaReservado"`
		}
		decode(t, rec, &avail)
		assert.False(t, avail.Available)
		assert.True(t, avail.Booked)
	})

	t.Run("get and list", func(t *testing.T) {
		rec := e.do(t, "GET", "/api/reservas/"+bookingID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var detail struct {
			Practitioner *struct {
				FirstName string `json:"nombre"`
			} `json:"psicologo"`
		}
		decode(t, rec, &detail)
		require.NotNil(t, detail.Practitioner)
		assert.Equal(t, "Carlos", detail.Practitioner.FirstName)

		rec = e.do(t, "GET", "/api/reservas?email=ana@example.com", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []json.RawMessage
		decode(t, rec, &list)
		assert.Len(t, list, 1)
	})

	t.Run("cancel", func(t *testing.T) {
		rec := e.do(t, "PUT", fmt.Sprintf("/api/reservas/%s/cancelar", bookingID), map[string]string{"motivo": "viaje"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var b struct {
			Status string `json:"estado"`
			Reason string `json:"motivoCancelacion"`
		}
		decode(t, rec, &b)
		assert.Equal(t, "cancelada", b.Status)
		assert.Equal(t, "viaje", b.Reason)

		rec = e.do(t, "PUT", fmt.Sprintf("/api/reservas/%s/cancelar", bookingID), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "second cancel rejected")
	})

	t.Run("bad body is 400", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/reservas", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		e.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCancelInsideNoticeWindowIs400(t *testing.T) {
	e := newEnv(t)
	id := e.createPractitioner(t, "carlos@example.com")

	rec := e.do(t, "POST", "/api/reservas", map[string]any{
		"psicologoId": id,
		"fecha":       "2025-06-02",
		"hora":        "09:00",
		"paciente":    map[string]string{"nombre": "Ana", "email": "ana@example.com"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Booking struct {
			ID string `json:"id"`
		} `json:"reserva"`
	}
	decode(t, rec, &resp)

	// Less than 24h before the Monday 09:00 slot
	e.clk.Set(time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC))

	rec = e.do(t, "PUT", "/api/reservas/"+resp.Booking.ID+"/cancelar", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Contains(t, body.Error, "notice")
}

func TestAdminEndpoints(t *testing.T) {
	e := newEnv(t)
	id := e.createPractitioner(t, "carlos@example.com")

	t.Run("duplicate email is 409", func(t *testing.T) {
		rec := e.do(t, "POST", "/api/admin/psicologos", map[string]any{
			"nombre":         "Otra",
			"apellido":       "Persona",
			"email":          "carlos@example.com",
			"especialidades": []string{"Trauma"},
			"precioBase":     5000,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid input is 400", func(t *testing.T) {
		rec := e.do(t, "POST", "/api/admin/psicologos", map[string]any{"nombre": "Solo"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update practitioner", func(t *testing.T) {
		rec := e.do(t, "PUT", "/api/admin/psicologos/"+id, map[string]any{"precioBase": 9500})
		require.Equal(t, http.StatusOK, rec.Code)

		var p struct {
			BasePrice float64 `json:"precioBase"`
		}
		decode(t, rec, &p)
		assert.Equal(t, 9500.0, p.BasePrice)
	})

	t.Run("template weekday conflict is 409", func(t *testing.T) {
		rec := e.do(t, "POST", "/api/admin/horarios", map[string]any{
			"psicologoId": id,
			"diaSemana":   "monday",
			"slots":       []map[string]any{{"hora": "15:00"}},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("list templates", func(t *testing.T) {
		rec := e.do(t, "GET", "/api/admin/horarios/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var templates []struct {
			Weekday string `json:"diaSemana"`
		}
		decode(t, rec, &templates)
		require.Len(t, templates, 1)
		assert.Equal(t, "monday", templates[0].Weekday)
	})

	t.Run("specialty crud", func(t *testing.T) {
		rec := e.do(t, "POST", "/api/admin/especialidades", map[string]string{"nombre": "Duelos"})
		require.Equal(t, http.StatusCreated, rec.Code)

		var sp struct {
			ID string `json:"id"`
		}
		decode(t, rec, &sp)

		rec = e.do(t, "PUT", "/api/admin/especialidades/"+sp.ID, map[string]string{"descripcion": "Acompañamiento"})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = e.do(t, "DELETE", "/api/admin/especialidades/"+sp.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("delete practitioner blocked then allowed", func(t *testing.T) {
		rec := e.do(t, "POST", "/api/reservas", map[string]any{
			"psicologoId": id,
			"fecha":       "2025-06-09",
			"hora":        "09:00",
			"paciente":    map[string]string{"nombre": "Ana", "email": "ana@example.com"},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Booking struct {
				ID string `json:"id"`
			} `json:"reserva"`
		}
		decode(t, rec, &resp)

		rec = e.do(t, "DELETE", "/api/admin/psicologos/"+id, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = e.do(t, "PUT", "/api/reservas/"+resp.Booking.ID+"/cancelar", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = e.do(t, "DELETE", "/api/admin/psicologos/"+id, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
