// Command simulate hammers a running api-server with concurrent booking
// traffic. It discovers bookable slots through the public agenda API,
// then fires overlapping requests at the same slots so the slot lock and
// the conflict path get exercised, and prints latency and outcome stats.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	BookRatio   float64
	CancelRatio float64
	ReadRatio   float64
	SlotLimit   int
}

type slotRef struct {
	PractitionerID string
	Date           string
	Time           string
}

type DataPool struct {
	Practitioners []string
	Slots         []slotRef
	mu            sync.RWMutex
	bookings      []string
}

func (dp *DataPool) AddBooking(id string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.bookings = append(dp.bookings, id)
}

func (dp *DataPool) GetRandomBooking(rng *rand.Rand) (string, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.bookings) == 0 {
		return "", false
	}
	return dp.bookings[rng.Intn(len(dp.bookings))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Booking  OperationMetrics
	Cancel   OperationMetrics
	ReadByID OperationMetrics
	Agenda   OperationMetrics
	List     OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d book=%.2f cancel=%.2f read=%.2f",
		cfg.Duration, cfg.Workers, cfg.BookRatio, cfg.CancelRatio, cfg.ReadRatio)

	client := &http.Client{Timeout: 10 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dataPool, err := loadDataPool(ctx, client, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	log.Printf("loaded: %d practitioners, %d bookable slots",
		len(dataPool.Practitioners), len(dataPool.Slots))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: client,
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:  getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:    getDuration("SIM_DURATION", 30*time.Second),
		Workers:     getInt("SIM_WORKERS", 10),
		BookRatio:   getFloat("SIM_BOOK_RATIO", 0.5),
		CancelRatio: getFloat("SIM_CANCEL_RATIO", 0.1),
		ReadRatio:   getFloat("SIM_READ_RATIO", 0.4),
		SlotLimit:   getInt("SIM_SLOT_LIMIT", 200),
	}

	// Normalize ratios
	total := cfg.BookRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

// loadDataPool walks the public API: the practitioner listing, then each
// practitioner's agenda, collecting open slots until the limit.
func loadDataPool(ctx context.Context, client *http.Client, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	var practitioners []struct {
		ID string `json:"id"`
	}
	if err := getJSON(ctx, client, cfg.APIBaseURL+"/api/psicologos", &practitioners); err != nil {
		return nil, fmt.Errorf("load practitioners: %w", err)
	}

	for _, p := range practitioners {
		dataPool.Practitioners = append(dataPool.Practitioners, p.ID)

		var week struct {
			Agenda []struct {
				Date  string `json:"fecha"`
				Slots []struct {
					Time      string `json:"hora"`
					Available bool   `json:"disponible"`
				} `json:"slots"`
			} `json:"agenda"`
		}
		if err := getJSON(ctx, client, cfg.APIBaseURL+"/api/agenda/"+url.PathEscape(p.ID), &week); err != nil {
			return nil, fmt.Errorf("load agenda for %s: %w", p.ID, err)
		}

		for _, day := range week.Agenda {
			for _, slot := range day.Slots {
				if !slot.Available {
					continue
				}
				dataPool.Slots = append(dataPool.Slots, slotRef{
					PractitionerID: p.ID,
					Date:           day.Date,
					Time:           slot.Time,
				})
				if len(dataPool.Slots) >= cfg.SlotLimit {
					return dataPool, nil
				}
			}
		}
	}

	if len(dataPool.Slots) == 0 {
		return nil, fmt.Errorf("no bookable slots found, seed data first")
	}

	return dataPool, nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", rawURL, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			if r < s.config.BookRatio {
				s.doBooking(ctx, rng)
			} else if r < s.config.BookRatio+s.config.CancelRatio {
				s.doCancel(ctx, rng)
			} else {
				readOp := rng.Intn(3)
				switch readOp {
				case 0:
					s.doReadByID(ctx, rng)
				case 1:
					s.doAgenda(ctx, rng)
				case 2:
					s.doList(ctx, rng)
				}
			}
		}
	}
}

// doBooking picks from a small slot pool on purpose: many workers landing
// on the same tuple is the contention being measured.
func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	if len(s.pool.Slots) == 0 {
		return
	}

	slot := s.pool.Slots[rng.Intn(len(s.pool.Slots))]
	n := rng.Intn(1 << 30)

	start := time.Now()

	reqBody := map[string]any{
		"psicologoId": slot.PractitionerID,
		"fecha":       slot.Date,
		"hora":        slot.Time,
		"paciente": map[string]string{
			"nombre": fmt.Sprintf("Paciente Simulado %d", n),
			"email":  fmt.Sprintf("sim-%d@example.com", n),
		},
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+"/api/reservas", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false

	if err == nil {
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			success = true
			var created struct {
				Booking struct {
					ID string `json:"id"`
				} `json:"reserva"`
			}
			bodyBytes, _ := io.ReadAll(resp.Body)
			if len(bodyBytes) > 0 {
				json.Unmarshal(bodyBytes, &created)
				if created.Booking.ID != "" {
					s.pool.AddBooking(created.Booking.ID)
				}
			}
		} else if resp.StatusCode == http.StatusConflict {
			conflict = true
		}
	}

	s.metrics.Booking.Record(latency, success, conflict)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.GetRandomBooking(rng)
	if !ok {
		return
	}

	start := time.Now()

	body, _ := json.Marshal(map[string]string{"motivo": "Cancelada por el simulador"})
	req, _ := http.NewRequestWithContext(ctx, "PUT",
		fmt.Sprintf("%s/api/reservas/%s/cancelar", s.config.APIBaseURL, id), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false

	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			success = true
		} else if resp.StatusCode == http.StatusBadRequest {
			// already cancelled or inside the notice window
			conflict = true
		}
	}

	s.metrics.Cancel.Record(latency, success, conflict)
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.GetRandomBooking(rng)
	if !ok {
		return
	}

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/api/reservas/%s", s.config.APIBaseURL, id), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.ReadByID.Record(latency, success, false)
}

func (s *Simulator) doAgenda(ctx context.Context, rng *rand.Rand) {
	if len(s.pool.Practitioners) == 0 {
		return
	}

	pid := s.pool.Practitioners[rng.Intn(len(s.pool.Practitioners))]

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/api/agenda/%s", s.config.APIBaseURL, url.PathEscape(pid)), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Agenda.Record(latency, success, false)
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	if len(s.pool.Practitioners) == 0 {
		return
	}

	pid := s.pool.Practitioners[rng.Intn(len(s.pool.Practitioners))]

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/api/reservas?psicologoId=%s", s.config.APIBaseURL, url.QueryEscape(pid)), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.List.Record(latency, success, false)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
	printOperationReport("Agenda", &s.metrics.Agenda)
	printOperationReport("List by Practitioner", &s.metrics.List)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	errors := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if errors > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errors, float64(errors)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
