// Package controlplane serves operational statistics under /admin.
package controlplane

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
)

// Counter reports how many items a component holds.
type Counter interface {
	Len() int
}

// Sources are the components whose sizes are reported. Nil entries are
// reported as zero.
type Sources struct {
	Workspaces Counter
	// RateLimited counts clients tracked by the rate limiter.
	RateLimited Counter
	APIKeys     Counter
}

type Server struct {
	router    *chi.Mux
	startTime time.Time
	sources   Sources
	now       func() time.Time
}

func NewServer(sources Sources) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		startTime: time.Now(),
		sources:   sources,
		now:       time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/stats", s.handleStats)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type StatsResponse struct {
	Uptime       string        `json:"uptime"`
	GoVersion    string        `json:"go_version"`
	NumGoroutine int           `json:"num_goroutine"`
	Memory       MemoryStats   `json:"memory"`
	Service      ServiceCounts `json:"service"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

type ServiceCounts struct {
	Workspaces         int `json:"workspaces"`
	RateLimitedClients int `json:"rate_limited_clients"`
	APIKeys            int `json:"api_keys"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := StatsResponse{
		Uptime:       s.now().Sub(s.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		Memory: MemoryStats{
			Alloc:      m.Alloc,
			TotalAlloc: m.TotalAlloc,
			Sys:        m.Sys,
			NumGC:      m.NumGC,
		},
		Service: ServiceCounts{
			Workspaces:         count(s.sources.Workspaces),
			RateLimitedClients: count(s.sources.RateLimited),
			APIKeys:            count(s.sources.APIKeys),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func count(c Counter) int {
	if c == nil {
		return 0
	}
	return c.Len()
}
