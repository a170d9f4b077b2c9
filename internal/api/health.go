package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pokeguess/pokeguess/internal/buildinfo"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	BuildDate      string  `json:"build_date"`
	Uptime         string  `json:"uptime"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	CachedPokemon  int     `json:"cached_pokemon"`
	MemoryRSSBytes uint64  `json:"memory_rss_bytes,omitempty"`
	Timestamp      string  `json:"timestamp"`
}

// healthCheck handles the server health check endpoint.
func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)

	resp := HealthResponse{
		Status:        "healthy",
		Version:       buildinfo.UnknownValue,
		BuildDate:     buildinfo.UnknownValue,
		Uptime:        uptime.Truncate(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	if s.buildInfo != nil {
		resp.Version = s.buildInfo.GetVersion()
		resp.BuildDate = s.buildInfo.GetBuildDate()
	}
	if s.cache != nil {
		resp.CachedPokemon = s.cache.Len()
	}
	if s.proc != nil {
		if mem, err := s.proc.MemoryInfoWithContext(c.Request().Context()); err == nil {
			resp.MemoryRSSBytes = mem.RSS
		}
	}

	return c.JSON(http.StatusOK, resp)
}
