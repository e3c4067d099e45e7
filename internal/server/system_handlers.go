package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

// SystemStatusResponse reports process and host health for the dashboard header
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	UptimeSeconds int     `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
}

// handleHealth is a minimal liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleSystemStatus reports database reachability, uptime and host load
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := s.db.Conn().Ping(); err != nil {
		dbStatus = "unreachable"
	}

	cpuPercent, ramPercent := s.systemStats()

	response := SystemStatusResponse{
		Status:        "ok",
		Database:      dbStatus,
		UptimeSeconds: int(time.Since(startTime).Seconds()),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// systemStats samples CPU and RAM usage percentages.
// The CPU sample uses a 100ms window to keep the handler responsive.
func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
