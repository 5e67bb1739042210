package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/pedrorrivero/qlab/internal/config"
	"github.com/pedrorrivero/qlab/internal/di"
	"github.com/pedrorrivero/qlab/internal/modules/backend"
	"github.com/rs/zerolog"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves host and backend status endpoints.
type SystemHandlers struct {
	log       zerolog.Logger
	cfg       *config.Config
	container *di.Container
	started   time.Time
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(log zerolog.Logger, cfg *config.Config, container *di.Container) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		cfg:       cfg,
		container: container,
		started:   time.Now(),
	}
}

// HandleSystemInfo handles GET /api/system/info
func (h *SystemHandlers) HandleSystemInfo(w http.ResponseWriter, r *http.Request) {
	cpuAvg, ramPercent := h.resourceUsage()

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"backend":        h.container.Backend.Name(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"cpu_percent":    cpuAvg,
			"ram_percent":    ramPercent,
			"uptime_seconds": time.Since(h.started).Seconds(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCapacity handles GET /api/system/capacity. It reports the largest
// register the host memory could hold next to the configured cap, so
// operators can see which limit binds.
func (h *SystemHandlers) HandleCapacity(w http.ResponseWriter, r *http.Request) {
	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get memory statistics")
		http.Error(w, "Failed to get memory statistics", http.StatusInternalServerError)
		return
	}

	memoryQubits := backend.MaxQubitsForBytes(memStat.Available)
	effective := memoryQubits
	if h.cfg.MaxQubits < effective {
		effective = h.cfg.MaxQubits
	}

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"available_bytes":   memStat.Available,
			"memory_qubits":     memoryQubits,
			"configured_qubits": h.cfg.MaxQubits,
			"effective_qubits":  effective,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// resourceUsage samples CPU and RAM utilization.
func (h *SystemHandlers) resourceUsage() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
