package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/jakehorton1228-droid/habit-tracker/internal/httputil"
)

type healthReport struct {
	Status  string        `json:"status"`
	Service string        `json:"service"`
	Version string        `json:"version,omitempty"`
	Storage healthStorage `json:"storage"`
	Uptime  string        `json:"uptime"`
	System  healthSystem  `json:"system"`
}

type healthStorage struct {
	Driver string `json:"driver"`
	Ping   string `json:"ping"`
}

type healthSystem struct {
	MemoryTotalBytes   uint64  `json:"memory_total_bytes"`
	MemoryUsedPercent  float64 `json:"memory_used_percent"`
	ProcessMemoryBytes uint64  `json:"process_memory_bytes"`
}

// health reports liveness plus backend reachability and a system snapshot.
// A failing db ping degrades the report but the endpoint still answers 200:
// the process itself is alive.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	report := healthReport{
		Status:  "ok",
		Service: h.opts.ServiceName,
		Version: h.opts.Version,
		Storage: healthStorage{Driver: h.opts.StorageDriver, Ping: "ok"},
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	}
	if report.Storage.Driver == "" {
		report.Storage.Driver = "memory"
	}

	if h.opts.DB != nil {
		if err := h.opts.DB.Ping(r.Context()); err != nil {
			report.Status = "degraded"
			report.Storage.Ping = err.Error()
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		report.System.MemoryTotalBytes = vm.Total
		report.System.MemoryUsedPercent = vm.UsedPercent
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil && info != nil {
			report.System.ProcessMemoryBytes = info.RSS
		}
	}

	httputil.WriteJSON(w, http.StatusOK, report)
}
