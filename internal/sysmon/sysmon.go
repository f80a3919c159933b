package sysmon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const bytesPerGB = 1024 * 1024 * 1024

// Stats is one system resource sample.
type Stats struct {
	CPUPercent  float64   `json:"cpu_percent"`
	MemPercent  float64   `json:"mem_percent"`
	MemUsedGB   float64   `json:"mem_used_gb"`
	MemTotalGB  float64   `json:"mem_total_gb"`
	DiskPercent float64   `json:"disk_percent"`
	DiskUsedGB  float64   `json:"disk_used_gb"`
	DiskTotalGB float64   `json:"disk_total_gb"`
	CollectedAt time.Time `json:"collected_at"`
}

// Monitor polls system stats at a fixed interval.
type Monitor struct {
	interval time.Duration

	mu   sync.RWMutex
	last Stats
}

// New returns a Monitor polling every interval.
func New(interval time.Duration) *Monitor {
	return &Monitor{interval: interval}
}

// Run starts the poll loop and blocks until ctx is cancelled. Collection
// failures are logged; partial samples are still published.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.collect()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.collect()
		}
	}
}

// Last returns the most recent sample. The zero Stats is returned before the
// first collection completes.
func (m *Monitor) Last() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *Monitor) collect() {
	s := Stats{CollectedAt: time.Now()}

	if pcts, err := cpu.Percent(0, false); err != nil {
		slog.Warn("sysmon: cpu sample failed", "err", err)
	} else if len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		slog.Warn("sysmon: memory sample failed", "err", err)
	} else {
		s.MemPercent = vm.UsedPercent
		s.MemUsedGB = float64(vm.Used) / bytesPerGB
		s.MemTotalGB = float64(vm.Total) / bytesPerGB
	}

	if du, err := disk.Usage("/"); err != nil {
		slog.Warn("sysmon: disk sample failed", "err", err)
	} else {
		s.DiskPercent = du.UsedPercent
		s.DiskUsedGB = float64(du.Used) / bytesPerGB
		s.DiskTotalGB = float64(du.Total) / bytesPerGB
	}

	m.mu.Lock()
	m.last = s
	m.mu.Unlock()
}
