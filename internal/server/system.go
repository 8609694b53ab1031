package server

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats samples host resource usage for the health endpoint
type SystemStats struct {
	sampleWindow time.Duration
	log          zerolog.Logger
}

// NewSystemStats creates a sampler
func NewSystemStats(log zerolog.Logger) *SystemStats {
	return &SystemStats{
		sampleWindow: 100 * time.Millisecond,
		log:          log.With().Str("component", "system_stats").Logger(),
	}
}

// Usage returns CPU and RAM usage in percent. Failures read as zero.
func (s *SystemStats) Usage() (cpuPercent, ramPercent float64) {
	// Short sample window keeps health checks fast
	percents, err := cpu.Percent(s.sampleWindow, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(percents) > 0 {
		cpuPercent = percents[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent, 0
	}

	return cpuPercent, memStat.UsedPercent
}
