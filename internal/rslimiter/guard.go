package rslimiter

import (
	"runtime"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

const systemMemThresholdPercent = 90.0

// Guard is consulted before a check is admitted to the worker pool. It keeps
// a saturated host from piling up page fetches.
type Guard struct {
	cfg      config.LimiterConfig
	logger   zerolog.Logger
	maxBytes uint64
}

// NewGuard creates a resource guard.
func NewGuard(cfg config.LimiterConfig, logger zerolog.Logger) *Guard {
	return &Guard{
		cfg:      cfg,
		logger:   logger.With().Str("component", "ResourceGuard").Logger(),
		maxBytes: uint64(cfg.MaxMemoryMB) * 1024 * 1024,
	}
}

// AllowCheck reports whether a new check may start. A disabled guard always
// admits.
func (g *Guard) AllowCheck() bool {
	if !g.cfg.Enabled {
		return true
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if g.maxBytes > 0 && ms.Alloc > g.maxBytes {
		g.logger.Warn().
			Uint64("alloc_bytes", ms.Alloc).
			Uint64("limit_bytes", g.maxBytes).
			Msg("Process memory over limit, deferring check")
		return false
	}

	if vm, err := mem.VirtualMemory(); err == nil && vm.UsedPercent > systemMemThresholdPercent {
		g.logger.Warn().
			Float64("used_percent", vm.UsedPercent).
			Msg("System memory pressure, deferring check")
		return false
	}

	return true
}
