package core

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// Pinger is satisfied by anything with a connectivity check
// (pgxpool.Pool directly; Redis via a small adapter).
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemStatus is the aggregate status for the admin dashboard.
type SystemStatus struct {
	Database string `json:"database"` // "ok" or "error"
	Sessions struct {
		Store  string `json:"store"` // "ok", "error", or "n/a" for the token strategy
		Active int64  `json:"active"`
	} `json:"sessions"`
	Memory struct {
		UsedBytes  uint64 `json:"used_bytes"`
		TotalBytes uint64 `json:"total_bytes"`
	} `json:"memory"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// CollectSystemStatus aggregates component health. Best-effort: a
// failing component is reported, never fatal.
func CollectSystemStatus(ctx context.Context, db Pinger, sessions SessionStore, startedAt time.Time) SystemStatus {
	var st SystemStatus

	st.Database = "ok"
	if db == nil || db.Ping(ctx) != nil {
		st.Database = "error"
	}

	st.Sessions.Store = "n/a"
	if sessions != nil {
		if n, err := sessions.ActiveCount(ctx); err == nil {
			st.Sessions.Store = "ok"
			st.Sessions.Active = n
		} else {
			st.Sessions.Store = "error"
		}
	}

	used, total := readMemInfo()
	st.Memory.UsedBytes = used
	st.Memory.TotalBytes = total

	if !startedAt.IsZero() {
		st.UptimeSeconds = int64(time.Since(startedAt).Seconds())
	}
	return st
}

// readMemInfo returns used and total bytes using /proc/meminfo.
// If unavailable, returns zeros.
func readMemInfo() (used, total uint64) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	var memTotal, memAvailable uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "MemTotal:") {
			memTotal = parseKiBLine(line)
		} else if strings.HasPrefix(line, "MemAvailable:") {
			memAvailable = parseKiBLine(line)
		}
	}
	if memTotal > 0 {
		total = memTotal
		if memAvailable <= memTotal {
			used = memTotal - memAvailable
		}
		// convert KiB -> bytes
		used *= 1024
		total *= 1024
	}
	return used, total
}

func parseKiBLine(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
