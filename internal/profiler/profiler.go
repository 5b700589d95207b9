// Package profiler writes CPU and heap profiles of a check run and exposes
// pprof handlers for long-running watch sessions.
package profiler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	rpprof "runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"
)

// Config names the profile files. Empty fields are skipped.
type Config struct {
	CPUProfile string
	MemProfile string
}

// Enabled reports whether any profile is requested.
func (c Config) Enabled() bool {
	return c.CPUProfile != "" || c.MemProfile != ""
}

// Profiler collects the profiles named in its Config.
type Profiler struct {
	cpuFile   *os.File
	memFile   string
	startTime time.Time
}

// Start begins CPU profiling when requested.
func Start(cfg Config) (*Profiler, error) {
	p := &Profiler{
		memFile:   cfg.MemProfile,
		startTime: time.Now(),
	}

	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			return nil, fmt.Errorf("failed to create CPU profile: %w", err)
		}
		if err := rpprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to start CPU profile: %w", err)
		}
		p.cpuFile = f
	}

	return p, nil
}

// Stop ends CPU profiling and writes the heap profile.
func (p *Profiler) Stop() error {
	var errs []error

	if p.cpuFile != nil {
		rpprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close CPU profile: %w", err))
		}
		p.cpuFile = nil
	}

	if p.memFile != "" {
		runtime.GC()
		if err := writeHeap(p.memFile); err != nil {
			errs = append(errs, err)
		}
		p.memFile = ""
	}

	return errors.Join(errs...)
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create memory profile: %w", err)
	}
	defer f.Close()
	if err := rpprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write memory profile: %w", err)
	}
	return nil
}

// Duration returns the time since Start.
func (p *Profiler) Duration() time.Duration {
	return time.Since(p.startTime)
}

// RegisterHandlers mounts the pprof endpoints under /debug/pprof/ on mux.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

// Stats returns current memory statistics.
func Stats() MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemStats{
		Alloc:     m.Alloc,
		Sys:       m.Sys,
		NumGC:     m.NumGC,
		HeapAlloc: m.HeapAlloc,
	}
}

// MemStats is the subset of runtime.MemStats logged around a run.
type MemStats struct {
	Alloc     uint64
	Sys       uint64
	NumGC     uint32
	HeapAlloc uint64
}

func (m MemStats) String() string {
	return fmt.Sprintf("alloc=%s heap=%s sys=%s gc=%d",
		humanize.IBytes(m.Alloc),
		humanize.IBytes(m.HeapAlloc),
		humanize.IBytes(m.Sys),
		m.NumGC,
	)
}
