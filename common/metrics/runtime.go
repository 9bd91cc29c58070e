package metrics

import (
	"context"
	"runtime"
	"sync"
)

// SystemInfo holds static host information captured once at startup
type SystemInfo struct {
	OS               string `json:"os"`
	OSVersion        string `json:"os_version"`
	Arch             string `json:"arch"`
	Hostname         string `json:"hostname"`
	CPULogical       int    `json:"cpu_logical"`
	TotalMemoryMB    uint64 `json:"total_memory_mb"` // 0 when unknown
	GoVersion        string `json:"go_version"`
	InContainer      bool   `json:"in_container"`
	ContainerRuntime string `json:"container_runtime,omitempty"`
}

var (
	systemInfo     *SystemInfo
	systemInfoOnce sync.Once
)

// GetSystemInfo returns cached system information (captured once)
func GetSystemInfo() *SystemInfo {
	systemInfoOnce.Do(func() {
		systemInfo = captureSystemInfo()
	})
	return systemInfo
}

// LogArgs flattens the info into slog key/value pairs
func (si *SystemInfo) LogArgs() []any {
	args := []any{
		"os", si.OS,
		"os_version", si.OSVersion,
		"arch", si.Arch,
		"hostname", si.Hostname,
		"cpu_logical", si.CPULogical,
		"total_memory_mb", si.TotalMemoryMB,
		"go_version", si.GoVersion,
		"in_container", si.InContainer,
	}
	if si.ContainerRuntime != "" {
		args = append(args, "container_runtime", si.ContainerRuntime)
	}
	return args
}

// Footprint captures heap and goroutine counts around a bulk operation
// such as loading the family graph
type Footprint struct {
	HeapStartMB    float64
	HeapEndMB      float64
	GoroutineStart int
	GoroutineEnd   int
}

// CaptureStart records the state before the operation
func CaptureStart(ctx context.Context) *Footprint {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &Footprint{
		HeapStartMB:    float64(m.HeapAlloc) / 1024 / 1024,
		GoroutineStart: runtime.NumGoroutine(),
	}
}

// Finalize records the state after the operation
func (f *Footprint) Finalize(ctx context.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	f.HeapEndMB = float64(m.HeapAlloc) / 1024 / 1024
	f.GoroutineEnd = runtime.NumGoroutine()
}

// HeapDeltaMB is the heap growth over the operation; negative after a GC
func (f *Footprint) HeapDeltaMB() float64 {
	return f.HeapEndMB - f.HeapStartMB
}
