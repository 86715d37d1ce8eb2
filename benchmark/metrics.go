package benchmark

import (
	"runtime"
	"time"
)

// PerformanceMetrics captures detailed performance data
type PerformanceMetrics struct {
	Scenario            Scenario      `json:"scenario"              yaml:"scenario"`
	Timestamp           time.Time     `json:"timestamp"             yaml:"timestamp"`
	TotalDuration       time.Duration `json:"total_duration"        yaml:"total_duration"`
	AvgFrameDuration    time.Duration `json:"avg_frame_duration"    yaml:"avg_frame_duration"`
	MinFrameDuration    time.Duration `json:"min_frame_duration"    yaml:"min_frame_duration"`
	MaxFrameDuration    time.Duration `json:"max_frame_duration"    yaml:"max_frame_duration"`
	FramesPerSecond     float64       `json:"frames_per_second"     yaml:"frames_per_second"`
	MegapixelsPerSecond float64       `json:"megapixels_per_second" yaml:"megapixels_per_second"`
	Iterations          int           `json:"iterations"            yaml:"iterations"`
	MemoryStats         MemoryMetrics `json:"memory_stats"          yaml:"memory_stats"`
	CPUStats            CPUMetrics    `json:"cpu_stats"             yaml:"cpu_stats"`
	ErrorRate           float64       `json:"error_rate"            yaml:"error_rate"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"       yaml:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes" yaml:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"         yaml:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"            yaml:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"  yaml:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"    yaml:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU     int `json:"num_cpu"    yaml:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs" yaml:"gomaxprocs"`
}

// memoryDelta reports end-of-run memory, with allocation and GC counts taken
// relative to start.
func memoryDelta(start, end *runtime.MemStats) MemoryMetrics {
	return MemoryMetrics{
		AllocBytes:      end.Alloc,
		TotalAllocBytes: end.TotalAlloc - start.TotalAlloc,
		SysBytes:        end.Sys,
		NumGC:           end.NumGC - start.NumGC,
		HeapAllocBytes:  end.HeapAlloc,
		HeapSysBytes:    end.HeapSys,
	}
}

func currentCPU() CPUMetrics {
	return CPUMetrics{
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}
}
