package profiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// RuntimeProfiler tracks blur timings, throughput metrics and memory use, and
// optionally writes a CPU profile.
//
// All methods are safe for concurrent use. Reports go to the configured
// writer, either on demand or periodically between Start and Stop.
type RuntimeProfiler struct {
	reportInterval time.Duration
	maxSamples     int
	out            io.Writer

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	startTime time.Time
	running   bool

	memStats    runtime.MemStats
	lastGCCount uint32

	metrics    map[string]*MetricTracker
	operations map[string]*TimeTracker

	cpuProfile *os.File
}

// MetricTracker keeps a bounded window of values for one metric.
type MetricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

// TimeTracker keeps a bounded window of durations for one operation.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often Start emits status reports (default: 2s).
	ReportInterval time.Duration
	// MaxSamples specifies how many values each tracker keeps (default: 600).
	MaxSamples int
	// Output receives reports (default: os.Stderr).
	Output io.Writer
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler
//
// Returns:
// - A configured RuntimeProfiler instance
func NewRuntimeProfiler(opts ProfilingOptions) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		out:            opts.Output,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		metrics:        make(map[string]*MetricTracker),
		operations:     make(map[string]*TimeTracker),
	}
}

// Start begins emitting periodic reports. Calling it twice is a no-op.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return
	}
	rp.running = true

	rp.wg.Add(1)
	go func() {
		defer rp.wg.Done()

		ticker := time.NewTicker(rp.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-rp.ctx.Done():
				return
			case <-ticker.C:
				rp.Report()
			}
		}
	}()
}

// Stop ends periodic reporting, waits for the reporter to exit and stops a
// running CPU profile. A stopped profiler does not restart.
func (rp *RuntimeProfiler) Stop() {
	rp.cancel()
	rp.wg.Wait()

	rp.mu.Lock()
	rp.running = false
	rp.mu.Unlock()

	if err := rp.StopCPUProfile(); err != nil {
		fmt.Fprintf(rp.out, "profiler: %v\n", err)
	}
}

// StartCPUProfile writes a pprof CPU profile to path until StopCPUProfile.
//
// Arguments:
// - path: The profile destination.
//
// Returns:
// - An error if the file cannot be created or a profile is already running.
func (rp *RuntimeProfiler) StartCPUProfile(path string) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.cpuProfile != nil {
		return errors.New("cpu profile already running")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create cpu profile")
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to start cpu profile")
	}
	rp.cpuProfile = f
	return nil
}

// StopCPUProfile flushes and closes the CPU profile, if one is running.
func (rp *RuntimeProfiler) StopCPUProfile() error {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.cpuProfile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := rp.cpuProfile.Close()
	rp.cpuProfile = nil
	return errors.Wrap(err, "failed to close cpu profile")
}

// RecordMetric records a custom metric value.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (rp *RuntimeProfiler) RecordMetric(name string, value float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.metrics[name]
	if !exists {
		tracker = &MetricTracker{min: value, max: value}
		rp.metrics[name] = tracker
	}

	tracker.values = append(tracker.values, value)
	tracker.sum += value
	if len(tracker.values) > rp.maxSamples {
		tracker.sum -= tracker.values[0]
		tracker.values = tracker.values[1:]
	}
	tracker.count++
	tracker.min = min(tracker.min, value)
	tracker.max = max(tracker.max, value)
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.recordOperationTime(name, time.Since(start))
	}
}

func (rp *RuntimeProfiler) recordOperationTime(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.operations[name]
	if !exists {
		tracker = &TimeTracker{minTime: duration, maxTime: duration}
		rp.operations[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	tracker.totalTime += duration
	if len(tracker.durations) > rp.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++
	tracker.minTime = min(tracker.minTime, duration)
	tracker.maxTime = max(tracker.maxTime, duration)
}

// Report writes a status report to the configured output.
func (rp *RuntimeProfiler) Report() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	runtime.ReadMemStats(&rp.memStats)
	w := rp.out

	fmt.Fprintf(w, "RUNTIME PROFILER STATUS REPORT - %s\n", time.Now().Format("15:04:05.000"))
	fmt.Fprintf(w, "Uptime: %v\n", time.Since(rp.startTime).Truncate(time.Millisecond))
	fmt.Fprintf(w, "  Goroutines: %d\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "\nMEMORY USAGE:\n")
	fmt.Fprintf(w, "  Alloc: %s\n", formatBytes(rp.memStats.Alloc))
	fmt.Fprintf(w, "  Total Alloc: %s\n", formatBytes(rp.memStats.TotalAlloc))
	fmt.Fprintf(w, "  Heap Alloc: %s\n", formatBytes(rp.memStats.HeapAlloc))

	if rp.memStats.NumGC > rp.lastGCCount {
		fmt.Fprintf(w, "\nGARBAGE COLLECTION:\n")
		fmt.Fprintf(w, "  GC Cycles: %d (new: %d)\n", rp.memStats.NumGC, rp.memStats.NumGC-rp.lastGCCount)
		fmt.Fprintf(w, "  GC CPU Fraction: %.4f%%\n", rp.memStats.GCCPUFraction*100)
		rp.lastGCCount = rp.memStats.NumGC
	}

	if len(rp.metrics) > 0 {
		fmt.Fprintf(w, "\nCUSTOM METRICS:\n")
		for _, name := range sortedKeys(rp.metrics) {
			t := rp.metrics[name]
			fmt.Fprintf(w, "  %s: avg=%.2f, min=%.2f, max=%.2f, samples=%d\n",
				name, t.sum/float64(len(t.values)), t.min, t.max, len(t.values))
		}
	}

	if len(rp.operations) > 0 {
		fmt.Fprintf(w, "\nOPERATION TIMINGS:\n")
		for _, name := range sortedKeys(rp.operations) {
			t := rp.operations[name]
			avg := t.totalTime / time.Duration(len(t.durations))
			fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
				name, avg.Truncate(time.Microsecond),
				t.minTime.Truncate(time.Microsecond),
				t.maxTime.Truncate(time.Microsecond),
				t.count)
		}
	}
}

// Stats is a snapshot of one tracker.
type Stats struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int64   `json:"count"`
}

// GetOperationStats returns timing statistics for an operation in seconds.
func (rp *RuntimeProfiler) GetOperationStats(name string) (Stats, bool) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	t, ok := rp.operations[name]
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Avg:   (t.totalTime / time.Duration(len(t.durations))).Seconds(),
		Min:   t.minTime.Seconds(),
		Max:   t.maxTime.Seconds(),
		Count: t.count,
	}, true
}

// GetMetricStats returns statistics for a custom metric.
func (rp *RuntimeProfiler) GetMetricStats(name string) (Stats, bool) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	t, ok := rp.metrics[name]
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Avg:   t.sum / float64(len(t.values)),
		Min:   t.min,
		Max:   t.max,
		Count: t.count,
	}, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
