package profiler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a buffer shared with the reporting goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRecordMetric(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{MaxSamples: 2, Output: &bytes.Buffer{}})

	rp.RecordMetric("mpx", 1)
	rp.RecordMetric("mpx", 5)
	rp.RecordMetric("mpx", 3)

	s, ok := rp.GetMetricStats("mpx")
	require.True(t, ok)
	// The window keeps the last two values, extremes cover all three.
	assert.InDelta(t, 4.0, s.Avg, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, int64(3), s.Count)

	_, ok = rp.GetMetricStats("missing")
	assert.False(t, ok)
}

func TestStartOperation(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{Output: &bytes.Buffer{}})

	for i := 0; i < 3; i++ {
		done := rp.StartOperation("blur")
		time.Sleep(time.Millisecond)
		done()
	}

	s, ok := rp.GetOperationStats("blur")
	require.True(t, ok)
	assert.Equal(t, int64(3), s.Count)
	assert.GreaterOrEqual(t, s.Min, time.Millisecond.Seconds())
	assert.GreaterOrEqual(t, s.Max, s.Avg)
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	rp := NewRuntimeProfiler(ProfilingOptions{Output: &out})
	rp.RecordMetric("megapixels", 2.07)
	rp.StartOperation("blur")()

	rp.Report()

	report := out.String()
	assert.Contains(t, report, "RUNTIME PROFILER STATUS REPORT")
	assert.Contains(t, report, "megapixels: avg=2.07")
	assert.Contains(t, report, "blur: avg=")
}

func TestPeriodicReports(t *testing.T) {
	out := &syncBuffer{}
	rp := NewRuntimeProfiler(ProfilingOptions{ReportInterval: 5 * time.Millisecond, Output: out})

	rp.Start()
	rp.Start()
	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), "STATUS REPORT") >= 2
	}, time.Second, 5*time.Millisecond)
	rp.Stop()

	n := strings.Count(out.String(), "STATUS REPORT")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, strings.Count(out.String(), "STATUS REPORT"))
}

func TestCPUProfile(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{Output: &bytes.Buffer{}})
	path := filepath.Join(t.TempDir(), "cpu.pprof")

	require.NoError(t, rp.StartCPUProfile(path))
	assert.Error(t, rp.StartCPUProfile(path))
	require.NoError(t, rp.StopCPUProfile())
	require.NoError(t, rp.StopCPUProfile())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}
