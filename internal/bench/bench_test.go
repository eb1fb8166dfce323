package bench

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunSmall(t *testing.T) {
	report := Run(Config{Ops: 4000, Workers: 2, Seed: 1})

	total := 0
	for _, ws := range report.Workers {
		total += len(ws.Samples)
	}
	if total != 4000 {
		t.Errorf("expected 4000 samples, got %d", total)
	}
	if report.Trades == 0 {
		t.Error("expected crossing flow to produce trades")
	}
	if report.Elapsed <= 0 {
		t.Error("expected positive elapsed time")
	}
	if report.Throughput() <= 0 {
		t.Error("expected positive throughput")
	}
}

func TestPercentiles(t *testing.T) {
	ws := WorkerStats{Samples: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}}

	if got := ws.Percentile(0.50); got != 60 {
		t.Errorf("p50: expected 60, got %v", got)
	}
	if got := ws.Percentile(0.99); got != 100 {
		t.Errorf("p99: expected 100, got %v", got)
	}
	if got := ws.Avg(); got != 55 {
		t.Errorf("avg: expected 55, got %v", got)
	}

	empty := WorkerStats{}
	if empty.Avg() != 0 || empty.Percentile(0.5) != 0 {
		t.Error("empty stats must report zeros")
	}
}

func TestCSVExports(t *testing.T) {
	dir := t.TempDir()
	report := Run(Config{Ops: 200, Workers: 1, Seed: 1})
	report.Resources = []ResourceSample{{TimeS: 1.0, RSSMB: 12.5, CPUSec: 0.25}}

	latPath := filepath.Join(dir, "latency.csv")
	if err := report.WriteLatencyCSV(latPath); err != nil {
		t.Fatalf("WriteLatencyCSV failed: %v", err)
	}
	assertHeader(t, latPath, "thread_id,op_index,latency_ns")

	resPath := filepath.Join(dir, "resources.csv")
	if err := report.WriteResourceCSV(resPath); err != nil {
		t.Fatalf("WriteResourceCSV failed: %v", err)
	}
	assertHeader(t, resPath, "time_s,rss_MB,cpu_s")

	f, _ := os.Open(resPath)
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Scan() // header
	if !sc.Scan() || sc.Text() != "1.00,12.50,0.25" {
		t.Errorf("unexpected resource row: %q", sc.Text())
	}
}

func assertHeader(t *testing.T, path, want string) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s failed: %v", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() || sc.Text() != want {
		t.Errorf("header of %s: got %q, want %q", path, sc.Text(), want)
	}
}

func TestSummarize(t *testing.T) {
	report := Run(Config{Ops: 200, Workers: 2, Seed: 1})

	var buf bytes.Buffer
	report.Summarize(&buf)
	out := buf.String()

	for _, want := range []string{"PER-WORKER LATENCY", "Worker 0", "Worker 1", "STRESS SUMMARY", "Throughput"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestSampleResources(t *testing.T) {
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		t.Skip("no /proc on this platform")
	}

	s, err := sampleResources(time.Now().Add(-2 * time.Second))
	if err != nil {
		t.Fatalf("sampleResources failed: %v", err)
	}
	if s.RSSMB <= 0 {
		t.Errorf("expected positive RSS, got %v", s.RSSMB)
	}
	if s.TimeS < 2 {
		t.Errorf("expected >=2s elapsed, got %v", s.TimeS)
	}
	if s.CPUSec < 0 {
		t.Errorf("negative CPU time: %v", s.CPUSec)
	}
}
