package bench

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ResourceSample is one reading of the process's footprint.
type ResourceSample struct {
	TimeS  float64 // seconds since the run started
	RSSMB  float64 // resident set size, MB
	CPUSec float64 // user+system CPU time, seconds
}

// Kernel USER_HZ; fixed at 100 on the platforms we run on.
const clockTicksPerSec = 100

// sampleResources reads RSS and CPU time from /proc/self (Linux only).
func sampleResources(start time.Time) (ResourceSample, error) {
	rss, err := readRSSBytes()
	if err != nil {
		return ResourceSample{}, err
	}
	cpu, err := readCPUSeconds()
	if err != nil {
		return ResourceSample{}, err
	}
	return ResourceSample{
		TimeS:  time.Since(start).Seconds(),
		RSSMB:  float64(rss) / (1024 * 1024),
		CPUSec: cpu,
	}, nil
}

func readRSSBytes() (int64, error) {
	data, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0, fmt.Errorf("malformed statm: %q", data)
	}
	pages, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, err
	}
	return pages * int64(os.Getpagesize()), nil
}

func readCPUSeconds() (float64, error) {
	data, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return 0, err
	}
	// The comm field may contain spaces; fields start after the last ')'.
	s := string(data)
	idx := strings.LastIndexByte(s, ')')
	if idx < 0 {
		return 0, fmt.Errorf("malformed stat: %q", data)
	}
	fields := strings.Fields(s[idx+1:])
	// After ')': state is field 0, utime is field 11, stime is field 12.
	if len(fields) < 13 {
		return 0, fmt.Errorf("malformed stat: %q", data)
	}
	utime, err := strconv.ParseFloat(fields[11], 64)
	if err != nil {
		return 0, err
	}
	stime, err := strconv.ParseFloat(fields[12], 64)
	if err != nil {
		return 0, err
	}
	return (utime + stime) / clockTicksPerSec, nil
}
