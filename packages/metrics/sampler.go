package metrics

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	memInfoPath = "/proc/meminfo"
	loadAvgPath = "/proc/loadavg"
)

// Sampler periodically appends free-memory and CPU-load lines to the
// metrics log. On platforms without /proc the affected lines are
// skipped silently.
type Sampler struct {
	sink     io.Writer
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewSampler(sink io.Writer, interval time.Duration) *Sampler {
	return &Sampler{
		sink:     sink,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sampling loop. One sample is taken immediately.
func (s *Sampler) Start() {
	go s.loop()
}

// Stop ends the loop and waits for it to exit.
func (s *Sampler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sampler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sample()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *Sampler) sample() {
	ts := time.Now().Format(time.RFC3339)
	if free, err := freeMemoryKB(); err == nil {
		fmt.Fprintf(s.sink, "%s memfree_kb=%d\n", ts, free)
	}
	if load, err := loadAverage(); err == nil {
		fmt.Fprintf(s.sink, "%s loadavg=%s\n", ts, load)
	}
}

func freeMemoryKB() (int64, error) {
	data, err := os.ReadFile(memInfoPath)
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MemFree:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		return strconv.ParseInt(fields[1], 10, 64)
	}
	return 0, fmt.Errorf("MemFree not found in %s", memInfoPath)
}

func loadAverage() (string, error) {
	data, err := os.ReadFile(loadAvgPath)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return "", fmt.Errorf("unexpected %s format", loadAvgPath)
	}
	return strings.Join(fields[:3], " "), nil
}
