package buffer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks buffer activity. Counters are lock-free; the size watermark and start
// time share a mutex.
type Statistics struct {
	writes    atomic.Int64
	reads     atomic.Int64
	peeks     atomic.Int64
	overflows atomic.Int64
	drops     atomic.Int64

	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Write records an accepted item.
func (s *Statistics) Write() { s.writes.Add(1) }

// Read records a removed item.
func (s *Statistics) Read() { s.reads.Add(1) }

// Peek records a peek.
func (s *Statistics) Peek() { s.peeks.Add(1) }

// Overflow records a write that found the buffer full.
func (s *Statistics) Overflow() { s.overflows.Add(1) }

// Drop records an item lost to the overflow policy.
func (s *Statistics) Drop() { s.drops.Add(1) }

// UpdateSize records the current size and raises the high-water mark.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Writes returns the number of accepted items.
func (s *Statistics) Writes() int64 { return s.writes.Load() }

// Reads returns the number of removed items.
func (s *Statistics) Reads() int64 { return s.reads.Load() }

// Peeks returns the number of peeks.
func (s *Statistics) Peeks() int64 { return s.peeks.Load() }

// Overflows returns the number of writes that found the buffer full.
func (s *Statistics) Overflows() int64 { return s.overflows.Load() }

// Drops returns the number of items lost to the overflow policy.
func (s *Statistics) Drops() int64 { return s.drops.Load() }

// CurrentSize returns the most recently recorded size.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the largest size recorded.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Uptime returns how long the statistics have been collected.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Throughput returns the average number of writes per second.
func (s *Statistics) Throughput() float64 {
	return ratePerSecond(s.Writes(), s.Uptime())
}

// ReadThroughput returns the average number of reads per second.
func (s *Statistics) ReadThroughput() float64 {
	return ratePerSecond(s.Reads(), s.Uptime())
}

// DropRate returns Drops relative to Writes plus Drops (0.0 to 1.0).
func (s *Statistics) DropRate() float64 {
	return fraction(s.Drops(), s.Writes()+s.Drops())
}

// OverflowRate returns Overflows relative to Writes plus Overflows (0.0 to 1.0).
func (s *Statistics) OverflowRate() float64 {
	return fraction(s.Overflows(), s.Writes()+s.Overflows())
}

// Utilization returns the current size as a fraction of capacity (0.0 to 1.0).
func (s *Statistics) Utilization(capacity int64) float64 {
	return fraction(s.CurrentSize(), capacity)
}

// Reset zeroes every counter and restarts the uptime clock.
func (s *Statistics) Reset() {
	s.writes.Store(0)
	s.reads.Store(0)
	s.peeks.Store(0)
	s.overflows.Store(0)
	s.drops.Store(0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.currentSize = 0
	s.maxSize = 0
	s.mu.Unlock()
}

// StatsSummary is a point-in-time copy of Statistics.
type StatsSummary struct {
	Writes         int64         `json:"writes"`
	Reads          int64         `json:"reads"`
	Peeks          int64         `json:"peeks"`
	Overflows      int64         `json:"overflows"`
	Drops          int64         `json:"drops"`
	CurrentSize    int64         `json:"current_size"`
	MaxSize        int64         `json:"max_size"`
	Throughput     float64       `json:"throughput"`
	ReadThroughput float64       `json:"read_throughput"`
	DropRate       float64       `json:"drop_rate"`
	OverflowRate   float64       `json:"overflow_rate"`
	Uptime         time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Writes:         s.Writes(),
		Reads:          s.Reads(),
		Peeks:          s.Peeks(),
		Overflows:      s.Overflows(),
		Drops:          s.Drops(),
		CurrentSize:    s.CurrentSize(),
		MaxSize:        s.MaxSize(),
		Throughput:     s.Throughput(),
		ReadThroughput: s.ReadThroughput(),
		DropRate:       s.DropRate(),
		OverflowRate:   s.OverflowRate(),
		Uptime:         s.Uptime(),
	}
}

func ratePerSecond(n int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0.0
	}
	return float64(n) / elapsed.Seconds()
}

func fraction(n, d int64) float64 {
	if d == 0 {
		return 0.0
	}
	return float64(n) / float64(d)
}
