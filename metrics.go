package pimsim

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/pimsim/scan"
)

// StatsObserver receives functional counters as runs complete.
// Implement this interface to integrate with monitoring systems.
type StatsObserver interface {
	// ObserveScan is called once per completed scan with its counters and
	// wall time. err is nil on success.
	ObserveScan(stats scan.Stats, elapsed time.Duration, err error)

	// ObserveArchive is called after each archive upload. rawBytes is the
	// uncompressed dump size, storedBytes the size actually uploaded.
	ObserveArchive(rawBytes, storedBytes int, elapsed time.Duration, err error)
}

// NoopStatsObserver is a no-op implementation of StatsObserver.
type NoopStatsObserver struct{}

func (NoopStatsObserver) ObserveScan(scan.Stats, time.Duration, error)  {}
func (NoopStatsObserver) ObserveArchive(int, int, time.Duration, error) {}

// BasicStatsObserver provides simple in-memory aggregation across runs.
// Safe for concurrent use by bank-parallel simulations.
type BasicStatsObserver struct {
	ScanCount        atomic.Int64
	ScanErrors       atomic.Int64
	ScanTotalNanos   atomic.Int64
	RecordsTotal     atomic.Int64
	MatchesTotal     atomic.Int64
	ActivationsTotal atomic.Int64
	BufferHitsTotal  atomic.Int64

	ArchiveCount       atomic.Int64
	ArchiveErrors      atomic.Int64
	ArchiveRawBytes    atomic.Int64
	ArchiveStoredBytes atomic.Int64
}

// ObserveScan implements StatsObserver.
func (b *BasicStatsObserver) ObserveScan(stats scan.Stats, elapsed time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanTotalNanos.Add(elapsed.Nanoseconds())
	if err != nil {
		b.ScanErrors.Add(1)
		return
	}
	b.RecordsTotal.Add(int64(stats.Records))
	b.MatchesTotal.Add(int64(stats.Matches))
	b.ActivationsTotal.Add(int64(stats.RowActivations))
	b.BufferHitsTotal.Add(int64(stats.BufferHits))
}

// ObserveArchive implements StatsObserver.
func (b *BasicStatsObserver) ObserveArchive(rawBytes, storedBytes int, elapsed time.Duration, err error) {
	b.ArchiveCount.Add(1)
	if err != nil {
		b.ArchiveErrors.Add(1)
		return
	}
	b.ArchiveRawBytes.Add(int64(rawBytes))
	b.ArchiveStoredBytes.Add(int64(storedBytes))
}

// BasicStats is a snapshot of BasicStatsObserver state.
type BasicStats struct {
	ScanCount        int64
	ScanErrors       int64
	ScanAvgNanos     int64
	RecordsTotal     int64
	MatchesTotal     int64
	ActivationsTotal int64
	BufferHitsTotal  int64

	ArchiveCount       int64
	ArchiveErrors      int64
	ArchiveRawBytes    int64
	ArchiveStoredBytes int64
}

// GetStats returns a snapshot of current counters.
func (b *BasicStatsObserver) GetStats() BasicStats {
	s := BasicStats{
		ScanCount:          b.ScanCount.Load(),
		ScanErrors:         b.ScanErrors.Load(),
		RecordsTotal:       b.RecordsTotal.Load(),
		MatchesTotal:       b.MatchesTotal.Load(),
		ActivationsTotal:   b.ActivationsTotal.Load(),
		BufferHitsTotal:    b.BufferHitsTotal.Load(),
		ArchiveCount:       b.ArchiveCount.Load(),
		ArchiveErrors:      b.ArchiveErrors.Load(),
		ArchiveRawBytes:    b.ArchiveRawBytes.Load(),
		ArchiveStoredBytes: b.ArchiveStoredBytes.Load(),
	}
	if s.ScanCount > 0 {
		s.ScanAvgNanos = b.ScanTotalNanos.Load() / s.ScanCount
	}
	return s
}
