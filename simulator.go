package pimsim

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pimsim/bank"
	"github.com/hupe1980/pimsim/blobstore"
	"github.com/hupe1980/pimsim/dump"
	"github.com/hupe1980/pimsim/resource"
	"github.com/hupe1980/pimsim/scan"
)

// defaultSeed seeds the record generator when no seed or generator option is
// given, reproducing the reference default data set.
const defaultSeed = 1

// Simulator owns one bank for one scan: construct, Run once, then serialize
// or archive the resulting bank state. Not safe for concurrent use; run
// multiple banks with RunBanks.
type Simulator struct {
	cfg        Config
	bank       *bank.Bank
	logger     *Logger
	observer   StatsObserver
	controller *resource.Controller
	ran        bool
}

// New validates cfg, allocates the bank and populates it: utility rows
// zeroed, record rows filled from the configured generator, hitmap rows
// seeded all-ones, and the zero sentinel placed below the hitmap region.
func New(cfg Config, optFns ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(optFns)

	b := bank.New(cfg.BankRows, cfg.RowBufferBytes)
	b.Initialize(bank.Layout{
		RecordBaseRow: cfg.RecordBaseRow,
		HitmapBaseRow: cfg.HitmapBaseRow,
		HitmapRows:    cfg.RowsForHitmaps,
	}, o.generator)

	s := &Simulator{
		cfg:        cfg,
		bank:       b,
		logger:     o.logger,
		observer:   o.statsObserver,
		controller: o.controller,
	}

	s.logger.LogInit(context.Background(), cfg.BankRows, cfg.RowBufferBytes, cfg.RecordsProcessable)
	return s, nil
}

// Run evaluates the configured equality predicate over every record and
// writes the result bits into the targeted hitmap. A simulator runs once;
// further calls return ErrAlreadyRun.
func (s *Simulator) Run(ctx context.Context) (scan.Stats, error) {
	if s.ran {
		return scan.Stats{}, ErrAlreadyRun
	}
	s.ran = true

	engine := scan.New(s.bank, scan.Params{
		Geometry:            s.cfg.recordGeometry(),
		Records:             s.cfg.RecordsProcessable,
		SubindexOffsetBytes: s.cfg.PiSubindexOffsetBytes,
		Value:               s.cfg.Value,
		Negate:              s.cfg.Negate,
		Hitmap:              s.cfg.hitmapRegion(),
	})

	start := time.Now()
	stats, err := engine.Run(ctx)
	elapsed := time.Since(start)

	s.observer.ObserveScan(stats, elapsed, err)
	s.logger.LogScan(ctx, stats, elapsed, err)
	return stats, err
}

// Bank exposes the underlying bank for inspection and verification.
func (s *Simulator) Bank() *bank.Bank { return s.bank }

// WriteDump renders the full bank state to w in the verification text form.
func (s *Simulator) WriteDump(w io.Writer) error {
	return dump.Write(w, s.bank)
}

// DumpToFile renders the full bank state into a file at path.
func (s *Simulator) DumpToFile(path string) error {
	err := dump.WriteFile(path, s.bank)
	s.logger.LogDump(context.Background(), path, s.bank.NumRows()*(s.bank.RowBytes()*3+12), err)
	return err
}

// ArchiveResult describes one archived dump.
type ArchiveResult struct {
	// Key is the blob name the dump was stored under, including the
	// compression extension.
	Key string

	// RawBytes is the size of the uncompressed dump text.
	RawBytes int

	// StoredBytes is the size of the blob actually uploaded.
	StoredBytes int

	// Checksum is the hex SHA-256 of the uncompressed dump text.
	Checksum string
}

// ArchiveDump renders the bank, compresses the text with ct and uploads it to
// store under name plus the compression extension. Uploads are throttled by
// the resource controller's IO budget when one is configured.
func (s *Simulator) ArchiveDump(ctx context.Context, store blobstore.BlobStore, name string, ct dump.CompressionType) (ArchiveResult, error) {
	var raw bytes.Buffer
	if err := dump.Write(&raw, s.bank); err != nil {
		return ArchiveResult{}, err
	}

	sum := sha256.Sum256(raw.Bytes())
	res := ArchiveResult{
		Key:      name + ct.Ext(),
		RawBytes: raw.Len(),
		Checksum: hex.EncodeToString(sum[:]),
	}

	var compressed bytes.Buffer
	cw, err := dump.NewWriter(&compressed, ct)
	if err != nil {
		return ArchiveResult{}, err
	}
	if _, err := cw.Write(raw.Bytes()); err != nil {
		_ = cw.Close()
		return ArchiveResult{}, fmt.Errorf("dump compression failed: %w", err)
	}
	if err := cw.Close(); err != nil {
		return ArchiveResult{}, fmt.Errorf("dump compression failed: %w", err)
	}
	res.StoredBytes = compressed.Len()

	start := time.Now()
	err = s.uploadArchive(ctx, store, res.Key, compressed.Bytes())
	elapsed := time.Since(start)

	s.observer.ObserveArchive(res.RawBytes, res.StoredBytes, elapsed, err)
	s.logger.LogArchive(ctx, res.Key, res.RawBytes, res.StoredBytes, err)
	if err != nil {
		return ArchiveResult{}, err
	}
	return res, nil
}

func (s *Simulator) uploadArchive(ctx context.Context, store blobstore.BlobStore, key string, data []byte) error {
	if err := s.controller.WaitIO(ctx, len(data)); err != nil {
		return err
	}
	return store.Put(ctx, key, data)
}

// RunBanks constructs and runs one independent simulator per config,
// bank-parallel, and returns the per-bank stats in config order. Concurrency
// is bounded by the resource controller when one is configured via optFns.
//
// optFns are re-applied per bank, so seed and generator options yield a
// fresh generator for each. Do not pass a single stateful generator through
// WithGenerator; generators are not safe for concurrent use.
func RunBanks(ctx context.Context, cfgs []Config, optFns ...Option) ([]scan.Stats, error) {
	allStats := make([]scan.Stats, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			o := applyOptions(optFns)
			if err := o.controller.AcquireBank(ctx); err != nil {
				return fmt.Errorf("bank %d: %w", i, err)
			}
			defer o.controller.ReleaseBank()

			sim, err := New(cfg, optFns...)
			if err != nil {
				return fmt.Errorf("bank %d: %w", i, err)
			}
			sim.logger = &Logger{Logger: sim.logger.With("bank", i)}

			stats, err := sim.Run(ctx)
			if err != nil {
				return fmt.Errorf("bank %d: %w", i, err)
			}
			allStats[i] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return allStats, nil
}
