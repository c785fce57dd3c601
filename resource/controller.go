// Package resource bounds the shared resources of a multi-bank simulation
// host: how many banks run concurrently and how fast archive uploads may
// write. Banks themselves share no state; the controller only meters entry.
package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentBanks is the maximum number of banks simulated at once.
	// If 0, defaults to 1.
	MaxConcurrentBanks int64

	// IOLimitBytesPerSec caps archive upload throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages bank concurrency and archive IO throughput.
type Controller struct {
	bankSem   *semaphore.Weighted
	ioLimiter *rate.Limiter
}

// NewController creates a controller from cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentBanks <= 0 {
		cfg.MaxConcurrentBanks = 1
	}

	c := &Controller{
		bankSem: semaphore.NewWeighted(cfg.MaxConcurrentBanks),
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireBank blocks until a bank slot is available or ctx is canceled.
func (c *Controller) AcquireBank(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bankSem.Acquire(ctx, 1)
}

// ReleaseBank returns a bank slot.
func (c *Controller) ReleaseBank() {
	if c == nil {
		return
	}
	c.bankSem.Release(1)
}

// WaitIO blocks until n bytes of IO budget are available.
// Requests larger than the limiter burst are split.
func (c *Controller) WaitIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil || n <= 0 {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
