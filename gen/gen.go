// Package gen provides the data generators used to populate record rows.
// Generators fill raw bytes; record framing is purely a matter of layout.
package gen

import (
	"math/rand"
)

// DataGenerator fills byte slices with generated record data.
// Implementations are stateful and not safe for concurrent use; each bank
// owns its own generator.
type DataGenerator interface {
	Fill(p []byte)
}

// Uniform generates uniformly random bytes from a seeded source, so a fixed
// seed yields a byte-identical bank (and therefore a byte-identical dump)
// on every run.
type Uniform struct {
	rng *rand.Rand
}

// NewUniform creates a Uniform generator with the given seed.
func NewUniform(seed int64) *Uniform {
	return &Uniform{rng: rand.New(rand.NewSource(seed))}
}

// Fill fills p with random bytes.
func (u *Uniform) Fill(p []byte) {
	// rand.Read on a seeded *rand.Rand never fails.
	_, _ = u.rng.Read(p)
}

// Constant fills every byte with a fixed value.
type Constant struct {
	Value byte
}

// Fill fills p with the constant value.
func (c Constant) Fill(p []byte) {
	for i := range p {
		p[i] = c.Value
	}
}

// Incremental fills bytes with a wrapping counter that continues across
// calls, giving every record a distinct, predictable prefix.
type Incremental struct {
	next byte
}

// Fill fills p with successive counter values.
func (g *Incremental) Fill(p []byte) {
	for i := range p {
		p[i] = g.next
		g.next++
	}
}

// Null leaves the data zeroed.
type Null struct{}

// Fill zeroes p.
func (Null) Fill(p []byte) {
	clear(p)
}
