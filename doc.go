// Package pimsim is a functional simulator of a processing-in-memory DRAM
// bank that evaluates a selection predicate inside the bank itself.
//
// Computation honors the hardware discipline: it only ever touches bytes
// resident in a single row-sized buffer, accumulates predicate results
// bit-serially, and writes them back into dedicated hitmap rows of the same
// bank. The final bank state serializes to a byte-exact memory dump that is
// diffed against reference hardware traces.
//
// The model is deterministic and logical only: no cycle timing, power or
// refresh behavior is simulated. Parallelism is bank-parallel by
// construction - RunBanks drives fully independent simulators with zero
// shared state.
package pimsim
