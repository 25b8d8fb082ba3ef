// Package gate provides a single-use monotonic latch.
//
// The latch backs the "one snapshot per page visit" guard: it fires exactly
// once for the lifetime of its owner and stays permanently closed afterwards.
// It is deliberately not time-based; the intent is one snapshot per visit,
// not one per N seconds.
package gate

import "sync/atomic"

// Gate is a monotonic single-fire latch. The zero value is ready to use.
type Gate struct {
	fired atomic.Bool
}

// TryFire atomically attempts to fire the gate. It returns true for exactly
// one caller; every later (or concurrent losing) call returns false.
func (g *Gate) TryFire() bool {
	return g.fired.CompareAndSwap(false, true)
}

// Fired reports whether the gate has already fired.
func (g *Gate) Fired() bool {
	return g.fired.Load()
}
