// Package block defines the interface shared by every evaluator in
// the simulated datapath: registers, counters, the ALU, memory, the
// UART, and the microcode control logic. A System holds an ordered
// slice of Blocks and settles them to a fixed point each half-cycle.
package block

// Block is a named unit of combinational or latched logic. Evaluate
// reads the block's current inputs plus its own latched state and
// reports whether any of its outputs (a driven Bus, a driven Wire, or
// its own latched value if that value is otherwise observable) changed
// since the prior call. The settle loop re-invokes every Block until a
// full pass reports no changes.
type Block interface {
	// Name identifies the block for diagnostics.
	Name() string
	// Evaluate runs the block's logic once and reports whether any
	// output changed.
	Evaluate() bool
}
