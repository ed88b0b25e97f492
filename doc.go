// Package incremental implements an incremental computation graph: a
// directed acyclic graph of nodes where leaf nodes hold directly settable
// values and interior nodes derive their value from whichever other nodes
// they read during their own computation.
//
// # Core Types
//
// ValueNode[T] - a leaf producer holding a directly-settable value.
//
// ComputedNode[T] - an interior node that is both producer and consumer;
// it recomputes its cached value from its dependencies on demand.
//
// # Example Usage
//
//	a := incremental.NewValue(1)
//	b := incremental.NewValue(2)
//	sum := incremental.NewComputed(func() (int, error) {
//	    return a.Get() + b.Get(), nil
//	})
//
//	v, err := sum.Get() // v == 3
//	a.Set(10)
//	v, err = sum.Get()  // recomputes lazily, v == 12
//
// Dependencies are never declared up front. They are discovered on the fly:
// whichever ValueNode or ComputedNode is read during a ComputedNode's
// compute function becomes a recorded dependency of that node, and the
// recorded set is replaced on every recomputation. This is what lets the
// graph follow dynamic topology (an `if` inside compute that reads a
// different branch each time) without any extra bookkeeping from the
// caller.
//
// # Laziness and staleness
//
// Setting a ValueNode marks its dependents stale immediately but does not
// recompute them. Reading a ComputedNode resolves staleness lazily: it
// polls its recorded dependencies' version counters, and only recomputes
// if one of them has actually changed value since last observed. A
// dependency chain that round-trips back to its starting value (e.g. two
// writes that cancel out) still triggers exactly one recomputation of each
// affected node, but that recomputation's result is unchanged, so nothing
// further downstream recomputes.
//
// # Concurrency model
//
// The engine is strictly single-threaded and cooperative: there is exactly
// one package-level "currently computing" slot, and no operation here is
// safe to call from more than one goroutine without external
// synchronization. This mirrors a UI-style or single-event-loop host, not
// a concurrent server. Opt-in Prometheus instrumentation (see Metrics) does
// not change this — it only counts events the single-threaded algorithm
// already produces.
//
// # Memory safety
//
// Producers hold only weak references to the consumers that read them
// (see internal/weakref), so an unreachable ComputedNode can be collected
// even though the ValueNode leaves it depended on live indefinitely. Edges
// to collected consumers are pruned lazily, the next time the producer
// they pointed at fans out a change notification (a ValueNode write, or a
// ComputedNode being marked stale).
//
// # Errors
//
// Two conditions are reported as errors rather than repaired silently: a
// node that transitively reads itself (Cycle), and a node whose
// dependency is mutated during that very node's own computation
// (ChangedWhileCalculating). Both are ordinary Go errors returned from
// Get/Set/Update/Mutate; use errors.As to distinguish them from a
// compute function's own failure.
package incremental
