package incremental

// producer is the capability shared by every node that can be read: it
// has a monotonic value version and a set of consumers that depended on
// it as of some past tracking version.
type producer interface {
	producerState() *producerState
	// checkForActuallyChangedValue is the staleness-resolution entry
	// point: a no-op for leaves, the poll-then-maybe-recompute algorithm
	// for computed nodes.
	checkForActuallyChangedValue() error
}

// producerState is the bookkeeping embedded in every ValueNode and
// ComputedNode.
type producerState struct {
	version   uint64
	consumers edgeMap[uint64, consumerEdge]
}

// consumerEdge is what a producer remembers about one consumer: a weak
// handle to reach it, and the consumer's trackingVersion as of when the
// edge was (re-)recorded. The trackingVersion is what lets a later poll
// tell a live, current-generation edge apart from a stale one left over
// from a prior computation with different dependencies.
type consumerEdge struct {
	handle          consumerHandle
	trackingVersion uint64
}

// consumerHandle is a weak reference to a consumer, type-erased so that a
// producerState (which has no type parameter of its own) can hold
// consumers of arbitrary ComputedNode[T] instantiations in one map.
type consumerHandle struct {
	id      uint64
	upgrade func() (consumer, bool)
}

// activeConsumer is the sole piece of process-wide mutable state the
// engine relies on (see the spec's §5/§9 "ambient active consumer"). It
// names whichever ComputedNode is currently inside its own calculate(),
// so that producerAccessed can record an edge to it. The engine is
// single-threaded and cooperative, so a package-level variable — rather
// than a context parameter threaded through every call, or a
// goroutine-local — is the idiomatic choice here; multi-goroutine use
// requires the caller to serialize access, exactly as the spec requires
// (§5: "not safe under concurrent read/write from separate threads").
var activeConsumer consumer

// withActiveConsumer installs c as the active consumer and returns a
// closure that restores the previous one. Every call site invokes the
// restore function unconditionally — including on a panic or error path —
// so the slot never leaks a dead reference past the read() that set it
// (invariant 6: the slot is nil at every quiescent point).
func withActiveConsumer(c consumer) (restore func()) {
	prev := activeConsumer
	activeConsumer = c
	return func() { activeConsumer = prev }
}

// producerAccessed implements §4.4: if a consumer is currently computing,
// record a bidirectional edge between it and p, stamped with the
// consumer's current trackingVersion and p's current valueVersion. This
// is the only way an edge comes into existence, and it happens on every
// read of every producer.
func producerAccessed(p producer) {
	c := activeConsumer
	if c == nil {
		return
	}
	ps := p.producerState()
	cs := c.consumerState()

	if _, existed := ps.consumers.Get(cs.id); !existed && globalMetrics != nil {
		globalMetrics.LiveEdges.Inc()
	}

	ps.consumers.Set(cs.id, consumerEdge{handle: cs.selfHandle, trackingVersion: cs.trackingVersion})
	cs.producers.Set(p, ps.version)
}

// notifyConsumers implements §4.5: fan out a change notification to every
// consumer still listening on p, opportunistically pruning edges to
// consumers that have been reclaimed or that re-tracked a different
// dependency set since this edge was recorded. It always visits every
// recorded consumer, even after one reports an error, because skipping a
// consumer would leave it incorrectly marked clean (violating P1).
func notifyConsumers(p producer) error {
	ps := p.producerState()
	var firstErr error

	ps.consumers.Range(func(id uint64, edge consumerEdge) bool {
		cons, alive := edge.handle.upgrade()
		if !alive {
			ps.consumers.Delete(id)
			if globalMetrics != nil {
				globalMetrics.LiveEdges.Dec()
				globalMetrics.EdgesPruned.Inc()
			}
			return true
		}

		cs := cons.consumerState()
		if cs.trackingVersion != edge.trackingVersion {
			ps.consumers.Delete(id)
			cs.producers.Delete(p)
			if globalMetrics != nil {
				globalMetrics.LiveEdges.Dec()
				globalMetrics.EdgesPruned.Inc()
			}
			return true
		}

		if err := cons.notify(p); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})

	return firstErr
}
