package incremental

import (
	"fmt"
	"runtime/debug"

	"github.com/coregx/incremental/internal/weakref"
)

// ComputeFunc derives a ComputedNode's value from whatever other nodes it
// reads during the call. It must be deterministic given its dependencies'
// current values, and it must be synchronous and total: it either returns
// a value or an error (§5: "calculate() must be synchronous and total").
// The dependency set is never passed in — it is discovered implicitly by
// which producers Get() is called on during this invocation.
type ComputeFunc[T any] func() (T, error)

// cacheState is the tri-state sentinel for a ComputedNode's cached value
// (§3, §9 "Sentinels for cache state").
type cacheState int

const (
	cacheUnset cacheState = iota
	cacheComputing
	cacheSet
)

// staleKind distinguishes a clean node from the two flavors of dirty: no
// known notifier, or exactly one (the micro-optimization described in
// §4.3/§9's second open question).
type staleKind int

const (
	staleClean staleKind = iota
	staleUnknownSource
	staleSingleSource
)

// ComputedNode is an interior node that is both producer and consumer: it
// caches a value derived from a user-supplied ComputeFunc and recomputes
// it lazily, on read, only when polling shows a recorded dependency's
// value has actually changed.
//
// T is constrained to comparable for the same identity-comparison reason
// as ValueNode.
type ComputedNode[T comparable] struct {
	compute ComputeFunc[T]

	pState producerState
	cState consumerState

	cache       T
	cacheState  cacheState
	stale       staleKind
	staleSource producer

	opts nodeOptions
}

// NewComputed creates a ComputedNode that derives its value from compute.
// The node starts dirty (dirty-unknown-source) with an Unset cache, so the
// first Get() always performs the initial computation.
func NewComputed[T comparable](compute ComputeFunc[T], opts ...NodeOption) *ComputedNode[T] {
	c := &ComputedNode[T]{
		compute: compute,
		opts:    buildOptions(opts),
		stale:   staleUnknownSource,
	}
	c.pState.version = 1
	c.cState.id = newNodeID()

	handle := weakref.Make(c)
	c.cState.selfHandle = consumerHandle{
		id: c.cState.id,
		upgrade: func() (consumer, bool) {
			v, ok := handle.Value()
			if !ok {
				return nil, false
			}
			return v, true
		},
	}

	return c
}

func (c *ComputedNode[T]) producerState() *producerState { return &c.pState }
func (c *ComputedNode[T]) consumerState() *consumerState { return &c.cState }

func (c *ComputedNode[T]) name() string {
	if c.opts.name != "" {
		return c.opts.name
	}
	return fmt.Sprintf("ComputedNode@%p", c)
}

// Get resolves staleness (recomputing if necessary), records a dependency
// edge to the active consumer if one is computing, and returns the cached
// value.
func (c *ComputedNode[T]) Get() (T, error) {
	if err := c.checkForActuallyChangedValue(); err != nil {
		var zero T
		return zero, err
	}
	producerAccessed(c)
	return c.cache, nil
}

// checkForActuallyChangedValue implements §4.2's staleness-resolution
// entry point.
func (c *ComputedNode[T]) checkForActuallyChangedValue() error {
	if c.stale == staleClean {
		return nil
	}

	if c.cacheState == cacheSet {
		changed, err := c.pollDependencies()
		if err != nil {
			return err
		}
		if !changed {
			c.stale = staleClean
			c.staleSource = nil
			return nil
		}
	}

	return c.recompute()
}

// pollDependencies implements §4.3: decide whether this node's cached
// value could still be correct without recomputing, by asking each
// recorded dependency whether its value has actually changed since it was
// last observed.
func (c *ComputedNode[T]) pollDependencies() (bool, error) {
	var skip producer

	if c.stale == staleSingleSource && c.staleSource != nil {
		p := c.staleSource
		seenVersion, ok := c.cState.producers.Get(p)
		if !ok {
			return true, nil
		}

		ps := p.producerState()
		if edge, edgeOK := ps.consumers.Get(c.cState.id); edgeOK && edge.trackingVersion == c.cState.trackingVersion {
			if err := p.checkForActuallyChangedValue(); err != nil {
				return false, err
			}
			if ps.version != seenVersion {
				return true, nil
			}
			if c.cState.producers.Size() == 1 {
				return false, nil
			}
			skip = p
		}
		// Else: the shortcut edge itself is stale. Fall through to the
		// general scan below, which will prune it.
	}

	changed := false
	var rangeErr error

	c.cState.producers.Range(func(p producer, seenVersion uint64) bool {
		if skip != nil && p == skip {
			return true
		}

		ps := p.producerState()
		edge, ok := ps.consumers.Get(c.cState.id)
		if !ok || edge.trackingVersion != c.cState.trackingVersion {
			c.cState.producers.Delete(p)
			if ok {
				ps.consumers.Delete(c.cState.id)
				if globalMetrics != nil {
					globalMetrics.LiveEdges.Dec()
				}
			}
			c.opts.log().Debugf("%s: pruned dead edge to %v", c.name(), p)
			if globalMetrics != nil {
				globalMetrics.EdgesPruned.Inc()
			}
			return true
		}

		if err := p.checkForActuallyChangedValue(); err != nil {
			rangeErr = err
			return false
		}
		if ps.version != seenVersion {
			changed = true
			return false
		}
		return true
	})

	if rangeErr != nil {
		return false, rangeErr
	}
	return changed, nil
}

// recompute implements the recomputation steps of §4.2.
func (c *ComputedNode[T]) recompute() error {
	if c.cacheState == cacheComputing {
		if globalMetrics != nil {
			globalMetrics.CyclesDetected.Inc()
		}
		// Per the spec's resolved open question: reset to Unset so the
		// next read re-attempts the calculation instead of reporting the
		// same cycle forever.
		c.cacheState = cacheUnset
		return &CycleError{Node: c.name()}
	}

	prior := c.cache
	hadPrior := c.cacheState == cacheSet

	c.cacheState = cacheComputing
	c.cState.trackingVersion++

	restore := withActiveConsumer(c)
	newValue, err := c.safeCompute()
	restore()

	if err != nil {
		c.cacheState = cacheUnset
		var zero T
		c.cache = zero
		return err
	}

	if globalMetrics != nil {
		globalMetrics.Recomputations.Inc()
	}

	c.stale = staleClean
	c.staleSource = nil

	if hadPrior && newValue == prior {
		// Identical by identity: keep the prior value's identity stable
		// and don't bump valueVersion (P3).
		c.cache = prior
		c.cacheState = cacheSet
		return nil
	}

	c.cache = newValue
	c.cacheState = cacheSet
	c.pState.version++
	return nil
}

// safeCompute recovers a panic inside compute() and turns it into an
// error, so that a misbehaving ComputeFunc degrades to a failed read
// rather than crashing the host. This is an ambient safety net borrowed
// from the panic-recovery discipline the rest of this codebase's lineage
// applies to callbacks; it is not part of the Cycle/ChangedWhileCalculating
// error pair the spec itself defines.
func (c *ComputedNode[T]) safeCompute() (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			if c.opts.onPanic != nil {
				c.opts.onPanic(r, stack)
			} else {
				c.opts.log().Debugf("%s: calculate() panicked: %v\n%s", c.name(), r, stack)
			}
			var zero T
			result = zero
			err = fmt.Errorf("incremental: %s: calculate() panicked: %v", c.name(), r)
		}
	}()
	return c.compute()
}

// notify implements §4.2's notify: a fatal ChangedWhileCalculatingError if
// this node is presently computing, idempotent if already stale,
// otherwise mark stale (remembering source as the single-notifier
// optimization hint — only the first notifier in an epoch is kept, per
// §9's second open question) and cascade to this node's own consumers.
//
// The Computing check must come first: recompute() only clears stale
// after calculate() returns, so for the entire duration of a calculate()
// call, cacheState == cacheComputing and stale != staleClean hold at once
// for this same node. Checking the idempotent stale branch first would
// make that window — a producer read during this node's own calculation
// reporting a change mid-flight — unreachable through the public API.
func (c *ComputedNode[T]) notify(source producer) error {
	if c.cacheState == cacheComputing {
		return &ChangedWhileCalculatingError{Node: c.name()}
	}

	if c.stale != staleClean {
		return nil
	}

	if source != nil {
		c.stale = staleSingleSource
		c.staleSource = source
	} else {
		c.stale = staleUnknownSource
	}

	return notifyConsumers(c)
}

func (c *ComputedNode[T]) String() string {
	return fmt.Sprintf("%s{version:%d, producers:%d, consumers:%d}",
		c.name(), c.pState.version, c.cState.producers.Size(), c.pState.consumers.Size())
}
