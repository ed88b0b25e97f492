package incremental

// consumer is the capability shared by every node that reads other
// nodes. Only ComputedNode implements it — ValueNode is producer-only.
type consumer interface {
	consumerState() *consumerState
	// notify informs the consumer that source (or, if nil, some
	// unspecified producer) may have changed. Returns
	// ChangedWhileCalculatingError if the consumer is presently inside
	// its own calculate().
	notify(source producer) error
}

// consumerState is the bookkeeping embedded in every ComputedNode.
type consumerState struct {
	id              uint64
	trackingVersion uint64
	producers       edgeMap[producer, uint64]
	selfHandle      consumerHandle
}

// nextNodeID hands out stable identities used as map keys in producers'
// consumer maps. The engine is single-threaded (§5), so this is a plain
// counter rather than an atomic.
var nextNodeID uint64

func newNodeID() uint64 {
	nextNodeID++
	return nextNodeID
}
