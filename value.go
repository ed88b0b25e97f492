package incremental

import "fmt"

// ValueNode is a leaf producer holding a directly-settable value of type
// T. It has no producers of its own — it only implements the producer
// role, never the consumer role (§3: "ValueNode holds only a value and
// inherits only the producer role").
//
// T is constrained to comparable because the engine's sole change
// criterion is identity comparison of the value (§1 Non-goals: "No
// user-supplied equality predicates"); Go's comparable constraint, used
// with a pointer type for anything composite, is the practical form that
// identity/reference equality takes in this language.
type ValueNode[T comparable] struct {
	pState producerState
	value  T
	opts   nodeOptions
}

// NewValue creates a ValueNode holding initial.
func NewValue[T comparable](initial T, opts ...NodeOption) *ValueNode[T] {
	n := &ValueNode[T]{
		value: initial,
		opts:  buildOptions(opts),
	}
	n.pState.version = 1
	return n
}

func (n *ValueNode[T]) producerState() *producerState { return &n.pState }

// checkForActuallyChangedValue is a no-op for leaves: the version counter
// is authoritative and never needs to be re-derived.
func (n *ValueNode[T]) checkForActuallyChangedValue() error { return nil }

// Get returns the current value. If a ComputedNode is currently
// calculating, this records a dependency edge from it to n.
func (n *ValueNode[T]) Get() T {
	producerAccessed(n)
	return n.value
}

// Set replaces the value. If newValue is identical to the current value,
// this is a no-op: no version bump, no notification (P6). Otherwise the
// version increments and every registered consumer is notified, which may
// cascade into a ChangedWhileCalculatingError if that notification reaches
// a node presently computing.
func (n *ValueNode[T]) Set(newValue T) error {
	if n.value == newValue {
		return nil
	}
	n.value = newValue
	n.pState.version++
	return notifyConsumers(n)
}

// Update is sugar for Set(fn(current)).
func (n *ValueNode[T]) Update(fn func(T) T) error {
	return n.Set(fn(n.value))
}

// Mutate applies fn in place to the held value and unconditionally bumps
// the version and notifies consumers, regardless of whether fn actually
// changed anything observable. Use this only when T's identity can't
// capture the change you're making (e.g. mutating through a pointer or
// mutating interior state) — callers take on responsibility for the
// semantic change no longer being visible to the identity check.
func (n *ValueNode[T]) Mutate(fn func(current *T)) error {
	fn(&n.value)
	n.pState.version++
	return notifyConsumers(n)
}

func (n *ValueNode[T]) String() string {
	name := n.opts.name
	if name == "" {
		name = fmt.Sprintf("ValueNode@%p", n)
	}
	return fmt.Sprintf("%s{version:%d, consumers:%d}", name, n.pState.version, n.pState.consumers.Size())
}
