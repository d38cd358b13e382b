package env

// Completer produces the entity for sym on first demand. It may itself call
// Get on the owning Lazy environment (directly or transitively) to resolve
// dependencies; doing so while sym is already in progress is what raises
// ErrCycle.
type Completer[K comparable, V any] func(sym K) (V, error)

// Lazy is a memoizing, cycle-detecting on-demand environment (spec.md
// §4.1). It owns a set of symbols with registered completers and delegates
// everything else to a base environment. The in-progress set is
// thread-confined: a Lazy instance is not safe for concurrent use, matching
// the single-threaded cooperative binding model (spec.md §5).
type Lazy[K comparable, V any] struct {
	completers map[K]Completer[K, V]
	base       Env[K, V]

	memo       map[K]V
	done       map[K]bool
	inProgress map[K]bool
}

// NewLazy builds a lazy environment owning the symbols in completers,
// falling back to base for symbols it does not own.
func NewLazy[K comparable, V any](completers map[K]Completer[K, V], base Env[K, V]) *Lazy[K, V] {
	if base == nil {
		base = NewSimple[K, V](map[K]V{})
	}
	return &Lazy[K, V]{
		completers: completers,
		base:       base,
		memo:       make(map[K]V),
		done:       make(map[K]bool),
		inProgress: make(map[K]bool),
	}
}

// Get implements Env. See spec.md §4.1 for the four-step algorithm.
func (l *Lazy[K, V]) Get(sym K) (V, bool, error) {
	completer, owned := l.completers[sym]
	if !owned {
		return l.base.Get(sym)
	}

	if l.done[sym] {
		return l.memo[sym], true, nil
	}

	if l.inProgress[sym] {
		var zero V
		return zero, false, &CycleError{Symbol: sym}
	}

	l.inProgress[sym] = true
	v, err := completer(sym)
	delete(l.inProgress, sym)
	if err != nil {
		var zero V
		return zero, false, err
	}

	l.memo[sym] = v
	l.done[sym] = true
	return v, true, nil
}

// Register adds (or overwrites, if not yet completed) the completer for
// sym. Completers are normally supplied up front via NewLazy; Register
// exists for passes that discover their universe of symbols incrementally.
func (l *Lazy[K, V]) Register(sym K, c Completer[K, V]) {
	if l.done[sym] {
		return
	}
	l.completers[sym] = c
}

// Completed reports whether sym has already been memoized, without
// triggering completion.
func (l *Lazy[K, V]) Completed(sym K) bool { return l.done[sym] }
