package schema

import "fmt"

// State is the canonical handle for one column set. Handles are only ever
// created by a Manager, so two *State values are the same state exactly when
// they are the same pointer.
type State struct {
	id  int
	set Set
}

// ID is the order in which the Manager first saw this state, starting at 0.
func (s *State) ID() int  { return s.id }
func (s *State) Set() Set { return s.set }

func (s *State) String() string {
	return fmt.Sprintf("s%d%s", s.id, s.set)
}

// Manager interns column sets into canonical State handles. It is not safe
// for concurrent mutation; one Manager belongs to one graph build.
type Manager struct {
	states map[string]*State
	order  []*State
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{states: make(map[string]*State)}
}

// Canonicalize returns the handle for the given set, minting one the first
// time a set is seen. Value-equal sets always yield the identical handle.
func (m *Manager) Canonicalize(cols Set) *State {
	key := cols.Key()
	if st, ok := m.states[key]; ok {
		return st
	}
	st := &State{id: len(m.order), set: cols}
	m.states[key] = st
	m.order = append(m.order, st)
	return st
}

// Lookup returns the handle for a set without minting a new one.
func (m *Manager) Lookup(cols Set) (*State, bool) {
	st, ok := m.states[cols.Key()]
	return st, ok
}

// States returns every issued handle in the order it was minted.
func (m *Manager) States() []*State {
	out := make([]*State, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns how many distinct states have been issued.
func (m *Manager) Len() int {
	return len(m.order)
}

// NextState applies a signature to the current column set.
func (m *Manager) NextState(current Set, sig Signature) Set {
	return NextState(current, sig)
}

// NextState computes (current - sig.Input) ∪ sig.Output: consumed columns are
// dropped unless re-emitted and every other column persists.
func NextState(current Set, sig Signature) Set {
	return current.Difference(sig.Input()).Union(sig.Output())
}
