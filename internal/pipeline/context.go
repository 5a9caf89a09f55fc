package pipeline

// Well-known metadata keys written by the executor.
const (
	MetaRunID              = "run_id"
	MetaStepsExecuted      = "steps_executed"
	MetaLastStep           = "last_step"
	MetaSourceRecords      = "source_records"
	MetaTransformedRecords = "transformed_records"
)

// MetaProcessedRows is written by sinks with the number of rows they stored.
const MetaProcessedRows = "processed_rows"

// ExecutionContext is threaded through every step of one run. Data is an
// opaque payload that steps agree on privately; Metadata collects facts
// about the run in insertion order.
type ExecutionContext struct {
	Data     any
	Metadata *Metadata

	resource Resource
}

// NewExecutionContext returns an empty context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{Metadata: NewMetadata()}
}

// Resource returns the transactional resource scoped to the run, or a
// ResourceError when the run was started without one.
func (ec *ExecutionContext) Resource() (Resource, error) {
	if ec.resource == nil {
		return nil, &ResourceError{Op: "unavailable: no active resource in execution context"}
	}
	return ec.resource, nil
}

// HasResource reports whether a resource is currently scoped to the context.
func (ec *ExecutionContext) HasResource() bool {
	return ec.resource != nil
}

// BindResource scopes r to the context. The executor calls it after
// acquisition and passes nil to clear it once the resource is released.
func (ec *ExecutionContext) BindResource(r Resource) {
	ec.resource = r
}

// Metadata is an insertion-ordered string-keyed map.
type Metadata struct {
	keys   []string
	values map[string]any
}

// NewMetadata creates an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]any)}
}

// Set stores a value. Overwriting keeps the key's original position.
func (m *Metadata) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes a key.
func (m *Metadata) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Metadata) Len() int { return len(m.keys) }

// Each calls fn for every entry in insertion order.
func (m *Metadata) Each(fn func(key string, value any)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Int returns an integer-valued entry, accepting any Go integer type.
func (m *Metadata) Int(key string) (int64, bool) {
	switch v := m.values[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}
