package records

// Record is an ordered column → value mapping. Insertion order is
// preserved because the first record appended to an empty sheet defines
// the header shape.
type Record struct {
	keys   []string
	values map[string]string
}

func New() *Record {
	return &Record{values: make(map[string]string)}
}

// Set inserts or overwrites a value. A new key is appended at the end of
// the order; overwriting keeps the original position.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Map returns the values as a plain map.
func (r *Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func (r *Record) Len() int {
	return len(r.keys)
}
